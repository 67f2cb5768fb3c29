package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"nexus_dashboard/internal/models"
)

// ImportResult counts what a workbook import did with each data row.
type ImportResult struct {
	Sheets   []string        `json:"sheets"`
	Created  int             `json:"created"`
	Updated  int             `json:"updated"`
	Skipped  int             `json:"skipped"`
	Failed   int             `json:"failed"`
	Failures []ImportFailure `json:"failures,omitempty"`
}

type ImportFailure struct {
	Sheet  string `json:"sheet"`
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

type ImportService interface {
	ImportWorkbook(ctx context.Context, r io.Reader) (*ImportResult, error)
}

type importService struct {
	mro    MROService
	logger *slog.Logger
}

func NewImportService(mro MROService, logger *slog.Logger) ImportService {
	return &importService{mro: mro, logger: logger}
}

var dateColumns = map[string]bool{
	"date_delivered":        true,
	"expected_release_date": true,
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01-02-06",
	"1/2/06",
	"1/2/2006",
	"01/02/2006",
	"2-Jan-06",
	"02-Jan-2006",
	"Jan 2, 2006",
}

// ImportWorkbook reads every sheet whose header row has a customer column and
// upserts one MRO job per data row, keyed by serial number. Rows without a
// serial are skipped; a row the backend rejects is counted and skipped.
func (s *importService) ImportWorkbook(ctx context.Context, r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read workbook: %v", models.ErrValidation, err)
	}
	defer f.Close()

	existing, err := s.mro.List(ctx, models.MROFilter{})
	if err != nil {
		return nil, fmt.Errorf("list existing MRO items: %w", err)
	}
	known := make(map[string]bool, len(existing))
	for _, item := range existing {
		known[item.SerialNumber] = true
	}

	result := &ImportResult{Sheets: []string{}}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return result, fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}
		header := normalizeHeader(rows[0])
		if !containsColumn(header, "customer") {
			s.logger.Debug("skipping sheet without customer column", "sheet", sheet)
			continue
		}
		result.Sheets = append(result.Sheets, sheet)

		for i, row := range rows[1:] {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			if blankRow(row) {
				continue
			}
			item := rowToItem(sheet, header, row)
			if item.SerialNumber == "" {
				s.logger.Warn("skipping row without serial number", "sheet", sheet, "row", i+2)
				result.Skipped++
				continue
			}

			if known[item.SerialNumber] {
				_, err = s.mro.Update(ctx, item.SerialNumber, patchFromItem(item))
			} else {
				_, err = s.mro.Create(ctx, item)
			}
			if err != nil {
				result.Failed++
				result.Failures = append(result.Failures, ImportFailure{Sheet: sheet, Row: i + 2, Reason: err.Error()})
				continue
			}
			if known[item.SerialNumber] {
				result.Updated++
			} else {
				known[item.SerialNumber] = true
				result.Created++
			}
		}
	}

	s.logger.Info("workbook imported",
		"sheets", len(result.Sheets),
		"created", result.Created,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	return result, nil
}

func normalizeHeader(row []string) []string {
	out := make([]string, len(row))
	for i, h := range row {
		out[i] = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
	}
	return out
}

func containsColumn(header []string, name string) bool {
	for _, h := range header {
		if h == name {
			return true
		}
	}
	return false
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func rowToItem(sheet string, header, row []string) models.MROItem {
	cell := func(name string) string {
		for i, h := range header {
			if h == name && i < len(row) {
				if dateColumns[name] {
					return formatDate(row[i])
				}
				return row[i]
			}
		}
		return ""
	}

	// Sheets without a known category keep their own name as the category.
	category, _ := models.ParseCategory(sheet)
	item := models.MROItem{
		Customer:            cell("customer"),
		PartNumber:          cell("part_number"),
		Description:         cell("description"),
		SerialNumber:        cell("serial_number"),
		DateDelivered:       cell("date_delivered"),
		WorkRequested:       cell("work_requested"),
		Progress:            models.Progress(cell("progress")),
		Location:            cell("location"),
		ExpectedReleaseDate: cell("expected_release_date"),
		Remarks:             cell("remarks"),
		Category:            category,
		Subcategory:         models.SubCategoryFromSheet(sheet),
		SheetName:           sheet,
	}
	models.NormalizeMROItem(&item)
	return item
}

// patchFromItem turns an imported row into an update. Empty cells leave the
// stored value alone.
func patchFromItem(item models.MROItem) models.MROPatch {
	text := func(v string) *string {
		if v == "" {
			return nil
		}
		return &v
	}
	patch := models.MROPatch{
		Customer:            text(item.Customer),
		PartNumber:          text(item.PartNumber),
		Description:         text(item.Description),
		DateDelivered:       text(item.DateDelivered),
		WorkRequested:       text(item.WorkRequested),
		Location:            text(item.Location),
		ExpectedReleaseDate: text(item.ExpectedReleaseDate),
		Remarks:             text(item.Remarks),
		Subcategory:         item.Subcategory,
		SheetName:           text(item.SheetName),
	}
	if item.Progress != models.ProgressUnknown {
		patch.Progress = &item.Progress
	}
	if item.Category != models.CategoryNone {
		patch.Category = &item.Category
	}
	return patch
}

// formatDate renders a date cell as YYYY-MM-DD. Cells that are not dates are
// returned unchanged.
func formatDate(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return v
	}
	if serial, err := strconv.ParseFloat(v, 64); err == nil {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t.Format(time.DateOnly)
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format(time.DateOnly)
		}
	}
	return v
}

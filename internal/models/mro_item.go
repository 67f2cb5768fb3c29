package models

import (
	"errors"
	"fmt"
	"strings"
)

// MROItem is a single maintenance/repair job tracked by a shop.
type MROItem struct {
	ID                  ID           `json:"id,omitempty"`
	Customer            string       `json:"customer"`
	PartNumber          string       `json:"part_number"`
	Description         string       `json:"description"`
	SerialNumber        string       `json:"serial_number"`
	DateDelivered       string       `json:"date_delivered"`
	WorkRequested       string       `json:"work_requested"`
	Progress            Progress     `json:"progress"`
	Location            string       `json:"location"`
	ExpectedReleaseDate string       `json:"expected_release_date"`
	Remarks             string       `json:"remarks"`
	Category            Category     `json:"category"`
	Subcategory         *SubCategory `json:"subcategory,omitempty"`
	SheetName           string       `json:"sheet_name,omitempty"`
	CreatedAt           string       `json:"created_at,omitempty"`
	UpdatedAt           string       `json:"updated_at,omitempty"`
}

// MROPatch is a partial update keyed by serial number. Nil fields are left
// untouched by the backend.
type MROPatch struct {
	Customer            *string      `json:"customer,omitempty"`
	PartNumber          *string      `json:"part_number,omitempty"`
	Description         *string      `json:"description,omitempty"`
	DateDelivered       *string      `json:"date_delivered,omitempty"`
	WorkRequested       *string      `json:"work_requested,omitempty"`
	Progress            *Progress    `json:"progress,omitempty"`
	Location            *string      `json:"location,omitempty"`
	ExpectedReleaseDate *string      `json:"expected_release_date,omitempty"`
	Remarks             *string      `json:"remarks,omitempty"`
	Category            *Category    `json:"category,omitempty"`
	Subcategory         *SubCategory `json:"subcategory,omitempty"`
	SheetName           *string      `json:"sheet_name,omitempty"`
}

type Progress string

const (
	ProgressUnknown    Progress = ""
	ProgressPending    Progress = "PENDING"
	ProgressWIP        Progress = "WIP"
	ProgressOnProgress Progress = "ON PROGRESS"
	ProgressClosed     Progress = "CLOSED"
)

var ProgressStatuses = []Progress{ProgressPending, ProgressWIP, ProgressOnProgress, ProgressClosed}

// ParseProgress maps free text onto the closed progress set. Placeholders and
// unrecognized values yield ProgressUnknown and false.
func ParseProgress(s string) (Progress, bool) {
	if IsPlaceholder(s) {
		return ProgressUnknown, false
	}
	upper := strings.ToUpper(strings.Join(strings.Fields(s), " "))
	for _, p := range ProgressStatuses {
		if upper == string(p) {
			return p, true
		}
	}
	return ProgressUnknown, false
}

// Active reports whether work on the job has started but not finished.
func (p Progress) Active() bool {
	return p == ProgressWIP || p == ProgressOnProgress
}

type Category string

const (
	CategoryNone              Category = ""
	CategoryAllWIPComp        Category = "ALL WIP COMP"
	CategoryMechanical        Category = "MECHANICAL"
	CategorySafetyComponents  Category = "SAFETY COMPONENTS"
	CategoryAvionicsMain      Category = "AVIONICS MAIN"
	CategoryAvionicsShop      Category = "Avionics Shop"
	CategoryPlantAndEquipment Category = "PLANT AND EQUIPMENTS"
	CategoryBattery           Category = "BATTERY"
	CategoryBatteryShop       Category = "Battery Shop"
	CategoryCalibration       Category = "CALIBRATION"
	CategoryCalLab            Category = "Cal lab"
	CategoryUPHShop           Category = "UPH Shop"
	CategoryStructuresShop    Category = "Structures Shop"

	// CategoryAll is the filter sentinel meaning "no category filter".
	CategoryAll Category = "ALL"
	// Uncategorized is the stats bucket for items without a usable category.
	Uncategorized = "Uncategorized"
)

var Categories = []Category{
	CategoryAllWIPComp,
	CategoryMechanical,
	CategorySafetyComponents,
	CategoryAvionicsMain,
	CategoryAvionicsShop,
	CategoryPlantAndEquipment,
	CategoryBattery,
	CategoryBatteryShop,
	CategoryCalibration,
	CategoryCalLab,
	CategoryUPHShop,
	CategoryStructuresShop,
}

// sheetCategories maps workbook sheet names that differ from the canonical
// category name.
var sheetCategories = map[string]Category{
	"mech shop":   CategoryMechanical,
	"safety shop": CategorySafetyComponents,
}

// ParseCategory resolves a category name or sheet alias case-insensitively.
// Unknown non-placeholder names are kept verbatim so that grouping still
// reflects what the backend stores; ok is false for them.
func ParseCategory(s string) (Category, bool) {
	if IsPlaceholder(s) {
		return CategoryNone, false
	}
	trimmed := strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(trimmed, string(c)) {
			return c, true
		}
	}
	if c, ok := sheetCategories[strings.ToLower(trimmed)]; ok {
		return c, true
	}
	return Category(trimmed), false
}

func (c Category) Known() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

type SubCategory string

const (
	SubCategoryMain SubCategory = "MAIN"
	SubCategoryShop SubCategory = "SHOP"
	SubCategoryLab  SubCategory = "LAB"
)

// SubCategoryFromSheet derives the subcategory from a workbook sheet name.
func SubCategoryFromSheet(sheetName string) *SubCategory {
	lower := strings.ToLower(sheetName)
	var sub SubCategory
	switch {
	case strings.Contains(lower, "main"):
		sub = SubCategoryMain
	case strings.Contains(lower, "shop"):
		sub = SubCategoryShop
	case strings.Contains(lower, "lab"):
		sub = SubCategoryLab
	default:
		return nil
	}
	return &sub
}

// ParseSubCategory returns nil for placeholders and unknown values.
func ParseSubCategory(s string) *SubCategory {
	if IsPlaceholder(s) {
		return nil
	}
	sub := SubCategory(strings.ToUpper(strings.TrimSpace(s)))
	switch sub {
	case SubCategoryMain, SubCategoryShop, SubCategoryLab:
		return &sub
	}
	return nil
}

var placeholders = []string{"", "nan", "n/a", "null", "undefined"}

// IsPlaceholder reports whether s is one of the spreadsheet export markers
// that stand in for a missing value.
func IsPlaceholder(s string) bool {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, p := range placeholders {
		if v == p {
			return true
		}
	}
	return false
}

// NormalizeMROItem cleans an item as it enters the process, either from the
// backend or from a workbook import. Text placeholders become empty strings
// and progress, category and subcategory are folded onto their closed sets.
func NormalizeMROItem(item *MROItem) {
	for _, f := range []*string{
		&item.Customer, &item.PartNumber, &item.Description, &item.SerialNumber,
		&item.DateDelivered, &item.WorkRequested, &item.Location,
		&item.ExpectedReleaseDate, &item.Remarks, &item.SheetName,
	} {
		if IsPlaceholder(*f) {
			*f = ""
		} else {
			*f = strings.TrimSpace(*f)
		}
	}
	item.Progress, _ = ParseProgress(string(item.Progress))
	item.Category, _ = ParseCategory(string(item.Category))
	if item.Subcategory != nil {
		item.Subcategory = ParseSubCategory(string(*item.Subcategory))
	}
}

// NormalizeMROItems applies NormalizeMROItem to every element in place.
func NormalizeMROItems(items []MROItem) {
	for i := range items {
		NormalizeMROItem(&items[i])
	}
}

var ErrValidation = errors.New("validation failed")

// ValidateNewMROItem checks the fields a job needs before it is sent to the
// backend. A category outside the known set is accepted only when it is the
// name of the workbook sheet the job was imported from.
func ValidateNewMROItem(item MROItem) error {
	switch {
	case strings.TrimSpace(item.Customer) == "":
		return fmt.Errorf("%w: customer is required", ErrValidation)
	case strings.TrimSpace(item.PartNumber) == "":
		return fmt.Errorf("%w: part number is required", ErrValidation)
	case strings.TrimSpace(item.SerialNumber) == "":
		return fmt.Errorf("%w: serial number is required", ErrValidation)
	}
	if item.Progress != ProgressUnknown {
		if _, ok := ParseProgress(string(item.Progress)); !ok {
			return fmt.Errorf("%w: unknown progress %q", ErrValidation, item.Progress)
		}
	}
	if item.Category != CategoryNone && !item.Category.Known() && string(item.Category) != item.SheetName {
		return fmt.Errorf("%w: unknown category %q", ErrValidation, item.Category)
	}
	return nil
}

// ValidatePatch rejects enum values outside the closed sets.
func ValidatePatch(p MROPatch) error {
	if p.Progress != nil {
		if _, ok := ParseProgress(string(*p.Progress)); !ok {
			return fmt.Errorf("%w: unknown progress %q", ErrValidation, *p.Progress)
		}
	}
	if p.Category != nil && !p.Category.Known() && (p.SheetName == nil || string(*p.Category) != *p.SheetName) {
		return fmt.Errorf("%w: unknown category %q", ErrValidation, *p.Category)
	}
	return nil
}

// MROFilter narrows an MRO listing on the backend. Empty fields are omitted.
type MROFilter struct {
	Category string `json:"category,omitempty"`
	Progress string `json:"progress,omitempty"`
}

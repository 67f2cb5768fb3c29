// Package mro derives what the MRO table and summary cards show from a
// fetched list of jobs. Nothing here mutates its input.
package mro

import (
	"slices"
	"strings"
	"time"

	"nexus_dashboard/internal/models"
)

type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// SortKey names a sortable MROItem field by its JSON name.
type SortKey string

const (
	SortCustomer            SortKey = "customer"
	SortPartNumber          SortKey = "part_number"
	SortDescription         SortKey = "description"
	SortSerialNumber        SortKey = "serial_number"
	SortDateDelivered       SortKey = "date_delivered"
	SortWorkRequested       SortKey = "work_requested"
	SortProgress            SortKey = "progress"
	SortLocation            SortKey = "location"
	SortExpectedReleaseDate SortKey = "expected_release_date"
	SortRemarks             SortKey = "remarks"
	SortCategory            SortKey = "category"
	SortSubcategory         SortKey = "subcategory"
	SortSheetName           SortKey = "sheet_name"
)

var textFields = map[SortKey]func(models.MROItem) string{
	SortCustomer:      func(i models.MROItem) string { return i.Customer },
	SortPartNumber:    func(i models.MROItem) string { return i.PartNumber },
	SortDescription:   func(i models.MROItem) string { return i.Description },
	SortSerialNumber:  func(i models.MROItem) string { return i.SerialNumber },
	SortWorkRequested: func(i models.MROItem) string { return i.WorkRequested },
	SortProgress:      func(i models.MROItem) string { return string(i.Progress) },
	SortLocation:      func(i models.MROItem) string { return i.Location },
	SortRemarks:       func(i models.MROItem) string { return i.Remarks },
	SortCategory:      func(i models.MROItem) string { return string(i.Category) },
	SortSubcategory:   subcategoryText,
	SortSheetName:     func(i models.MROItem) string { return i.SheetName },
}

var dateFields = map[SortKey]func(models.MROItem) string{
	SortDateDelivered:       func(i models.MROItem) string { return i.DateDelivered },
	SortExpectedReleaseDate: func(i models.MROItem) string { return i.ExpectedReleaseDate },
}

// Sortable reports whether key names a field the table can sort by.
func (k SortKey) Sortable() bool {
	_, text := textFields[k]
	_, date := dateFields[k]
	return text || date
}

// SortState is the single active sort of the table. A zero value means
// unsorted.
type SortState struct {
	Key       SortKey   `json:"key,omitempty"`
	Direction Direction `json:"direction,omitempty"`
}

// Toggle returns the state after the user clicks the header for key: the
// same key flips direction, a new key starts ascending.
func (s SortState) Toggle(key SortKey) SortState {
	if s.Key == key && s.Direction == Ascending {
		return SortState{Key: key, Direction: Descending}
	}
	return SortState{Key: key, Direction: Ascending}
}

// Query is the table's local filter, search and sort state.
type Query struct {
	Category    models.Category
	Subcategory *models.SubCategory
	Search      string
	Sort        SortState
}

// Apply filters then sorts items into a new slice.
func Apply(items []models.MROItem, q Query) []models.MROItem {
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]models.MROItem, 0, len(items))
	for _, item := range items {
		if Matches(item, q.Category, q.Subcategory, needle) {
			out = append(out, item)
		}
	}
	Sort(out, q.Sort)
	return out
}

// Matches applies the category, subcategory and search predicates in that
// order. needle must already be lower case.
func Matches(item models.MROItem, category models.Category, sub *models.SubCategory, needle string) bool {
	if category != "" && category != models.CategoryAll && item.Category != category {
		return false
	}
	if sub != nil && (item.Subcategory == nil || *item.Subcategory != *sub) {
		return false
	}
	if needle == "" {
		return true
	}
	for _, field := range searchFields(item) {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func searchFields(i models.MROItem) []string {
	return []string{
		i.Customer,
		i.PartNumber,
		i.Description,
		i.SerialNumber,
		string(i.Progress),
		string(i.Category),
		subcategoryText(i),
		i.SheetName,
		i.WorkRequested,
		i.Remarks,
	}
}

func subcategoryText(i models.MROItem) string {
	if i.Subcategory == nil {
		return ""
	}
	return string(*i.Subcategory)
}

// Sort orders items in place by s. Equal keys keep their relative order and
// an unknown key leaves the slice untouched.
func Sort(items []models.MROItem, s SortState) {
	if s.Key == "" {
		return
	}
	sign := 1
	if s.Direction == Descending {
		sign = -1
	}

	if field, ok := dateFields[s.Key]; ok {
		slices.SortStableFunc(items, func(a, b models.MROItem) int {
			return sign * compareTimes(parseDate(field(a)), parseDate(field(b)))
		})
		return
	}
	if field, ok := textFields[s.Key]; ok {
		slices.SortStableFunc(items, func(a, b models.MROItem) int {
			return sign * strings.Compare(field(a), field(b))
		})
	}
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"2 Jan 2006",
}

// parseDate returns the zero time for empty or unparseable values, which
// places them first in ascending order.
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func compareTimes(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

// Page returns the 1-based page of rows of the given size. Out of range
// pages are empty; a non-positive size returns everything.
func Page(items []models.MROItem, page, size int) []models.MROItem {
	if size <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	// Compare page counts before multiplying so huge inputs cannot overflow.
	pages := len(items) / size
	if len(items)%size != 0 {
		pages++
	}
	if page > pages {
		return []models.MROItem{}
	}
	start := (page - 1) * size
	end := start + min(size, len(items)-start)
	return items[start:end]
}

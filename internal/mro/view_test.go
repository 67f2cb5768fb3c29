package mro

import (
	"fmt"
	"math"
	"math/rand"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexus_dashboard/internal/models"
)

func sub(s models.SubCategory) *models.SubCategory { return &s }

func sampleItems() []models.MROItem {
	return []models.MROItem{
		{SerialNumber: "SN1", Customer: "Kenya Airways", PartNumber: "AP-001", Progress: models.ProgressWIP, Category: models.CategoryBattery, Subcategory: sub(models.SubCategoryMain), DateDelivered: "2024-03-01"},
		{SerialNumber: "SN2", Customer: "Jambojet", PartNumber: "ap-001-b", Progress: models.ProgressClosed, Category: models.CategoryBatteryShop, Subcategory: sub(models.SubCategoryShop), DateDelivered: "2024-01-15"},
		{SerialNumber: "SN3", Customer: "Safarilink", PartNumber: "HX-200", Progress: models.ProgressPending, Category: models.CategoryBattery, DateDelivered: "2024-02-10", Remarks: "awaiting AP-001 seal"},
		{SerialNumber: "SN4", Customer: "Kenya Airways", PartNumber: "ZZ-9", Progress: models.ProgressOnProgress, Category: models.CategoryCalLab, Subcategory: sub(models.SubCategoryLab), DateDelivered: "2023-12-31"},
	}
}

func serials(items []models.MROItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.SerialNumber
	}
	return out
}

func TestApplyCategoryFilter(t *testing.T) {
	got := Apply(sampleItems(), Query{Category: models.CategoryBattery})
	assert.Equal(t, []string{"SN1", "SN3"}, serials(got))

	all := Apply(sampleItems(), Query{Category: models.CategoryAll})
	assert.Len(t, all, 4)
}

func TestApplySubcategoryFilter(t *testing.T) {
	got := Apply(sampleItems(), Query{Subcategory: sub(models.SubCategoryShop)})
	assert.Equal(t, []string{"SN2"}, serials(got))
}

func TestApplySearchIsCaseInsensitiveSubstring(t *testing.T) {
	got := Apply(sampleItems(), Query{Search: "AP-001"})
	assert.Equal(t, []string{"SN1", "SN2", "SN3"}, serials(got))

	got = Apply(sampleItems(), Query{Search: "kenya"})
	assert.Equal(t, []string{"SN1", "SN4"}, serials(got))

	got = Apply(sampleItems(), Query{Search: "lab"})
	assert.Equal(t, []string{"SN4"}, serials(got))
}

func TestMissingFieldsNeverMatchEverything(t *testing.T) {
	items := []models.MROItem{{SerialNumber: "SN1"}, {SerialNumber: "SN2", Remarks: "urgent"}}
	got := Apply(items, Query{Search: "urgent"})
	assert.Equal(t, []string{"SN2"}, serials(got))

	got = Apply(items, Query{Subcategory: sub(models.SubCategoryMain)})
	assert.Empty(t, got)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	items := sampleItems()
	before := serials(items)
	Apply(items, Query{Sort: SortState{Key: SortDateDelivered, Direction: Ascending}})
	assert.Equal(t, before, serials(items))
}

func TestSortByDate(t *testing.T) {
	asc := Apply(sampleItems(), Query{Sort: SortState{Key: SortDateDelivered, Direction: Ascending}})
	assert.Equal(t, []string{"SN4", "SN2", "SN3", "SN1"}, serials(asc))

	desc := Apply(sampleItems(), Query{Sort: SortState{Key: SortDateDelivered, Direction: Descending}})
	reversed := serials(asc)
	slices.Reverse(reversed)
	assert.Equal(t, reversed, serials(desc))
}

func TestSortByText(t *testing.T) {
	got := Apply(sampleItems(), Query{Sort: SortState{Key: SortCustomer, Direction: Ascending}})
	assert.Equal(t, []string{"SN2", "SN1", "SN4", "SN3"}, serials(got))
}

func TestSortIsStable(t *testing.T) {
	items := []models.MROItem{
		{SerialNumber: "A", Customer: "KQ"},
		{SerialNumber: "B", Customer: "JJ"},
		{SerialNumber: "C", Customer: "KQ"},
		{SerialNumber: "D", Customer: "KQ"},
	}
	asc := Apply(items, Query{Sort: SortState{Key: SortCustomer, Direction: Ascending}})
	assert.Equal(t, []string{"B", "A", "C", "D"}, serials(asc))

	desc := Apply(items, Query{Sort: SortState{Key: SortCustomer, Direction: Descending}})
	assert.Equal(t, []string{"A", "C", "D", "B"}, serials(desc))
}

func TestSortUnknownKeyIsNoop(t *testing.T) {
	items := sampleItems()
	assert.NotPanics(t, func() {
		got := Apply(items, Query{Sort: SortState{Key: "nonsense", Direction: Descending}})
		assert.Equal(t, serials(items), serials(got))
	})
	assert.False(t, SortKey("nonsense").Sortable())
	assert.True(t, SortExpectedReleaseDate.Sortable())
}

func TestUnparseableDatesSortFirst(t *testing.T) {
	items := []models.MROItem{
		{SerialNumber: "A", ExpectedReleaseDate: "2024-05-01"},
		{SerialNumber: "B", ExpectedReleaseDate: "TBA"},
		{SerialNumber: "C", ExpectedReleaseDate: "2024-04-01T08:00:00Z"},
	}
	got := Apply(items, Query{Sort: SortState{Key: SortExpectedReleaseDate, Direction: Ascending}})
	assert.Equal(t, []string{"B", "C", "A"}, serials(got))
}

func TestSortStateToggle(t *testing.T) {
	var s SortState
	s = s.Toggle(SortDateDelivered)
	assert.Equal(t, SortState{Key: SortDateDelivered, Direction: Ascending}, s)
	s = s.Toggle(SortDateDelivered)
	assert.Equal(t, SortState{Key: SortDateDelivered, Direction: Descending}, s)
	s = s.Toggle(SortDateDelivered)
	assert.Equal(t, Ascending, s.Direction)
	s = s.Toggle(SortDateDelivered).Toggle(SortCustomer)
	assert.Equal(t, SortState{Key: SortCustomer, Direction: Ascending}, s)
}

func TestPage(t *testing.T) {
	items := sampleItems()
	assert.Equal(t, []string{"SN1", "SN2"}, serials(Page(items, 1, 2)))
	assert.Equal(t, []string{"SN3", "SN4"}, serials(Page(items, 2, 2)))
	assert.Empty(t, Page(items, 3, 2))
	assert.Len(t, Page(items, 0, 0), 4)

	assert.Empty(t, Page(items, math.MaxInt, 2))
	assert.Empty(t, Page(items, math.MaxInt/2+2, 2))
	assert.Len(t, Page(items, 1, math.MaxInt), 4)
	assert.Empty(t, Page(items, 2, math.MaxInt))
}

var (
	customers = []string{"Kenya Airways", "Jambojet", "Safarilink", "", "AirKenya"}
	parts     = []string{"AP-001", "ap-002", "HX-200", "", "ZZ-9"}
	remarks   = []string{"", "nan", "awaiting AP-001", "urgent"}
)

func randomItems(r *rand.Rand, n int) []models.MROItem {
	items := make([]models.MROItem, n)
	for i := range items {
		item := models.MROItem{
			SerialNumber:  fmt.Sprintf("SN%03d", i),
			Customer:      customers[r.Intn(len(customers))],
			PartNumber:    parts[r.Intn(len(parts))],
			Remarks:       remarks[r.Intn(len(remarks))],
			Progress:      append(models.ProgressStatuses, models.ProgressUnknown)[r.Intn(5)],
			Category:      append(models.Categories, "", "nan")[r.Intn(len(models.Categories)+2)],
			DateDelivered: fmt.Sprintf("2024-%02d-%02d", 1+r.Intn(12), 1+r.Intn(28)),
		}
		if r.Intn(2) == 0 {
			item.Subcategory = sub([]models.SubCategory{models.SubCategoryMain, models.SubCategoryShop, models.SubCategoryLab}[r.Intn(3)])
		}
		items[i] = item
	}
	return items
}

func TestApplyOutputSatisfiesPredicates(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	searches := []string{"", "ap-001", "KENYA", "urgent", "lab", "battery"}
	for round := 0; round < 200; round++ {
		items := randomItems(r, 40)
		q := Query{
			Category: append(models.Categories, models.CategoryAll, "")[r.Intn(len(models.Categories)+2)],
			Search:   searches[r.Intn(len(searches))],
			Sort:     SortState{Key: SortDateDelivered, Direction: Ascending},
		}
		if r.Intn(2) == 0 {
			q.Subcategory = sub(models.SubCategoryShop)
		}

		got := Apply(items, q)
		needle := strings.ToLower(q.Search)
		expected := 0
		for _, item := range items {
			if Matches(item, q.Category, q.Subcategory, needle) {
				expected++
			}
		}
		require.Len(t, got, expected)
		for _, item := range got {
			if q.Category != "" && q.Category != models.CategoryAll {
				require.Equal(t, q.Category, item.Category)
			}
			if q.Subcategory != nil {
				require.NotNil(t, item.Subcategory)
				require.Equal(t, *q.Subcategory, *item.Subcategory)
			}
			if needle != "" {
				found := false
				for _, f := range searchFields(item) {
					if strings.Contains(strings.ToLower(f), needle) {
						found = true
					}
				}
				require.True(t, found)
			}
		}
	}
}

package handlers

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"nexus_dashboard/internal/models"
	"nexus_dashboard/internal/mro"
	"nexus_dashboard/internal/services"
)

type MROHandler struct {
	mroService    services.MROService
	importService services.ImportService
}

func NewMROHandler(mroService services.MROService, importService services.ImportService) *MROHandler {
	return &MROHandler{
		mroService:    mroService,
		importService: importService,
	}
}

// ListItems returns the backend's list for the category and progress query
// parameters.
func (h *MROHandler) ListItems(c *gin.Context) {
	filter := models.MROFilter{
		Category: c.Query("category"),
		Progress: c.Query("progress"),
	}
	if strings.EqualFold(filter.Category, string(models.CategoryAll)) {
		filter.Category = ""
	}

	items, ok := h.load(c, filter)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetView answers the MRO table: rows after the local filter, search, sort
// and paging, plus stats over the whole list.
func (h *MROHandler) GetView(c *gin.Context) {
	subcategory := c.Query("subcategory")
	q := mro.Query{
		Category:    categoryParam(c.Query("category")),
		Subcategory: models.ParseSubCategory(subcategory),
		Search:      c.Query("q"),
	}
	if q.Subcategory == nil && !models.IsPlaceholder(subcategory) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown subcategory " + strconv.Quote(subcategory)})
		return
	}
	if key := mro.SortKey(c.Query("sort")); key.Sortable() {
		dir := mro.Ascending
		if strings.EqualFold(c.Query("dir"), string(mro.Descending)) {
			dir = mro.Descending
		}
		q.Sort = mro.SortState{Key: key, Direction: dir}
	}
	page := max(queryInt(c, "page", 1), 1)
	size := max(queryInt(c, "size", 0), 0)

	items, ok := h.load(c, models.MROFilter{})
	if !ok {
		return
	}

	rows := mro.Apply(items, q)
	c.JSON(http.StatusOK, gin.H{
		"rows":    mro.Page(rows, page, size),
		"matched": len(rows),
		"page":    page,
		"size":    size,
		"sort":    q.Sort,
		"stats":   mro.ComputeStats(items),
	})
}

func (h *MROHandler) GetStats(c *gin.Context) {
	items, ok := h.load(c, models.MROFilter{})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, mro.ComputeStats(items))
}

func (h *MROHandler) CreateItem(c *gin.Context) {
	var item models.MROItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	created, err := h.mroService.Create(c.Request.Context(), item)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *MROHandler) UpdateItem(c *gin.Context) {
	var patch models.MROPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	updated, err := h.mroService.Update(c.Request.Context(), c.Query("serialNumber"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *MROHandler) DeleteItem(c *gin.Context) {
	if err := h.mroService.Delete(c.Request.Context(), c.Query("serialNumber")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *MROHandler) ImportWorkbook(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".xlsx") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only .xlsx workbooks can be imported"})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	result, err := h.importService.ImportWorkbook(c.Request.Context(), file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// load fetches through a feed scoped to this request.
func (h *MROHandler) load(c *gin.Context, filter models.MROFilter) ([]models.MROItem, bool) {
	feed := h.mroService.NewFeed(filter)
	defer feed.Close()

	if err := feed.Fetch(c.Request.Context()); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, gin.H{"error": feed.Err()})
		return nil, false
	}
	return feed.Items(), true
}

// queryInt falls back to def for a missing or malformed value.
func queryInt(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return v
}

func categoryParam(v string) models.Category {
	if strings.TrimSpace(v) == "" || strings.EqualFold(v, string(models.CategoryAll)) {
		return models.CategoryAll
	}
	category, _ := models.ParseCategory(v)
	return category
}

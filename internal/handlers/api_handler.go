package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"nexus_dashboard/internal/models"
	"nexus_dashboard/internal/services"
	"nexus_dashboard/pkg/nexusapi"
)

type APIHandler struct {
	refreshService   services.RefreshService
	analyticsService services.AnalyticsService
	uploadService    services.UploadService
}

func NewAPIHandler(
	refreshService services.RefreshService,
	analyticsService services.AnalyticsService,
	uploadService services.UploadService,
) *APIHandler {
	return &APIHandler{
		refreshService:   refreshService,
		analyticsService: analyticsService,
		uploadService:    uploadService,
	}
}

func (h *APIHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"refreshing": h.refreshService.IsRefreshing(),
	})
}

func (h *APIHandler) GetInventory(c *gin.Context) {
	items, ok := h.refreshService.RefreshInventory(c.Request.Context(), forced(c))
	if !ok {
		c.JSON(http.StatusBadGateway, gin.H{"error": h.refreshService.Err()})
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *APIHandler) GetLowStock(c *gin.Context) {
	items, ok := h.refreshService.RefreshInventory(c.Request.Context(), forced(c))
	if !ok {
		c.JSON(http.StatusBadGateway, gin.H{"error": h.refreshService.Err()})
		return
	}
	c.JSON(http.StatusOK, models.FilterLowStock(items))
}

func (h *APIHandler) GetOrders(c *gin.Context) {
	orders, ok := h.refreshService.RefreshOrders(c.Request.Context(), forced(c))
	if !ok {
		c.JSON(http.StatusBadGateway, gin.H{"error": h.refreshService.Err()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orders":     orders,
		"backorders": models.CountBackorders(orders),
	})
}

func (h *APIHandler) GetAnalyticsSummary(c *gin.Context) {
	report, err := h.analyticsService.Summary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *APIHandler) UploadInventory(c *gin.Context) {
	h.upload(c, h.uploadService.UploadInventory)
}

func (h *APIHandler) UploadOrders(c *gin.Context) {
	h.upload(c, h.uploadService.UploadOrders)
}

type uploadFunc func(ctx context.Context, filename string, r io.Reader) (*models.UploadResult, error)

func (h *APIHandler) upload(c *gin.Context, send uploadFunc) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	if err := services.CheckUploadName(header.Filename); err != nil {
		respondError(c, err)
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	result, err := send(c.Request.Context(), header.Filename, file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func forced(c *gin.Context) bool {
	switch c.Query("force") {
	case "1", "true":
		return true
	}
	return false
}

// respondError maps service errors onto HTTP statuses: validation failures
// are 400, backend 4xx answers pass through, a backend 2xx that reports
// failure is 422 and everything else is 502.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	status := http.StatusBadGateway
	if errors.Is(err, models.ErrValidation) {
		status = http.StatusBadRequest
	} else if apiErr, ok := nexusapi.IsAPIError(err); ok {
		switch {
		case apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
			status = apiErr.StatusCode
		case apiErr.StatusCode < 400:
			status = http.StatusUnprocessableEntity
		}
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

package handlers

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"nexus_dashboard/internal/logging"
)

func NewRouter(apiHandler *APIHandler, mroHandler *MROHandler, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), logging.RequestLogger(logger, "/healthz"))

	router.GET("/healthz", apiHandler.Health)

	api := router.Group("/api")
	{
		api.GET("/inventory", apiHandler.GetInventory)
		api.GET("/inventory/low-stock", apiHandler.GetLowStock)
		api.GET("/orders", apiHandler.GetOrders)
		api.GET("/analytics/summary", apiHandler.GetAnalyticsSummary)

		api.POST("/upload/inventory", apiHandler.UploadInventory)
		api.POST("/upload/orders", apiHandler.UploadOrders)

		api.GET("/mro/items", mroHandler.ListItems)
		api.POST("/mro/items", mroHandler.CreateItem)
		api.PUT("/mro/items", mroHandler.UpdateItem)
		api.DELETE("/mro/items", mroHandler.DeleteItem)
		api.GET("/mro/view", mroHandler.GetView)
		api.GET("/mro/stats", mroHandler.GetStats)
		api.POST("/mro/import", mroHandler.ImportWorkbook)
	}

	return router
}

package handler

import (
	"github.com/gofiber/fiber/v2"
)

// Handlers groups everything RegisterRoutes mounts.
type Handlers struct {
	Inventory *InventoryHandler
	Transfer  *TransferHandler
	Dashboard *DashboardHandler
	Health    *HealthHandler
}

// RegisterRoutes mounts the REST API under /api.
func RegisterRoutes(app *fiber.App, h Handlers) {
	api := app.Group("/api")

	if h.Health != nil {
		api.Get("/health", h.Health.Check)
	}

	// Dashboard Routes
	api.Get("/dashboard/stats", h.Dashboard.GetDashboardStats)
	api.Get("/dashboard/stock-movement", h.Dashboard.GetStockMovement)

	// Product Routes; the static paths go before /:id
	products := api.Group("/products")
	products.Get("/", h.Inventory.GetProducts)
	products.Post("/", h.Inventory.CreateProduct)
	products.Get("/export", h.Transfer.ExportProducts)
	products.Post("/import", h.Transfer.ImportProducts)
	products.Get("/:id", h.Inventory.GetProduct)
	products.Put("/:id", h.Inventory.UpdateProduct)
	products.Delete("/:id", h.Inventory.DeleteProduct)
	products.Get("/:id/history", h.Inventory.GetHistory)
}

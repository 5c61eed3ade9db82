package handler

import (
	"strconv"

	"go-inventory-catalog/internal/model"
	"go-inventory-catalog/internal/repository"
	"go-inventory-catalog/internal/service"

	"github.com/gofiber/fiber/v2"
)

type InventoryHandler struct {
	service service.InventoryService
}

func NewInventoryHandler(s service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: s}
}

// updateResponse is the updated record with the message alongside its fields.
type updateResponse struct {
	model.Product
	Message string `json:"message"`
}

func parseID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// GetProducts lists products. Query params: name (substring, any case), category (exact)
func (h *InventoryHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.UserContext(), repository.ProductFilter{
		Name:     c.Query("name"),
		Category: c.Query("category"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

func (h *InventoryHandler) GetProduct(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "Invalid product ID")
	}
	product, err := h.service.GetProduct(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

func (h *InventoryHandler) CreateProduct(c *fiber.Ctx) error {
	var in model.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	product, err := h.service.CreateProduct(c.UserContext(), &in)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":   "Product created successfully",
		"productId": product.ID,
		"data":      product,
	})
}

func (h *InventoryHandler) UpdateProduct(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "Invalid product ID")
	}

	var in model.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	product, err := h.service.UpdateProduct(c.UserContext(), id, &in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(updateResponse{Product: *product, Message: "Product updated successfully."})
}

func (h *InventoryHandler) DeleteProduct(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Product not found."})
	}

	changes, err := h.service.DeleteProduct(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted successfully", "changes": changes})
}

func (h *InventoryHandler) GetHistory(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "Invalid product ID")
	}
	history, err := h.service.GetHistory(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(history)
}

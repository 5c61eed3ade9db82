package handler

import (
	"errors"

	"go-inventory-catalog/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// respondError maps service errors onto HTTP status codes and bodies.
func respondError(c *fiber.Ctx, err error) error {
	var (
		validationErr  *service.ValidationError
		conflictErr    *service.ConflictError
		notFoundErr    *service.NotFoundError
		storageErr     *service.StorageError
		transactionErr *service.TransactionError
	)

	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": validationErr.Fields})
	case errors.As(err, &conflictErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": conflictErr.Message})
	case errors.As(err, &notFoundErr):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": notFoundErr.Message})
	case errors.As(err, &transactionErr):
		logFailure(c, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Import failed, no products were added",
			"error":   transactionErr.Error(),
		})
	case errors.As(err, &storageErr):
		logFailure(c, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Database error",
			"error":   storageErr.Err.Error(),
		})
	default:
		return err
	}
}

func logFailure(c *fiber.Ctx, err error) {
	log.Error().
		Err(err).
		Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Msg("request failed")
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": message})
}

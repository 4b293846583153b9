// Package handlers berisi handler HTTP backend todo. Bentuk respons mengikuti
// json-server: resource dikembalikan apa adanya tanpa envelope.
package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"todo-go/internal/repository"
)

// Handler membawa Store yang dipakai semua route.
type Handler struct {
	store repository.Store
}

func New(store repository.Store) *Handler {
	return &Handler{store: store}
}

// RequestID mengambil id request dari middleware requestid, atau dari header
// jika middleware tidak dipasang.
func RequestID(c *fiber.Ctx) string {
	if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
		return rid
	}
	return c.Get(fiber.HeaderXRequestID)
}

func respondError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"success": false,
		"status":  status,
	})
}

func respondValidation(c *fiber.Ctx, err error) error {
	fields := fiber.Map{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation error",
		"errors":  fields,
		"success": false,
		"status":  fiber.StatusBadRequest,
	})
}

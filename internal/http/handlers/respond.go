package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"stitchline/internal/domain"
)

// Response envelope: {"data": ..., "message": ...} on success,
// {"errors": {"fields": {...}, "form_error": ...}, "message": ...} on failure.

func success(c *fiber.Ctx, status int, data any, message string) error {
	if data == nil {
		data = fiber.Map{}
	}
	return c.Status(status).JSON(fiber.Map{"data": data, "message": message})
}

func failure(c *fiber.Ctx, status int, fields map[string]string, formError, message string) error {
	if fields == nil {
		fields = map[string]string{}
	}
	return c.Status(status).JSON(fiber.Map{
		"errors":  fiber.Map{"fields": fields, "form_error": formError},
		"message": message,
	})
}

// fail maps service errors onto the envelope: validation errors become 400s
// with their field detail, not-found 404, everything else a generic 500.
func fail(c *fiber.Ctx, err error, message string) error {
	if ve, ok := domain.AsValidation(err); ok {
		return failure(c, fiber.StatusBadRequest, ve.Fields, ve.FormError, message)
	}
	if errors.Is(err, domain.ErrNotFound) {
		return failure(c, fiber.StatusNotFound, nil, "not found", message)
	}
	return failure(c, fiber.StatusInternalServerError, nil, "", message)
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "stitchline/internal/log"
	"stitchline/internal/services"
	"stitchline/internal/validate"
)

type ConstructorHandler struct {
	Constructor *services.ConstructorService
}

type submitRequest struct {
	GarmentID string `json:"garment_id"`
}

func (h *ConstructorHandler) Submit(c *fiber.Ctx) error {
	u := currentUser(c)
	var req submitRequest
	if err := c.BodyParser(&req); err != nil {
		return failure(c, fiber.StatusBadRequest, nil, "invalid request body", "")
	}
	garmentID, ok := validate.ID(req.GarmentID)
	if !ok {
		return failure(c, fiber.StatusBadRequest, map[string]string{"garment_id": "invalid garment id"}, "", "validation failed")
	}
	id, err := h.Constructor.Submit(u.ID, garmentID)
	if err != nil {
		return fail(c, err, "could not submit design")
	}
	applog.Audit(c, "constructor.submit", map[string]any{"user_id": u.ID, "id": id})
	return success(c, fiber.StatusCreated, fiber.Map{"id": id}, "design submitted for moderation")
}

func (h *ConstructorHandler) Mine(c *fiber.Ctx) error {
	u := currentUser(c)
	rows, err := h.Constructor.Mine(u.ID)
	if err != nil {
		applog.Error(c, "constructor.list.fail", err, map[string]any{"user_id": u.ID})
		return fail(c, err, "could not load submissions")
	}
	return success(c, fiber.StatusOK, rows, "submissions loaded")
}

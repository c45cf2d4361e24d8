package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"stitchline/internal/domain"
	applog "stitchline/internal/log"
	"stitchline/internal/services"
)

type WebhookHandler struct {
	Webhooks *services.WebhookService
}

type webhookNotification struct {
	Type   string `json:"type"`
	Event  string `json:"event"`
	Object struct {
		ID string `json:"id"`
	} `json:"object"`
}

// HandlePayment receives provider notifications. Delivery is at-least-once;
// retries of rejected payloads are the sender's concern.
func (h *WebhookHandler) HandlePayment(c *fiber.Ctx) error {
	var n webhookNotification
	if err := c.BodyParser(&n); err != nil {
		applog.Security(c, "webhook.malformed", map[string]any{"error": err.Error()})
		return failure(c, fiber.StatusBadRequest, nil, "malformed payload", "")
	}
	if n.Type != "notification" {
		return failure(c, fiber.StatusBadRequest, nil, "invalid notification type", "")
	}
	if n.Object.ID == "" {
		return failure(c, fiber.StatusBadRequest, nil, "missing payment id", "")
	}

	applied, err := h.Webhooks.Apply(n.Event, n.Object.ID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownEvent):
			return failure(c, fiber.StatusBadRequest, nil, "unknown event type", "")
		case errors.Is(err, domain.ErrNotFound):
			return failure(c, fiber.StatusNotFound, nil, "order not found", "")
		default:
			applog.Error(c, "webhook.apply.fail", err, map[string]any{"event": n.Event, "payment_id": n.Object.ID})
			return failure(c, fiber.StatusInternalServerError, nil, "", "webhook processing failed")
		}
	}

	applog.Info(c, "webhook.apply", map[string]any{
		"event": n.Event, "payment_id": n.Object.ID, "applied": applied,
	})
	return success(c, fiber.StatusOK, fiber.Map{"applied": applied}, "webhook processed")
}

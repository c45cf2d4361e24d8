package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"stitchline/internal/domain"
	applog "stitchline/internal/log"
	"stitchline/internal/payments"
	"stitchline/internal/services"
	"stitchline/internal/tasks"
	"stitchline/internal/validate"
)

type OrderHandler struct {
	Order *services.OrderService
	Queue *tasks.Queue
}

type placeOrderRequest struct {
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// Place validates the request synchronously, then hands the transactional
// work to the checkout queue. The per-user lock inside Enqueue is what stops
// a rapid double-submit from racing the stock check.
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	u := currentUser(c)

	var req placeOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return failure(c, fiber.StatusBadRequest, nil, "invalid request body", "")
	}
	fields := map[string]string{}
	address, ok := validate.Address(req.Address)
	if !ok {
		fields["address"] = "invalid address"
	}
	phone, ok := validate.Phone(req.Phone)
	if !ok {
		fields["phone"] = "invalid phone number"
	}
	if len(fields) > 0 {
		applog.Security(c, "validation.fail", map[string]any{"fields": fields})
		return failure(c, fiber.StatusBadRequest, fields, "", "validation failed")
	}

	in := services.PlaceInput{UserID: u.ID, Address: address, Phone: phone}
	taskID, err := h.Queue.Enqueue(u.ID, func() (any, error) {
		orderID, err := h.Order.Place(in)
		if err != nil {
			return nil, err
		}
		return fiber.Map{"order_id": orderID}, nil
	})
	if errors.Is(err, tasks.ErrAlreadyQueued) {
		applog.Security(c, "order.place.duplicate", map[string]any{"user_id": u.ID})
		return failure(c, fiber.StatusTooManyRequests, nil, "checkout already in progress", "")
	}
	if errors.Is(err, tasks.ErrSaturated) {
		applog.Error(c, "order.place.saturated", err, map[string]any{"user_id": u.ID})
		return failure(c, fiber.StatusServiceUnavailable, nil, "checkout is busy, try again shortly", "")
	}
	if err != nil {
		applog.Error(c, "order.place.enqueue", err, map[string]any{"user_id": u.ID})
		return fail(c, err, "could not start checkout")
	}

	applog.Audit(c, "order.place.enqueued", map[string]any{"user_id": u.ID, "task_id": taskID})
	return success(c, fiber.StatusCreated, fiber.Map{"task_id": taskID}, "checkout started")
}

// TaskStatus is the polling endpoint for async checkout.
func (h *OrderHandler) TaskStatus(c *fiber.Ctx) error {
	taskID, ok := validate.ID(c.Params("id"))
	if !ok {
		return failure(c, fiber.StatusNotFound, nil, "task not found", "")
	}
	res, ok := h.Queue.Get(taskID)
	if !ok {
		return failure(c, fiber.StatusNotFound, nil, "task not found", "")
	}

	switch res.State {
	case tasks.StatePending:
		return success(c, fiber.StatusOK, fiber.Map{"state": res.State}, "task not finished yet")
	case tasks.StateFailure:
		if ve, isValidation := domain.AsValidation(res.Err); isValidation {
			return failure(c, fiber.StatusBadRequest, ve.Fields, ve.FormError, "validation failed")
		}
		return failure(c, fiber.StatusNotAcceptable, nil, "task failed", "")
	default:
		return success(c, fiber.StatusCreated, res.Value, "order created")
	}
}

func (h *OrderHandler) History(c *fiber.Ctx) error {
	u := currentUser(c)
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	orders, err := h.Order.History(u.ID, limit, offset)
	if err != nil {
		applog.Error(c, "orders.history.fail", err, map[string]any{"user_id": u.ID})
		return fail(c, err, "could not load orders")
	}
	return success(c, fiber.StatusOK, orders, "orders loaded")
}

func (h *OrderHandler) Detail(c *fiber.Ctx) error {
	u := currentUser(c)
	orderID, ok := validate.ID(c.Params("id"))
	if !ok {
		return failure(c, fiber.StatusNotFound, nil, "order not found", "")
	}
	o, items, err := h.Order.Detail(u.ID, orderID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			applog.Error(c, "orders.detail.fail", err, map[string]any{"order_id": orderID})
		}
		return fail(c, err, "could not load order")
	}
	return success(c, fiber.StatusOK, fiber.Map{
		"order":       o,
		"items":       items,
		"status_name": domain.StatusName(o.Status),
	}, "order loaded")
}

// PaymentState proxies the provider's live view of the order's payment
// intent. The webhook remains the source of truth for order state; this is
// read-only.
func (h *OrderHandler) PaymentState(c *fiber.Ctx) error {
	u := currentUser(c)
	orderID, ok := validate.ID(c.Params("id"))
	if !ok {
		return failure(c, fiber.StatusNotFound, nil, "order not found", "")
	}
	p, err := h.Order.PaymentState(u.ID, orderID)
	if err != nil {
		if errors.Is(err, payments.ErrUnknownPayment) {
			return failure(c, fiber.StatusNotFound, nil, "payment not found", "")
		}
		return fail(c, err, "could not load payment state")
	}
	return success(c, fiber.StatusOK, fiber.Map{
		"payment_id":       p.ID,
		"status":           p.Status,
		"confirmation_url": p.ConfirmationURL,
	}, "payment state loaded")
}

// Cancel is exposed as DELETE but is a status transition: orders are never
// physically removed.
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	u := currentUser(c)
	orderID, ok := validate.ID(c.Params("id"))
	if !ok {
		return failure(c, fiber.StatusNotFound, nil, "order not found", "")
	}
	if err := h.Order.Cancel(u.ID, orderID); err != nil {
		if errors.Is(err, domain.ErrNotCancelable) {
			return failure(c, fiber.StatusBadRequest, nil, err.Error(), "")
		}
		return fail(c, err, "could not cancel order")
	}
	applog.Audit(c, "order.cancel", map[string]any{"user_id": u.ID, "order_id": orderID})
	return success(c, fiber.StatusOK, nil, "order canceled")
}

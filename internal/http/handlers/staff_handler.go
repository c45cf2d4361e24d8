package handlers

import (
	"github.com/gofiber/fiber/v2"

	"stitchline/internal/domain"
	applog "stitchline/internal/log"
	"stitchline/internal/repos"
	"stitchline/internal/services"
	"stitchline/internal/validate"
)

// StaffHandler covers moderation surfaces: order fulfillment transitions,
// garment restock, and the constructor-product queue.
type StaffHandler struct {
	Orders      *repos.OrderRepo
	Garments    *repos.GarmentRepo
	Constructor *services.ConstructorService
}

func (h *StaffHandler) OrdersPage(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	orders, err := h.Orders.ListAll(limit, offset)
	if err != nil {
		applog.Error(c, "staff.orders.list.fail", err, nil)
		return fail(c, err, "could not load orders")
	}
	return success(c, fiber.StatusOK, orders, "orders loaded")
}

type updateStatusRequest struct {
	Status       string `json:"status"`
	TrackingCode string `json:"tracking_code"`
}

// UpdateOrderStatus moves an order through the fulfillment lifecycle.
// Waiting-payment and canceled are not reachable from here: payment state is
// owned by the webhook and the cancel endpoint.
func (h *StaffHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	orderID, ok := validate.ID(c.Params("id"))
	if !ok {
		return failure(c, fiber.StatusNotFound, nil, "order not found", "")
	}
	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return failure(c, fiber.StatusBadRequest, nil, "invalid request body", "")
	}
	if !domain.ValidStatus(req.Status) ||
		req.Status == domain.StatusWaitingPayment || req.Status == domain.StatusCanceled {
		return failure(c, fiber.StatusBadRequest, map[string]string{"status": "invalid status"}, "", "validation failed")
	}

	o, _, err := h.Orders.Get(orderID)
	if err != nil {
		return failure(c, fiber.StatusNotFound, nil, "order not found", "")
	}
	if o.Status == domain.StatusCanceled {
		return failure(c, fiber.StatusBadRequest, nil, "canceled orders cannot be updated", "")
	}
	if o.Status == domain.StatusWaitingPayment {
		return failure(c, fiber.StatusBadRequest, nil, "order has not been paid yet", "")
	}

	if err := h.Orders.UpdateStatus(orderID, req.Status, req.TrackingCode); err != nil {
		applog.Error(c, "staff.orders.update.fail", err, map[string]any{"order_id": orderID})
		return fail(c, err, "could not update status")
	}
	applog.Audit(c, "staff.orders.update", map[string]any{"order_id": orderID, "status": req.Status})
	return success(c, fiber.StatusOK, fiber.Map{"status": req.Status}, "status updated")
}

type restockRequest struct {
	GarmentID string `json:"garment_id"`
	Count     int    `json:"count"`
}

func (h *StaffHandler) Restock(c *fiber.Ctx) error {
	var req restockRequest
	if err := c.BodyParser(&req); err != nil {
		return failure(c, fiber.StatusBadRequest, nil, "invalid request body", "")
	}
	garmentID, ok := validate.ID(req.GarmentID)
	if !ok || req.Count < 0 {
		return failure(c, fiber.StatusBadRequest, nil, "invalid input", "")
	}
	if err := h.Garments.SetCount(garmentID, req.Count); err != nil {
		applog.Error(c, "staff.restock.fail", err, map[string]any{"garment_id": garmentID})
		return failure(c, fiber.StatusBadRequest, nil, "could not save stock", "")
	}
	applog.Audit(c, "staff.restock", map[string]any{"garment_id": garmentID, "count": req.Count})
	return success(c, fiber.StatusOK, nil, "stock updated")
}

func (h *StaffHandler) ModerationQueue(c *fiber.Ctx) error {
	rows, err := h.Constructor.Pending()
	if err != nil {
		applog.Error(c, "staff.moderation.list.fail", err, nil)
		return fail(c, err, "could not load moderation queue")
	}
	return success(c, fiber.StatusOK, rows, "moderation queue loaded")
}

type moderateRequest struct {
	Accept bool `json:"accept"`
}

func (h *StaffHandler) Moderate(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return failure(c, fiber.StatusNotFound, nil, "submission not found", "")
	}
	var req moderateRequest
	if err := c.BodyParser(&req); err != nil {
		return failure(c, fiber.StatusBadRequest, nil, "invalid request body", "")
	}
	if err := h.Constructor.Moderate(id, req.Accept); err != nil {
		return failure(c, fiber.StatusBadRequest, nil, err.Error(), "")
	}
	applog.Audit(c, "staff.moderate", map[string]any{"id": id, "accept": req.Accept})
	return success(c, fiber.StatusOK, nil, "moderation saved")
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "stitchline/internal/log"
	"stitchline/internal/services"
	"stitchline/internal/validate"
)

type CartHandler struct {
	Cart *services.CartService
}

type addToCartRequest struct {
	ProductID string `json:"product_id"`
	GarmentID string `json:"garment_id"`
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	u := currentUser(c)

	var req addToCartRequest
	if err := c.BodyParser(&req); err != nil {
		return failure(c, fiber.StatusBadRequest, nil, "invalid request body", "")
	}
	fields := map[string]string{}
	productID, ok := validate.ID(req.ProductID)
	if !ok {
		fields["product_id"] = "invalid product id"
	}
	garmentID, ok := validate.ID(req.GarmentID)
	if !ok {
		fields["garment_id"] = "invalid garment id"
	}
	if len(fields) > 0 {
		return failure(c, fiber.StatusBadRequest, fields, "", "validation failed")
	}

	res, err := h.Cart.Add(u.ID, productID, garmentID)
	if err != nil {
		applog.Info(c, "cart.add.fail", map[string]any{"user_id": u.ID, "error": err.Error()})
		return fail(c, err, "could not add to cart")
	}
	applog.Audit(c, "cart.add", map[string]any{"user_id": u.ID, "product_id": productID, "garment_id": garmentID})
	return success(c, fiber.StatusOK, res, "added to cart")
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	u := currentUser(c)
	cv, err := h.Cart.View(u.ID)
	if err != nil {
		applog.Error(c, "cart.view.fail", err, map[string]any{"user_id": u.ID})
		return fail(c, err, "could not load cart")
	}
	return success(c, fiber.StatusOK, cv, "cart loaded")
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) UpdateQuantity(c *fiber.Ctx) error {
	u := currentUser(c)
	itemID, ok := validate.ID(c.Params("id"))
	if !ok {
		return failure(c, fiber.StatusBadRequest, map[string]string{"id": "invalid id"}, "", "validation failed")
	}

	var req updateQuantityRequest
	if err := c.BodyParser(&req); err != nil || req.Quantity < 1 {
		return failure(c, fiber.StatusBadRequest, map[string]string{"quantity": "invalid quantity"}, "", "validation failed")
	}
	qty := validate.Quantity(req.Quantity)

	if err := h.Cart.UpdateQuantity(u.ID, itemID, qty); err != nil {
		return fail(c, err, "could not update quantity")
	}
	return success(c, fiber.StatusOK, fiber.Map{"quantity": qty}, "quantity updated")
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	u := currentUser(c)
	itemID, ok := validate.ID(c.Params("id"))
	if !ok {
		return failure(c, fiber.StatusBadRequest, map[string]string{"id": "invalid id"}, "", "validation failed")
	}
	if err := h.Cart.Remove(u.ID, itemID); err != nil {
		return fail(c, err, "could not remove item")
	}
	return success(c, fiber.StatusOK, nil, "item removed")
}

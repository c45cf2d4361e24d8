package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"stitchline/internal/domain"
	applog "stitchline/internal/log"
	"stitchline/internal/services"
	"stitchline/internal/validate"
)

type CatalogHandler struct {
	Catalog *services.CatalogService
	Avail   *services.AvailabilityService
}

func (h *CatalogHandler) Categories(c *fiber.Ctx) error {
	out, err := h.Catalog.Categories()
	if err != nil {
		applog.Error(c, "catalog.categories.fail", err, nil)
		return fail(c, err, "could not load categories")
	}
	return success(c, fiber.StatusOK, out, "categories loaded")
}

func (h *CatalogHandler) Colors(c *fiber.Ctx) error {
	out, err := h.Catalog.Colors()
	if err != nil {
		applog.Error(c, "catalog.colors.fail", err, nil)
		return fail(c, err, "could not load colors")
	}
	return success(c, fiber.StatusOK, out, "colors loaded")
}

func (h *CatalogHandler) Garments(c *fiber.Ctx) error {
	size := strings.ToUpper(strings.TrimSpace(c.Query("size")))
	if size != "" && !domain.ValidSize(size) {
		return failure(c, fiber.StatusBadRequest, map[string]string{"size": "unknown size"}, "", "validation failed")
	}
	out, err := h.Catalog.Garments(c.Query("category"), c.Query("color"), size)
	if err != nil {
		applog.Error(c, "catalog.garments.fail", err, nil)
		return fail(c, err, "could not load garments")
	}
	return success(c, fiber.StatusOK, out, "garments loaded")
}

func (h *CatalogHandler) Products(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	out, err := h.Catalog.Products(limit, offset)
	if err != nil {
		applog.Error(c, "catalog.products.fail", err, nil)
		return fail(c, err, "could not load products")
	}
	return success(c, fiber.StatusOK, out, "products loaded")
}

func (h *CatalogHandler) Product(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return failure(c, fiber.StatusBadRequest, map[string]string{"id": "invalid id"}, "", "validation failed")
	}
	p, err := h.Catalog.Product(id)
	if err != nil {
		return fail(c, err, "could not load product")
	}
	return success(c, fiber.StatusOK, p, "product loaded")
}

// Availability reports garment stock as a coarse status for product pages.
func (h *CatalogHandler) Availability(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Query("garmentId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing garmentId"})
	}
	avail, err := h.Avail.Check(id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(avail)
}

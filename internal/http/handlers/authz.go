package handlers

import (
	"stitchline/internal/domain"
	applog "stitchline/internal/log"
	"stitchline/internal/services"

	"github.com/gofiber/fiber/v2"
)

// RequireUser enforces a logged-in user and stashes it in Locals.
func RequireUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			return failure(c, fiber.StatusUnauthorized, nil, "authentication required", "")
		}
		u, err := auth.CurrentUser(sid)
		if err != nil || u == nil {
			return failure(c, fiber.StatusUnauthorized, nil, "authentication required", "")
		}
		c.Locals("user", u)
		return c.Next()
	}
}

// RequireStaff admits STAFF and ADMIN roles.
func RequireStaff(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			return failure(c, fiber.StatusUnauthorized, nil, "authentication required", "")
		}
		u, err := auth.CurrentUser(sid)
		if err != nil || u == nil || (u.Role != "STAFF" && u.Role != "ADMIN") {
			applog.Security(c, "access.denied.staff", map[string]any{"sid": sid})
			return failure(c, fiber.StatusForbidden, nil, "access denied", "")
		}
		c.Locals("user", u)
		return c.Next()
	}
}

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	applog "stitchline/internal/log"
	"stitchline/internal/services"
	"stitchline/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false, // enable true behind TLS
		})
	}
	return sid
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return failure(c, fiber.StatusBadRequest, nil, "invalid request body", "")
	}
	email, ok := validate.Email(req.Email)
	if !ok || req.Password == "" {
		return failure(c, fiber.StatusBadRequest, nil, "invalid email or password", "")
	}

	sid := ensureSID(c)
	u, err := h.Auth.Login(sid, email, req.Password)
	if err != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"email": email})
		return failure(c, fiber.StatusUnauthorized, nil, "invalid email or password", "")
	}
	applog.Audit(c, "auth.login", map[string]any{"user_id": u.ID})
	return success(c, fiber.StatusOK, fiber.Map{
		"id": u.ID, "email": u.Email, "name": u.Name, "role": u.Role,
	}, "logged in")
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := c.Cookies("sid")
	if sid != "" {
		_ = h.Auth.Logout(sid)
	}
	return success(c, fiber.StatusOK, nil, "logged out")
}

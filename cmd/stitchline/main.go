package main

import (
	"log"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"stitchline/internal/config"
	"stitchline/internal/http/handlers"
	applog "stitchline/internal/log"
	"stitchline/internal/metrics"
	"stitchline/internal/payments"
	"stitchline/internal/repos"
	"stitchline/internal/services"
	"stitchline/internal/tasks"
)

func main() {
	cfg := config.Load()
	applog.Init(cfg.LogFile)

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	// Payment provider: real client when configured, stub otherwise
	var pay payments.Provider
	if cfg.PaymentBaseURL != "" {
		pay = payments.NewClient(cfg.PaymentBaseURL, cfg.PaymentShopID, cfg.PaymentSecret)
	} else {
		log.Println("[payments] no PAYMENT_BASE_URL, using in-memory stub")
		pay = payments.NewStub()
	}

	met := metrics.New()
	queue := tasks.New(cfg.CheckoutWorkers, met)
	defer queue.Close()

	// Auth wiring
	userRepo := repos.NewUserRepo(db)
	authSvc := &services.AuthService{Users: userRepo}
	authH := &handlers.AuthHandler{Auth: authSvc}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			// Avoid leaking internals
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"errors":  fiber.Map{"fields": fiber.Map{}, "form_error": ""},
				"message": "Something went wrong. Please try again.",
			})
		},
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
	}))

	// ---------- Routes ----------
	deps := handlers.NewDeps(db, cfg, pay, met, queue)
	api := app.Group("/api/v1")

	// Catalog (public)
	api.Get("/categories", deps.CatalogHandler.Categories)
	api.Get("/colors", deps.CatalogHandler.Colors)
	api.Get("/garments", deps.CatalogHandler.Garments)
	api.Get("/products", deps.CatalogHandler.Products)
	api.Get("/products/:id", deps.CatalogHandler.Product)
	availLimiter := limiter.New(limiter.Config{
		Max:        15,
		Expiration: 30 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|avail"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.availability.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	})
	api.Get("/availability", availLimiter, deps.CatalogHandler.Availability)

	// Auth (login throttled)
	api.Post("/auth/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"message": "too many attempts, try again later"})
		},
	}), authH.Login)
	api.Post("/auth/logout", authH.Logout)

	// Cart & Orders (authenticated)
	user := api.Group("", handlers.RequireUser(authSvc))
	user.Get("/cart", deps.CartHandler.View)
	user.Post("/cart/items", deps.CartHandler.Add)
	user.Patch("/cart/items/:id", deps.CartHandler.UpdateQuantity)
	user.Delete("/cart/items/:id", deps.CartHandler.Remove)

	user.Post("/orders", deps.OrderHandler.Place)
	user.Get("/orders", deps.OrderHandler.History)
	user.Get("/orders/:id", deps.OrderHandler.Detail)
	user.Get("/orders/:id/payment", deps.OrderHandler.PaymentState)
	user.Delete("/orders/:id", deps.OrderHandler.Cancel)
	user.Get("/tasks/:id", deps.OrderHandler.TaskStatus)

	// Constructor submissions
	user.Post("/constructor", deps.ConstructorHandler.Submit)
	user.Get("/constructor", deps.ConstructorHandler.Mine)

	// Payment provider webhook (no session; provider is the caller)
	api.Post("/payments/webhook", deps.WebhookHandler.HandlePayment)

	// Staff moderation
	staff := api.Group("/staff", handlers.RequireStaff(authSvc))
	staff.Get("/orders", deps.StaffHandler.OrdersPage)
	staff.Patch("/orders/:id", deps.StaffHandler.UpdateOrderStatus)
	staff.Post("/garments/restock", deps.StaffHandler.Restock)
	staff.Get("/moderation", deps.StaffHandler.ModerationQueue)
	staff.Patch("/moderation/:id", deps.StaffHandler.Moderate)

	// Health & metrics & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}

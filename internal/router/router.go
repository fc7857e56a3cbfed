package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-notify/internal/config"
	"github.com/noah-isme/gema-notify/internal/handler"
	"github.com/noah-isme/gema-notify/internal/middleware"
	"github.com/noah-isme/gema-notify/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	EventHandler    *handler.EventHandler
	ReminderHandler *handler.ReminderHandler
	InboxHandler    *handler.InboxHandler
	JWTMiddleware   fiber.Handler
	DB              *gorm.DB
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.DB))

	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Lifecycle events from the course system
	if deps.EventHandler != nil {
		events := app.Group("/api/v1/events",
			jwtMiddleware,
			middleware.RequireRole("service", "admin"),
			middleware.RateLimit("events", 60, time.Minute),
		)
		deps.EventHandler.Register(events)
	}

	// Ops visibility and manual sweep
	if deps.ReminderHandler != nil {
		ops := app.Group("/api/ops",
			jwtMiddleware,
			middleware.RequireRole("ops", "admin"),
		)
		deps.ReminderHandler.Register(ops)
	}

	// Recipient-facing inbox
	if deps.InboxHandler != nil {
		inbox := app.Group("/api/v1/inbox", jwtMiddleware)
		deps.InboxHandler.Register(inbox)
	}
}

package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lectapp/lector-api/internal/config"
	"github.com/lectapp/lector-api/internal/handler"
	"github.com/lectapp/lector-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	PassageHandler    *handler.PassageHandler
	RecordingHandler  *handler.RecordingHandler
	AssessmentHandler *handler.AssessmentHandler
	DashboardHandler  *handler.DashboardHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.PassageHandler != nil {
		passages := app.Group("/api/v2/passages", jwtMiddleware)
		deps.PassageHandler.Register(passages)
	}

	if deps.RecordingHandler != nil {
		recordings := app.Group("/api/v2/recordings", jwtMiddleware)
		deps.RecordingHandler.Register(recordings)
	}

	if deps.AssessmentHandler != nil {
		assessments := app.Group("/api/v2/assessments", jwtMiddleware)
		deps.AssessmentHandler.Register(assessments)
	}

	if deps.DashboardHandler != nil {
		dashboard := app.Group("/api/v2/dashboard", jwtMiddleware)
		deps.DashboardHandler.Register(dashboard)
	}
}

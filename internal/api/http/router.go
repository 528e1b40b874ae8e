package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/collab-access/internal/api/http/handlers"
	"github.com/spec-kit/collab-access/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Documents      *handlers.DocumentsHandler
	Collaborators  *handlers.CollaboratorsHandler
	Session        *handlers.SessionHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	protected := app.Group("", cfg.AuthMiddleware.Handle)

	docs := protected.Group("/documents")
	docs.Get("", cfg.Documents.List)
	docs.Post("", cfg.Documents.Create)
	docs.Post("/lookup", cfg.Documents.Lookup)
	docs.Get("/:id", cfg.Documents.Get)
	docs.Patch("/:id", cfg.Documents.Rename)
	docs.Delete("/:id", cfg.Documents.Delete)

	collabs := protected.Group("/collaborators")
	collabs.Get("", cfg.Collaborators.List)
	collabs.Post("/resolve", cfg.Collaborators.Resolve)
	collabs.Get("/suggest", cfg.Collaborators.Suggest)
	collabs.Post("/refresh", cfg.Collaborators.Refresh)

	protected.Post("/session", cfg.Session.Create)
}

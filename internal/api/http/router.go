package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/user-service/internal/api/http/handlers"
	"github.com/spec-kit/user-service/internal/auth"
	"github.com/spec-kit/user-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	if cfg.Health != nil {
		app.Get("/health/live", cfg.Health.Live)
		app.Get("/health/ready", cfg.Health.Ready)
	}
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry, promhttp.HandlerOpts{})))
	}

	users := app.Group("/users")
	users.Post("/", cfg.Users.Create)
	users.Post("/login", cfg.Users.Login)

	authn := cfg.AuthMiddleware.Handle
	users.Get("/", authn, cfg.Users.List)
	users.Patch("/active/:uuid", authn, cfg.Users.Activate)
	users.Patch("/deactive/:uuid", authn, cfg.Users.Deactivate)
	users.Get("/:uuid", authn, cfg.Users.Get)
	users.Put("/:uuid", authn, cfg.Users.Update)
	users.Delete("/:uuid", authn, cfg.Users.Delete)
}

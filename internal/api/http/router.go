package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/campuscare/complaint-service/internal/api/http/handlers"
	"github.com/campuscare/complaint-service/internal/auth"
	"github.com/campuscare/complaint-service/internal/config"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Complaints     *handlers.ComplaintsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
	RedisClient    *redis.Client
	RateLimit      config.RateLimitConfig
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	complaints := api.Group("/complaints", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	complaints.Post("/", SubmissionRateLimiter(cfg.RedisClient, cfg.RateLimit), cfg.Complaints.Create)
	complaints.Get("/", cfg.Complaints.List)
	complaints.Get("/:id", cfg.Complaints.Get)
	complaints.Put("/:id", cfg.Complaints.Update)

	admin := api.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Get("/complaints", cfg.Admin.ListComplaints)
	admin.Put("/complaints/:id/status", cfg.Admin.UpdateStatus)
	admin.Post("/complaints/:id/notes", cfg.Admin.AddNote)
	admin.Get("/analytics", cfg.Admin.Analytics)
	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Put("/users/:id/role", cfg.Admin.UpdateUserRole)
}

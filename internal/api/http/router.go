package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/guardline/request-service/internal/api/http/handlers"
	"github.com/guardline/request-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health          *handlers.HealthHandler
	Users           *handlers.UsersHandler
	Tickets         *handlers.RequestsHandler
	ServiceRequests *handlers.RequestsHandler
	AuthMiddleware  *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/admin/login", cfg.Users.AdminLogin)

	protectedAuth := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	protectedAuth.Post("/password/change", cfg.Users.ChangePassword)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	// registered before the parameterized routes so ":id" cannot shadow them
	tickets.Post("/mark-viewed", auth.RequireAdmin(), cfg.Tickets.MarkViewed)
	tickets.Get("/unviewed-count", auth.RequireAdmin(), cfg.Tickets.UnviewedCount)
	registerRequestRoutes(tickets, cfg.Tickets)

	serviceRequests := app.Group("/service-requests", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	registerRequestRoutes(serviceRequests, cfg.ServiceRequests)
}

func registerRequestRoutes(group fiber.Router, handler *handlers.RequestsHandler) {
	group.Post("/", auth.RequireCustomer(), handler.Create)
	group.Get("/", handler.List)
	group.Get("/:id", handler.Get)
	group.Patch("/:id/status", auth.RequireAdmin(), handler.UpdateStatus)
	group.Post("/:id/comments", handler.AddComment)
	group.Post("/:id/timeline/:index/seen", handler.MarkSeen)
	group.Delete("/:id", handler.Delete)
}

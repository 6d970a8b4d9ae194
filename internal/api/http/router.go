package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/service-portal/internal/api/http/handlers"
	"github.com/spec-kit/service-portal/internal/auth"
	"github.com/spec-kit/service-portal/internal/observability"
	"github.com/spec-kit/service-portal/internal/session"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Customer       *handlers.CustomerHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
	Sessions       *session.Manager
	LoginThrottle  *auth.LoginThrottle
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes. Health checks and metrics are registered ahead of the
// session middleware so they never touch the session store.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	if cfg.Health != nil {
		app.Get("/health/live", cfg.Health.Live)
		app.Get("/health/ready", cfg.Health.Ready)
	}
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics.Handler())
	}

	web := app.Group("", cfg.Sessions.Middleware())
	requireLogin := cfg.AuthMiddleware.RequireLogin()
	throttle := cfg.LoginThrottle.Handler()

	web.Get("/", cfg.Auth.Index)
	web.Get("/register", cfg.Auth.ShowRegister)
	web.Post("/register", cfg.Auth.Register)
	web.Get(auth.LoginPath, cfg.Auth.ShowLogin)
	web.Post(auth.LoginPath, throttle, cfg.Auth.Login)
	web.Get(auth.AdminLoginPath, cfg.Auth.ShowAdminLogin)
	web.Post(auth.AdminLoginPath, throttle, cfg.Auth.AdminLogin)
	web.Get("/logout", requireLogin, cfg.Auth.Logout)

	customer := web.Group("/customer", requireLogin, auth.RequireCustomer())
	customer.Get("/dashboard", cfg.Customer.Dashboard)
	customer.Post("/request/new", cfg.Customer.NewRequest)
	customer.Post("/profile", cfg.Customer.UpdateProfile)

	admin := web.Group("/admin", requireLogin, auth.RequireAdmin())
	admin.Get("/dashboard", cfg.Admin.Dashboard)
	admin.Post("/requests/:id/status", cfg.Admin.UpdateStatus)
	admin.Post("/requests/:id/delete", cfg.Admin.DeleteRequest)
	admin.Post("/customers/:id/delete", cfg.Admin.DeleteCustomer)
}

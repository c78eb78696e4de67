package router // package router wires handlers to HTTP routes

import (
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/kagisomabe/luma-events/internal/config"
	"github.com/kagisomabe/luma-events/internal/handler"
	"github.com/kagisomabe/luma-events/internal/middleware"
	"github.com/kagisomabe/luma-events/internal/model"
)

// Handlers bundles every handler the router mounts.
type Handlers struct {
	Auth          *handler.AuthHandler
	Events        *handler.EventHandler
	Registrations *handler.RegistrationHandler
	Admin         *handler.AdminHandler
	Live          *handler.LiveHandler
}

// Register mounts all routes. The layout is three tiers: public
// discovery endpoints, authenticated user endpoints, and the
// ADMIN-only backoffice under /v1/admin.
func Register(e *echo.Echo, cfg config.Config, rdb *redis.Client, h Handlers) {
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(middleware.RateLimit(rdb, cfg.RateLimitPerMin, time.Minute))

	e.GET("/healthz", handler.Health)

	// Session lifecycle, no token required.
	auth := e.Group("/v1/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/logout", h.Auth.Logout)

	// Public discovery surface for guests.
	e.GET("/v1/events", h.Events.List)
	e.GET("/v1/events/featured", h.Events.Featured)
	e.GET("/v1/events/:slug", h.Events.Get)
	e.GET("/v1/events/:id/weather", h.Events.Weather)
	e.GET("/v1/events/:id/load-shedding", h.Events.LoadShedding)
	e.GET("/v1/weather/:city/forecast", h.Events.Forecast)
	e.GET("/v1/load-shedding/areas/:area", h.Events.AreaInfo)

	// Endpoints that need an authenticated user of any role.
	user := e.Group("/v1")
	user.Use(middleware.JWTAuth(cfg.JWTSecret))
	user.Use(middleware.RequireRole(model.RoleUser, model.RoleAdmin))
	user.POST("/auth/logout-all", h.Auth.LogoutAll)
	user.GET("/me", h.Auth.Me)
	user.PUT("/me", h.Auth.UpdateMe)
	user.POST("/events/:id/register", h.Registrations.Register)
	user.GET("/registrations", h.Registrations.Mine)
	user.GET("/registrations/:id", h.Registrations.Get)
	user.GET("/live/:collection", h.Live.Stream)

	// Backoffice, ADMIN only.
	admin := e.Group("/v1/admin")
	admin.Use(middleware.JWTAuth(cfg.JWTSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.GET("/events", h.Admin.ListEvents)
	admin.POST("/events", h.Admin.CreateEvent)
	admin.PUT("/events/:id", h.Admin.UpdateEvent)
	admin.PUT("/events/:id/published", h.Admin.SetPublished)
	admin.PUT("/events/:id/featured", h.Admin.SetFeatured)
	admin.GET("/registrations", h.Admin.ListRegistrations)
	admin.POST("/registrations/:id/check-in", h.Admin.CheckIn)
	admin.GET("/payments", h.Admin.ListPayments)
	admin.GET("/users", h.Admin.ListUsers)
	admin.GET("/analytics", h.Admin.Analytics)
}

// Package router registers the HTTP routes and wires middleware to them.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/lensbook/booking-api/internal/config"
	"github.com/lensbook/booking-api/internal/handler"
	"github.com/lensbook/booking-api/internal/middleware"
	"github.com/lensbook/booking-api/internal/repository"
)

// Deps carries everything route registration needs.
type Deps struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Auth     *handler.AuthHandler
	UserH    *handler.UserHandler
	Bookings *handler.BookingHandler
	Redis    *redis.Client // nil disables rate limiting and caching
}

// Register wires all routes onto e.
//
// Route map:
//
//	GET  /healthz                  liveness
//	POST /api/auth/register        create account (rate limited)
//	POST /api/auth/login           obtain token (rate limited)
//	POST /api/auth/logout          stateless acknowledgement
//	GET  /api/users                public sanitized listing (cached)
//	GET  /api/users/me             caller's profile
//	POST /api/users/password       change password
//	PUT  /api/users/:id            self-scoped profile update
//	DEL  /api/users/:id            self-scoped account deletion (cascades)
//	*    /api/bookings[...]        ownership-scoped booking CRUD
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	authmw := middleware.JWTAuth(d.Cfg.JWTSecret, d.Users)
	ratelimit := middleware.NewTokenBucket(d.Cfg.RateLimit, d.Redis)
	cache := middleware.NewRedisCache(d.Cfg.Cache, d.Redis)

	auth := e.Group("/api/auth", ratelimit)
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/logout", d.Auth.Logout)

	users := e.Group("/api/users")
	users.GET("", d.UserH.List, cache)
	users.GET("/me", d.Auth.Me, authmw)
	users.POST("/password", d.Auth.ChangePassword, authmw)
	users.PUT("/:id", d.UserH.Update, authmw)
	users.DELETE("/:id", d.UserH.Delete, authmw)

	bookings := e.Group("/api/bookings", authmw)
	bookings.POST("", d.Bookings.Create)
	bookings.GET("", d.Bookings.List)
	bookings.PUT("/:id", d.Bookings.Update)
	bookings.DELETE("/:id", d.Bookings.Delete)
}

// Package router registers the HTTP routes and wires the middleware chain.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/gymdesk/gym-booking-api/internal/config"
	"github.com/gymdesk/gym-booking-api/internal/handler"
	"github.com/gymdesk/gym-booking-api/internal/middleware"
)

// Handlers bundles every handler the route table needs.
type Handlers struct {
	Auth    *handler.AuthHandler
	Booking *handler.BookingHandler
	Trainer *handler.TrainerHandler
	Admin   *handler.AdminHandler
}

// Register wires the full route table.
//
// The protected surface is layered in three gates, in order: JWTAuth
// proves identity (401), RequireActiveStatus re-reads the account status
// from the database on every request so admin decisions apply immediately
// (403 for pending/rejected, 401 for deleted accounts), and RequireRole
// restricts each group to its audience (403). The one exception is
// /v1/auth/me, which sits behind JWTAuth only so that a pending member
// can still see their own account state.
func Register(e *echo.Echo, h Handlers, cfg config.Config, statusLoader middleware.StatusLoader, rdb *redis.Client) {
	// Global rate limiting keyed by account id (or client IP for anonymous
	// traffic). Fails open when Redis is unavailable.
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	e.GET("/healthz", handler.Health)

	// Session endpoints: no JWT required, tokens are the output.
	auth := e.Group("/v1/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/refresh-access", h.Auth.RefreshAccess)
	auth.POST("/logout", h.Auth.Logout)
	auth.GET("/me", h.Auth.Me, middleware.JWTAuth(cfg.JWTSecret))

	jwtAuth := middleware.JWTAuth(cfg.JWTSecret)
	activeOnly := middleware.RequireActiveStatus(statusLoader)

	// Read-mostly schedule and catalog responses are served through the
	// Redis cache when it is enabled.
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	// Member surface: browse the schedule, book, cancel.
	member := e.Group("/v1/bookings", jwtAuth, activeOnly, middleware.RequireRole("member"))
	member.GET("/schedule", h.Booking.GetSchedule, cache)
	member.POST("/:classId", h.Booking.BookClass)
	member.GET("", h.Booking.GetMyBookings)
	member.DELETE("/:bookingId", h.Booking.CancelBooking)

	// Trainer surface: own dashboard, own classes, rosters.
	trainer := e.Group("/v1/trainer", jwtAuth, activeOnly, middleware.RequireRole("trainer"))
	trainer.GET("/dashboard", h.Trainer.Dashboard)
	trainer.GET("/classes", h.Trainer.Classes)
	trainer.GET("/classes/:id/attendees", h.Trainer.Attendees)

	// Admin surface: dashboard, member approvals, class and program admin.
	admin := e.Group("/v1/admin", jwtAuth, activeOnly, middleware.RequireRole("admin"))
	admin.GET("/stats", h.Admin.Stats)
	admin.GET("/members", h.Admin.Members)
	admin.GET("/pending-members", h.Admin.PendingMembers)
	admin.PUT("/members/:id/status", h.Admin.UpdateMemberStatus)
	admin.DELETE("/members/:id", h.Admin.DeleteMember)
	admin.GET("/trainers", h.Admin.Trainers)
	admin.GET("/programs", h.Admin.Programs, cache)
	admin.GET("/classes", h.Admin.Classes)
	admin.POST("/classes", h.Admin.CreateClass)
	admin.PUT("/classes/:id", h.Admin.UpdateClass)
	admin.DELETE("/classes/:id", h.Admin.DeleteClass)
}

// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/greenleaf/club-reservation/internal/config"
	"github.com/greenleaf/club-reservation/internal/handler"
	"github.com/greenleaf/club-reservation/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check, used by load balancers to
// verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// Deps bundles everything route registration needs: the handlers plus
// the JWT secret and the optional Redis client backing the cache and
// rate-limit middleware.  Redis may be nil, in which case both layers
// are no-ops.
type Deps struct {
	Schedule     *handler.ScheduleHandler
	Availability *handler.AvailabilityHandler
	Reservation  *handler.ReservationHandler
	Lifecycle    *handler.LifecycleHandler
	JWTSecret    string
	Redis        *redis.Client
}

// RegisterAPI registers all authenticated endpoints under /v1.  Members
// and staff share the read endpoints; schedule management and
// completion are staff-only; booking and cancellation accept both
// roles, with ownership of cancellations enforced in the handler.
func RegisterAPI(e *echo.Echo, d Deps) {
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), d.Redis)
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), d.Redis)

	g := e.Group("/v1", middleware.JWTAuth(d.JWTSecret))

	staff := middleware.RequireRole(middleware.RoleStaff)
	anyRole := middleware.RequireRole(middleware.RoleMember, middleware.RoleStaff)

	// Weekly schedule: staff replace it, anyone authenticated may read it.
	g.PUT("/clubs/:id/schedule", d.Schedule.ReplaceSchedule, staff)
	g.GET("/clubs/:id/schedule", d.Schedule.GetSchedule, anyRole)

	// Availability reads are cached; slots change only when reservations
	// commit or the schedule is replaced.
	g.GET("/clubs/:id/availability", d.Availability.GetSlots, anyRole, cache)
	g.GET("/clubs/:id/availability/disabled", d.Availability.GetDisabledDays, anyRole, cache)

	// Booking writes are rate limited per member.
	g.POST("/clubs/:id/reservations", d.Reservation.Create, anyRole, limit)
	g.GET("/my-reservations", d.Reservation.ListMine, anyRole)

	g.POST("/reservations/:id/complete", d.Lifecycle.Complete, staff)
	g.POST("/reservations/:id/cancel", d.Lifecycle.Cancel, anyRole, limit)
}

package router // package router defines how HTTP routes are registered for the gateway

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/cinebook/booking-flow/internal/config"
	"github.com/cinebook/booking-flow/internal/handler"
	"github.com/cinebook/booking-flow/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Used by load balancers and monitoring to verify the gateway is up.
	e.GET("/healthz", handler.Health)
}

// RegisterShowtime registers the public showtime proxy behind the Redis
// response cache.  Guests can read showtime details without a token;
// the cache keeps repeat lookups off the storefront API.
func RegisterShowtime(e *echo.Echo, s *handler.ShowtimeHandler, cacheCfg config.CacheConfig, rdb *redis.Client) {
	e.GET("/v1/showtimes/:id", s.Get, middleware.NewRedisCache(cacheCfg, rdb))
}

// RegisterBooking registers the authenticated booking-flow lifecycle
// under /v1.  Every route requires a valid storefront-issued bearer
// token; the mutating routes additionally pass through the Redis token
// bucket so one client cannot hammer toggle or checkout.
func RegisterBooking(e *echo.Echo, b *handler.BookingHandler, jwtSecret string, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))

	limited := middleware.NewTokenBucket(rlCfg, rdb)

	// Open a booking flow for a showtime.  The countdown starts here.
	auth.POST("/showtimes/:id/booking", b.Open, limited)
	// Live flow state: seat map, selection, remaining time.
	auth.GET("/bookings/:id", b.Get)
	// Selection toggle; non-available seats silently no-op.
	auth.POST("/bookings/:id/seats/:seatID/toggle", b.Toggle, limited)
	// Re-fetch the seat catalog (supersedes any fetch in flight).
	auth.POST("/bookings/:id/seats/refresh", b.Refresh, limited)
	// Gate evaluation + handoff to the storefront's payment pipeline.
	auth.POST("/bookings/:id/checkout", b.Checkout, limited)
	// Leave the flow: countdown torn down, late fetches dropped.
	auth.DELETE("/bookings/:id", b.Close)
	// Journal read-back of this user's past handoffs.
	auth.GET("/my-handoffs", b.ListHandoffs)
}

package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/event-seat-booking/internal/config"
	"github.com/iliyamo/event-seat-booking/internal/handler"
	"github.com/iliyamo/event-seat-booking/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance: the health check and the public seat
// browse endpoints.
func RegisterRoutes(e *echo.Echo, r *handler.ReservationHandler) {
	e.GET("/healthz", handler.Health)
	e.GET("/v1/seats", r.ListAvailableSeats)
	e.GET("/v1/seats/:key", r.GetSeat)
}

// RegisterAPI registers the authenticated reservation and booking
// endpoints under /v1.  The claim endpoint additionally passes through
// the Redis token bucket: SeatContended responses invite retries, and
// shaping them early keeps the lock provider out of trouble.  rdb may
// be nil, which disables rate limiting.
func RegisterAPI(e *echo.Echo, r *handler.ReservationHandler, b *handler.BookingHandler, jwtSecret string, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	api := e.Group("/v1")
	api.Use(middleware.JWTAuth(jwtSecret))

	limited := middleware.RateLimit(rlCfg, rdb)
	api.POST("/reservations", r.CreateReservation, limited)
	api.DELETE("/reservations/:id", r.DeleteReservation)

	api.POST("/bookings", b.CreateBooking)
	api.GET("/bookings/:id", b.GetBooking)

	api.POST("/seats", r.SeedSeats)
}

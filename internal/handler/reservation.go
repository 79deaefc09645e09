package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-seat-booking/internal/model"
	"github.com/iliyamo/event-seat-booking/internal/repository"
	"github.com/iliyamo/event-seat-booking/internal/service"
)

// ReservationHandler exposes the claim flow over HTTP.  All methods
// assume JWT authentication has already run; the claimant identity
// comes from the token and is cross-checked against the request body
// when the body names a user explicitly.
type ReservationHandler struct {
	Reservations *service.ReservationService
	SeatRepo     *repository.SeatRepo
}

// NewReservationHandler constructs a ReservationHandler.  All
// dependencies must be non-nil.
func NewReservationHandler(reservations *service.ReservationService, seatRepo *repository.SeatRepo) *ReservationHandler {
	if reservations == nil || seatRepo == nil {
		panic("nil dependency passed to NewReservationHandler")
	}
	return &ReservationHandler{Reservations: reservations, SeatRepo: seatRepo}
}

// CreateReservation handles POST /v1/reservations.  The body carries
// the seat to claim and optionally the user id, which must match the
// authenticated claimant.  Contention outcomes map to 409: they are
// expected under load and the client is free to retry after backoff.
func (h *ReservationHandler) CreateReservation(c echo.Context) error {
	claimant, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		UserID  uint64 `json:"user_id"`
		SeatKey string `json:"seat_key"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.SeatKey == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_key is required"})
	}
	if body.UserID != 0 && body.UserID != claimant {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "user_id does not match token subject"})
	}

	hold, err := h.Reservations.ClaimSeat(c.Request().Context(), body.SeatKey, claimant)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSeatContended):
			return c.JSON(http.StatusConflict, echo.Map{"error": "seat contended", "retryable": true})
		case errors.Is(err, service.ErrSeatAlreadyHeld):
			return c.JSON(http.StatusConflict, echo.Map{"error": "seat already held", "retryable": true})
		case errors.Is(err, service.ErrSeatUnavailable):
			return c.JSON(http.StatusConflict, echo.Map{"error": "seat unavailable", "retryable": false})
		case errors.Is(err, repository.ErrSeatNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to claim seat"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"reservation_id": hold.ID,
		"status":         hold.Status,
		"expires_at":     hold.ExpiresAt.Format(time.RFC3339),
	})
}

// DeleteReservation handles DELETE /v1/reservations/:id.  It releases a
// pending hold early, confirm's inverse.  Only the hold's claimant may
// release it.
func (h *ReservationHandler) DeleteReservation(c echo.Context) error {
	claimant, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	holdID := c.Param("id")
	if holdID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	if err := h.Reservations.ReleaseHold(c.Request().Context(), holdID, claimant); err != nil {
		switch {
		case errors.Is(err, repository.ErrHoldNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		case errors.Is(err, service.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		case errors.Is(err, service.ErrHoldAlreadyResolved):
			return c.JSON(http.StatusConflict, echo.Map{"error": "reservation already resolved"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to release reservation"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// GetSeat handles GET /v1/seats/:key.  Public: guests can inspect a
// seat before authenticating.  Stored status may lag lazy expiry by up
// to one sweep interval, which is acceptable for display purposes.
func (h *ReservationHandler) GetSeat(c echo.Context) error {
	seatKey := c.Param("key")
	seat, err := h.SeatRepo.GetByKey(c.Request().Context(), seatKey)
	if err != nil {
		if errors.Is(err, repository.ErrSeatNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch seat"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"seat_key": seat.SeatKey,
		"status":   seat.Status,
	})
}

// ListAvailableSeats handles GET /v1/seats.  Public listing of seats
// currently marked AVAILABLE.
func (h *ReservationHandler) ListAvailableSeats(c echo.Context) error {
	seats, err := h.SeatRepo.ListByStatus(c.Request().Context(), model.SeatAvailable)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list seats"})
	}
	keys := make([]string, 0, len(seats))
	for _, s := range seats {
		keys = append(keys, s.SeatKey)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": keys})
}

// SeedSeats handles POST /v1/seats.  It registers seat keys so they can
// be claimed, all starting AVAILABLE.  Existing keys are ignored, so
// the call is idempotent.
func (h *ReservationHandler) SeedSeats(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		SeatKeys []string `json:"seat_keys"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if len(body.SeatKeys) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_keys is required"})
	}
	if err := h.SeatRepo.CreateBulk(c.Request().Context(), body.SeatKeys); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create seats"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"created": len(body.SeatKeys)})
}

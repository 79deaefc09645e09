package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-seat-booking/internal/repository"
	"github.com/iliyamo/event-seat-booking/internal/service"
)

// BookingHandler exposes the confirmation flow over HTTP.  The payment
// collaborator (or a client relaying its result) reports a successful
// payment here; duplicate deliveries resolve to 409 without creating a
// second allocation.
type BookingHandler struct {
	Confirmations  *service.ConfirmationService
	AllocationRepo *repository.AllocationRepo
}

// NewBookingHandler constructs a BookingHandler.  All dependencies must
// be non-nil.
func NewBookingHandler(confirmations *service.ConfirmationService, allocationRepo *repository.AllocationRepo) *BookingHandler {
	if confirmations == nil || allocationRepo == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Confirmations: confirmations, AllocationRepo: allocationRepo}
}

// CreateBooking handles POST /v1/bookings.  It converts a live hold
// into a permanent allocation.  Staleness outcomes map to 409 as a
// definitive failure: the caller needs a fresh claim, not a retry.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		ReservationID string `json:"reservation_id"`
		PaymentRef    string `json:"payment_ref"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.ReservationID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reservation_id is required"})
	}

	alloc, err := h.Confirmations.Confirm(c.Request().Context(), body.ReservationID, body.PaymentRef)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrHoldNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		case errors.Is(err, service.ErrHoldExpired):
			return c.JSON(http.StatusConflict, echo.Map{"error": "reservation expired"})
		case errors.Is(err, service.ErrHoldAlreadyResolved):
			return c.JSON(http.StatusConflict, echo.Map{"error": "reservation already resolved"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to confirm reservation"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"booking_id": alloc.ID,
		"status":     alloc.Status,
	})
}

// GetBooking handles GET /v1/bookings/:id.  It returns a single
// allocation by id.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	alloc, err := h.AllocationRepo.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrAllocationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch booking"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"booking_id":  alloc.ID,
		"seat_key":    alloc.SeatKey,
		"claimant_id": alloc.ClaimantID,
		"hold_id":     alloc.HoldID,
		"payment_ref": alloc.PaymentRef,
		"status":      alloc.Status,
	})
}

package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-seat-booking/internal/model"
	"github.com/iliyamo/event-seat-booking/internal/repository"
	"github.com/iliyamo/event-seat-booking/internal/service"
)

// newBookingFixture wires a claim service and a confirmation service
// over the same store and clock, mirroring the production wiring.
func newBookingFixture(seatKeys ...string) (*service.ReservationService, *service.ConfirmationService, *memStore, *fakeClock, *fakePublisher) {
	store := newMemStore(seatKeys...)
	locker := newFakeLocker()
	clk := newFakeClock()
	pub := &fakePublisher{}
	claims := service.NewReservationService(locker, store, store, clk, holdTTL, lockTTL)
	confirms := service.NewConfirmationService(store, store, clk, pub)
	return claims, confirms, store, clk, pub
}

func TestConfirm_RoundTrip(t *testing.T) {
	claims, confirms, store, _, pub := newBookingFixture("A1")

	hold, err := claims.ClaimSeat(context.Background(), "A1", 7)
	require.NoError(t, err)

	alloc, err := confirms.Confirm(context.Background(), hold.ID, "pay-123")

	require.NoError(t, err)
	assert.Equal(t, hold.ID, alloc.HoldID)
	assert.Equal(t, "A1", alloc.SeatKey)
	assert.Equal(t, uint64(7), alloc.ClaimantID)
	assert.Equal(t, "pay-123", alloc.PaymentRef)
	assert.Equal(t, model.AllocationConfirmed, alloc.Status)
	assert.Equal(t, model.HoldConfirmed, store.holdStatus(hold.ID))
	assert.Equal(t, model.SeatAllocated, store.seatStatus("A1"))
	assert.Equal(t, 1, store.allocationCount())
	assert.Equal(t, 1, pub.count())
}

func TestConfirm_DuplicateDeliveryIdempotent(t *testing.T) {
	claims, confirms, store, _, _ := newBookingFixture("A1")

	hold, err := claims.ClaimSeat(context.Background(), "A1", 7)
	require.NoError(t, err)
	_, err = confirms.Confirm(context.Background(), hold.ID, "pay-123")
	require.NoError(t, err)

	// The gateway replays the same success signal.
	replay, err := confirms.Confirm(context.Background(), hold.ID, "pay-123")

	assert.ErrorIs(t, err, service.ErrHoldAlreadyResolved)
	assert.Nil(t, replay)
	assert.Equal(t, 1, store.allocationCount(), "replay must not create a second allocation")
}

func TestConfirm_ExpiredHoldRejectedAndSeatReclaimable(t *testing.T) {
	claims, confirms, store, clk, pub := newBookingFixture("A1")

	hold, err := claims.ClaimSeat(context.Background(), "A1", 7)
	require.NoError(t, err)

	// Payment outcome arrives one minute after the five-minute window.
	clk.Advance(holdTTL + time.Minute)

	alloc, err := confirms.Confirm(context.Background(), hold.ID, "pay-123")

	assert.ErrorIs(t, err, service.ErrHoldExpired)
	assert.Nil(t, alloc)
	assert.Zero(t, store.allocationCount())
	assert.Equal(t, model.HoldExpired, store.holdStatus(hold.ID), "rejection must flip the hold so the window is reusable")
	assert.Zero(t, pub.count())

	// The seat is claimable again by someone else.
	fresh, err := claims.ClaimSeat(context.Background(), "A1", 8)
	require.NoError(t, err)
	assert.Equal(t, uint64(8), fresh.ClaimantID)
}

func TestConfirm_UnknownHold(t *testing.T) {
	_, confirms, _, _, _ := newBookingFixture("A1")

	alloc, err := confirms.Confirm(context.Background(), "missing", "pay-123")

	assert.ErrorIs(t, err, repository.ErrHoldNotFound)
	assert.Nil(t, alloc)
}

func TestConfirm_RetriesOnceAfterConditionalMiss(t *testing.T) {
	claims, confirms, store, _, _ := newBookingFixture("A1")

	hold, err := claims.ClaimSeat(context.Background(), "A1", 7)
	require.NoError(t, err)

	// First conditional write loses a race; the retry must succeed.
	store.confirmConflicts = 1

	alloc, err := confirms.Confirm(context.Background(), hold.ID, "pay-123")

	require.NoError(t, err)
	assert.Equal(t, hold.ID, alloc.HoldID)
	assert.Equal(t, 1, store.allocationCount())
}

func TestConfirm_SecondConditionalMissSurfacesResolved(t *testing.T) {
	claims, confirms, store, _, _ := newBookingFixture("A1")

	hold, err := claims.ClaimSeat(context.Background(), "A1", 7)
	require.NoError(t, err)

	store.confirmConflicts = 2

	alloc, err := confirms.Confirm(context.Background(), hold.ID, "pay-123")

	assert.ErrorIs(t, err, service.ErrHoldAlreadyResolved)
	assert.Nil(t, alloc)
	assert.Zero(t, store.allocationCount())
}

func TestConfirm_SeatNoLongerHeldSurfacesResolved(t *testing.T) {
	claims, confirms, store, _, _ := newBookingFixture("A1")

	hold, err := claims.ClaimSeat(context.Background(), "A1", 7)
	require.NoError(t, err)

	// Force the seat out of HELD behind the coordinator's back.  The
	// seat flip inside ConfirmHold is conditional, so finalization must
	// refuse rather than overwrite whatever won the seat.
	store.setSeatStatus("A1", model.SeatAvailable)

	alloc, err := confirms.Confirm(context.Background(), hold.ID, "pay-1")

	assert.ErrorIs(t, err, service.ErrHoldAlreadyResolved)
	assert.Nil(t, alloc)
	assert.Zero(t, store.allocationCount())
	assert.Equal(t, model.HoldPending, store.holdStatus(hold.ID), "a refused finalize must roll the hold back")
}

func TestConfirm_PublisherFailureDoesNotAffectOutcome(t *testing.T) {
	claims, confirms, store, _, pub := newBookingFixture("A1")
	pub.err = errors.New("broker down")

	hold, err := claims.ClaimSeat(context.Background(), "A1", 7)
	require.NoError(t, err)

	alloc, err := confirms.Confirm(context.Background(), hold.ID, "pay-123")

	require.NoError(t, err, "event delivery is best-effort")
	assert.NotNil(t, alloc)
	assert.Equal(t, 1, store.allocationCount())
}

func TestReject_VoidsPendingHold(t *testing.T) {
	claims, confirms, store, _, _ := newBookingFixture("A1")

	hold, err := claims.ClaimSeat(context.Background(), "A1", 7)
	require.NoError(t, err)

	require.NoError(t, confirms.Reject(context.Background(), hold.ID))

	assert.Equal(t, model.HoldExpired, store.holdStatus(hold.ID))
	assert.Equal(t, model.SeatAvailable, store.seatStatus("A1"))

	// A duplicate failure signal is absorbed.
	err = confirms.Reject(context.Background(), hold.ID)
	assert.ErrorIs(t, err, service.ErrHoldAlreadyResolved)
}

package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-seat-booking/internal/model"
	"github.com/iliyamo/event-seat-booking/internal/service"
)

func TestSweep_VoidsOnlyOverdueHolds(t *testing.T) {
	store := newMemStore("A1", "A2")
	locker := newFakeLocker()
	clk := newFakeClock()
	claims := service.NewReservationService(locker, store, store, clk, holdTTL, lockTTL)

	overdue, err := claims.ClaimSeat(context.Background(), "A1", 7)
	require.NoError(t, err)

	// Second hold starts later, so it is still live when the first
	// one's deadline passes.
	clk.Advance(holdTTL - time.Minute)
	live, err := claims.ClaimSeat(context.Background(), "A2", 8)
	require.NoError(t, err)
	clk.Advance(2 * time.Minute)

	sweeper := service.NewSweeper(store, clk, time.Minute, 100)
	sweeper.Sweep(context.Background())

	assert.Equal(t, model.HoldExpired, store.holdStatus(overdue.ID))
	assert.Equal(t, model.SeatAvailable, store.seatStatus("A1"))
	assert.Equal(t, model.HoldPending, store.holdStatus(live.ID), "a still-valid window must never be shortened")
	assert.Equal(t, model.SeatHeld, store.seatStatus("A2"))
}

func TestSweep_SkipsHoldsResolvedConcurrently(t *testing.T) {
	store := newMemStore("A1")
	locker := newFakeLocker()
	clk := newFakeClock()
	claims := service.NewReservationService(locker, store, store, clk, holdTTL, lockTTL)
	confirms := service.NewConfirmationService(store, store, clk, nil)

	hold, err := claims.ClaimSeat(context.Background(), "A1", 7)
	require.NoError(t, err)
	_, err = confirms.Confirm(context.Background(), hold.ID, "pay-1")
	require.NoError(t, err)

	clk.Advance(holdTTL + time.Minute)
	sweeper := service.NewSweeper(store, clk, time.Minute, 100)
	sweeper.Sweep(context.Background())

	// The confirmed hold lost its PENDING status before the deadline;
	// the sweeper must leave the terminal state untouched.
	assert.Equal(t, model.HoldConfirmed, store.holdStatus(hold.ID))
	assert.Equal(t, model.SeatAllocated, store.seatStatus("A1"))
}

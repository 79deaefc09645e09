package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/event-seat-booking/internal/clock"
	"github.com/iliyamo/event-seat-booking/internal/lock"
	"github.com/iliyamo/event-seat-booking/internal/model"
	"github.com/iliyamo/event-seat-booking/internal/repository"
)

// ReservationService is the seat-level admission-control decision
// point.  ClaimSeat serializes access per seat key through the
// distributed lock, consults the hold store inside the critical
// section, and creates the provisional hold.  The lock is held only for
// the read-check-write of the hold, never across the external payment
// flow.
type ReservationService struct {
	locker  lock.Locker
	seats   SeatStore
	holds   HoldStore
	clk     clock.Clock
	holdTTL time.Duration // fixed hold window, not configurable per request
	lockTTL time.Duration // must exceed worst-case critical section duration
}

// NewReservationService constructs a ReservationService.  All
// dependencies must be non-nil.  lockTTL is a correctness parameter:
// choose it strictly greater than the worst-case duration of the
// claim critical section.
func NewReservationService(locker lock.Locker, seats SeatStore, holds HoldStore, clk clock.Clock, holdTTL, lockTTL time.Duration) *ReservationService {
	if locker == nil || seats == nil || holds == nil || clk == nil {
		panic("nil dependency passed to NewReservationService")
	}
	return &ReservationService{
		locker:  locker,
		seats:   seats,
		holds:   holds,
		clk:     clk,
		holdTTL: holdTTL,
		lockTTL: lockTTL,
	}
}

// lockKey builds the lock provider keyspace entry for a seat.
func lockKey(seatKey string) string { return "lock:seat:" + seatKey }

// ClaimSeat attempts to obtain a provisional hold on a seat for the
// given claimant.  Outcomes:
//
//   - ErrSeatContended          another claim holds the admission lock
//   - ErrSeatAlreadyHeld        a live pending hold exists
//   - ErrSeatUnavailable        the seat is permanently allocated
//   - repository.ErrSeatNotFound  unknown seat key
//
// On success exactly one durable write happens (the new hold plus its
// seat status flip, committed together); failure paths leave the store
// untouched, with one bounded exception: replacing a hold whose
// deadline passed flips the stale hold to EXPIRED before the new
// insert, so a claim that fails after that point leaves behind only a
// transition the sweeper would have made anyway and the seat stays
// reclaimable.  The lock is released in a deferred step regardless of
// outcome so a failed claim never wedges the seat beyond the lock TTL.
func (s *ReservationService) ClaimSeat(ctx context.Context, seatKey string, claimantID uint64) (*model.Hold, error) {
	token, err := s.locker.Acquire(ctx, lockKey(seatKey), s.lockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrBusy) {
			return nil, ErrSeatContended
		}
		return nil, fmt.Errorf("acquire seat lock: %w", err)
	}
	defer func() {
		// Release on a detached context so a cancelled request still
		// frees the lock immediately instead of waiting out the TTL.
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if _, err := s.locker.Release(rctx, lockKey(seatKey), token); err != nil {
			log.Printf("claim: release lock for seat %s failed: %v (TTL reclaims it)", seatKey, err)
		}
	}()

	seat, err := s.seats.GetByKey(ctx, seatKey)
	if err != nil {
		return nil, err
	}
	if seat.Status == model.SeatAllocated {
		return nil, ErrSeatUnavailable
	}

	now := s.clk.Now()
	cur, err := s.holds.PendingBySeat(ctx, seatKey)
	switch {
	case err == nil:
		if !cur.ExpiredAt(now) {
			return nil, ErrSeatAlreadyHeld
		}
		// The stored status is stale: the hold's deadline has passed, so
		// it is logically void.  Flip it before replacing; a conflict
		// means the sweeper already did.
		if err := s.holds.MarkExpired(ctx, cur.ID); err != nil && !errors.Is(err, repository.ErrConflict) {
			return nil, err
		}
	case errors.Is(err, repository.ErrHoldNotFound):
		// no pending hold, seat is claimable
	default:
		return nil, err
	}

	h := &model.Hold{
		ID:         uuid.NewString(),
		SeatKey:    seatKey,
		ClaimantID: claimantID,
		Status:     model.HoldPending,
		ExpiresAt:  now.Add(s.holdTTL),
	}
	if err := s.holds.CreatePending(ctx, h); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrSeatUnavailable
		}
		return nil, err
	}
	return h, nil
}

// ReleaseHold voids a pending hold before its deadline, returning the
// seat to AVAILABLE.  Only the hold's claimant may release it.  A hold
// that already reached a terminal status yields ErrHoldAlreadyResolved.
func (s *ReservationService) ReleaseHold(ctx context.Context, holdID string, claimantID uint64) error {
	h, err := s.holds.GetByID(ctx, holdID)
	if err != nil {
		return err
	}
	if h.ClaimantID != claimantID {
		return ErrForbidden
	}
	if h.Status != model.HoldPending {
		return ErrHoldAlreadyResolved
	}
	if err := s.holds.MarkExpired(ctx, h.ID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return ErrHoldAlreadyResolved
		}
		return err
	}
	return nil
}

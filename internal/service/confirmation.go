package service

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	"github.com/iliyamo/event-seat-booking/internal/clock"
	"github.com/iliyamo/event-seat-booking/internal/model"
	"github.com/iliyamo/event-seat-booking/internal/repository"
)

// ConfirmedPublisher emits a domain event after a hold has been
// confirmed.  Failures are logged and otherwise ignored; event delivery
// is best-effort and never affects the durable outcome.
type ConfirmedPublisher interface {
	PublishAllocationConfirmed(ctx context.Context, a *model.Allocation) error
}

// ConfirmationService validates that a hold is still live and converts
// it into a permanent allocation.  It takes no distributed lock: by the
// time confirmation runs, seat contention is already resolved by the
// hold existing.  The only remaining race, confirmation versus expiry,
// is settled by the conditional write inside AllocationStore.ConfirmHold.
type ConfirmationService struct {
	holds     HoldStore
	allocs    AllocationStore
	clk       clock.Clock
	publisher ConfirmedPublisher // optional, may be nil
}

// NewConfirmationService constructs a ConfirmationService.  publisher
// may be nil to disable event emission.
func NewConfirmationService(holds HoldStore, allocs AllocationStore, clk clock.Clock, publisher ConfirmedPublisher) *ConfirmationService {
	if holds == nil || allocs == nil || clk == nil {
		panic("nil dependency passed to NewConfirmationService")
	}
	return &ConfirmationService{holds: holds, allocs: allocs, clk: clk, publisher: publisher}
}

// Confirm finalizes the hold identified by holdID against the supplied
// external payment reference.  Outcomes:
//
//   - repository.ErrHoldNotFound  unknown hold id
//   - ErrHoldAlreadyResolved      hold no longer PENDING (duplicate
//     success delivery replays land here, making Confirm idempotent)
//   - ErrHoldExpired              deadline passed; the hold is flipped
//     to EXPIRED as a side effect so the seat window can be reused
//
// When the conditional write loses to a concurrent resolution, the
// whole operation is retried once from the initial load; a second loss
// surfaces ErrHoldAlreadyResolved.
func (s *ConfirmationService) Confirm(ctx context.Context, holdID, paymentRef string) (*model.Allocation, error) {
	a, err := s.confirmOnce(ctx, holdID, paymentRef)
	if errors.Is(err, repository.ErrConflict) {
		a, err = s.confirmOnce(ctx, holdID, paymentRef)
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrHoldAlreadyResolved
		}
	}
	if err != nil {
		return nil, err
	}
	if s.publisher != nil {
		if perr := s.publisher.PublishAllocationConfirmed(ctx, a); perr != nil {
			log.Printf("confirm: publish allocation.confirmed for %s failed: %v", a.ID, perr)
		}
	}
	return a, nil
}

func (s *ConfirmationService) confirmOnce(ctx context.Context, holdID, paymentRef string) (*model.Allocation, error) {
	h, err := s.holds.GetByID(ctx, holdID)
	if err != nil {
		return nil, err
	}
	if h.Status != model.HoldPending {
		return nil, ErrHoldAlreadyResolved
	}
	// Re-check the deadline even though the stored status is PENDING:
	// the status is stale whenever the sweeper has not run yet.
	if h.ExpiredAt(s.clk.Now()) {
		if err := s.holds.MarkExpired(ctx, h.ID); err != nil && !errors.Is(err, repository.ErrConflict) {
			return nil, err
		}
		return nil, ErrHoldExpired
	}
	a := &model.Allocation{
		ID:         uuid.NewString(),
		SeatKey:    h.SeatKey,
		ClaimantID: h.ClaimantID,
		HoldID:     h.ID,
		PaymentRef: paymentRef,
		Status:     model.AllocationConfirmed,
	}
	if err := s.allocs.ConfirmHold(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Reject voids a pending hold after the payment collaborator reported a
// definitive failure.  Unlike ReleaseHold it carries no claimant check:
// the signal comes from the gateway, not from a user.  A hold that
// already reached a terminal status yields ErrHoldAlreadyResolved so
// duplicate failure deliveries are absorbed.
func (s *ConfirmationService) Reject(ctx context.Context, holdID string) error {
	h, err := s.holds.GetByID(ctx, holdID)
	if err != nil {
		return err
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

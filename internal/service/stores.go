package service

import (
	"context"
	"time"

	"github.com/iliyamo/event-seat-booking/internal/model"
)

// SeatStore is the slice of seat persistence the coordinators need.
// Implemented by repository.SeatRepo.
type SeatStore interface {
	GetByKey(ctx context.Context, seatKey string) (*model.Seat, error)
}

// HoldStore is the slice of hold persistence the coordinators need.
// Implementations must make CreatePending and MarkExpired atomic
// (hold write plus seat status flip in one transaction) and must make
// MarkExpired conditional on the hold still being PENDING, returning
// repository.ErrConflict on a miss.  Implemented by repository.HoldRepo.
type HoldStore interface {
	GetByID(ctx context.Context, id string) (*model.Hold, error)
	PendingBySeat(ctx context.Context, seatKey string) (*model.Hold, error)
	CreatePending(ctx context.Context, h *model.Hold) error
	MarkExpired(ctx context.Context, holdID string) error
	ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]model.Hold, error)
}

// AllocationStore finalizes holds.  ConfirmHold must be a single
// transaction whose hold transition is conditional on PENDING,
// returning repository.ErrConflict when a concurrent resolution won.
// Implemented by repository.AllocationRepo.
type AllocationStore interface {
	ConfirmHold(ctx context.Context, a *model.Allocation) error
}

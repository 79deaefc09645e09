package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/event-seat-booking/internal/model"
)

// AllocationRepo provides data access to the allocations table and owns
// the single transaction that finalizes a hold: hold to CONFIRMED,
// allocation inserted, seat to ALLOCATED.  Either all three writes
// commit or none do.
type AllocationRepo struct {
	db *sql.DB
}

// NewAllocationRepo returns a new AllocationRepo bound to the provided
// database.
func NewAllocationRepo(db *sql.DB) *AllocationRepo { return &AllocationRepo{db: db} }

// ConfirmHold atomically converts a pending hold into a permanent
// allocation.  Both status transitions are conditional writes: the hold
// must still be PENDING and the seat must still be HELD.  When a
// concurrent sweeper or duplicate confirmation won either race,
// ErrConflict is returned and the transaction is rolled back with no
// allocation created.
func (r *AllocationRepo) ConfirmHold(ctx context.Context, a *model.Allocation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const holdUpd = `UPDATE seat_holds SET status = ? WHERE id = ? AND status = ?`
	res, err := tx.ExecContext(ctx, holdUpd, model.HoldConfirmed, a.HoldID, model.HoldPending)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	const ins = `INSERT INTO allocations (id, seat_key, claimant_id, hold_id, payment_ref, status)
                 VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, ins, a.ID, a.SeatKey, a.ClaimantID, a.HoldID, a.PaymentRef, model.AllocationConfirmed); err != nil {
		return err
	}
	const seatUpd = `UPDATE seats SET status = ? WHERE seat_key = ? AND status = ?`
	res, err = tx.ExecContext(ctx, seatUpd, model.SeatAllocated, a.SeatKey, model.SeatHeld)
	if err != nil {
		return err
	}
	n, err = res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	a.Status = model.AllocationConfirmed
	return nil
}

// GetByID loads an allocation by its id.  Returns ErrAllocationNotFound
// when absent.
func (r *AllocationRepo) GetByID(ctx context.Context, id string) (*model.Allocation, error) {
	const q = `SELECT id, seat_key, claimant_id, hold_id, payment_ref, status, created_at
               FROM allocations WHERE id = ?`
	var a model.Allocation
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&a.ID, &a.SeatKey, &a.ClaimantID, &a.HoldID, &a.PaymentRef, &a.Status, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAllocationNotFound
		}
		return nil, err
	}
	return &a, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/event-seat-booking/internal/model"
)

// HoldRepo provides data access to the seat_holds table.  All
// timestamps are stored and compared in UTC.  Status transitions use
// conditional writes (compare against the expected prior status) so
// that a concurrent sweeper or confirmation can never be silently
// overwritten; a conditional miss surfaces as ErrConflict.
type HoldRepo struct {
	db *sql.DB
}

// NewHoldRepo returns a new HoldRepo bound to the provided database.
func NewHoldRepo(db *sql.DB) *HoldRepo { return &HoldRepo{db: db} }

const holdColumns = `id, seat_key, claimant_id, status, expires_at, created_at`

func scanHold(row interface{ Scan(...interface{}) error }) (*model.Hold, error) {
	var h model.Hold
	err := row.Scan(&h.ID, &h.SeatKey, &h.ClaimantID, &h.Status, &h.ExpiresAt, &h.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// GetByID loads a hold by its id.  Returns ErrHoldNotFound when absent.
func (r *HoldRepo) GetByID(ctx context.Context, id string) (*model.Hold, error) {
	const q = `SELECT ` + holdColumns + ` FROM seat_holds WHERE id = ?`
	h, err := scanHold(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHoldNotFound
		}
		return nil, err
	}
	return h, nil
}

// PendingBySeat returns the hold currently in status PENDING for the
// given seat key, or ErrHoldNotFound when none exists.  At most one row
// can match because the claim flow only creates a new pending hold
// after the previous one has been flipped to a terminal status.
func (r *HoldRepo) PendingBySeat(ctx context.Context, seatKey string) (*model.Hold, error) {
	const q = `SELECT ` + holdColumns + ` FROM seat_holds WHERE seat_key = ? AND status = ?`
	h, err := scanHold(r.db.QueryRowContext(ctx, q, seatKey, model.HoldPending))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHoldNotFound
		}
		return nil, err
	}
	return h, nil
}

// CreatePending inserts a new PENDING hold and flips its seat to HELD
// in a single transaction.  The seat update is conditional on the seat
// not being ALLOCATED; a miss means the seat reached its terminal
// status concurrently and ErrConflict is returned with nothing
// persisted.
func (r *HoldRepo) CreatePending(ctx context.Context, h *model.Hold) error {
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
	const ins = `INSERT INTO seat_holds (id, seat_key, claimant_id, status, expires_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, ins, h.ID, h.SeatKey, h.ClaimantID, model.HoldPending,
		h.ExpiresAt.UTC().Format("2006-01-02 15:04:05")); err != nil {
		return err
	}
	const upd = `UPDATE seats SET status = ? WHERE seat_key = ? AND status <> ?`
	res, err := tx.ExecContext(ctx, upd, model.SeatHeld, h.SeatKey, model.SeatAllocated)
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
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// MarkExpired transitions a hold from PENDING to EXPIRED and returns
// its seat to AVAILABLE, both inside one transaction.  The hold update
// is conditional on the status still being PENDING; if a concurrent
// confirmation or sweeper already resolved the hold, ErrConflict is
// returned and nothing is written.  The seat update tolerates zero
// affected rows: the seat row may already show AVAILABLE when the
// sweeper races a lazy-expiry path.
func (r *HoldRepo) MarkExpired(ctx context.Context, holdID string) error {
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
	const upd = `UPDATE seat_holds SET status = ? WHERE id = ? AND status = ?`
	res, err := tx.ExecContext(ctx, upd, model.HoldExpired, holdID, model.HoldPending)
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
	const seatUpd = `UPDATE seats SET status = ?
                     WHERE status = ? AND seat_key = (SELECT seat_key FROM seat_holds WHERE id = ?)`
	if _, err := tx.ExecContext(ctx, seatUpd, model.SeatAvailable, model.SeatHeld, holdID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ListExpiredPending returns up to limit holds whose stored status is
// still PENDING even though their deadline has passed relative to now.
// Used by the background sweeper; correctness never depends on this
// query because every reader re-checks expires_at itself.
func (r *HoldRepo) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]model.Hold, error) {
	const q = `SELECT ` + holdColumns + ` FROM seat_holds
               WHERE status = ? AND expires_at <= ? ORDER BY expires_at LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, model.HoldPending, now.UTC().Format("2006-01-02 15:04:05"), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var holds []model.Hold
	for rows.Next() {
		h, err := scanHold(rows)
		if err != nil {
			return nil, err
		}
		holds = append(holds, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return holds, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/event-seat-booking/internal/model"
)

// SeatRepo provides data access to the seats table.  Seat status
// transitions happen exclusively through the conditional writes in
// HoldRepo and AllocationRepo; this repository only reads and seeds
// rows.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo returns a new SeatRepo bound to the provided database.
func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

// GetByKey loads a single seat by its key.  It returns ErrSeatNotFound
// when the key is unknown.
func (r *SeatRepo) GetByKey(ctx context.Context, seatKey string) (*model.Seat, error) {
	const q = `SELECT seat_key, status, created_at, updated_at FROM seats WHERE seat_key = ?`
	var s model.Seat
	err := r.db.QueryRowContext(ctx, q, seatKey).Scan(&s.SeatKey, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeatNotFound
		}
		return nil, err
	}
	return &s, nil
}

// CreateBulk inserts multiple seats in one statement, all starting as
// AVAILABLE.  Existing keys are left untouched via INSERT IGNORE so the
// call is safe to repeat when seeding inventory.  Passing an empty
// slice has no effect and returns nil.
func (r *SeatRepo) CreateBulk(ctx context.Context, seatKeys []string) error {
	if len(seatKeys) == 0 {
		return nil
	}
	query := `INSERT IGNORE INTO seats (seat_key, status) VALUES `
	args := make([]interface{}, 0, len(seatKeys)*2)
	for i, key := range seatKeys {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, key, model.SeatAvailable)
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// ListByStatus returns all seats currently in the given status.  Used by
// the public availability endpoint; the result reflects stored status
// and may lag behind lazy expiry by up to one sweep interval.
func (r *SeatRepo) ListByStatus(ctx context.Context, status model.SeatStatus) ([]model.Seat, error) {
	const q = `SELECT seat_key, status, created_at, updated_at FROM seats WHERE status = ? ORDER BY seat_key`
	rows, err := r.db.QueryContext(ctx, q, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var seats []model.Seat
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.SeatKey, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seats, nil
}

package model

import "time"

// HoldStatus enumerates the lifecycle states of a hold.  A hold starts
// PENDING and ends in exactly one of the terminal states EXPIRED or
// CONFIRMED.  Terminal holds are immutable; no further transitions are
// permitted.
type HoldStatus string

const (
	HoldPending   HoldStatus = "PENDING"   // awaiting payment outcome
	HoldExpired   HoldStatus = "EXPIRED"   // deadline passed or released early
	HoldConfirmed HoldStatus = "CONFIRMED" // converted into an allocation
)

// Hold is a provisional, time-bounded claim on a seat pending external
// confirmation.  At most one hold may be PENDING for a given seat key at
// any time; any number of EXPIRED or CONFIRMED holds may exist
// historically for the same seat.
//
// ExpiresAt is fixed at creation and never extended.  Every reader must
// compare ExpiresAt against the current time before trusting a PENDING
// status: a hold past its deadline is void even if no sweeper has
// flipped the stored status yet (lazy expiry).
//
// Fields:
//  ID         – unique hold identifier, generated at creation.
//  SeatKey    – seat being held; immutable once created.
//  ClaimantID – user who requested the hold; immutable.
//  Status     – PENDING, EXPIRED or CONFIRMED.
//  ExpiresAt  – absolute deadline (UTC); immutable.
//  CreatedAt  – creation timestamp.
type Hold struct {
	ID         string     // seat_holds.id
	SeatKey    string     // seat_holds.seat_key
	ClaimantID uint64     // seat_holds.claimant_id
	Status     HoldStatus // seat_holds.status
	ExpiresAt  time.Time  // seat_holds.expires_at
	CreatedAt  time.Time  // seat_holds.created_at
}

// ExpiredAt reports whether the hold's deadline has passed at the given
// instant.  Callers must use this rather than the stored status when
// deciding whether a PENDING hold is still live.
func (h *Hold) ExpiredAt(now time.Time) bool {
	return !h.ExpiresAt.After(now)
}

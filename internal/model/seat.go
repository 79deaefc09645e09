package model

import "time"

// SeatStatus enumerates the lifecycle states of a seat.  A seat is
// AVAILABLE until a claimant obtains a hold on it, HELD while exactly
// one pending hold exists, and ALLOCATED once a confirmation has made
// the assignment permanent.  ALLOCATED is terminal.
type SeatStatus string

const (
	SeatAvailable SeatStatus = "AVAILABLE" // no live hold, claimable
	SeatHeld      SeatStatus = "HELD"      // one pending hold exists
	SeatAllocated SeatStatus = "ALLOCATED" // permanently assigned, terminal
)

// Seat describes a single bookable seat.  Seats are identified by an
// immutable seat key (e.g. "HALL1-A-12").  The stored status is advisory
// between lock acquisitions: the distributed lock, not the status column
// alone, serializes concurrent claims for the same key.
//
// Fields:
//  SeatKey   – unique, immutable identifier.
//  Status    – current availability (AVAILABLE, HELD, ALLOCATED).
//  CreatedAt – creation timestamp.
//  UpdatedAt – last modification timestamp.
type Seat struct {
	SeatKey   string     // seats.seat_key
	Status    SeatStatus // seats.status
	CreatedAt time.Time  // seats.created_at
	UpdatedAt time.Time  // seats.updated_at
}

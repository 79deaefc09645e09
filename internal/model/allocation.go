package model

import "time"

// AllocationStatus enumerates the states of an allocation.  Allocations
// are created CONFIRMED and may only ever move to VOID through an
// explicit administrative action outside this service.
type AllocationStatus string

const (
	AllocationConfirmed AllocationStatus = "CONFIRMED" // seat permanently assigned
	AllocationVoid      AllocationStatus = "VOID"      // assignment annulled
)

// Allocation is the permanent, terminal record that a seat belongs to a
// claimant.  It is created only by the confirmation flow, never
// speculatively, and always references the single hold that reached
// CONFIRMED for its seat.
//
// Fields:
//  ID         – unique allocation identifier.
//  SeatKey    – seat that was allocated.
//  ClaimantID – user the seat now belongs to.
//  HoldID     – hold this allocation was confirmed from.
//  PaymentRef – external payment reference supplied by the gateway.
//  Status     – CONFIRMED or VOID.
//  CreatedAt  – creation timestamp.
type Allocation struct {
	ID         string           // allocations.id
	SeatKey    string           // allocations.seat_key
	ClaimantID uint64           // allocations.claimant_id
	HoldID     string           // allocations.hold_id
	PaymentRef string           // allocations.payment_ref
	Status     AllocationStatus // allocations.status
	CreatedAt  time.Time        // allocations.created_at
}

// Package queue defines message payloads exchanged over the message
// broker plus the consumer and publisher that move them.
package queue

// Payment outcome values delivered by the payment collaborator.
const (
	OutcomeSuccess = "SUCCESS"
	OutcomeFailure = "FAILURE"
)

// PaymentOutcomeEvent is the at-least-once, possibly-delayed,
// possibly-duplicated signal the payment gateway emits for a
// reservation.  ReservationID is the hold id returned by the claim
// endpoint.
type PaymentOutcomeEvent struct {
	ReservationID string `json:"reservation_id"`
	Outcome       string `json:"outcome"` // SUCCESS or FAILURE
	PaymentRef    string `json:"payment_ref"`
}

// AllocationConfirmedEvent is published when a hold is successfully
// converted into a permanent allocation.  It contains enough
// information for downstream consumers to log, notify, or trigger
// analytics without querying the primary database.
type AllocationConfirmedEvent struct {
	AllocationID string `json:"allocation_id"`
	HoldID       string `json:"hold_id"`
	SeatKey      string `json:"seat_key"`
	ClaimantID   uint64 `json:"claimant_id"`
	PaymentRef   string `json:"payment_ref"`
	ConfirmedAt  string `json:"confirmed_at"`
}

// Package service contains the reservation and confirmation
// coordinators: the admission-control and finalization logic that sits
// between the HTTP/queue surfaces and the durable stores.  This file
// defines the caller-distinguishable outcome taxonomy.  Contention and
// staleness are expected results under load, surfaced as distinct
// sentinel values rather than a generic failure.
package service

import "errors"

// ErrSeatContended is returned when another claim currently owns the
// seat's admission lock.  Retryable by the caller after backoff.
var ErrSeatContended = errors.New("seat contended")

// ErrSeatAlreadyHeld is returned when a live pending hold exists for
// the seat: another claimant is mid-flow.  Retryable after the hold
// window passes.
var ErrSeatAlreadyHeld = errors.New("seat already held")

// ErrSeatUnavailable is returned when the seat has reached its terminal
// ALLOCATED status.  Not retryable.
var ErrSeatUnavailable = errors.New("seat unavailable")

// ErrHoldExpired is returned when a confirmation arrives after the
// hold's deadline.  The seat becomes claimable again; the caller must
// start over with a fresh claim.
var ErrHoldExpired = errors.New("hold expired")

// ErrHoldAlreadyResolved is returned when the hold is no longer
// PENDING: it was already confirmed, already expired, or lost a
// conditional write twice.  Covers duplicate payment-success delivery.
var ErrHoldAlreadyResolved = errors.New("hold already resolved")

// ErrForbidden is returned when a claimant attempts to operate on a
// hold owned by someone else.
var ErrForbidden = errors.New("forbidden")

// Package repository implements durable storage for seats, holds and
// allocations on top of MySQL.  This file defines sentinel error values
// shared across the repositories so that higher layers can distinguish
// failure scenarios with errors.Is instead of string matching.
package repository

import "errors"

// ErrSeatNotFound is returned when no seat exists for the given key.
var ErrSeatNotFound = errors.New("seat not found")

// ErrHoldNotFound is returned when no hold exists for the given id, or
// when no pending hold exists for a seat key.
var ErrHoldNotFound = errors.New("hold not found")

// ErrAllocationNotFound is returned when no allocation exists for the
// given id.
var ErrAllocationNotFound = errors.New("allocation not found")

// ErrConflict is returned when a conditional write finds the row no
// longer in its expected prior status: the record was modified by a
// concurrent transition between the caller's read and this write.
// Callers decide whether to retry or surface the conflict.
var ErrConflict = errors.New("conflict")

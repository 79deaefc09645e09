// Package clock abstracts the wall clock so that expiry logic can be
// exercised deterministically in tests instead of sleeping.
package clock

import "time"

// Clock supplies the current time.  Production code uses Real; tests
// substitute a fake with a settable instant.
type Clock interface {
	Now() time.Time
}

// Real reads the system clock.  All timestamps in this service are UTC,
// matching how the database stores them.
type Real struct{}

// Now returns the current UTC time.
func (Real) Now() time.Time { return time.Now().UTC() }

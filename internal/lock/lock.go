// Package lock implements the distributed mutual-exclusion provider used
// to serialize seat claims across service instances.  It is independent
// of any business logic: callers get a time-bounded, ownership-tagged
// lock on an arbitrary resource key.
package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrBusy is returned by Acquire when another holder owns an unexpired
// lock on the key.  There is no waiting queue: callers treat ErrBusy as
// "retry later or reject".  This is an expected outcome under load, not
// an error condition worth logging.
var ErrBusy = errors.New("lock: busy")

// Locker grants and releases time-bounded exclusive locks on resource
// keys.  A successful Acquire must be visible to all other callers
// immediately; Acquire and Release are each a single atomic server-side
// operation.
type Locker interface {
	// Acquire installs a fresh token for key if no unexpired token
	// exists and returns it; otherwise it fails with ErrBusy.
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	// Release deletes the lock only if the stored token still equals
	// token, so a late release from a timed-out holder cannot clobber a
	// newer holder's lock.  It reports whether the lock was released.
	Release(ctx context.Context, key string, token string) (bool, error)
}

// releaseScript is a compare-and-delete: the DEL only happens when the
// stored value still matches the caller's token.  An unconditional DEL
// here would let a holder whose TTL already expired remove the lock a
// newer holder just acquired.
var releaseScript = redis.NewScript(`
    if redis.call('GET', KEYS[1]) == ARGV[1] then
        return redis.call('DEL', KEYS[1])
    end
    return 0
`)

// RedisLocker implements Locker on top of a single Redis instance using
// SET NX PX for acquisition and a Lua compare-and-delete for release.
// The TTL is a correctness parameter: it must exceed the worst-case
// duration of the critical section it guards, because a premature
// expiry admits a second holder concurrently.
type RedisLocker struct {
	rdb *redis.Client
}

// NewRedisLocker returns a RedisLocker bound to the provided client.
// The client must be non-nil.
func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	if rdb == nil {
		panic("nil redis client passed to NewRedisLocker")
	}
	return &RedisLocker{rdb: rdb}
}

// Acquire attempts SET key token NX PX ttl.  When the key already holds
// an unexpired token the SET is a no-op and ErrBusy is returned.
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token, err := randomToken(16)
	if err != nil {
		return "", err
	}
	ok, err := l.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrBusy
	}
	return token, nil
}

// Release runs the compare-and-delete script.  It returns false when the
// lock had already expired or was taken over by another holder.
func (l *RedisLocker) Release(ctx context.Context, key string, token string) (bool, error) {
	n, err := releaseScript.Run(ctx, l.rdb, []string{key}, token).Int64()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// randomToken generates n cryptographically random bytes encoded as hex.
func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

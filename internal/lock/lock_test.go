package lock_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-seat-booking/internal/lock"
)

func TestAcquire_InstallsFreshToken(t *testing.T) {
	db, mock := redismock.NewClientMock()
	locker := lock.NewRedisLocker(db)

	mock.Regexp().ExpectSetNX("lock:seat:A1", `^[0-9a-f]{32}$`, 30*time.Second).SetVal(true)

	token, err := locker.Acquire(context.Background(), "lock:seat:A1", 30*time.Second)

	require.NoError(t, err)
	assert.Len(t, token, 32)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcquire_BusyWhenTokenExists(t *testing.T) {
	db, mock := redismock.NewClientMock()
	locker := lock.NewRedisLocker(db)

	mock.Regexp().ExpectSetNX("lock:seat:A1", `^[0-9a-f]{32}$`, 30*time.Second).SetVal(false)

	token, err := locker.Acquire(context.Background(), "lock:seat:A1", 30*time.Second)

	assert.ErrorIs(t, err, lock.ErrBusy)
	assert.Empty(t, token)
}

func TestRelease_DeletesOnlyOwnToken(t *testing.T) {
	db, mock := redismock.NewClientMock()
	locker := lock.NewRedisLocker(db)

	mock.Regexp().ExpectEvalSha(`.*`, []string{"lock:seat:A1"}, "deadbeef").SetVal(int64(1))

	ok, err := locker.Release(context.Background(), "lock:seat:A1", "deadbeef")

	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRelease_IgnoresStaleToken(t *testing.T) {
	db, mock := redismock.NewClientMock()
	locker := lock.NewRedisLocker(db)

	// Stored token differs: the compare-and-delete must leave the newer
	// holder's lock in place and report false.
	mock.Regexp().ExpectEvalSha(`.*`, []string{"lock:seat:A1"}, "stale").SetVal(int64(0))

	ok, err := locker.Release(context.Background(), "lock:seat:A1", "stale")

	require.NoError(t, err)
	assert.False(t, ok)
}

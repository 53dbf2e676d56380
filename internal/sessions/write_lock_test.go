package sessions

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSessionLocker_ExcludesConcurrentWriters(t *testing.T) {
	locker := NewSessionLocker(50 * time.Millisecond)
	require.NoError(t, locker.Lock("sess-1"))

	err := locker.LockWithTimeout("sess-1", 10*time.Millisecond)
	require.ErrorIs(t, err, ErrLockTimeout)

	locker.Unlock("sess-1")
	require.NoError(t, locker.Lock("sess-1"))
	locker.Unlock("sess-1")
}

func TestSessionLocker_DifferentSessionsDoNotBlock(t *testing.T) {
	locker := NewSessionLocker(DefaultLockTimeout)
	require.NoError(t, locker.Lock("a"))
	require.NoError(t, locker.Lock("b"))
	locker.Unlock("a")
	locker.Unlock("b")
}

func TestSessionLocker_TryLock(t *testing.T) {
	locker := NewSessionLocker(DefaultLockTimeout)
	require.True(t, locker.TryLock("s"))
	require.False(t, locker.TryLock("s"))
	locker.Unlock("s")
	require.True(t, locker.TryLock("s"))
}

func TestLocalLocker_RespectsContextCancellation(t *testing.T) {
	l := NewLocalLocker(time.Second)
	require.NoError(t, l.Lock(context.Background(), "sess"))

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	var lockErr error
	go func() {
		defer wg.Done()
		lockErr = l.Lock(ctx, "sess")
	}()
	cancel()
	wg.Wait()
	require.Error(t, lockErr)
	l.Unlock("sess")
}

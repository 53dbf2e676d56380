package sessions

import (
	"context"
	"errors"
	"time"
)

// Locker provides a process-safe session lock interface, used by the Turn
// Controller to enforce that at most one writer touches a session's store
// at a time.
type Locker interface {
	Lock(ctx context.Context, sessionID string) error
	Unlock(sessionID string)
}

// LocalLocker wraps the in-process SessionLocker with a context-aware
// interface. This is the only Locker implementation this runtime ships:
// there is no external lock service in scope (a single process owns the
// session directory it's configured against).
type LocalLocker struct {
	inner *SessionLocker
}

// NewLocalLocker creates a LocalLocker with the given acquisition timeout.
func NewLocalLocker(timeout time.Duration) *LocalLocker {
	return &LocalLocker{inner: NewSessionLocker(timeout)}
}

// Lock acquires a local lock using the provided context.
func (l *LocalLocker) Lock(ctx context.Context, sessionID string) error {
	if l == nil || l.inner == nil {
		return errors.New("session locker unavailable")
	}
	return l.inner.LockWithContext(ctx, sessionID)
}

// Unlock releases the local lock.
func (l *LocalLocker) Unlock(sessionID string) {
	if l == nil || l.inner == nil {
		return
	}
	l.inner.Unlock(sessionID)
}

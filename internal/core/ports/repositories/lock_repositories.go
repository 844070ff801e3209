package repositories

import (
	"context"
	"time"
)

// LockRepository is a cross-process mutex with a time-to-live, used to
// serialize execution of a named operation across scheduler instances.
type LockRepository interface {
	// AcquireLock attempts to take the named lock for ttl. It returns false
	// when the lock is currently held by another owner.
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// ReleaseLock frees the named lock. Releasing an expired or unheld lock is
	// a no-op.
	ReleaseLock(ctx context.Context, key string) error
}

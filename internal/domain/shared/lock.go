package shared

import (
	"context"
	"time"
)

// Unlock releases a lock obtained from a Locker
type Unlock func(ctx context.Context) error

// Locker serializes a critical section across every process that shares it.
// Obtain returns ErrConcurrencyConflict when the lock is held elsewhere.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (Unlock, error)
}

// Package lock provides short-lived exclusive locks keyed by string. The
// swipe flow takes one per actor so a user resolves one card at a time.
package lock

import (
	"context"
	"errors"
	"time"
)

// ErrNotObtained is returned when another holder owns the key.
var ErrNotObtained = errors.New("lock not obtained")

type Locker interface {
	// Obtain takes key for ttl or returns ErrNotObtained.
	Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}

type Lock interface {
	// Release gives the key back. Releasing an expired lock is a no-op.
	Release(ctx context.Context) error
}

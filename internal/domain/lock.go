package domain

import (
	"context"
	"errors"
	"time"
)

var ErrLockTimeout = errors.New("lock could not be acquired before the wait timeout")

type Lock interface {
	Key() string
	Release(ctx context.Context) error
}

// Locker grants mutual exclusion over a named resource. A granted lock lapses
// after expiry even if it is never released.
type Locker interface {
	Acquire(ctx context.Context, key string, expiry, wait time.Duration) (Lock, error)
}

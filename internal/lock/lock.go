// Package lock provides mutual exclusion over named resources such as a single
// seat of a showtime. Every backend satisfies domain.Locker.
package lock

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/metinatakli/cinema-booking-core/internal/domain"
)

const (
	minBackoff = 10 * time.Millisecond
	maxBackoff = 200 * time.Millisecond
)

// SeatKey is the resource key for one seat of one showtime.
func SeatKey(showtimeID, seatID int) string {
	return fmt.Sprintf("showtime:%d:seat:%d", showtimeID, seatID)
}

func SeatKeys(showtimeID int, seatIDs []int) []string {
	keys := make([]string, len(seatIDs))
	for i, seatID := range seatIDs {
		keys[i] = SeatKey(showtimeID, seatID)
	}

	return keys
}

// Locks is a group of locks acquired together and released together.
type Locks []domain.Lock

func (l Locks) Release(ctx context.Context) error {
	var errs []error

	// reverse acquisition order
	for i := len(l) - 1; i >= 0; i-- {
		if err := l[i].Release(ctx); err != nil {
			errs = append(errs, fmt.Errorf("release %s: %w", l[i].Key(), err))
		}
	}

	return errors.Join(errs...)
}

// MultiLocker is implemented by backends that take a whole key set in one
// step. The keys arrive sorted and deduplicated.
type MultiLocker interface {
	AcquireMany(ctx context.Context, keys []string, expiry, wait time.Duration) (Locks, error)
}

// AcquireAll acquires every key in sorted order so concurrent callers asking
// for overlapping sets can never wait on each other in a cycle. Either all
// locks are returned or none are held.
func AcquireAll(ctx context.Context, locker domain.Locker, keys []string, expiry, wait time.Duration) (Locks, error) {
	sorted := slices.Clone(keys)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	if multi, ok := locker.(MultiLocker); ok {
		return multi.AcquireMany(ctx, sorted, expiry, wait)
	}

	deadline := time.Now().Add(wait)
	acquired := make(Locks, 0, len(sorted))

	for _, key := range sorted {
		remaining := time.Until(deadline)
		if remaining < 0 {
			remaining = 0
		}

		l, err := locker.Acquire(ctx, key, expiry, remaining)
		if err != nil {
			// a background context so an already-cancelled ctx cannot leak locks
			releaseErr := acquired.Release(context.WithoutCancel(ctx))
			return nil, errors.Join(err, releaseErr)
		}

		acquired = append(acquired, l)
	}

	return acquired, nil
}

// RunExclusive runs fn while holding the lock for key.
func RunExclusive(
	ctx context.Context,
	locker domain.Locker,
	key string,
	expiry, wait time.Duration,
	fn func(ctx context.Context) error) error {

	l, err := locker.Acquire(ctx, key, expiry, wait)
	if err != nil {
		return err
	}

	fnErr := fn(ctx)

	if err := l.Release(context.WithoutCancel(ctx)); err != nil {
		return errors.Join(fnErr, err)
	}

	return fnErr
}

// retry calls try until it succeeds, the wait elapses or ctx ends.
func retry(ctx context.Context, wait time.Duration, try func() (bool, error)) error {
	deadline := time.Now().Add(wait)
	backoff := minBackoff

	for {
		ok, err := try()
		if err != nil {
			return err
		}

		if ok {
			return nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return domain.ErrLockTimeout
		}

		sleep := min(backoff, remaining)

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		backoff = min(backoff*2, maxBackoff)
	}
}

package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/metinatakli/cinema-booking-core/internal/clock"
	"github.com/metinatakli/cinema-booking-core/internal/domain"
)

// MemoryLocker is an in-process Locker for tests and single-node setups.
type MemoryLocker struct {
	mu    sync.Mutex
	clock clock.Clock
	held  map[string]memoryEntry
}

type memoryEntry struct {
	token     string
	expiresAt time.Time
}

func NewMemoryLocker(clk clock.Clock) *MemoryLocker {
	return &MemoryLocker{
		clock: clk,
		held:  make(map[string]memoryEntry),
	}
}

func (m *MemoryLocker) Acquire(ctx context.Context, key string, expiry, wait time.Duration) (domain.Lock, error) {
	token := uuid.New().String()

	err := retry(ctx, wait, func() (bool, error) {
		m.mu.Lock()
		defer m.mu.Unlock()

		now := m.clock.Now()
		if entry, ok := m.held[key]; ok && now.Before(entry.expiresAt) {
			return false, nil
		}

		m.held[key] = memoryEntry{token: token, expiresAt: now.Add(expiry)}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	return &memoryLock{locker: m, key: key, token: token}, nil
}

type memoryLock struct {
	locker *MemoryLocker
	key    string
	token  string
}

func (l *memoryLock) Key() string {
	return l.key
}

func (l *memoryLock) Release(context.Context) error {
	l.locker.mu.Lock()
	defer l.locker.mu.Unlock()

	if entry, ok := l.locker.held[l.key]; ok && entry.token == l.token {
		delete(l.locker.held, l.key)
	}

	return nil
}

package holdstore

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/metinatakli/cinema-booking-core/internal/clock"
	"github.com/metinatakli/cinema-booking-core/internal/domain"
)

type seatRef struct {
	showtimeID int
	seatID     int
}

// MemoryStore is a process-local HoldStore. Expiry is evaluated lazily against
// the clock, so a fake clock moves holds through their lifetime in tests.
type MemoryStore struct {
	mu     sync.Mutex
	clock  clock.Clock
	holds  map[string]domain.Hold
	claims map[seatRef]domain.SeatClaim
	warned map[string]time.Time
}

func NewMemoryStore(clk clock.Clock) *MemoryStore {
	return &MemoryStore{
		clock:  clk,
		holds:  make(map[string]domain.Hold),
		claims: make(map[seatRef]domain.SeatClaim),
		warned: make(map[string]time.Time),
	}
}

func (m *MemoryStore) Put(_ context.Context, hold domain.Hold) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	if hold.Expired(now) {
		return domain.ErrHoldExpired
	}

	var conflicts []int
	for _, seatID := range hold.SeatIDs() {
		if _, ok := m.liveClaim(seatRef{hold.ShowtimeID, seatID}, now); ok {
			conflicts = append(conflicts, seatID)
		}
	}

	if len(conflicts) > 0 {
		return domain.NewSeatUnavailableError(conflicts)
	}

	claim := claimOf(hold).toDomain()
	for _, seatID := range hold.SeatIDs() {
		m.claims[seatRef{hold.ShowtimeID, seatID}] = claim
	}

	m.holds[hold.ID] = hold

	return nil
}

func (m *MemoryStore) Get(_ context.Context, holdID string) (*domain.Hold, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	hold, ok := m.liveHold(holdID, m.clock.Now())
	if !ok {
		return nil, domain.ErrHoldNotFound
	}

	return &hold, nil
}

func (m *MemoryStore) Claim(_ context.Context, showtimeID, seatID int) (*domain.SeatClaim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	claim, ok := m.liveClaim(seatRef{showtimeID, seatID}, m.clock.Now())
	if !ok {
		return nil, nil
	}

	return &claim, nil
}

func (m *MemoryStore) HeldSeats(_ context.Context, showtimeID int) (map[int]domain.SeatClaim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	held := make(map[int]domain.SeatClaim)

	for ref := range m.claims {
		if ref.showtimeID != showtimeID {
			continue
		}

		if claim, ok := m.liveClaim(ref, now); ok {
			held[ref.seatID] = claim
		}
	}

	return held, nil
}

func (m *MemoryStore) Remove(_ context.Context, hold domain.Hold) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, seatID := range hold.SeatIDs() {
		ref := seatRef{hold.ShowtimeID, seatID}
		if claim, ok := m.claims[ref]; ok && claim.HoldID == hold.ID {
			delete(m.claims, ref)
		}
	}

	delete(m.holds, hold.ID)

	return nil
}

func (m *MemoryStore) TimeRemaining(_ context.Context, holdID string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()

	hold, ok := m.liveHold(holdID, now)
	if !ok {
		return 0, domain.ErrHoldNotFound
	}

	return hold.TimeRemaining(now), nil
}

func (m *MemoryStore) ExpiringWithin(_ context.Context, window time.Duration) ([]domain.Hold, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	limit := now.Add(window)

	var holds []domain.Hold
	for id := range m.holds {
		hold, ok := m.liveHold(id, now)
		if ok && !hold.ExpiresAt.After(limit) {
			holds = append(holds, hold)
		}
	}

	slices.SortFunc(holds, func(a, b domain.Hold) int {
		return a.ExpiresAt.Compare(b.ExpiresAt)
	})

	return holds, nil
}

func (m *MemoryStore) MarkWarned(_ context.Context, holdID string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	m.pruneWarned(now)

	if _, ok := m.warned[holdID]; ok {
		return false, nil
	}

	m.warned[holdID] = now.Add(ttl)

	return true, nil
}

// liveHold and liveClaim drop entries that have expired; callers hold m.mu.
func (m *MemoryStore) liveHold(holdID string, now time.Time) (domain.Hold, bool) {
	hold, ok := m.holds[holdID]
	if !ok {
		return domain.Hold{}, false
	}

	if hold.Expired(now) {
		delete(m.holds, holdID)
		return domain.Hold{}, false
	}

	return hold, true
}

func (m *MemoryStore) pruneWarned(now time.Time) {
	for holdID, until := range m.warned {
		if !now.Before(until) {
			delete(m.warned, holdID)
		}
	}
}

func (m *MemoryStore) liveClaim(ref seatRef, now time.Time) (domain.SeatClaim, bool) {
	claim, ok := m.claims[ref]
	if !ok {
		return domain.SeatClaim{}, false
	}

	if !now.Before(claim.ExpiresAt) {
		delete(m.claims, ref)
		return domain.SeatClaim{}, false
	}

	return claim, true
}

package mocks

import (
	"context"
	"time"

	"github.com/metinatakli/cinema-booking-core/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockHoldStore struct {
	mock.Mock
	domain.HoldStore
}

func (m *MockHoldStore) Put(ctx context.Context, hold domain.Hold) error {
	args := m.Called(ctx, hold)
	return args.Error(0)
}

func (m *MockHoldStore) Get(ctx context.Context, holdID string) (*domain.Hold, error) {
	args := m.Called(ctx, holdID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Hold), args.Error(1)
}

func (m *MockHoldStore) Claim(ctx context.Context, showtimeID, seatID int) (*domain.SeatClaim, error) {
	args := m.Called(ctx, showtimeID, seatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SeatClaim), args.Error(1)
}

func (m *MockHoldStore) TimeRemaining(ctx context.Context, holdID string) (time.Duration, error) {
	args := m.Called(ctx, holdID)
	return args.Get(0).(time.Duration), args.Error(1)
}

func (m *MockHoldStore) HeldSeats(ctx context.Context, showtimeID int) (map[int]domain.SeatClaim, error) {
	args := m.Called(ctx, showtimeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int]domain.SeatClaim), args.Error(1)
}

func (m *MockHoldStore) Remove(ctx context.Context, hold domain.Hold) error {
	args := m.Called(ctx, hold)
	return args.Error(0)
}

func (m *MockHoldStore) ExpiringWithin(ctx context.Context, window time.Duration) ([]domain.Hold, error) {
	args := m.Called(ctx, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Hold), args.Error(1)
}

func (m *MockHoldStore) MarkWarned(ctx context.Context, holdID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, holdID, ttl)
	return args.Bool(0), args.Error(1)
}

package mocks

import (
	"context"

	"github.com/metinatakli/cinema-booking-core/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockReconciliationRepo struct {
	mock.Mock
	domain.ReconciliationRepository
}

func (m *MockReconciliationRepo) Create(ctx context.Context, rec *domain.Reconciliation) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockReconciliationRepo) ListOpen(
	ctx context.Context,
	pagination domain.Pagination) ([]domain.Reconciliation, *domain.Metadata, error) {

	args := m.Called(ctx, pagination)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]domain.Reconciliation), args.Get(1).(*domain.Metadata), args.Error(2)
}

func (m *MockReconciliationRepo) Resolve(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

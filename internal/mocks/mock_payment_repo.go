package mocks

import (
	"context"

	"github.com/metinatakli/cinema-booking-core/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockPaymentRepo struct {
	mock.Mock
	domain.PaymentRepository
}

func (m *MockPaymentRepo) CreatePending(ctx context.Context, payment *domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepo) MarkFailed(ctx context.Context, holdID string, errMsg string) error {
	args := m.Called(ctx, holdID, errMsg)
	return args.Error(0)
}

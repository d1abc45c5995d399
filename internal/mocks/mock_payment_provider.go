package mocks

import (
	"context"

	"github.com/metinatakli/cinema-booking-core/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockPaymentProvider struct {
	mock.Mock
	domain.PaymentProvider
}

func (m *MockPaymentProvider) CreateCheckoutSession(ctx context.Context, hold domain.Hold) (*domain.CheckoutSession, error) {
	args := m.Called(ctx, hold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CheckoutSession), args.Error(1)
}

func (m *MockPaymentProvider) VerifyCallback(payload []byte, signature string) (*domain.PaymentCallback, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentCallback), args.Error(1)
}

package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

type PaymentMethod string

const (
	PaymentMethodCard PaymentMethod = "card"
	PaymentMethodCash PaymentMethod = "cash"
)

type Payment struct {
	ID          int
	HoldID      string
	TicketID    *int
	Method      PaymentMethod
	Amount      decimal.Decimal
	Currency    string
	Status      PaymentStatus
	ProviderRef *string
	ErrorMsg    *string
	PaidAt      *time.Time
	CreatedAt   time.Time
}

type PaymentRepository interface {
	CreatePending(ctx context.Context, payment *Payment) error
	MarkFailed(ctx context.Context, holdID string, errMsg string) error
}

package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

type CheckoutSession struct {
	ID  string
	URL string
}

type CallbackOutcome string

const (
	CallbackSucceeded CallbackOutcome = "succeeded"
	CallbackFailed    CallbackOutcome = "failed"
	CallbackIgnored   CallbackOutcome = "ignored"
	// CallbackReconciled is not sent by gateways; it reports a paid callback
	// that was recorded for reconciliation instead of issuing a ticket.
	CallbackReconciled CallbackOutcome = "reconciled"
)

// PaymentCallback is a gateway notification that already passed signature
// verification.
type PaymentCallback struct {
	EventID     string
	HoldID      string
	HolderID    string
	Amount      decimal.Decimal
	Currency    string
	Outcome     CallbackOutcome
	ProviderRef string
}

type PaymentProvider interface {
	CreateCheckoutSession(ctx context.Context, hold Hold) (*CheckoutSession, error)
	// VerifyCallback returns ErrInvalidSignature when the payload cannot be authenticated.
	VerifyCallback(payload []byte, signature string) (*PaymentCallback, error)
}

package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type ReconciliationReason string

const (
	ReasonHoldExpired    ReconciliationReason = "hold_expired"
	ReasonAmountMismatch ReconciliationReason = "amount_mismatch"
	ReasonSeatConflict   ReconciliationReason = "seat_conflict"
)

type ReconciliationStatus string

const (
	ReconciliationOpen     ReconciliationStatus = "open"
	ReconciliationResolved ReconciliationStatus = "resolved"
)

// Reconciliation records money that moved without a ticket being issued.
type Reconciliation struct {
	ID          int
	HoldID      string
	HolderID    string
	ShowtimeID  int
	Reason      ReconciliationReason
	Amount      decimal.Decimal
	Currency    string
	ProviderRef string
	Detail      string
	Status      ReconciliationStatus
	CreatedAt   time.Time
	ResolvedAt  *time.Time
}

// ReconciledError is returned once a payment that could not become a ticket
// has been recorded for reconciliation. It unwraps to the sentinel of its
// reason.
type ReconciledError struct {
	ReconciliationID int
	Reason           ReconciliationReason
	Err              error
}

func (e *ReconciledError) Error() string {
	return e.Err.Error()
}

func (e *ReconciledError) Unwrap() error {
	return e.Err
}

type ReconciliationRepository interface {
	// Create is idempotent per (hold, reason).
	Create(ctx context.Context, rec *Reconciliation) error
	ListOpen(ctx context.Context, pagination Pagination) ([]Reconciliation, *Metadata, error)
	Resolve(ctx context.Context, id int) error
}

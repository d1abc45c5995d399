package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinema-booking-core/internal/domain"
)

type PostgresPaymentRepository struct {
	db *pgxpool.Pool
}

func NewPostgresPaymentRepository(db *pgxpool.Pool) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{
		db: db,
	}
}

// CreatePending records a checkout attempt for a hold. Starting a new checkout
// for the same hold replaces the previous attempt unless it was already paid.
func (p *PostgresPaymentRepository) CreatePending(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (
			hold_id,
			method,
			amount,
			currency,
			status,
			provider_ref
		)
		VALUES ($1, $2, $3, $4, 'pending', $5)
		ON CONFLICT (hold_id) DO UPDATE
		SET amount = EXCLUDED.amount,
			currency = EXCLUDED.currency,
			method = EXCLUDED.method,
			provider_ref = EXCLUDED.provider_ref,
			status = 'pending',
			error_message = NULL,
			updated_at = NOW()
		WHERE payments.status <> 'paid'
		RETURNING id, status, created_at
	`

	err := p.db.QueryRow(
		ctx,
		query,
		payment.HoldID,
		payment.Method,
		payment.Amount,
		payment.Currency,
		payment.ProviderRef,
	).Scan(&payment.ID, &payment.Status, &payment.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		payment.Status = domain.PaymentStatusPaid
		return nil
	}

	return err
}

func (p *PostgresPaymentRepository) MarkFailed(ctx context.Context, holdID string, errMsg string) error {
	query := `
		UPDATE payments
		SET status = 'failed', error_message = $2, updated_at = NOW()
		WHERE hold_id = $1 AND status = 'pending'
	`

	_, err := p.db.Exec(ctx, query, holdID, errMsg)
	return err
}

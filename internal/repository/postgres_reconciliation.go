package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinema-booking-core/internal/domain"
)

type PostgresReconciliationRepository struct {
	db *pgxpool.Pool
}

func NewPostgresReconciliationRepository(db *pgxpool.Pool) *PostgresReconciliationRepository {
	return &PostgresReconciliationRepository{
		db: db,
	}
}

func (p *PostgresReconciliationRepository) Create(ctx context.Context, rec *domain.Reconciliation) error {
	query := `
		INSERT INTO reconciliations (
			hold_id,
			holder_id,
			showtime_id,
			reason,
			amount,
			currency,
			provider_ref,
			detail
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (hold_id, reason) DO NOTHING
		RETURNING id, status, created_at
	`

	err := p.db.QueryRow(
		ctx,
		query,
		rec.HoldID,
		rec.HolderID,
		rec.ShowtimeID,
		rec.Reason,
		rec.Amount,
		rec.Currency,
		rec.ProviderRef,
		rec.Detail,
	).Scan(&rec.ID, &rec.Status, &rec.CreatedAt)

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	// already recorded by an earlier delivery of the same callback
	query = `
		SELECT id, status, created_at, resolved_at
		FROM reconciliations
		WHERE hold_id = $1 AND reason = $2
	`

	return p.db.QueryRow(ctx, query, rec.HoldID, rec.Reason).
		Scan(&rec.ID, &rec.Status, &rec.CreatedAt, &rec.ResolvedAt)
}

func (p *PostgresReconciliationRepository) ListOpen(
	ctx context.Context,
	pagination domain.Pagination) ([]domain.Reconciliation, *domain.Metadata, error) {

	query := `
		SELECT
			COUNT(*) OVER(),
			id,
			hold_id,
			holder_id,
			showtime_id,
			reason,
			amount,
			currency,
			provider_ref,
			detail,
			status,
			created_at,
			resolved_at
		FROM reconciliations
		WHERE status = 'open'
		ORDER BY created_at, id
		LIMIT $1 OFFSET $2
	`

	rows, err := p.db.Query(ctx, query, pagination.Limit(), pagination.Offset())
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	recs := make([]domain.Reconciliation, 0)
	totalRecords := 0

	for rows.Next() {
		var rec domain.Reconciliation

		err := rows.Scan(
			&totalRecords,
			&rec.ID,
			&rec.HoldID,
			&rec.HolderID,
			&rec.ShowtimeID,
			&rec.Reason,
			&rec.Amount,
			&rec.Currency,
			&rec.ProviderRef,
			&rec.Detail,
			&rec.Status,
			&rec.CreatedAt,
			&rec.ResolvedAt,
		)
		if err != nil {
			return nil, nil, err
		}

		recs = append(recs, rec)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, err
	}

	metadata := domain.NewMetadata(totalRecords, pagination.Page, pagination.PageSize)

	return recs, metadata, nil
}

// Resolve is a no-op for an already resolved entry.
func (p *PostgresReconciliationRepository) Resolve(ctx context.Context, id int) error {
	query := `
		UPDATE reconciliations
		SET status = 'resolved', resolved_at = COALESCE(resolved_at, NOW())
		WHERE id = $1
	`

	tag, err := p.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

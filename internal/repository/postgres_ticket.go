package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinema-booking-core/internal/domain"
)

// enforces one active ticket per seat and showtime
const activeSeatIndex = "ticket_seats_active_uniq"

type PostgresTicketRepository struct {
	db *pgxpool.Pool
}

func NewPostgresTicketRepository(db *pgxpool.Pool) *PostgresTicketRepository {
	return &PostgresTicketRepository{
		db: db,
	}
}

// Create is idempotent per hold: a second call for a hold that already has a
// ticket fills ticket with the stored one and returns nil.
func (p *PostgresTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO tickets (showtime_id, hold_id, customer_id, total_price, status)
			VALUES ($1, $2, $3, $4, 'active')
			ON CONFLICT (hold_id) DO NOTHING
			RETURNING id, status, created_at
		`

		err := tx.QueryRow(
			ctx,
			query,
			ticket.ShowtimeID,
			ticket.HoldID,
			ticket.CustomerID,
			ticket.TotalPrice,
		).Scan(&ticket.ID, &ticket.Status, &ticket.CreatedAt)

		if errors.Is(err, pgx.ErrNoRows) {
			existing, err := getTicket(ctx, tx, "t.hold_id = $1", ticket.HoldID)
			if err != nil {
				return err
			}

			*ticket = *existing
			return nil
		}

		if err != nil {
			return err
		}

		rows := make([][]any, 0, len(ticket.SeatIDs))
		for _, seatID := range ticket.SeatIDs {
			rows = append(rows, []any{
				ticket.ID,
				ticket.ShowtimeID,
				seatID,
			})
		}

		_, err = tx.CopyFrom(
			ctx,
			pgx.Identifier{"ticket_seats"},
			[]string{"ticket_id", "showtime_id", "seat_id"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			if isUniqueViolation(err, activeSeatIndex) {
				return domain.NewSeatUnavailableError(ticket.SeatIDs)
			}

			return err
		}

		query = `
			INSERT INTO payments (hold_id, ticket_id, method, amount, currency, status, provider_ref, paid_at)
			VALUES ($1, $2, $3, $4, $5, 'paid', $6, NOW())
			ON CONFLICT (hold_id) DO UPDATE
			SET ticket_id = EXCLUDED.ticket_id,
				method = EXCLUDED.method,
				amount = EXCLUDED.amount,
				currency = EXCLUDED.currency,
				status = 'paid',
				provider_ref = COALESCE(EXCLUDED.provider_ref, payments.provider_ref),
				error_message = NULL,
				paid_at = NOW(),
				updated_at = NOW()
			RETURNING id, status, paid_at, created_at
		`

		payment := &ticket.Payment
		payment.HoldID = ticket.HoldID
		payment.TicketID = &ticket.ID

		return tx.QueryRow(
			ctx,
			query,
			ticket.HoldID,
			ticket.ID,
			payment.Method,
			payment.Amount,
			payment.Currency,
			payment.ProviderRef,
		).Scan(&payment.ID, &payment.Status, &payment.PaidAt, &payment.CreatedAt)
	})
}

func (p *PostgresTicketRepository) GetByID(ctx context.Context, id int) (*domain.Ticket, error) {
	return getTicket(ctx, p.db, "t.id = $1", id)
}

func (p *PostgresTicketRepository) GetByHoldID(ctx context.Context, holdID string) (*domain.Ticket, error) {
	return getTicket(ctx, p.db, "t.hold_id = $1", holdID)
}

func (p *PostgresTicketRepository) BookedSeatIDs(ctx context.Context, showtimeID int) ([]int, error) {
	query := `
		SELECT seat_id
		FROM ticket_seats
		WHERE showtime_id = $1 AND released_at IS NULL
		ORDER BY seat_id
	`

	rows, err := p.db.Query(ctx, query, showtimeID)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, pgx.RowTo[int])
}

// Cancel marks the ticket cancelled and frees its seats in one transaction.
func (p *PostgresTicketRepository) Cancel(ctx context.Context, id int) (*domain.Ticket, error) {
	var ticket *domain.Ticket

	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			UPDATE tickets
			SET status = 'cancelled', cancelled_at = NOW()
			WHERE id = $1 AND status = 'active'
		`

		tag, err := tx.Exec(ctx, query, id)
		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			existing, err := getTicket(ctx, tx, "t.id = $1", id)
			if err != nil {
				return err
			}

			if existing.Status == domain.TicketCancelled {
				return domain.ErrTicketAlreadyCancelled
			}

			return fmt.Errorf("ticket %d could not be cancelled", id)
		}

		query = `
			UPDATE ticket_seats
			SET released_at = NOW()
			WHERE ticket_id = $1 AND released_at IS NULL
		`

		if _, err = tx.Exec(ctx, query, id); err != nil {
			return err
		}

		ticket, err = getTicket(ctx, tx, "t.id = $1", id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return ticket, nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func getTicket(ctx context.Context, q querier, where string, arg any) (*domain.Ticket, error) {
	query := fmt.Sprintf(`
		SELECT
			t.id,
			t.showtime_id,
			t.hold_id,
			t.customer_id,
			t.total_price,
			t.status,
			t.created_at,
			t.cancelled_at,
			p.id,
			p.method,
			p.amount,
			p.currency,
			p.status,
			p.provider_ref,
			p.paid_at,
			p.created_at
		FROM tickets t
		JOIN payments p ON p.ticket_id = t.id
		WHERE %s
	`, where)

	var ticket domain.Ticket
	payment := &ticket.Payment

	err := q.QueryRow(ctx, query, arg).Scan(
		&ticket.ID,
		&ticket.ShowtimeID,
		&ticket.HoldID,
		&ticket.CustomerID,
		&ticket.TotalPrice,
		&ticket.Status,
		&ticket.CreatedAt,
		&ticket.CancelledAt,
		&payment.ID,
		&payment.Method,
		&payment.Amount,
		&payment.Currency,
		&payment.Status,
		&payment.ProviderRef,
		&payment.PaidAt,
		&payment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTicketNotFound
		}

		return nil, err
	}

	payment.HoldID = ticket.HoldID
	payment.TicketID = &ticket.ID

	rows, err := q.Query(ctx, `SELECT seat_id FROM ticket_seats WHERE ticket_id = $1 ORDER BY seat_id`, ticket.ID)
	if err != nil {
		return nil, err
	}

	ticket.SeatIDs, err = pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, err
	}

	return &ticket, nil
}

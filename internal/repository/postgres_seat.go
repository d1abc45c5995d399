package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinema-booking-core/internal/domain"
)

type PostgresSeatRepository struct {
	db *pgxpool.Pool
}

func NewPostgresSeatRepository(db *pgxpool.Pool) *PostgresSeatRepository {
	return &PostgresSeatRepository{
		db: db,
	}
}

func (p *PostgresSeatRepository) GetSeatsByShowtime(ctx context.Context, showtimeID int) (*domain.ShowtimeSeats, error) {
	showtimeSeats, err := p.getShowtime(ctx, showtimeID)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT se.id, se.seat_row, se.seat_col, se.seat_type, se.extra_price
		FROM showtimes sh
		JOIN seats se ON sh.hall_id = se.hall_id
		WHERE sh.id = $1
		ORDER BY se.seat_row, se.seat_col
	`

	showtimeSeats.Seats, err = p.querySeats(ctx, query, showtimeID)
	if err != nil {
		return nil, err
	}

	return showtimeSeats, nil
}

// GetSeatsByShowtimeAndSeatIds returns only the requested seats that exist in
// the showtime's hall; callers compare lengths to detect unknown ids.
func (p *PostgresSeatRepository) GetSeatsByShowtimeAndSeatIds(
	ctx context.Context,
	showtimeID int,
	seatIDs []int) (*domain.ShowtimeSeats, error) {

	showtimeSeats, err := p.getShowtime(ctx, showtimeID)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT se.id, se.seat_row, se.seat_col, se.seat_type, se.extra_price
		FROM showtimes sh
		JOIN seats se ON sh.hall_id = se.hall_id
		WHERE sh.id = $1 AND se.id = ANY($2)
		ORDER BY se.id
	`

	showtimeSeats.Seats, err = p.querySeats(ctx, query, showtimeID, seatIDs)
	if err != nil {
		return nil, err
	}

	return showtimeSeats, nil
}

func (p *PostgresSeatRepository) getShowtime(ctx context.Context, showtimeID int) (*domain.ShowtimeSeats, error) {
	query := `
		SELECT
			sh.id,
			sh.start_time,
			sh.base_price,
			m.title,
			t.id,
			t.name,
			h.id,
			h.name
		FROM showtimes sh
		JOIN movies m ON sh.movie_id = m.id
		JOIN halls h ON sh.hall_id = h.id
		JOIN theaters t ON h.theater_id = t.id
		WHERE sh.id = $1
	`

	var showtimeSeats domain.ShowtimeSeats

	err := p.db.QueryRow(ctx, query, showtimeID).Scan(
		&showtimeSeats.ShowtimeID,
		&showtimeSeats.Date,
		&showtimeSeats.Price,
		&showtimeSeats.MovieName,
		&showtimeSeats.TheaterID,
		&showtimeSeats.TheaterName,
		&showtimeSeats.HallID,
		&showtimeSeats.HallName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &showtimeSeats, nil
}

func (p *PostgresSeatRepository) querySeats(ctx context.Context, query string, args ...any) ([]domain.Seat, error) {
	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]domain.Seat, 0)

	for rows.Next() {
		var seat domain.Seat

		err = rows.Scan(
			&seat.ID,
			&seat.Row,
			&seat.Col,
			&seat.Type,
			&seat.ExtraPrice,
		)
		if err != nil {
			return nil, err
		}

		seats = append(seats, seat)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return seats, nil
}

// Package holdstore implements domain.HoldStore on Redis and in memory.
package holdstore

import (
	"time"

	"github.com/metinatakli/cinema-booking-core/internal/domain"
	"github.com/shopspring/decimal"
)

type holdRecord struct {
	ID           string          `json:"id"`
	ShowtimeID   int             `json:"showtime_id"`
	HolderID     string          `json:"holder_id"`
	ContactEmail string          `json:"contact_email,omitempty"`
	MovieName    string          `json:"movie_name"`
	TheaterName  string          `json:"theater_name"`
	HallName     string          `json:"hall_name"`
	Date         time.Time       `json:"date"`
	BasePrice    decimal.Decimal `json:"base_price"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	Seats        []seatRecord    `json:"seats"`
	CreatedAt    time.Time       `json:"created_at"`
	ExpiresAt    time.Time       `json:"expires_at"`
}

type seatRecord struct {
	ID         int             `json:"id"`
	Row        int             `json:"row"`
	Col        int             `json:"col"`
	SeatType   string          `json:"seat_type"`
	ExtraPrice decimal.Decimal `json:"extra_price"`
}

type claimRecord struct {
	HoldID    string    `json:"hold_id"`
	HolderID  string    `json:"holder_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

func toHoldRecord(h domain.Hold) holdRecord {
	seats := make([]seatRecord, len(h.Seats))
	for i, s := range h.Seats {
		seats[i] = seatRecord(s)
	}

	return holdRecord{
		ID:           h.ID,
		ShowtimeID:   h.ShowtimeID,
		HolderID:     h.HolderID,
		ContactEmail: h.ContactEmail,
		MovieName:    h.MovieName,
		TheaterName:  h.TheaterName,
		HallName:     h.HallName,
		Date:         h.Date,
		BasePrice:    h.BasePrice,
		TotalPrice:   h.TotalPrice,
		Seats:        seats,
		CreatedAt:    h.CreatedAt,
		ExpiresAt:    h.ExpiresAt,
	}
}

func (r holdRecord) toDomain() domain.Hold {
	seats := make([]domain.HoldSeat, len(r.Seats))
	for i, s := range r.Seats {
		seats[i] = domain.HoldSeat(s)
	}

	return domain.Hold{
		ID:           r.ID,
		ShowtimeID:   r.ShowtimeID,
		HolderID:     r.HolderID,
		ContactEmail: r.ContactEmail,
		MovieName:    r.MovieName,
		TheaterName:  r.TheaterName,
		HallName:     r.HallName,
		Date:         r.Date,
		BasePrice:    r.BasePrice,
		TotalPrice:   r.TotalPrice,
		Seats:        seats,
		CreatedAt:    r.CreatedAt,
		ExpiresAt:    r.ExpiresAt,
	}
}

func claimOf(h domain.Hold) claimRecord {
	return claimRecord{
		HoldID:    h.ID,
		HolderID:  h.HolderID,
		ExpiresAt: h.ExpiresAt,
	}
}

func (c claimRecord) toDomain() domain.SeatClaim {
	return domain.SeatClaim(c)
}

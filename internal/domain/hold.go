package domain

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Hold is a short-lived claim on a set of seats for one showtime. It only ever
// lives in the hold store and disappears on its own once its TTL runs out.
type Hold struct {
	ID           string
	ShowtimeID   int
	HolderID     string
	ContactEmail string
	MovieName    string
	TheaterName  string
	HallName     string
	Date         time.Time
	BasePrice    decimal.Decimal
	TotalPrice   decimal.Decimal
	Seats        []HoldSeat
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

type HoldSeat struct {
	ID         int
	Row        int
	Col        int
	SeatType   string
	ExtraPrice decimal.Decimal
}

func NewHold(showtimeSeats *ShowtimeSeats, holderID string, now time.Time, ttl time.Duration) Hold {
	seats := toHoldSeats(showtimeSeats.Seats)

	return Hold{
		ID:          uuid.New().String(),
		ShowtimeID:  showtimeSeats.ShowtimeID,
		HolderID:    holderID,
		MovieName:   showtimeSeats.MovieName,
		TheaterName: showtimeSeats.TheaterName,
		HallName:    showtimeSeats.HallName,
		Date:        showtimeSeats.Date,
		BasePrice:   showtimeSeats.Price,
		TotalPrice:  calculateTotalPrice(showtimeSeats.Price, seats),
		Seats:       seats,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}
}

func (h Hold) SeatIDs() []int {
	ids := make([]int, len(h.Seats))
	for i, s := range h.Seats {
		ids[i] = s.ID
	}

	slices.Sort(ids)

	return ids
}

func (h Hold) OwnedBy(holderID string) bool {
	return holderID != "" && h.HolderID == holderID
}

func (h Hold) Expired(now time.Time) bool {
	return !now.Before(h.ExpiresAt)
}

func (h Hold) TimeRemaining(now time.Time) time.Duration {
	if h.Expired(now) {
		return 0
	}

	return h.ExpiresAt.Sub(now)
}

// SeatClaim is the per-seat entry of a hold: "seat held until ExpiresAt by HolderID".
type SeatClaim struct {
	HoldID    string
	HolderID  string
	ExpiresAt time.Time
}

func calculateTotalPrice(basePrice decimal.Decimal, seats []HoldSeat) decimal.Decimal {
	total := decimal.Zero

	for _, v := range seats {
		total = total.Add(basePrice.Add(v.ExtraPrice))
	}

	return total
}

func toHoldSeats(seats []Seat) []HoldSeat {
	holdSeats := make([]HoldSeat, len(seats))

	for i, seat := range seats {
		holdSeats[i] = HoldSeat{
			ID:         seat.ID,
			Row:        seat.Row,
			Col:        seat.Col,
			SeatType:   seat.Type,
			ExtraPrice: seat.ExtraPrice,
		}
	}

	return holdSeats
}

// HoldStore keeps holds and their per-seat claims. Entries expire on their own;
// an expired entry and a removed entry are indistinguishable to callers.
type HoldStore interface {
	// Put writes the hold only if none of its seats has a live claim. A conflict
	// returns a *SeatUnavailableError naming the claimed seats.
	Put(ctx context.Context, hold Hold) error
	Get(ctx context.Context, holdID string) (*Hold, error)
	Claim(ctx context.Context, showtimeID, seatID int) (*SeatClaim, error)
	HeldSeats(ctx context.Context, showtimeID int) (map[int]SeatClaim, error)
	Remove(ctx context.Context, hold Hold) error
	TimeRemaining(ctx context.Context, holdID string) (time.Duration, error)
	ExpiringWithin(ctx context.Context, window time.Duration) ([]Hold, error)
	MarkWarned(ctx context.Context, holdID string, ttl time.Duration) (bool, error)
}

package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type ShowtimeSeats struct {
	ShowtimeID  int
	TheaterID   int
	TheaterName string
	MovieName   string
	HallID      int
	HallName    string
	Date        time.Time
	Price       decimal.Decimal
	Seats       []Seat
}

// Seat holds the immutable physical attributes of a seat in a hall.
type Seat struct {
	ID         int
	Row        int
	Col        int
	Type       string
	ExtraPrice decimal.Decimal
}

type SeatState string

const (
	SeatAvailable SeatState = "available"
	SeatHeld      SeatState = "held"
	SeatBooked    SeatState = "booked"
)

type SeatAvailability struct {
	Seat
	State SeatState
}

func (s SeatAvailability) Bookable() bool {
	return s.State == SeatAvailable
}

type SeatRepository interface {
	GetSeatsByShowtime(ctx context.Context, showtimeID int) (*ShowtimeSeats, error)
	GetSeatsByShowtimeAndSeatIds(ctx context.Context, showtimeID int, seatIDs []int) (*ShowtimeSeats, error)
}

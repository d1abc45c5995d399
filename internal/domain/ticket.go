package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type TicketStatus string

const (
	TicketActive    TicketStatus = "active"
	TicketCancelled TicketStatus = "cancelled"
)

type Ticket struct {
	ID          int
	ShowtimeID  int
	HoldID      string
	CustomerID  string
	SeatIDs     []int
	TotalPrice  decimal.Decimal
	Status      TicketStatus
	Payment     Payment
	CreatedAt   time.Time
	CancelledAt *time.Time
}

type TicketRepository interface {
	// Create writes the ticket, its payment and its seats in one transaction. A
	// seat that already belongs to an active ticket fails the whole write with
	// ErrSeatUnavailable.
	Create(ctx context.Context, ticket *Ticket) error
	GetByID(ctx context.Context, id int) (*Ticket, error)
	GetByHoldID(ctx context.Context, holdID string) (*Ticket, error)
	BookedSeatIDs(ctx context.Context, showtimeID int) ([]int, error)
	Cancel(ctx context.Context, id int) (*Ticket, error)
}

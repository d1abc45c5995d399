package domain

import (
	"context"
	"time"
)

type NotificationKind string

const (
	NotifyHoldExpiring NotificationKind = "hold_expiring"
	NotifyTicketBooked NotificationKind = "ticket_booked"
)

type Notification struct {
	Kind       NotificationKind
	HolderID   string
	Email      string
	HoldID     string
	TicketID   int
	ShowtimeID int
	MovieName  string
	SeatIDs    []int
	ExpiresAt  time.Time
}

// Notifier is fire-and-forget from the caller's point of view.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

type EventType string

const (
	EventHoldCreated            EventType = "hold.created"
	EventHoldReleased           EventType = "hold.released"
	EventHoldExpiring           EventType = "hold.expiring"
	EventTicketBooked           EventType = "ticket.booked"
	EventTicketCancelled        EventType = "ticket.cancelled"
	EventReconciliationRequired EventType = "payment.reconciliation_required"
)

type Event struct {
	Type       EventType `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload"`
}

type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

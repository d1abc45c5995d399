// Package notify delivers customer-facing notifications over email and the
// event broker.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/metinatakli/cinema-booking-core/internal/clock"
	"github.com/metinatakli/cinema-booking-core/internal/domain"
	"github.com/metinatakli/cinema-booking-core/internal/mailer"
)

var templates = map[domain.NotificationKind]string{
	domain.NotifyHoldExpiring: "hold_expiring.tmpl",
	domain.NotifyTicketBooked: "ticket_booked.tmpl",
}

type MailNotifier struct {
	mailer mailer.Mailer
}

func NewMailNotifier(m mailer.Mailer) *MailNotifier {
	return &MailNotifier{
		mailer: m,
	}
}

// Notify is a no-op for holders that left no contact address.
func (n *MailNotifier) Notify(_ context.Context, notification domain.Notification) error {
	if notification.Email == "" {
		return nil
	}

	tmpl, ok := templates[notification.Kind]
	if !ok {
		return fmt.Errorf("no email template for notification %q", notification.Kind)
	}

	data := map[string]any{
		"MovieName": notification.MovieName,
		"Seats":     joinSeats(notification.SeatIDs),
		"ExpiresAt": notification.ExpiresAt.Format("15:04 MST"),
		"TicketID":  notification.TicketID,
		"HoldID":    notification.HoldID,
	}

	return n.mailer.Send(notification.Email, tmpl, data)
}

var eventTypes = map[domain.NotificationKind]domain.EventType{
	domain.NotifyHoldExpiring: domain.EventHoldExpiring,
	domain.NotifyTicketBooked: domain.EventTicketBooked,
}

// PublisherNotifier hands notifications to the broker so other channels
// (push, SMS) can pick them up.
type PublisherNotifier struct {
	publisher domain.EventPublisher
	clock     clock.Clock
}

func NewPublisherNotifier(publisher domain.EventPublisher, clk clock.Clock) *PublisherNotifier {
	return &PublisherNotifier{
		publisher: publisher,
		clock:     clk,
	}
}

func (n *PublisherNotifier) Notify(ctx context.Context, notification domain.Notification) error {
	eventType, ok := eventTypes[notification.Kind]
	if !ok {
		return fmt.Errorf("no event type for notification %q", notification.Kind)
	}

	return n.publisher.Publish(ctx, domain.Event{
		Type:       eventType,
		Key:        notification.HoldID,
		OccurredAt: n.clock.Now(),
		Payload: map[string]any{
			"holderId":   notification.HolderID,
			"holdId":     notification.HoldID,
			"ticketId":   notification.TicketID,
			"showtimeId": notification.ShowtimeID,
			"seatIds":    notification.SeatIDs,
			"expiresAt":  notification.ExpiresAt,
		},
	})
}

// Notifiers sends to every channel and reports all failures together.
type Notifiers []domain.Notifier

func (ns Notifiers) Notify(ctx context.Context, notification domain.Notification) error {
	var errs []error

	for _, n := range ns {
		if err := n.Notify(ctx, notification); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func joinSeats(seatIDs []int) string {
	parts := make([]string, len(seatIDs))
	for i, id := range seatIDs {
		parts[i] = strconv.Itoa(id)
	}

	return strings.Join(parts, ", ")
}

package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/metinatakli/cinema-booking-core/internal/clock"
	"github.com/metinatakli/cinema-booking-core/internal/domain"
	"github.com/metinatakli/cinema-booking-core/internal/mailer"
	"github.com/metinatakli/cinema-booking-core/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func expiringNotification() domain.Notification {
	return domain.Notification{
		Kind:       domain.NotifyHoldExpiring,
		HolderID:   "session-1",
		Email:      "jane@example.com",
		HoldID:     "hold-1",
		ShowtimeID: 3,
		MovieName:  "Arrival",
		SeatIDs:    []int{4, 5},
		ExpiresAt:  time.Date(2026, 3, 1, 18, 10, 0, 0, time.UTC),
	}
}

func TestMailNotifier(t *testing.T) {
	ctx := context.Background()

	t.Run("sends the kind's template", func(t *testing.T) {
		m := mailer.NewMockMailer()
		n := NewMailNotifier(m)

		require.NoError(t, n.Notify(ctx, expiringNotification()))

		sent := m.GetSentEmails()
		require.Len(t, sent, 1)
		assert.Equal(t, "jane@example.com", sent[0].Recipient)
		assert.Equal(t, "hold_expiring.tmpl", sent[0].TemplateFile)
		assert.Equal(t, "4, 5", sent[0].Data.(map[string]any)["Seats"])
	})

	t.Run("skips holders without email", func(t *testing.T) {
		m := mailer.NewMockMailer()
		n := NewMailNotifier(m)

		notification := expiringNotification()
		notification.Email = ""

		require.NoError(t, n.Notify(ctx, notification))
		assert.Empty(t, m.GetSentEmails())
	})
}

func TestPublisherNotifier(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 18, 8, 0, 0, time.UTC)

	publisher := new(mocks.MockEventPublisher)
	publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e domain.Event) bool {
		return e.Type == domain.EventHoldExpiring && e.Key == "hold-1" && e.OccurredAt.Equal(now)
	})).Return(nil)

	n := NewPublisherNotifier(publisher, clock.NewFake(now))

	require.NoError(t, n.Notify(ctx, expiringNotification()))
	publisher.AssertExpectations(t)
}

type failingNotifier struct{ err error }

func (f failingNotifier) Notify(context.Context, domain.Notification) error { return f.err }

func TestNotifiers(t *testing.T) {
	m := mailer.NewMockMailer()
	boom := errors.New("broker down")

	ns := Notifiers{failingNotifier{err: boom}, NewMailNotifier(m)}

	err := ns.Notify(context.Background(), expiringNotification())
	require.ErrorIs(t, err, boom)
	// later channels still run
	assert.Len(t, m.GetSentEmails(), 1)
}

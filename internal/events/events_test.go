package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/metinatakli/cinema-booking-core/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent() domain.Event {
	return domain.Event{
		Type:       domain.EventTicketBooked,
		Key:        "hold-1",
		OccurredAt: time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC),
		Payload:    map[string]any{"ticketId": 7},
	}
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "cinema.booking.ticket.booked", Topic(domain.EventTicketBooked))
}

func TestKafkaPublisher(t *testing.T) {
	ctx := context.Background()

	t.Run("sends json encoded event", func(t *testing.T) {
		producer := mocks.NewSyncProducer(t, sarama.NewConfig())
		producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
			var event map[string]any
			if err := json.Unmarshal(val, &event); err != nil {
				return err
			}

			if event["type"] != "ticket.booked" || event["key"] != "hold-1" {
				return errors.New("unexpected event body")
			}

			return nil
		})

		publisher := NewKafkaPublisher(producer)

		require.NoError(t, publisher.Publish(ctx, testEvent()))
		require.NoError(t, publisher.Close())
	})

	t.Run("returns broker failure", func(t *testing.T) {
		producer := mocks.NewSyncProducer(t, sarama.NewConfig())
		producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

		publisher := NewKafkaPublisher(producer)

		err := publisher.Publish(ctx, testEvent())
		require.ErrorIs(t, err, sarama.ErrOutOfBrokers)
		require.NoError(t, publisher.Close())
	})
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	publisher := NewLogPublisher(logger)

	require.NoError(t, publisher.Publish(context.Background(), testEvent()))
	assert.Contains(t, buf.String(), "topic=cinema.booking.ticket.booked")
	assert.Contains(t, buf.String(), "key=hold-1")
}

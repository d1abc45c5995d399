// Package events publishes booking domain events to a message broker.
package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/metinatakli/cinema-booking-core/internal/domain"
)

const Exchange = "cinema.booking"

// Topic is the routing key and Kafka topic of an event type.
func Topic(eventType domain.EventType) string {
	return Exchange + "." + string(eventType)
}

func encode(event domain.Event) ([]byte, error) {
	return json.Marshal(event)
}

// LogPublisher writes events to the log instead of a broker.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{
		logger: logger,
	}
}

func (p *LogPublisher) Publish(ctx context.Context, event domain.Event) error {
	body, err := encode(event)
	if err != nil {
		return err
	}

	p.logger.InfoContext(ctx, "event published",
		"topic", Topic(event.Type),
		"key", event.Key,
		"event", string(body))

	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}

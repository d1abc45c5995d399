package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/metinatakli/cinema-booking-core/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPPublisher sends events to a durable topic exchange as persistent messages.
type AMQPPublisher struct {
	conn *amqp.Connection

	mu sync.Mutex
	ch *amqp.Channel
}

func NewAMQPPublisher(url string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: dial failed: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq: channel open failed: %w", err)
	}

	err = ch.ExchangeDeclare(
		Exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // autoDelete
		false,    // internal
		false,    // noWait
		nil,      // args
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq: exchange declare failed: %w", err)
	}

	return &AMQPPublisher{
		conn: conn,
		ch:   ch,
	}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, event domain.Event) error {
	body, err := encode(event)
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.OccurredAt,
		Type:         string(event.Type),
		MessageId:    event.Key,
		Body:         body,
	}

	// a channel is not safe for concurrent publishing
	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx,
		Exchange,           // exchange
		string(event.Type), // routing key
		false,              // mandatory
		false,              // immediate
		pub,
	)
	if err != nil {
		return fmt.Errorf("rabbitmq: publish %s failed: %w", event.Type, err)
	}

	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	chErr := p.ch.Close()
	connErr := p.conn.Close()

	if chErr != nil {
		return chErr
	}

	return connErr
}

package events

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/metinatakli/cinema-booking-core/internal/domain"
)

type KafkaPublisher struct {
	producer sarama.SyncProducer
}

func NewKafkaProducer(brokers []string) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}

	return producer, nil
}

func NewKafkaPublisher(producer sarama.SyncProducer) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
	}
}

// Publish keys messages by event key so all events of one hold or ticket land
// on the same partition in order.
func (p *KafkaPublisher) Publish(_ context.Context, event domain.Event) error {
	data, err := encode(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: Topic(event.Type),
		Key:   sarama.StringEncoder(event.Key),
		Value: sarama.ByteEncoder(data),
	}

	if _, _, err := p.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("failed to send message to topic %s: %w", msg.Topic, err)
	}

	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

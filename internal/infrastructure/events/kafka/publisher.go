// Package kafka provides an EventPublisher implementation using Kafka.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"github.com/ersonp/biblio-core/internal/domain/entities"
	"github.com/ersonp/biblio-core/internal/domain/ports"
	"github.com/ersonp/biblio-core/internal/infrastructure/config"
)

var _ ports.EventPublisher = (*Publisher)(nil)

// Publisher sends revision events to a Kafka topic. Messages are keyed by
// target ID so the events of one entity or relationship stay ordered
// within a partition.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewPublisher connects a synchronous producer to the configured brokers.
func NewPublisher(cfg config.KafkaConfig) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka topic is required")
	}

	producer, err := sarama.NewSyncProducer(cfg.Brokers, ProducerConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("creating kafka producer: %w", err)
	}

	return newPublisher(producer, cfg.Topic), nil
}

// ProducerConfig returns the sarama configuration used for revision events.
func ProducerConfig(cfg config.KafkaConfig) *sarama.Config {
	sc := sarama.NewConfig()
	sc.Version = sarama.V2_8_0_0
	if cfg.ClientID != "" {
		sc.ClientID = cfg.ClientID
	}

	sc.Producer.RequiredAcks = sarama.WaitForLocal
	sc.Producer.Retry.Max = 3
	sc.Producer.Return.Successes = true
	sc.Producer.Compression = sarama.CompressionSnappy
	sc.Producer.Timeout = 5 * time.Second
	sc.Producer.MaxMessageBytes = 1024 * 1024
	return sc
}

func newPublisher(producer sarama.SyncProducer, topic string) *Publisher {
	return &Publisher{
		producer: producer,
		topic:    topic,
	}
}

// Publish sends one event and waits for the broker acknowledgement.
func (p *Publisher) Publish(ctx context.Context, event *entities.RevisionEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.TargetID),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(event.EventType)},
			{Key: []byte("event_id"), Value: []byte(event.EventID)},
		},
		Timestamp: event.OccurredAt,
	}

	if _, _, err := p.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("sending %s event: %w", event.EventType, err)
	}
	return nil
}

// Close flushes and closes the producer.
func (p *Publisher) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("closing kafka producer: %w", err)
	}
	return nil
}

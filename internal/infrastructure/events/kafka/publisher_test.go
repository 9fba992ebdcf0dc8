package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/biblio-core/internal/domain/entities"
	"github.com/ersonp/biblio-core/internal/infrastructure/config"
)

func testEvent() *entities.RevisionEvent {
	parent := int64(1)
	return &entities.RevisionEvent{
		EventID:       "0b7c1c1e-6a57-4e55-9a55-7a3f7d1d2c01",
		EventType:     entities.EventEntityUpdated,
		TargetID:      "8f2ad7bb-6f0c-4b3a-9d1e-0c8b2b1a5f11",
		EntityKind:    entities.KindCreator,
		RevisionID:    2,
		ParentID:      &parent,
		EditorID:      7,
		FieldsChanged: []string{"aliases"},
		OccurredAt:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNewPublisher_Validation(t *testing.T) {
	tests := []struct {
		name   string
		cfg    config.KafkaConfig
		errMsg string
	}{
		{name: "no brokers", cfg: config.KafkaConfig{Topic: "biblio.revisions"}, errMsg: "brokers are required"},
		{name: "no topic", cfg: config.KafkaConfig{Brokers: []string{"localhost:9092"}}, errMsg: "topic is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPublisher(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.Nil(t, p)
		})
	}
}

func TestProducerConfig(t *testing.T) {
	sc := ProducerConfig(config.KafkaConfig{ClientID: "biblio-core"})

	require.NoError(t, sc.Validate())
	assert.Equal(t, "biblio-core", sc.ClientID)
	assert.True(t, sc.Producer.Return.Successes)
	assert.Equal(t, sarama.WaitForLocal, sc.Producer.RequiredAcks)
}

func TestPublisher_Publish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	publisher := newPublisher(producer, "biblio.revisions")

	event := testEvent()
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "biblio.revisions" {
			return errors.New("wrong topic " + msg.Topic)
		}
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != event.TargetID {
			return errors.New("message not keyed by target")
		}

		raw, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var decoded entities.RevisionEvent
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return err
		}
		if decoded.RevisionID != 2 || decoded.EventType != entities.EventEntityUpdated {
			return errors.New("unexpected payload")
		}
		return nil
	})

	require.NoError(t, publisher.Publish(context.Background(), event))
	require.NoError(t, publisher.Close())
}

func TestPublisher_PublishFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	publisher := newPublisher(producer, "biblio.revisions")

	producer.ExpectSendMessageAndFail(sarama.ErrNotLeaderForPartition)

	err := publisher.Publish(context.Background(), testEvent())
	require.Error(t, err)
	assert.ErrorIs(t, err, sarama.ErrNotLeaderForPartition)
	assert.Contains(t, err.Error(), entities.EventEntityUpdated)
	require.NoError(t, publisher.Close())
}

func TestPublisher_CanceledContext(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	publisher := newPublisher(producer, "biblio.revisions")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := publisher.Publish(ctx, testEvent())
	assert.ErrorIs(t, err, context.Canceled)
	require.NoError(t, publisher.Close())
}

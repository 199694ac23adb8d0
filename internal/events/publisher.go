package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/ikkim/shopfront/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// Publisher sends checkout events.
type Publisher interface {
	Publish(ctx context.Context, partitionKey string, events ...Envelope) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes envelopes to one topic, keyed so a checkout's events
// land on one partition.
type KafkaPublisher struct {
	w     messageWriter
	topic string
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 50 * time.Millisecond,
		},
		topic: topic,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, partitionKey string, events ...Envelope) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, ev := range events {
		value, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("encode event %s: %w", ev.EventID, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(partitionKey),
			Value: value,
			Time:  ev.OccurredAt,
			Headers: []kafka.Header{
				{Key: "x-event-type", Value: []byte(ev.EventType)},
				{Key: "x-event-version", Value: []byte(strconv.Itoa(ev.EventVersion))},
			},
		})
	}

	if err := p.w.WriteMessages(ctx, msgs...); err != nil {
		logger.Error("Failed to publish checkout events", err, map[string]interface{}{
			"topic": p.topic,
			"count": len(msgs),
		})
		return err
	}

	logger.Debug("Checkout events published", map[string]interface{}{
		"topic": p.topic,
		"count": len(msgs),
	})
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

// NopPublisher drops events; used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, ...Envelope) error { return nil }
func (NopPublisher) Close() error { return nil }

// NewPublisher picks Kafka when brokers are configured.
func NewPublisher(brokers []string, topic string) Publisher {
	if len(brokers) == 0 {
		logger.Info("Kafka brokers not configured; checkout events disabled", nil)
		return NopPublisher{}
	}
	logger.Info("Kafka publisher configured", map[string]interface{}{
		"brokers": brokers,
		"topic":   topic,
	})
	return NewKafkaPublisher(brokers, topic)
}

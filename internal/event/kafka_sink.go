package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink forwards bus events to a Kafka topic, keyed by event type so all
// events of one kind land on the same partition.
type KafkaSink struct {
	writer       messageWriter
	writeTimeout time.Duration
}

func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	return newKafkaSink(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	})
}

func newKafkaSink(writer messageWriter) *KafkaSink {
	return &KafkaSink{writer: writer, writeTimeout: 5 * time.Second}
}

// Start subscribes to bus before returning and forwards events until ctx is
// cancelled or the subscription closes.
func (s *KafkaSink) Start(ctx context.Context, bus Bus) {
	events, unsubscribe := bus.Subscribe()
	go s.consume(ctx, events, unsubscribe)
}

func (s *KafkaSink) consume(ctx context.Context, events <-chan Event, unsubscribe func()) {
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if err := s.Write(ctx, e); err != nil {
				slog.Error("failed to forward event to kafka", "type", string(e.Type), "event_id", e.ID, "error", err)
			}
		}
	}
}

func (s *KafkaSink) Write(ctx context.Context, e Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("kafka: marshal event: %w", err)
	}

	writeCtx, cancel := context.WithTimeout(ctx, s.writeTimeout)
	defer cancel()

	if err := s.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(e.Type),
		Value: value,
	}); err != nil {
		return fmt.Errorf("kafka: write message: %w", err)
	}
	return nil
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/model"
)

// EventTypeTargetReached is the event type published for target-reached notifications.
const EventTypeTargetReached = "TARGET_REACHED"

// TargetReachedEvent is the message value published to Kafka.
type TargetReachedEvent struct {
	EventType string              `json:"event_type"`
	Alert     model.TargetReached `json:"alert"`
	Timestamp time.Time           `json:"timestamp"`
}

// MessageWriter is the part of *kafka.Writer the notifier uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes notifications to a Kafka topic, keyed by holding name.
type KafkaNotifier struct {
	writer MessageWriter
	logger *zap.Logger
}

// NewKafkaNotifier creates a notifier writing to topic on brokers.
func NewKafkaNotifier(brokers []string, topic string, logger *zap.Logger) *KafkaNotifier {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return NewKafkaNotifierWithWriter(writer, logger)
}

// NewKafkaNotifierWithWriter creates a notifier on top of an existing writer.
func NewKafkaNotifierWithWriter(writer MessageWriter, logger *zap.Logger) *KafkaNotifier {
	return &KafkaNotifier{
		writer: writer,
		logger: logger,
	}
}

// Notify implements Notifier.
func (n *KafkaNotifier) Notify(ctx context.Context, alert model.TargetReached) {
	if err := n.publish(ctx, alert); err != nil {
		n.logger.Warn("publishing target alert", zap.String("name", alert.Name), zap.Error(err))
	}
}

func (n *KafkaNotifier) publish(ctx context.Context, alert model.TargetReached) error {
	data, err := json.Marshal(TargetReachedEvent{
		EventType: EventTypeTargetReached,
		Alert:     alert,
		Timestamp: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(alert.Name),
		Value: data,
	}

	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}

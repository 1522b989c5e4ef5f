package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// EventOrderPlaced is the event type published for new orders.
const EventOrderPlaced = "order.placed"

// messageWriter is satisfied by *kafka.Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes order events for downstream consumers.
type Kafka struct {
	writer messageWriter
}

// NewKafka creates a synchronous writer for topic on brokers.
func NewKafka(brokers []string, topic string) *Kafka {
	return &Kafka{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
		Async:        false,
	}}
}

// OrderEvent is the JSON value of an order.placed message.
type OrderEvent struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurredAt"`
	Order      OrderNotice `json:"order"`
}

// NotifyOrderPlaced writes one message keyed by order id.
func (k *Kafka) NotifyOrderPlaced(ctx context.Context, n OrderNotice) error {
	value, err := json.Marshal(OrderEvent{Type: EventOrderPlaced, OccurredAt: time.Now().UTC(), Order: n})
	if err != nil {
		return fmt.Errorf("kafka: marshal: %w", err)
	}
	if err := k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(n.OrderID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(EventOrderPlaced)},
		},
	}); err != nil {
		return fmt.Errorf("kafka: write: %w", err)
	}
	return nil
}

// Close flushes and closes the writer.
func (k *Kafka) Close() error {
	return k.writer.Close()
}

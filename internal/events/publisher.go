// Package events publishes order lifecycle events for the
// notification and loyalty subsystems to consume asynchronously. The
// pricing pipeline itself never blocks on delivery.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/koliko-eats/koliko-orders-service/internal/config"
	"github.com/koliko-eats/koliko-orders-service/internal/logging"
	"github.com/koliko-eats/koliko-orders-service/internal/models"
)

// EventType identifies an order lifecycle event.
type EventType string

const (
	EventTypeOrderPriced EventType = "order.priced"
	EventTypeQuoteFailed EventType = "order.quote_failed"
)

// OrderEvent is the envelope written to the order events topic.
type OrderEvent struct {
	Type       EventType       `json:"type"`
	CustomerID string          `json:"customer_id"`
	Data       json.RawMessage `json:"data"`
	Timestamp  time.Time       `json:"timestamp"`
}

// Publisher emits order lifecycle events.
type Publisher interface {
	PublishOrderPriced(ctx context.Context, customerID string, order *models.PricedOrder) error
	PublishQuoteFailed(ctx context.Context, customerID, reason string) error
}

// KafkaPublisher implements Publisher on a Kafka topic, keyed by
// customer so one customer's events stay ordered.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *logging.Logger
}

func NewKafkaPublisher(cfg config.KafkaConfig) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.OrdersTopic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaPublisher{
		writer: writer,
		logger: logging.NewLogger("order-events"),
	}
}

func (p *KafkaPublisher) PublishOrderPriced(ctx context.Context, customerID string, order *models.PricedOrder) error {
	data, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return p.publish(ctx, &OrderEvent{
		Type:       EventTypeOrderPriced,
		CustomerID: customerID,
		Data:       data,
		Timestamp:  time.Now(),
	})
}

func (p *KafkaPublisher) PublishQuoteFailed(ctx context.Context, customerID, reason string) error {
	data, err := json.Marshal(map[string]string{"reason": reason})
	if err != nil {
		return err
	}
	return p.publish(ctx, &OrderEvent{
		Type:       EventTypeQuoteFailed,
		CustomerID: customerID,
		Data:       data,
		Timestamp:  time.Now(),
	})
}

func (p *KafkaPublisher) publish(ctx context.Context, event *OrderEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.CustomerID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish event", logging.Fields{
			"event_type":  event.Type,
			"customer_id": event.CustomerID,
			"error":       err.Error(),
		})
		return err
	}

	return nil
}

// Close closes the underlying Kafka writer.
func (p *KafkaPublisher) Close() error {
	p.logger.Info("Closing event publisher", nil)
	return p.writer.Close()
}

// MockPublisher records events for tests.
type MockPublisher struct {
	Events []*OrderEvent
	Err    error
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) PublishOrderPriced(ctx context.Context, customerID string, order *models.PricedOrder) error {
	if m.Err != nil {
		return m.Err
	}
	data, _ := json.Marshal(order)
	m.Events = append(m.Events, &OrderEvent{
		Type:       EventTypeOrderPriced,
		CustomerID: customerID,
		Data:       data,
		Timestamp:  time.Now(),
	})
	return nil
}

func (m *MockPublisher) PublishQuoteFailed(ctx context.Context, customerID, reason string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Events = append(m.Events, &OrderEvent{
		Type:       EventTypeQuoteFailed,
		CustomerID: customerID,
		Timestamp:  time.Now(),
	})
	return nil
}

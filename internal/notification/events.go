package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chandraa-ads/sthree-backend/internal/model"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Kafka topics for order lifecycle events.
const (
	TopicOrderCreated   = "order-created"
	TopicOrderConfirmed = "order-confirmed"
	TopicOrderPaid      = "order-paid"
	TopicOrderReminder  = "order-reminder"
)

// OrderEvent is the payload published to Kafka for every order
// lifecycle change. Downstream consumers (analytics, fulfilment)
// key on the order ID.
type OrderEvent struct {
	OrderID       string    `json:"order_id"`
	UserID        string    `json:"user_id"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	TotalPrice    float64   `json:"total_price"`
	ItemCount     int       `json:"item_count"`
	CustomerEmail string    `json:"customer_email,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// newKafkaWriter creates a kafka writer with minimal required configuration.
func newKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}
}

// eventNotifier publishes order lifecycle events to Kafka, one writer
// per topic.
type eventNotifier struct {
	writers map[string]*kafka.Writer
	logger  zerolog.Logger
}

// NewEventNotifier creates a Kafka-backed notifier publishing to the
// order lifecycle topics.
func NewEventNotifier(brokers []string, logger zerolog.Logger) Notifier {
	topics := []string{TopicOrderCreated, TopicOrderConfirmed, TopicOrderPaid, TopicOrderReminder}

	writers := make(map[string]*kafka.Writer, len(topics))
	for _, topic := range topics {
		writers[topic] = newKafkaWriter(brokers, topic)
	}

	return &eventNotifier{
		writers: writers,
		logger:  logger.With().Str("notifier", "kafka").Logger(),
	}
}

func (n *eventNotifier) publish(ctx context.Context, topic string, order *model.Order, user *model.User) error {
	event := OrderEvent{
		OrderID:       order.ID.String(),
		UserID:        order.UserID.String(),
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		TotalPrice:    order.TotalPrice,
		ItemCount:     len(order.Items),
		OccurredAt:    time.Now().UTC(),
	}
	if user != nil {
		event.CustomerEmail = user.Email
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(event.OrderID),
		Value: value,
		Time:  time.Now(),
	}

	if err := n.writers[topic].WriteMessages(ctx, message); err != nil {
		n.logger.Error().
			Err(err).
			Str("topic", topic).
			Str("order_id", event.OrderID).
			Msg("failed to publish order event")
		return fmt.Errorf("failed to publish order event to %s: %w", topic, err)
	}

	n.logger.Debug().
		Str("topic", topic).
		Str("order_id", event.OrderID).
		Msg("order event published")

	return nil
}

func (n *eventNotifier) OrderCreated(ctx context.Context, order *model.Order, user *model.User) error {
	return n.publish(ctx, TopicOrderCreated, order, user)
}

func (n *eventNotifier) OrderConfirmed(ctx context.Context, order *model.Order, user *model.User) error {
	return n.publish(ctx, TopicOrderConfirmed, order, user)
}

func (n *eventNotifier) PaymentReceived(ctx context.Context, order *model.Order, user *model.User) error {
	return n.publish(ctx, TopicOrderPaid, order, user)
}

func (n *eventNotifier) OrderReminder(ctx context.Context, order *model.Order, user *model.User) error {
	return n.publish(ctx, TopicOrderReminder, order, user)
}

// Close flushes and closes all topic writers.
func (n *eventNotifier) Close() error {
	var firstErr error
	for topic, w := range n.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close writer for %s: %w", topic, err)
		}
	}
	return firstErr
}

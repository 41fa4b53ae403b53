package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/foodexpress/storefront/internal/domain"
)

// OrderPlacedEvent is the payload published after a successful order
// submission. Downstream consumers (kitchen displays, notification
// senders) key on the order id.
type OrderPlacedEvent struct {
	OrderID      string    `json:"order_id"`
	CustomerName string    `json:"customer_name"`
	TotalAmount  float64   `json:"total_amount"`
	LineCount    int       `json:"line_count"`
	PlacedAt     time.Time `json:"placed_at"`
}

type OrderPublisher struct {
	writer *kafka.Writer
}

func NewOrderPublisher(brokers ...string) *OrderPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  "orders-placed",
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &OrderPublisher{writer: w}
}

// NotifyOrderPlaced implements session.Notifier.
func (p *OrderPublisher) NotifyOrderPlaced(ctx context.Context, orderID uuid.UUID, sub domain.OrderSubmission) error {
	event := OrderPlacedEvent{
		OrderID:      orderID.String(),
		CustomerName: sub.CustomerName,
		TotalAmount:  sub.Total,
		LineCount:    len(sub.Lines),
		PlacedAt:     time.Now().UTC(),
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order placed event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OrderID),
		Value: body,
	})
	if err != nil {
		return fmt.Errorf("publish order placed event: %w", err)
	}
	return nil
}

func (p *OrderPublisher) Close() error {
	return p.writer.Close()
}

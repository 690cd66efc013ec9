package order

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

const EventOrderCreated = "OrderCreated"

// OrderCreatedEvent is the envelope published after an order is stored.
type OrderCreatedEvent struct {
	EventID   string              `json:"event_id"`
	EventType string              `json:"event_type"`
	Payload   OrderCreatedPayload `json:"payload"`
	Timestamp time.Time           `json:"timestamp"`
}

type OrderCreatedPayload struct {
	ID               string             `json:"id"`
	OrderNumber      string             `json:"order_number"`
	UserID           int                `json:"user_id"`
	CompanyID        *int               `json:"company_id"`
	Items            []OrderItemPayload `json:"items"`
	Total            decimal.Decimal    `json:"total"`
	RequiresApproval bool               `json:"requires_approval"`
}

type OrderItemPayload struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

func NewOrderCreatedEvent(o Order) OrderCreatedEvent {
	items := make([]OrderItemPayload, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemPayload{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return OrderCreatedEvent{
		EventID:   uuid.NewString(),
		EventType: EventOrderCreated,
		Payload: OrderCreatedPayload{
			ID:               o.ID,
			OrderNumber:      o.OrderNumber,
			UserID:           o.UserID,
			CompanyID:        o.CompanyID,
			Items:            items,
			Total:            o.Total,
			RequiresApproval: o.RequiresApproval,
		},
		Timestamp: time.Now().UTC(),
	}
}

// Publisher announces stored orders to downstream fulfillment.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, o Order) error
}

type NoopPublisher struct{}

func (NoopPublisher) PublishOrderCreated(context.Context, Order) error { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes OrderCreated events keyed by order id.
type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}}
}

func (p *KafkaPublisher) PublishOrderCreated(ctx context.Context, o Order) error {
	b, err := json.Marshal(NewOrderCreatedEvent(o))
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(o.ID), Value: b})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

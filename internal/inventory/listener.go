// Package inventory keeps catalog stock in step with placed orders by
// consuming OrderCreated events.
package inventory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/wichananm65/easi-backend/internal/order"
)

type StockAdjuster interface {
	AdjustStock(ctx context.Context, productID, delta int) (int, error)
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type Listener struct {
	reader messageReader
	stock  StockAdjuster
	log    *zap.Logger
}

func NewKafkaListener(brokers []string, topic, groupID string, stock StockAdjuster, log *zap.Logger) *Listener {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return newListener(reader, stock, log)
}

func newListener(reader messageReader, stock StockAdjuster, log *zap.Logger) *Listener {
	if log == nil {
		log = zap.NewNop()
	}
	return &Listener{reader: reader, stock: stock, log: log}
}

// Start blocks, applying events until ctx is cancelled.
func (l *Listener) Start(ctx context.Context) {
	l.log.Info("starting inventory listener")
	for {
		msg, err := l.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				l.log.Info("stopping inventory listener")
				return
			}
			l.log.Error("failed to read kafka message", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		l.processMessage(ctx, msg.Value)
	}
}

func (l *Listener) processMessage(ctx context.Context, value []byte) {
	var event order.OrderCreatedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.log.Error("failed to unmarshal event", zap.Error(err))
		return
	}
	if event.EventType != order.EventOrderCreated {
		return
	}

	l.log.Info("processing OrderCreated", zap.String("orderID", event.Payload.ID))
	applyOrder(ctx, l.stock, l.log, event.Payload)
}

func applyOrder(ctx context.Context, stock StockAdjuster, log *zap.Logger, o order.OrderCreatedPayload) {
	for _, item := range o.Items {
		left, err := stock.AdjustStock(ctx, item.ProductID, -item.Quantity)
		if err != nil {
			log.Error("failed to adjust stock for order item",
				zap.String("orderID", o.ID),
				zap.Int("productID", item.ProductID),
				zap.Error(err),
			)
			continue
		}
		log.Debug("stock adjusted", zap.Int("productID", item.ProductID), zap.Int("stock", left))
	}
}

// LocalPublisher applies OrderCreated stock movements in process. It stands
// in for the Kafka round trip when no brokers are configured.
type LocalPublisher struct {
	stock StockAdjuster
	log   *zap.Logger
}

func NewLocalPublisher(stock StockAdjuster, log *zap.Logger) *LocalPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &LocalPublisher{stock: stock, log: log}
}

func (p *LocalPublisher) PublishOrderCreated(ctx context.Context, o order.Order) error {
	applyOrder(ctx, p.stock, p.log, order.NewOrderCreatedEvent(o).Payload)
	return nil
}

func (l *Listener) Close() error {
	return l.reader.Close()
}

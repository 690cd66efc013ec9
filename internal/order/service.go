package order

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Service is the order submission client.
type Service struct {
	repo      Repository
	publisher Publisher
	timeout   time.Duration
	log       *zap.Logger
}

// NewService wires the order service. publisher may be nil; timeout of zero
// disables the per-call deadline.
func NewService(repo Repository, publisher Publisher, timeout time.Duration, log *zap.Logger) *Service {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, publisher: publisher, timeout: timeout, log: log}
}

// CreateOrder stores p as a pending order. Every failure, including a
// stored order missing its identifiers, matches ErrOrderSubmissionFailed.
func (s *Service) CreateOrder(ctx context.Context, p Payload) (Receipt, error) {
	if err := p.validate(); err != nil {
		return Receipt{}, fmt.Errorf("%w: %w", ErrOrderSubmissionFailed, err)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	created, err := s.repo.Create(ctx, Order{
		UserID:           p.UserID,
		CompanyID:        p.CompanyID,
		Items:            append(Items(nil), p.Items...),
		DeliveryAddress:  p.DeliveryAddress,
		DeliverySlot:     p.DeliverySlot,
		PaymentMethod:    p.PaymentMethod,
		Notes:            p.Notes,
		Subtotal:         p.Subtotal,
		DeliveryFee:      p.DeliveryFee,
		GST:              p.GST,
		Total:            p.Total,
		Status:           StatusPending,
		RequiresApproval: p.RequiresApproval,
		CreatedAt:        time.Now().UTC(),
	})
	if err != nil {
		s.log.Error("create order failed", zap.Int("userID", p.UserID), zap.Error(err))
		return Receipt{}, fmt.Errorf("%w: %w", ErrOrderSubmissionFailed, err)
	}
	if created.ID == "" || created.OrderNumber == "" {
		return Receipt{}, fmt.Errorf("%w: %w", ErrOrderSubmissionFailed, ErrMissingOrderIdentifier)
	}

	s.log.Info("order created",
		zap.String("orderID", created.ID),
		zap.String("orderNumber", created.OrderNumber),
		zap.Int("userID", created.UserID),
		zap.String("total", created.Total.StringFixed(2)),
	)
	if err := s.publisher.PublishOrderCreated(ctx, created); err != nil {
		s.log.Warn("publish OrderCreated failed", zap.String("orderID", created.ID), zap.Error(err))
	}

	return Receipt{OrderID: created.ID, OrderNumber: created.OrderNumber}, nil
}

func (s *Service) ListByUser(ctx context.Context, userID int) ([]Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

// GetForUser returns the order only if it belongs to userID.
func (s *Service) GetForUser(ctx context.Context, userID int, id string) (Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if o.UserID != userID {
		return Order{}, ErrNotFound
	}
	return o, nil
}

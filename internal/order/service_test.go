package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPayload() Payload {
	return Payload{
		UserID:          42,
		Items:           []Item{{ProductID: 1, Name: "Tiger Lager", Quantity: 2, UnitPrice: decimal.NewFromInt(25), TotalPrice: decimal.NewFromInt(50)}},
		DeliveryAddress: "1 Club Street 069400",
		DeliverySlot:    DeliverySlot{ID: "2026-10-16-am", Date: "2026-10-16", TimeSlot: "09:00 - 12:00"},
		PaymentMethod:   "card",
		Subtotal:        decimal.NewFromInt(50),
		DeliveryFee:     decimal.NewFromInt(10),
		GST:             decimal.NewFromInt(4),
		Total:           decimal.NewFromInt(64),
	}
}

type recordingPublisher struct {
	events []Order
	err    error
}

func (p *recordingPublisher) PublishOrderCreated(_ context.Context, o Order) error {
	p.events = append(p.events, o)
	return p.err
}

type stubRepo struct {
	Repository
	create func(ctx context.Context, o Order) (Order, error)
}

func (s stubRepo) Create(ctx context.Context, o Order) (Order, error) { return s.create(ctx, o) }

func TestCreateOrder_Success(t *testing.T) {
	repo := NewInMemoryRepository()
	pub := &recordingPublisher{}
	svc := NewService(repo, pub, time.Second, nil)

	receipt, err := svc.CreateOrder(context.Background(), validPayload())
	require.NoError(t, err)
	assert.NotEmpty(t, receipt.OrderID)
	assert.Regexp(t, `^EASI-\d{8}-000001$`, receipt.OrderNumber)

	stored, err := repo.GetByID(context.Background(), receipt.OrderID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, stored.Status)
	assert.True(t, stored.Total.Equal(decimal.NewFromInt(64)))

	require.Len(t, pub.events, 1)
	assert.Equal(t, receipt.OrderID, pub.events[0].ID)
}

func TestCreateOrder_InvalidPayload(t *testing.T) {
	svc := NewService(NewInMemoryRepository(), nil, 0, nil)

	cases := map[string]func(p *Payload){
		"no user":    func(p *Payload) { p.UserID = 0 },
		"no items":   func(p *Payload) { p.Items = nil },
		"no address": func(p *Payload) { p.DeliveryAddress = "" },
		"no slot":    func(p *Payload) { p.DeliverySlot = DeliverySlot{} },
		"no payment": func(p *Payload) { p.PaymentMethod = "" },
		"zero qty":   func(p *Payload) { p.Items[0].Quantity = 0 },
		"negative":   func(p *Payload) { p.Total = decimal.NewFromInt(-1) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := validPayload()
			mutate(&p)
			_, err := svc.CreateOrder(context.Background(), p)
			assert.ErrorIs(t, err, ErrOrderSubmissionFailed)
			assert.ErrorIs(t, err, ErrInvalidPayload)
		})
	}
}

func TestCreateOrder_BackendFailures(t *testing.T) {
	boom := errors.New("connection reset")
	failing := stubRepo{create: func(context.Context, Order) (Order, error) { return Order{}, boom }}
	_, err := NewService(failing, nil, 0, nil).CreateOrder(context.Background(), validPayload())
	assert.ErrorIs(t, err, ErrOrderSubmissionFailed)
	assert.ErrorIs(t, err, boom)

	noIDs := stubRepo{create: func(_ context.Context, o Order) (Order, error) { o.ID = "abc"; return o, nil }}
	_, err = NewService(noIDs, nil, 0, nil).CreateOrder(context.Background(), validPayload())
	assert.ErrorIs(t, err, ErrOrderSubmissionFailed)
	assert.ErrorIs(t, err, ErrMissingOrderIdentifier)
}

func TestCreateOrder_Timeout(t *testing.T) {
	slow := stubRepo{create: func(ctx context.Context, o Order) (Order, error) {
		<-ctx.Done()
		return Order{}, ctx.Err()
	}}
	_, err := NewService(slow, nil, 20*time.Millisecond, nil).CreateOrder(context.Background(), validPayload())
	assert.ErrorIs(t, err, ErrOrderSubmissionFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCreateOrder_PublishFailureIsNotSurfaced(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	receipt, err := NewService(NewInMemoryRepository(), pub, 0, nil).CreateOrder(context.Background(), validPayload())
	require.NoError(t, err)
	assert.NotEmpty(t, receipt.OrderNumber)
	assert.Len(t, pub.events, 1)
}

func TestGetForUser_HidesOtherUsersOrders(t *testing.T) {
	svc := NewService(NewInMemoryRepository(), nil, 0, nil)
	receipt, err := svc.CreateOrder(context.Background(), validPayload())
	require.NoError(t, err)

	_, err = svc.GetForUser(context.Background(), 7, receipt.OrderID)
	assert.ErrorIs(t, err, ErrNotFound)

	o, err := svc.GetForUser(context.Background(), 42, receipt.OrderID)
	require.NoError(t, err)
	assert.Equal(t, receipt.OrderNumber, o.OrderNumber)
}

func TestFormatOrderNumber(t *testing.T) {
	at := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "EASI-20260309-000042", FormatOrderNumber(at, 42))
	assert.Equal(t, "EASI-20260309-000001", FormatOrderNumber(at, 1000001))
}

type fakeWriter struct {
	msgs   []kafka.Message
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_WritesEnvelope(t *testing.T) {
	w := &fakeWriter{}
	pub := &KafkaPublisher{writer: w}
	companyID := 3
	o := Order{
		ID: "6f1c", OrderNumber: "EASI-20260101-000007", UserID: 9, CompanyID: &companyID,
		Items: Items{{ProductID: 1, Quantity: 2}, {ProductID: 5, Quantity: 1}},
		Total: decimal.RequireFromString("64.00"),
	}

	require.NoError(t, pub.PublishOrderCreated(context.Background(), o))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "6f1c", string(w.msgs[0].Key))

	var event OrderCreatedEvent
	require.NoError(t, decodeJSON(w.msgs[0].Value, &event))
	assert.Equal(t, EventOrderCreated, event.EventType)
	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "EASI-20260101-000007", event.Payload.OrderNumber)
	assert.Equal(t, []OrderItemPayload{{ProductID: 1, Quantity: 2}, {ProductID: 5, Quantity: 1}}, event.Payload.Items)

	require.NoError(t, pub.Close())
	assert.True(t, w.closed)
}

package order

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// ExpressSlotID is the delivery slot id that selects express delivery.
const ExpressSlotID = "express"

type DeliverySlot struct {
	ID       string `json:"id"`
	Date     string `json:"date"`
	TimeSlot string `json:"timeSlot"`
}

// Item is one order line with its price fixed at submission time.
type Item struct {
	ProductID  int             `json:"productID"`
	Name       string          `json:"productName"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// Items is stored as a jsonb column.
type Items []Item

func (it Items) Value() (driver.Value, error) {
	if it == nil {
		it = Items{}
	}
	b, err := json.Marshal(it)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (it *Items) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	case nil:
		*it = Items{}
		return nil
	default:
		return fmt.Errorf("order items: unsupported type %T", src)
	}
	return json.Unmarshal(b, it)
}

type Order struct {
	ID               string          `json:"orderId"`
	OrderNumber      string          `json:"orderNumber"`
	UserID           int             `json:"userId"`
	CompanyID        *int            `json:"companyId,omitempty"`
	Items            Items           `json:"items"`
	DeliveryAddress  string          `json:"deliveryAddress"`
	DeliverySlot     DeliverySlot    `json:"deliverySlot"`
	PaymentMethod    string          `json:"paymentMethod"`
	Notes            string          `json:"notes"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	DeliveryFee      decimal.Decimal `json:"deliveryFee"`
	GST              decimal.Decimal `json:"gst"`
	Total            decimal.Decimal `json:"total"`
	Status           Status          `json:"status"`
	RequiresApproval bool            `json:"requiresApproval"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// Payload is what a caller submits. Total is the amount charged, delivery
// included.
type Payload struct {
	UserID           int
	CompanyID        *int
	Items            []Item
	DeliveryAddress  string
	DeliverySlot     DeliverySlot
	PaymentMethod    string
	Notes            string
	Subtotal         decimal.Decimal
	DeliveryFee      decimal.Decimal
	GST              decimal.Decimal
	Total            decimal.Decimal
	RequiresApproval bool
}

// Receipt carries the identifiers returned for a stored order.
type Receipt struct {
	OrderID     string `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
}

var (
	ErrNotFound               = errors.New("order not found")
	ErrOrderSubmissionFailed  = errors.New("order submission failed")
	ErrInvalidPayload         = errors.New("invalid order payload")
	ErrMissingOrderIdentifier = errors.New("order stored without identifiers")
)

func (p Payload) validate() error {
	switch {
	case p.UserID <= 0:
		return fmt.Errorf("%w: missing user", ErrInvalidPayload)
	case len(p.Items) == 0:
		return fmt.Errorf("%w: no items", ErrInvalidPayload)
	case p.DeliveryAddress == "":
		return fmt.Errorf("%w: missing delivery address", ErrInvalidPayload)
	case p.DeliverySlot.ID == "":
		return fmt.Errorf("%w: missing delivery slot", ErrInvalidPayload)
	case p.PaymentMethod == "":
		return fmt.Errorf("%w: missing payment method", ErrInvalidPayload)
	case p.Total.IsNegative() || p.Subtotal.IsNegative():
		return fmt.Errorf("%w: negative amount", ErrInvalidPayload)
	}
	for _, it := range p.Items {
		if it.ProductID <= 0 || it.Quantity <= 0 {
			return fmt.Errorf("%w: bad line for product %d", ErrInvalidPayload, it.ProductID)
		}
	}
	return nil
}

// FormatOrderNumber renders the customer-facing number, EASI-YYYYMMDD-NNNNNN.
func FormatOrderNumber(t time.Time, seq int64) string {
	return fmt.Sprintf("EASI-%s-%06d", t.Format("20060102"), seq%1000000)
}

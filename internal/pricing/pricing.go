// Package pricing turns a cart into order totals. Everything here is pure:
// no I/O and no hidden state.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/wichananm65/easi-backend/internal/config"
	"github.com/wichananm65/easi-backend/internal/product"
)

// Role selects which catalog price applies.
type Role string

const (
	RoleRetail Role = "retail"
	RoleTrade  Role = "trade"
)

// Tier selects the delivery fee when delivery is not free.
type Tier string

const (
	TierStandard Tier = "standard"
	TierExpress  Tier = "express"
)

// TierFromSlotID maps a delivery slot id to its tier. The "express" slot id
// selects express pricing, every other slot is standard.
func TierFromSlotID(slotID string) Tier {
	if slotID == string(TierExpress) {
		return TierExpress
	}
	return TierStandard
}

// Rules are the pricing constants. There is one canonical set per process.
type Rules struct {
	GSTRate               decimal.Decimal
	FreeDeliveryThreshold decimal.Decimal
	StandardDeliveryFee   decimal.Decimal
	ExpressDeliveryFee    decimal.Decimal
}

func RulesFromConfig(c config.PricingConfig) Rules {
	return Rules{
		GSTRate:               c.GSTRate,
		FreeDeliveryThreshold: c.FreeDeliveryThreshold,
		StandardDeliveryFee:   c.StandardDeliveryFee,
		ExpressDeliveryFee:    c.ExpressDeliveryFee,
	}
}

// DefaultRules: 8% GST, free delivery from $100, $10 standard, $20 express.
func DefaultRules() Rules {
	return Rules{
		GSTRate:               decimal.RequireFromString("0.08"),
		FreeDeliveryThreshold: decimal.NewFromInt(100),
		StandardDeliveryFee:   decimal.NewFromInt(10),
		ExpressDeliveryFee:    decimal.NewFromInt(20),
	}
}

// Line is a priced unit of the cart.
type Line struct {
	Product  product.Product
	Quantity int
}

// Totals is the result of CalculateOrderTotal. Total excludes delivery;
// FinalTotal is the amount charged.
type Totals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	GST         decimal.Decimal `json:"gst"`
	Total       decimal.Decimal `json:"total"`
	FinalTotal  decimal.Decimal `json:"finalTotal"`
}

// UnitPrice picks the trade price for trade callers and the retail price
// for everyone else.
func UnitPrice(p product.Product, role Role) decimal.Decimal {
	if role == RoleTrade {
		return p.TradePrice
	}
	return p.RetailPrice
}

func LineTotal(p product.Product, quantity int, role Role) decimal.Decimal {
	return UnitPrice(p, role).Mul(decimal.NewFromInt(int64(quantity)))
}

// CalculateOrderTotal prices lines for role and tier.
//
// GST is charged on the subtotal only, never on the delivery fee, and is
// rounded half-up to cents.
func (r Rules) CalculateOrderTotal(lines []Line, role Role, tier Tier) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		subtotal = subtotal.Add(LineTotal(l.Product, l.Quantity, role))
	}
	if subtotal.IsNegative() {
		subtotal = decimal.Zero
	}

	deliveryFee := r.DeliveryFee(subtotal, tier)
	if len(lines) == 0 || subtotal.IsZero() {
		deliveryFee = decimal.Zero
	}

	gst := subtotal.Mul(r.GSTRate).Round(2)
	if gst.IsNegative() {
		gst = decimal.Zero
	}

	return Totals{
		Subtotal:    subtotal,
		DeliveryFee: deliveryFee,
		GST:         gst,
		Total:       subtotal.Add(gst),
		FinalTotal:  subtotal.Add(deliveryFee).Add(gst),
	}
}

// DeliveryFee is zero at or above the free-delivery threshold, otherwise the
// flat fee for the tier.
func (r Rules) DeliveryFee(subtotal decimal.Decimal, tier Tier) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(r.FreeDeliveryThreshold) {
		return decimal.Zero
	}
	fee := r.StandardDeliveryFee
	if tier == TierExpress {
		fee = r.ExpressDeliveryFee
	}
	if fee.IsNegative() {
		return decimal.Zero
	}
	return fee
}

// AmountToFreeDelivery is how much more the cart needs before delivery is
// free. Zero once the threshold is reached.
func (r Rules) AmountToFreeDelivery(subtotal decimal.Decimal) decimal.Decimal {
	diff := r.FreeDeliveryThreshold.Sub(subtotal)
	if diff.IsNegative() {
		return decimal.Zero
	}
	return diff
}

package company

import (
	"errors"

	"github.com/shopspring/decimal"
)

type CreditStatus string

const (
	CreditHealthy   CreditStatus = "healthy"
	CreditModerate  CreditStatus = "moderate"
	CreditHighUsage CreditStatus = "high usage"
)

var (
	hundred        = decimal.NewFromInt(100)
	moderateAbove  = decimal.NewFromInt(60)
	highUsageAbove = decimal.NewFromInt(80)
)

// CreditSummary is the billing view of a company. UsedCredit can be
// negative when the record is inconsistent; DisplayUsedCredit never is.
type CreditSummary struct {
	CreditLimit       decimal.Decimal `json:"creditLimit"`
	AvailableCredit   decimal.Decimal `json:"availableCredit"`
	UsedCredit        decimal.Decimal `json:"usedCredit"`
	DisplayUsedCredit decimal.Decimal `json:"displayUsedCredit"`
	Utilization       decimal.Decimal `json:"utilization"`
	Status            CreditStatus    `json:"status"`
	PaymentTerms      PaymentTerms    `json:"paymentTerms"`
	Version           int             `json:"version"`
}

func Summarize(c Company) CreditSummary {
	used := c.CreditLimit.Sub(c.AvailableCredit)
	display := clampUsed(used)
	// status is banded on the rounded figure that is reported
	utilization := Utilization(display, c.CreditLimit).Round(2)

	return CreditSummary{
		CreditLimit:       c.CreditLimit,
		AvailableCredit:   c.AvailableCredit,
		UsedCredit:        used,
		DisplayUsedCredit: display,
		Utilization:       utilization,
		Status:            StatusForUtilization(utilization),
		PaymentTerms:      c.PaymentTerms,
		Version:           c.Version,
	}
}

// clampUsed floors used credit at zero for anything shown or charged.
func clampUsed(used decimal.Decimal) decimal.Decimal {
	if used.IsNegative() {
		return decimal.Zero
	}
	return used
}

// Utilization is used as a percentage of limit, 0 when there is no limit.
func Utilization(used, limit decimal.Decimal) decimal.Decimal {
	if !limit.IsPositive() {
		return decimal.Zero
	}
	return used.Div(limit).Mul(hundred)
}

// StatusForUtilization bands a utilization percentage. 60 and 80 belong to
// the lower band.
func StatusForUtilization(u decimal.Decimal) CreditStatus {
	switch {
	case u.GreaterThan(highUsageAbove):
		return CreditHighUsage
	case u.GreaterThan(moderateAbove):
		return CreditModerate
	default:
		return CreditHealthy
	}
}

type PaymentMethod string

const (
	PayCard         PaymentMethod = "card"
	PayNow          PaymentMethod = "paynow"
	PayBankTransfer PaymentMethod = "bank_transfer"
)

var methodFeePercent = map[PaymentMethod]decimal.Decimal{
	PayCard:         decimal.RequireFromString("2.9"),
	PayNow:          decimal.RequireFromString("3.4"),
	PayBankTransfer: decimal.Zero,
}

var ErrUnknownPaymentMethod = errors.New("unknown payment method")

// PaymentPreview is the charge for paying off the used credit with Method.
type PaymentPreview struct {
	Method      PaymentMethod   `json:"method"`
	FeePercent  decimal.Decimal `json:"feePercent"`
	Amount      decimal.Decimal `json:"amount"`
	Fee         decimal.Decimal `json:"fee"`
	TotalCharge decimal.Decimal `json:"totalCharge"`
}

func PreviewPayment(c Company, method PaymentMethod) (PaymentPreview, error) {
	pct, ok := methodFeePercent[method]
	if !ok {
		return PaymentPreview{}, ErrUnknownPaymentMethod
	}
	used := clampUsed(c.CreditLimit.Sub(c.AvailableCredit))
	fee := used.Mul(pct).Div(hundred)
	return PaymentPreview{
		Method:      method,
		FeePercent:  pct,
		Amount:      used,
		Fee:         fee.Round(2),
		TotalCharge: used.Add(fee).Round(2),
	}, nil
}

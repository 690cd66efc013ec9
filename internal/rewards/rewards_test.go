package rewards

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValidity(t *testing.T) {
	cases := map[string]time.Duration{
		"6 months":  180 * day,
		"1 month":   30 * day,
		"2 weeks":   14 * day,
		"1 year":    365 * day,
		"30 days":   30 * day,
		"  3 Days ": 3 * day,
		"12months":  360 * day,
		"forever":   30 * day,
		"":          30 * day,
		"0 months":  30 * day,

		"999999999999 years":         30 * day,
		"99999999999999999999 years": 30 * day,
		"106751 days":                106751 * day,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseValidity(in), "validity %q", in)
	}
}

func TestCodes(t *testing.T) {
	assert.Equal(t, "EASI10OFF", promoCode(Reward{Value: decimal.NewFromInt(10)}))
	assert.Equal(t, "EASI25OFF", promoCode(Reward{Value: decimal.RequireFromString("25.50")}))

	code, err := randomCode(10)
	require.NoError(t, err)
	assert.Len(t, code, 10)
	assert.Regexp(t, `^[A-Z2-9]{10}$`, code)

	assert.Regexp(t, `^RDM-[0-9A-F]{10}$`, referenceCode())
}

func TestRedeemedVoucher_StatusAt(t *testing.T) {
	now := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	v := RedeemedVoucher{Status: VoucherActive, ExpiresAt: now.Add(day)}
	assert.Equal(t, VoucherActive, v.StatusAt(now))
	assert.Equal(t, VoucherExpired, v.StatusAt(now.Add(2*day)))

	v.Status = VoucherUsed
	assert.Equal(t, VoucherUsed, v.StatusAt(now.Add(2*day)))
}

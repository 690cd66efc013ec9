package company

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSummarize_HealthyCompany(t *testing.T) {
	s := Summarize(Company{CreditLimit: d("50000"), AvailableCredit: d("35000"), PaymentTerms: TermsNet30})

	assert.True(t, s.AvailableCredit.Equal(d("35000")))
	assert.True(t, s.UsedCredit.Equal(d("15000")))
	assert.True(t, s.Utilization.Equal(d("30")))
	assert.Equal(t, CreditHealthy, s.Status)
	assert.Equal(t, TermsNet30, s.PaymentTerms)
}

func TestSummarize_ClampsDisplayOnly(t *testing.T) {
	s := Summarize(Company{CreditLimit: d("1000"), AvailableCredit: d("1200")})

	assert.True(t, s.UsedCredit.Equal(d("-200")))
	assert.True(t, s.DisplayUsedCredit.IsZero())
	assert.Equal(t, CreditHealthy, s.Status)
}

func TestSummarize_OverCreditedRecordReportsZeroUsage(t *testing.T) {
	s := Summarize(Company{CreditLimit: d("1000"), AvailableCredit: d("1200")})

	assert.True(t, s.Utilization.IsZero(), "utilization %s", s.Utilization)
	assert.Equal(t, CreditHealthy, s.Status)
}

func TestSummarize_StatusMatchesRoundedUtilization(t *testing.T) {
	// 60000.01 of 100000 is 60.00001%, shown as 60
	s := Summarize(Company{CreditLimit: d("100000"), AvailableCredit: d("39999.99")})

	assert.Equal(t, "60", s.Utilization.String())
	assert.Equal(t, CreditHealthy, s.Status)
}

func TestSummarize_ZeroLimit(t *testing.T) {
	s := Summarize(Company{})
	assert.True(t, s.Utilization.IsZero())
	assert.Equal(t, CreditHealthy, s.Status)
}

func TestStatusForUtilization_Boundaries(t *testing.T) {
	cases := map[string]CreditStatus{
		"0":    CreditHealthy,
		"60":   CreditHealthy,
		"60.1": CreditModerate,
		"80":   CreditModerate,
		"80.1": CreditHighUsage,
		"100":  CreditHighUsage,
	}
	for in, want := range cases {
		assert.Equal(t, want, StatusForUtilization(d(in)), "utilization %s", in)
	}
}

func TestSummarize_BandFromRecord(t *testing.T) {
	// 30050 of 50000 used is 60.1%
	s := Summarize(Company{CreditLimit: d("50000"), AvailableCredit: d("19950")})
	assert.Equal(t, CreditModerate, s.Status)

	s = Summarize(Company{CreditLimit: d("50000"), AvailableCredit: d("10000")})
	assert.Equal(t, CreditModerate, s.Status)
}

func TestPreviewPayment_Fees(t *testing.T) {
	c := Company{CreditLimit: d("50000"), AvailableCredit: d("35000")}

	card, err := PreviewPayment(c, PayCard)
	require.NoError(t, err)
	assert.Equal(t, "435.00", card.Fee.StringFixed(2))
	assert.Equal(t, "15435.00", card.TotalCharge.StringFixed(2))

	now, err := PreviewPayment(c, PayNow)
	require.NoError(t, err)
	assert.Equal(t, "510.00", now.Fee.StringFixed(2))

	bank, err := PreviewPayment(c, PayBankTransfer)
	require.NoError(t, err)
	assert.True(t, bank.Fee.IsZero())
	assert.True(t, bank.TotalCharge.Equal(d("15000")))

	_, err = PreviewPayment(c, "cheque")
	assert.ErrorIs(t, err, ErrUnknownPaymentMethod)
}

func TestApprovalSettings_RequiresApproval(t *testing.T) {
	off := ApprovalSettings{}
	assert.False(t, off.RequiresApproval(d("99999")))

	all := ApprovalSettings{RequireApproval: true}
	assert.True(t, all.RequiresApproval(d("1")))

	gated := ApprovalSettings{RequireApproval: true, ApprovalThreshold: d("1000"), AutoApproveBelow: d("200")}
	assert.False(t, gated.RequiresApproval(d("150")))
	assert.False(t, gated.RequiresApproval(d("999.99")))
	assert.True(t, gated.RequiresApproval(d("1000")))

	autoOnly := ApprovalSettings{RequireApproval: true, AutoApproveBelow: d("200")}
	assert.False(t, autoOnly.RequiresApproval(d("199")))
	assert.True(t, autoOnly.RequiresApproval(d("200")))
}

func TestPreviewPayment_OverCreditedRecordChargesNothing(t *testing.T) {
	c := Company{CreditLimit: d("1000"), AvailableCredit: d("1200")}

	p, err := PreviewPayment(c, PayCard)
	require.NoError(t, err)
	assert.True(t, p.Amount.IsZero(), "amount %s", p.Amount)
	assert.True(t, p.Fee.IsZero(), "fee %s", p.Fee)
	assert.True(t, p.TotalCharge.IsZero(), "total %s", p.TotalCharge)
}

package company

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentTerms string

const (
	TermsCOD   PaymentTerms = "COD"
	TermsNet7  PaymentTerms = "NET7"
	TermsNet30 PaymentTerms = "NET30"
	TermsNet60 PaymentTerms = "NET60"
)

type Status string

const (
	StatusActive              Status = "active"
	StatusSuspended           Status = "suspended"
	StatusPendingVerification Status = "pending_verification"
)

type ApprovalSettings struct {
	RequireApproval    bool            `json:"requireApproval" db:"require_approval"`
	ApprovalThreshold  decimal.Decimal `json:"approvalThreshold" db:"approval_threshold"`
	AutoApproveBelow   decimal.Decimal `json:"autoApproveBelow" db:"auto_approve_below"`
	MultiLevelApproval bool            `json:"multiLevelApproval" db:"multi_level_approval"`
}

// RequiresApproval decides whether an order of total needs an approver.
// Orders under AutoApproveBelow never do; above that, a positive
// ApprovalThreshold gates approval, otherwise every order does.
func (a ApprovalSettings) RequiresApproval(total decimal.Decimal) bool {
	if !a.RequireApproval {
		return false
	}
	if a.AutoApproveBelow.IsPositive() && total.LessThan(a.AutoApproveBelow) {
		return false
	}
	if a.ApprovalThreshold.IsPositive() {
		return total.GreaterThanOrEqual(a.ApprovalThreshold)
	}
	return true
}

// Company is a business account. AvailableCredit is what the company can
// still spend; used credit is always derived as CreditLimit minus
// AvailableCredit. Version increases on every credit change.
type Company struct {
	ID              int             `json:"companyId" db:"company_id"`
	Name            string          `json:"name" db:"name"`
	LegalName       string          `json:"legalName" db:"legal_name"`
	UEN             string          `json:"uen" db:"uen"`
	Address         string          `json:"address" db:"address"`
	Phone           string          `json:"phone" db:"phone"`
	Email           string          `json:"email" db:"email"`
	CreditLimit     decimal.Decimal `json:"creditLimit" db:"credit_limit"`
	AvailableCredit decimal.Decimal `json:"availableCredit" db:"current_credit"`
	PaymentTerms    PaymentTerms    `json:"paymentTerms" db:"payment_terms"`
	Status          Status          `json:"status" db:"status"`
	Version         int             `json:"version" db:"version"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`

	ApprovalSettings `json:"approvalSettings"`
}

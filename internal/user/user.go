package user

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/easi-backend/internal/pricing"
)

type AccountType string

const (
	AccountIndividual AccountType = "individual"
	AccountCompany    AccountType = "company"
)

type CompanyRole string

const (
	RoleSuperadmin CompanyRole = "superadmin"
	RoleManager    CompanyRole = "manager"
	RoleApprover   CompanyRole = "approver"
	RoleStaff      CompanyRole = "staff"
)

func (r CompanyRole) Valid() bool {
	switch r {
	case RoleSuperadmin, RoleManager, RoleApprover, RoleStaff:
		return true
	}
	return false
}

// Permission names a single capability of a company member.
type Permission string

const (
	PermCreateOrders     Permission = "createOrders"
	PermApproveOrders    Permission = "approveOrders"
	PermManageUsers      Permission = "manageUsers"
	PermEditCompanyInfo  Permission = "editCompanyInfo"
	PermManageBilling    Permission = "manageBilling"
	PermViewTradePricing Permission = "viewTradePricing"
	PermViewReports      Permission = "viewReports"
)

type Permissions struct {
	CreateOrders     bool `json:"createOrders"`
	ApproveOrders    bool `json:"approveOrders"`
	ManageUsers      bool `json:"manageUsers"`
	EditCompanyInfo  bool `json:"editCompanyInfo"`
	ManageBilling    bool `json:"manageBilling"`
	ViewTradePricing bool `json:"viewTradePricing"`
	ViewReports      bool `json:"viewReports"`
}

func (p Permissions) Has(perm Permission) bool {
	switch perm {
	case PermCreateOrders:
		return p.CreateOrders
	case PermApproveOrders:
		return p.ApproveOrders
	case PermManageUsers:
		return p.ManageUsers
	case PermEditCompanyInfo:
		return p.EditCompanyInfo
	case PermManageBilling:
		return p.ManageBilling
	case PermViewTradePricing:
		return p.ViewTradePricing
	case PermViewReports:
		return p.ViewReports
	}
	return false
}

// IndividualProfile is only present on individual accounts.
type IndividualProfile struct {
	WalletBalance decimal.Decimal `json:"walletBalance"`
	TotalOrders   int             `json:"totalOrders"`
	TotalSpent    decimal.Decimal `json:"totalSpent"`
}

// CompanyMembership is only present on company accounts.
type CompanyMembership struct {
	CompanyID   int              `json:"companyId"`
	Role        CompanyRole      `json:"role"`
	Permissions Permissions      `json:"permissions"`
	OrderLimit  *decimal.Decimal `json:"orderLimit,omitempty"`
}

// User is either an individual or a company member. AccountType says which
// of Individual and Company is set; the other one is nil.
type User struct {
	ID            int                `json:"userId"`
	Name          string             `json:"name"`
	Email         string             `json:"email"`
	Phone         string             `json:"phone"`
	Password      string             `json:"password,omitempty"`
	AccountType   AccountType        `json:"accountType"`
	Individual    *IndividualProfile `json:"individual,omitempty"`
	Company       *CompanyMembership `json:"company,omitempty"`
	MainAddressID *int               `json:"mainAddressId,omitempty"`
	CreatedAt     string             `json:"createAt,omitempty"`
	UpdatedAt     string             `json:"updateAt,omitempty"`
}

var ErrInvalidAccount = errors.New("invalid account")

// Validate checks that exactly the variant named by AccountType is present.
func (u User) Validate() error {
	switch u.AccountType {
	case AccountIndividual:
		if u.Individual == nil || u.Company != nil {
			return ErrInvalidAccount
		}
	case AccountCompany:
		if u.Company == nil || u.Individual != nil || !u.Company.Role.Valid() {
			return ErrInvalidAccount
		}
	default:
		return ErrInvalidAccount
	}
	return nil
}

// PricingRole is trade for company members allowed to see trade pricing.
func (u User) PricingRole() pricing.Role {
	switch u.AccountType {
	case AccountCompany:
		if u.Company != nil && u.Company.Permissions.ViewTradePricing {
			return pricing.RoleTrade
		}
		return pricing.RoleRetail
	case AccountIndividual:
		return pricing.RoleRetail
	}
	return pricing.RoleRetail
}

// Can reports whether a company member holds perm. Individuals hold none.
func (u User) Can(perm Permission) bool {
	switch u.AccountType {
	case AccountCompany:
		return u.Company != nil && u.Company.Permissions.Has(perm)
	case AccountIndividual:
		return false
	}
	return false
}

// CompanyID returns the member's company, or nil for individuals.
func (u User) CompanyID() *int {
	switch u.AccountType {
	case AccountCompany:
		if u.Company != nil {
			id := u.Company.CompanyID
			return &id
		}
	case AccountIndividual:
	}
	return nil
}

func sanitizeUser(u User) User {
	u.Password = ""
	return u
}

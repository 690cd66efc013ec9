package rewards

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeVoucher    Type = "voucher"
	TypeExperience Type = "experience"
	TypeProduct    Type = "product"
	TypeDiscount   Type = "discount"
	TypeCredit     Type = "credit"
)

// skipsDetails reports whether redemption goes straight from confirm to
// processing.
func (t Type) skipsDetails() bool {
	return t == TypeCredit || t == TypeDiscount
}

// Reward is a catalog entry. Value is the original dollar value and
// Validity a human-readable window such as "6 months".
type Reward struct {
	ID          int             `json:"rewardId" db:"reward_id"`
	Title       string          `json:"title" db:"title"`
	Description string          `json:"description" db:"description"`
	Type        Type            `json:"type" db:"reward_type"`
	Points      int             `json:"points" db:"points"`
	Value       decimal.Decimal `json:"value" db:"value"`
	Validity    string          `json:"validity" db:"validity"`
	Active      bool            `json:"active" db:"active"`
}

type VoucherStatus string

const (
	VoucherActive  VoucherStatus = "active"
	VoucherUsed    VoucherStatus = "used"
	VoucherExpired VoucherStatus = "expired"
)

type RedeemedVoucher struct {
	ID         string          `json:"voucherId" db:"voucher_id"`
	UserID     int             `json:"userId" db:"user_id"`
	RewardID   int             `json:"rewardId" db:"reward_id"`
	Title      string          `json:"title" db:"title"`
	Code       string          `json:"code" db:"code"`
	Value      decimal.Decimal `json:"value" db:"value"`
	RedeemedAt time.Time       `json:"redeemedAt" db:"redeemed_at"`
	ExpiresAt  time.Time       `json:"expiresAt" db:"expires_at"`
	Status     VoucherStatus   `json:"status" db:"status"`
}

// StatusAt is the status as of now; active vouchers past their expiry
// read as expired.
func (v RedeemedVoucher) StatusAt(now time.Time) VoucherStatus {
	if v.Status == VoucherActive && now.After(v.ExpiresAt) {
		return VoucherExpired
	}
	return v.Status
}

const (
	day                   = 24 * time.Hour
	defaultValidityWindow = 30 * day
)

var validityPattern = regexp.MustCompile(`^(\d+)\s*(day|week|month|year)s?$`)

var validityUnits = map[string]time.Duration{
	"day":   day,
	"week":  7 * day,
	"month": 30 * day,
	"year":  365 * day,
}

// ParseValidity turns "6 months" into a duration. Months are 30 days and
// years 365; anything unparseable or too long to represent gets 30 days.
func ParseValidity(s string) time.Duration {
	m := validityPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if m == nil {
		return defaultValidityWindow
	}
	unit := validityUnits[m[2]]
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || n <= 0 || n > math.MaxInt64/int64(unit) {
		return defaultValidityWindow
	}
	return time.Duration(n) * unit
}

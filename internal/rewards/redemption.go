package rewards

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Step string

const (
	StepConfirm    Step = "confirm"
	StepDetails    Step = "details"
	StepProcessing Step = "processing"
	StepSuccess    Step = "success"
	StepFailed     Step = "failed"
)

type DeliveryMethod string

const (
	DeliveryEmail   DeliveryMethod = "email"
	DeliverySMS     DeliveryMethod = "sms"
	DeliveryCourier DeliveryMethod = "courier"
)

func (m DeliveryMethod) Valid() bool {
	switch m {
	case DeliveryEmail, DeliverySMS, DeliveryCourier:
		return true
	}
	return false
}

var (
	ErrRewardNotFound        = errors.New("reward not found")
	ErrInsufficientPoints    = errors.New("not enough points for this reward")
	ErrRedemptionInProgress  = errors.New("another redemption is in progress")
	ErrNoRedemption          = errors.New("no redemption in progress")
	ErrInvalidTransition     = errors.New("redemption is not at that step")
	ErrNotCancellable        = errors.New("redemption can no longer be cancelled")
	ErrInvalidDeliveryMethod = errors.New("invalid delivery method")
)

// Redemption is one user's walk through the redeem flow. Trail lists the
// steps visited so far.
type Redemption struct {
	ID              string           `json:"redemptionId"`
	UserID          int              `json:"userId"`
	Reward          Reward           `json:"reward"`
	Step            Step             `json:"step"`
	Trail           []Step           `json:"trail"`
	Balance         int              `json:"balance"`
	DeliveryMethod  DeliveryMethod   `json:"deliveryMethod"`
	Code            string           `json:"code,omitempty"`
	Voucher         *RedeemedVoucher `json:"voucher,omitempty"`
	RemainingPoints *int             `json:"remainingPoints,omitempty"`
	Error           string           `json:"error,omitempty"`
	StartedAt       time.Time        `json:"startedAt"`
}

func (r *Redemption) moveTo(step Step) {
	r.Step = step
	r.Trail = append(r.Trail, step)
}

// finished reports whether the redemption has reached a terminal step.
func (r Redemption) finished() bool {
	return r.Step == StepSuccess || r.Step == StepFailed
}

func (r Redemption) clone() Redemption {
	r.Trail = append([]Step(nil), r.Trail...)
	return r
}

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// randomCode returns an n-character uppercase alphanumeric code.
func randomCode(n int) (string, error) {
	size := big.NewInt(int64(len(codeAlphabet)))
	var b strings.Builder
	b.Grow(n)
	for range n {
		i, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", err
		}
		b.WriteByte(codeAlphabet[i.Int64()])
	}
	return b.String(), nil
}

// promoCode is the fixed-format code of a discount reward.
func promoCode(r Reward) string {
	return fmt.Sprintf("EASI%dOFF", r.Value.IntPart())
}

// referenceCode identifies product and credit redemptions for support.
func referenceCode() string {
	return "RDM-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

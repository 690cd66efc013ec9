package checkout

import (
	"errors"
	"fmt"
	"time"

	"github.com/wichananm65/easi-backend/internal/order"
)

type Step string

const (
	StepAddress  Step = "address"
	StepDelivery Step = "delivery"
	StepPayment  Step = "payment"
	StepReview   Step = "review"
)

var steps = []Step{StepAddress, StepDelivery, StepPayment, StepReview}

func (s Step) index() int {
	for i, st := range steps {
		if st == s {
			return i
		}
	}
	return -1
}

type PaymentMethod string

const (
	PayCreditAccount  PaymentMethod = "credit_account"
	PayCard           PaymentMethod = "card"
	PayNow            PaymentMethod = "paynow"
	PayBankTransfer   PaymentMethod = "bank_transfer"
	PayCashOnDelivery PaymentMethod = "cod"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PayCreditAccount, PayCard, PayNow, PayBankTransfer, PayCashOnDelivery:
		return true
	}
	return false
}

var (
	ErrCheckoutIncomplete   = errors.New("please complete all checkout steps")
	ErrStepLocked           = errors.New("previous checkout steps are not complete")
	ErrUnknownStep          = errors.New("unknown checkout step")
	ErrInvalidSlot          = errors.New("invalid delivery slot")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrOrderInProgress      = errors.New("an order is already being placed")
	ErrOrderLimitExceeded   = errors.New("order total exceeds your order limit")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrExpressUnavailable   = errors.New("express delivery is not available for every item")
)

// DeliveryAddress is the address-book entry chosen in the first step,
// flattened to what an order records.
type DeliveryAddress struct {
	AddressID int    `json:"addressId"`
	Label     string `json:"label"`
	Phone     string `json:"phone"`
}

// Session is one user's checkout in progress. Setters return a new value;
// a Session is never mutated in place.
type Session struct {
	Step          Step                `json:"step"`
	Address       *DeliveryAddress    `json:"address"`
	DeliverySlot  *order.DeliverySlot `json:"deliverySlot"`
	PaymentMethod *PaymentMethod      `json:"paymentMethod"`
	Notes         string              `json:"notes"`
}

func NewSession() Session {
	return Session{Step: StepAddress}
}

// IsComplete reports whether an order can be placed. Notes are optional.
func (s Session) IsComplete() bool {
	return s.Address != nil && s.DeliverySlot != nil && s.PaymentMethod != nil
}

// reachable reports whether every step before target has been filled.
func (s Session) reachable(target Step) bool {
	switch target {
	case StepAddress:
		return true
	case StepDelivery:
		return s.Address != nil
	case StepPayment:
		return s.Address != nil && s.DeliverySlot != nil
	case StepReview:
		return s.IsComplete()
	}
	return false
}

// GoTo moves to target. Going back is always allowed and keeps what was
// entered; going forward needs every earlier step filled.
func (s Session) GoTo(target Step) (Session, error) {
	if target.index() < 0 {
		return s, ErrUnknownStep
	}
	if !s.reachable(target) {
		return s, ErrStepLocked
	}
	s.Step = target
	return s, nil
}

// advance moves past from when it is the current step.
func (s Session) advance(from Step) Session {
	if s.Step == from {
		s.Step = steps[from.index()+1]
	}
	return s
}

func (s Session) WithAddress(a DeliveryAddress) Session {
	s.Address = &a
	return s.advance(StepAddress)
}

func (s Session) WithDeliverySlot(slot order.DeliverySlot) (Session, error) {
	if !s.reachable(StepDelivery) {
		return s, ErrStepLocked
	}
	if err := validateSlot(slot); err != nil {
		return s, err
	}
	s.DeliverySlot = &slot
	return s.advance(StepDelivery), nil
}

func (s Session) WithPaymentMethod(m PaymentMethod) (Session, error) {
	if !s.reachable(StepPayment) {
		return s, ErrStepLocked
	}
	if !m.Valid() {
		return s, ErrInvalidPaymentMethod
	}
	s.PaymentMethod = &m
	return s.advance(StepPayment), nil
}

func (s Session) WithNotes(notes string) Session {
	s.Notes = notes
	return s
}

func validateSlot(slot order.DeliverySlot) error {
	if slot.ID == "" || slot.TimeSlot == "" {
		return fmt.Errorf("%w: id and time slot are required", ErrInvalidSlot)
	}
	if _, err := time.Parse(time.DateOnly, slot.Date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidSlot)
	}
	return nil
}

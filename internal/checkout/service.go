package checkout

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/wichananm65/easi-backend/internal/address"
	"github.com/wichananm65/easi-backend/internal/cart"
	"github.com/wichananm65/easi-backend/internal/company"
	"github.com/wichananm65/easi-backend/internal/order"
	"github.com/wichananm65/easi-backend/internal/pricing"
	"github.com/wichananm65/easi-backend/internal/user"
)

type Carts interface {
	Get(ctx context.Context, userID int) (cart.State, error)
	Clear(ctx context.Context, userID int) error
}

type AddressBook interface {
	GetAddress(ctx context.Context, userID, addressID int) (address.Address, error)
}

type Users interface {
	GetByID(ctx context.Context, id int) (user.User, error)
}

type Companies interface {
	GetByID(ctx context.Context, id int) (company.Company, error)
}

type OrderSubmitter interface {
	CreateOrder(ctx context.Context, p order.Payload) (order.Receipt, error)
}

// Service drives every user's checkout session and places orders from it.
type Service struct {
	sessions  SessionStore
	carts     Carts
	addresses AddressBook
	users     Users
	companies Companies
	orders    OrderSubmitter
	rules     pricing.Rules
	log       *zap.Logger

	mu      sync.Mutex
	locks   map[int]*sync.Mutex
	placing map[int]bool
}

func NewService(sessions SessionStore, carts Carts, addresses AddressBook, users Users, companies Companies, orders OrderSubmitter, rules pricing.Rules, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		sessions:  sessions,
		carts:     carts,
		addresses: addresses,
		users:     users,
		companies: companies,
		orders:    orders,
		rules:     rules,
		log:       log,
		locks:     make(map[int]*sync.Mutex),
		placing:   make(map[int]bool),
	}
}

func (s *Service) lock(userID int) func() {
	s.mu.Lock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// View is the session as the client renders it, with the cart priced for
// the chosen delivery tier.
type View struct {
	Session
	Complete bool         `json:"complete"`
	Placing  bool         `json:"placing"`
	Summary  cart.Summary `json:"summary"`
}

func (s *Service) view(ctx context.Context, userID int, sess Session) (View, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return View{}, err
	}
	state, err := s.carts.Get(ctx, userID)
	if err != nil {
		return View{}, err
	}
	return View{
		Session:  sess,
		Complete: sess.IsComplete(),
		Placing:  s.isPlacing(userID),
		Summary:  cart.Price(s.rules, state, u.PricingRole(), sess.tier()),
	}, nil
}

func (sess Session) tier() pricing.Tier {
	if sess.DeliverySlot == nil {
		return pricing.TierStandard
	}
	return pricing.TierFromSlotID(sess.DeliverySlot.ID)
}

func (s *Service) update(ctx context.Context, userID int, fn func(context.Context, Session) (Session, error)) (View, error) {
	unlock := s.lock(userID)
	defer unlock()

	sess, err := s.sessions.Load(ctx, userID)
	if err != nil {
		return View{}, err
	}
	next, err := fn(ctx, sess)
	if err != nil {
		return View{}, err
	}
	if err := s.sessions.Save(ctx, userID, next); err != nil {
		return View{}, err
	}
	return s.view(ctx, userID, next)
}

func (s *Service) Get(ctx context.Context, userID int) (View, error) {
	sess, err := s.sessions.Load(ctx, userID)
	if err != nil {
		return View{}, err
	}
	return s.view(ctx, userID, sess)
}

// SetAddress picks an entry from the user's address book.
func (s *Service) SetAddress(ctx context.Context, userID, addressID int) (View, error) {
	return s.update(ctx, userID, func(ctx context.Context, sess Session) (Session, error) {
		a, err := s.addresses.GetAddress(ctx, userID, addressID)
		if err != nil {
			return sess, err
		}
		return sess.WithAddress(DeliveryAddress{AddressID: a.AddressID, Label: a.Label(), Phone: a.Phone}), nil
	})
}

func (s *Service) SetDeliverySlot(ctx context.Context, userID int, slot order.DeliverySlot) (View, error) {
	return s.update(ctx, userID, func(ctx context.Context, sess Session) (Session, error) {
		if pricing.TierFromSlotID(slot.ID) == pricing.TierExpress {
			state, err := s.carts.Get(ctx, userID)
			if err != nil {
				return sess, err
			}
			if err := checkExpress(state); err != nil {
				return sess, err
			}
		}
		return sess.WithDeliverySlot(slot)
	})
}

func (s *Service) SetPaymentMethod(ctx context.Context, userID int, m PaymentMethod) (View, error) {
	return s.update(ctx, userID, func(ctx context.Context, sess Session) (Session, error) {
		if m == PayCreditAccount {
			u, err := s.users.GetByID(ctx, userID)
			if err != nil {
				return sess, err
			}
			if u.AccountType != user.AccountCompany {
				return sess, fmt.Errorf("%w: credit account is only available to company accounts", ErrInvalidPaymentMethod)
			}
		}
		return sess.WithPaymentMethod(m)
	})
}

func (s *Service) SetNotes(ctx context.Context, userID int, notes string) (View, error) {
	return s.update(ctx, userID, func(_ context.Context, sess Session) (Session, error) {
		return sess.WithNotes(notes), nil
	})
}

func (s *Service) GoTo(ctx context.Context, userID int, step Step) (View, error) {
	return s.update(ctx, userID, func(_ context.Context, sess Session) (Session, error) {
		return sess.GoTo(step)
	})
}

// Reset discards the session.
func (s *Service) Reset(ctx context.Context, userID int) error {
	unlock := s.lock(userID)
	defer unlock()
	return s.sessions.Delete(ctx, userID)
}

func checkExpress(state cart.State) error {
	for _, it := range state.Items {
		if !it.Product.SameDayEligible {
			return fmt.Errorf("%w: %s", ErrExpressUnavailable, it.Product.Name)
		}
	}
	return nil
}

// Confirmation is what the client shows once an order is stored.
type Confirmation struct {
	OrderID          string          `json:"orderId"`
	OrderNumber      string          `json:"orderNumber"`
	DeliveryDate     string          `json:"deliveryDate"`
	TimeSlot         string          `json:"timeSlot"`
	Total            decimal.Decimal `json:"total"`
	RequiresApproval bool            `json:"requiresApproval"`
}

func (s *Service) isPlacing(userID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.placing[userID]
}

func (s *Service) beginPlacing(userID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.placing[userID] {
		return false
	}
	s.placing[userID] = true
	return true
}

func (s *Service) endPlacing(userID int) {
	s.mu.Lock()
	delete(s.placing, userID)
	s.mu.Unlock()
}

// PlaceOrder submits the user's cart with the details gathered in the
// session. Nothing is changed unless the order is stored; afterwards the
// cart is emptied and the session discarded. A second call while one is in
// flight is rejected with ErrOrderInProgress.
func (s *Service) PlaceOrder(ctx context.Context, userID int) (Confirmation, error) {
	if !s.beginPlacing(userID) {
		return Confirmation{}, ErrOrderInProgress
	}
	defer s.endPlacing(userID)

	sess, err := s.sessions.Load(ctx, userID)
	if err != nil {
		return Confirmation{}, err
	}
	if !sess.IsComplete() {
		return Confirmation{}, ErrCheckoutIncomplete
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return Confirmation{}, err
	}
	if u.AccountType == user.AccountCompany && !u.Can(user.PermCreateOrders) {
		return Confirmation{}, user.ErrAccessDenied
	}

	state, err := s.carts.Get(ctx, userID)
	if err != nil {
		return Confirmation{}, err
	}
	if state.IsEmpty() {
		return Confirmation{}, ErrEmptyCart
	}
	// stock may have moved since the items were added
	for _, it := range state.Items {
		if check := cart.CheckStock(it.Product, it.Quantity); !check.Valid {
			return Confirmation{}, &cart.StockExceededError{ProductID: it.Product.ID, Message: check.Message}
		}
	}

	tier := sess.tier()
	if tier == pricing.TierExpress {
		if err := checkExpress(state); err != nil {
			return Confirmation{}, err
		}
	}
	priced := cart.Price(s.rules, state, u.PricingRole(), tier)
	total := priced.Totals.FinalTotal

	requiresApproval, err := s.approval(ctx, u, total)
	if err != nil {
		return Confirmation{}, err
	}

	items := make([]order.Item, 0, len(priced.Items))
	for _, l := range priced.Items {
		items = append(items, order.Item{
			ProductID:  l.ProductID,
			Name:       l.Name,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
			TotalPrice: l.LineTotal,
		})
	}

	receipt, err := s.orders.CreateOrder(ctx, order.Payload{
		UserID:           userID,
		CompanyID:        u.CompanyID(),
		Items:            items,
		DeliveryAddress:  sess.Address.Label,
		DeliverySlot:     *sess.DeliverySlot,
		PaymentMethod:    string(*sess.PaymentMethod),
		Notes:            sess.Notes,
		Subtotal:         priced.Totals.Subtotal,
		DeliveryFee:      priced.Totals.DeliveryFee,
		GST:              priced.Totals.GST,
		Total:            total,
		RequiresApproval: requiresApproval,
	})
	if err != nil {
		s.log.Warn("order placement failed", zap.Int("userId", userID), zap.Error(err))
		return Confirmation{}, err
	}

	if err := s.carts.Clear(ctx, userID); err != nil {
		s.log.Error("clear cart after order", zap.Int("userId", userID), zap.String("orderNumber", receipt.OrderNumber), zap.Error(err))
	}
	if err := s.Reset(ctx, userID); err != nil {
		s.log.Error("reset checkout after order", zap.Int("userId", userID), zap.String("orderNumber", receipt.OrderNumber), zap.Error(err))
	}

	return Confirmation{
		OrderID:          receipt.OrderID,
		OrderNumber:      receipt.OrderNumber,
		DeliveryDate:     sess.DeliverySlot.Date,
		TimeSlot:         sess.DeliverySlot.TimeSlot,
		Total:            total,
		RequiresApproval: requiresApproval,
	}, nil
}

// approval enforces the member's order limit and reports whether the
// company wants the order approved. Individuals never need approval.
func (s *Service) approval(ctx context.Context, u user.User, total decimal.Decimal) (bool, error) {
	m := u.Company
	if m == nil {
		return false, nil
	}
	if m.OrderLimit != nil && total.GreaterThan(*m.OrderLimit) {
		return false, fmt.Errorf("%w: limit %s", ErrOrderLimitExceeded, m.OrderLimit.StringFixed(2))
	}
	if s.companies == nil {
		return false, nil
	}
	c, err := s.companies.GetByID(ctx, m.CompanyID)
	if err != nil {
		return false, err
	}
	return c.RequiresApproval(total), nil
}

package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/wichananm65/easi-backend/internal/pricing"
	"github.com/wichananm65/easi-backend/internal/product"
	"github.com/wichananm65/easi-backend/internal/user"
)

// StockExceededError reports a rejected add or update. It matches
// ErrStockExceeded with errors.Is.
type StockExceededError struct {
	ProductID int
	Message   string
}

func (e *StockExceededError) Error() string {
	return fmt.Sprintf("stock exceeded for product %d: %s", e.ProductID, e.Message)
}

func (e *StockExceededError) Is(target error) bool { return target == ErrStockExceeded }

// UserLookup resolves the caller for role-dependent pricing.
type UserLookup interface {
	GetByID(ctx context.Context, id int) (user.User, error)
}

// Service owns every user's cart. Dispatches for one user are serialised so
// each one sees the result of the previous.
type Service struct {
	repo     Repository
	products product.ServiceInterface
	users    UserLookup
	rules    pricing.Rules
	log      *zap.Logger

	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

func NewService(repo Repository, products product.ServiceInterface, users UserLookup, rules pricing.Rules, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		products: products,
		users:    users,
		rules:    rules,
		log:      log,
		locks:    make(map[int]*sync.Mutex),
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

// load reads the stored lines and attaches current product snapshots.
// Lines whose product left the catalog are dropped.
func (s *Service) load(ctx context.Context, userID int) (State, error) {
	lines, err := s.repo.Load(ctx, userID)
	if err != nil {
		return State{}, err
	}
	state := State{Items: make([]Item, 0, len(lines))}
	if len(lines) == 0 {
		return state, nil
	}

	ids := make([]int, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	products, err := s.products.ListByIDs(ctx, ids)
	if err != nil {
		return State{}, fmt.Errorf("resolve cart products: %w", err)
	}
	byID := make(map[int]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, l := range lines {
		p, ok := byID[l.ProductID]
		if !ok || l.Quantity <= 0 {
			s.log.Debug("dropping cart line", zap.Int("userID", userID), zap.Int("productID", l.ProductID))
			continue
		}
		state.Items = append(state.Items, Item{Product: p, Quantity: l.Quantity})
	}
	return state, nil
}

func (s *Service) save(ctx context.Context, userID int, state State) error {
	lines := make([]Line, 0, len(state.Items))
	for _, it := range state.Items {
		lines = append(lines, Line{ProductID: it.Product.ID, Quantity: it.Quantity})
	}
	return s.repo.Save(ctx, userID, lines)
}

// Get returns the current cart.
func (s *Service) Get(ctx context.Context, userID int) (State, error) {
	unlock := s.lock(userID)
	defer unlock()
	return s.load(ctx, userID)
}

// Dispatch applies a to the user's cart and persists the result. A rejected
// action leaves the stored cart untouched and returns *StockExceededError
// along with the unchanged state.
func (s *Service) Dispatch(ctx context.Context, userID int, a Action) (State, error) {
	unlock := s.lock(userID)
	defer unlock()

	state, err := s.load(ctx, userID)
	if err != nil {
		return State{}, err
	}

	next, check := Reduce(state, a)
	if !check.Valid {
		return state, &StockExceededError{ProductID: actionProductID(a), Message: check.Message}
	}
	if err := s.save(ctx, userID, next); err != nil {
		return state, err
	}
	return next, nil
}

func actionProductID(a Action) int {
	switch a := a.(type) {
	case AddToCart:
		return a.Product.ID
	case UpdateCartQuantity:
		return a.ProductID
	case RemoveFromCart:
		return a.ProductID
	}
	return 0
}

// AddItem adds quantity of productID, validated against current stock.
func (s *Service) AddItem(ctx context.Context, userID, productID, quantity int) (State, error) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return State{}, err
	}
	return s.Dispatch(ctx, userID, AddToCart{Product: p, Quantity: quantity})
}

func (s *Service) UpdateQuantity(ctx context.Context, userID, productID, quantity int) (State, error) {
	return s.Dispatch(ctx, userID, UpdateCartQuantity{ProductID: productID, Quantity: quantity})
}

func (s *Service) RemoveItem(ctx context.Context, userID, productID int) (State, error) {
	return s.Dispatch(ctx, userID, RemoveFromCart{ProductID: productID})
}

func (s *Service) Clear(ctx context.Context, userID int) error {
	_, err := s.Dispatch(ctx, userID, ClearCart{})
	return err
}

// SummaryLine is a cart item priced for the caller.
type SummaryLine struct {
	ProductID int             `json:"productID"`
	Name      string          `json:"productName"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

type Summary struct {
	Items                []SummaryLine   `json:"items"`
	Role                 pricing.Role    `json:"role"`
	Tier                 pricing.Tier    `json:"tier"`
	Totals               pricing.Totals  `json:"totals"`
	AmountToFreeDelivery decimal.Decimal `json:"amountToFreeDelivery"`
}

// Price prices state for role and tier with rules.
func Price(rules pricing.Rules, state State, role pricing.Role, tier pricing.Tier) Summary {
	items := make([]SummaryLine, 0, len(state.Items))
	for _, it := range state.Items {
		items = append(items, SummaryLine{
			ProductID: it.Product.ID,
			Name:      it.Product.Name,
			Quantity:  it.Quantity,
			UnitPrice: pricing.UnitPrice(it.Product, role),
			LineTotal: pricing.LineTotal(it.Product, it.Quantity, role),
		})
	}
	totals := rules.CalculateOrderTotal(state.Lines(), role, tier)
	return Summary{
		Items:                items,
		Role:                 role,
		Tier:                 tier,
		Totals:               totals,
		AmountToFreeDelivery: rules.AmountToFreeDelivery(totals.Subtotal),
	}
}

// Summary prices the user's cart with the user's own pricing role.
func (s *Service) Summary(ctx context.Context, userID int, tier pricing.Tier) (Summary, error) {
	state, err := s.Get(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	role := pricing.RoleRetail
	if s.users != nil {
		u, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return Summary{}, err
		}
		role = u.PricingRole()
	}
	return Price(s.rules, state, role, tier), nil
}

package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/easi-backend/internal/address"
	"github.com/wichananm65/easi-backend/internal/cart"
	"github.com/wichananm65/easi-backend/internal/company"
	"github.com/wichananm65/easi-backend/internal/order"
	"github.com/wichananm65/easi-backend/internal/pricing"
	"github.com/wichananm65/easi-backend/internal/product"
	"github.com/wichananm65/easi-backend/internal/user"
)

const (
	individualID   = 1
	buyerID        = 2
	viewerID       = 3
	tigerID        = 1
	chablisID      = 2
	individualAddr = 5
	buyerAddr      = 6
)

type fixture struct {
	svc      *Service
	sessions *InMemoryStore
	carts    *cart.Service
	products *product.InMemoryRepository
	orders   *order.InMemoryRepository
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	products := product.NewInMemoryRepository([]product.Product{
		{ID: tigerID, Name: "Tiger Lager 24x330ml", Stock: 10, RetailPrice: dec("25"), TradePrice: dec("20"), SameDayEligible: true},
		{ID: chablisID, Name: "Chablis 2022", Stock: 3, RetailPrice: dec("40"), TradePrice: dec("32")},
	})
	limit := dec("60")
	users := user.NewService(user.NewInMemoryRepository([]user.User{
		{ID: individualID, Name: "Jenny", Email: "jenny@example.com", AccountType: user.AccountIndividual, Individual: &user.IndividualProfile{}},
		{
			ID: buyerID, Name: "Buyer", Email: "buyer@bar.sg", AccountType: user.AccountCompany,
			Company: &user.CompanyMembership{
				CompanyID: 10, Role: user.RoleStaff, OrderLimit: &limit,
				Permissions: user.Permissions{CreateOrders: true, ViewTradePricing: true},
			},
		},
		{
			ID: viewerID, Name: "Viewer", Email: "viewer@bar.sg", AccountType: user.AccountCompany,
			Company: &user.CompanyMembership{CompanyID: 10, Role: user.RoleStaff, Permissions: user.Permissions{ViewReports: true}},
		},
	}), nil)
	companies := company.NewInMemoryRepository([]company.Company{{
		ID: 10, Name: "Bar Co", CreditLimit: dec("50000"), AvailableCredit: dec("35000"),
		ApprovalSettings: company.ApprovalSettings{RequireApproval: true, ApprovalThreshold: dec("50")},
	}})
	addresses := address.NewService(address.NewInMemoryRepository(map[int][]address.Address{
		individualID: {{AddressID: individualAddr, UserID: individualID, AddressName: "Home", AddressDesc: "1 Club Street", PostalCode: "069400"}},
		buyerID:      {{AddressID: buyerAddr, UserID: buyerID, AddressName: "Bar", AddressDesc: "8 Ann Siang Road", PostalCode: "069694"}},
	}))

	rules := pricing.DefaultRules()
	orderRepo := order.NewInMemoryRepository()
	carts := cart.NewService(cart.NewInMemoryRepository(nil), product.NewService(products, nil, 0, nil), users, rules, nil)
	sessions := NewInMemoryStore()
	svc := NewService(sessions, carts, addresses, users, companies, order.NewService(orderRepo, nil, 0, nil), rules, nil)
	return &fixture{svc: svc, sessions: sessions, carts: carts, products: products, orders: orderRepo}
}

func (f *fixture) fill(t *testing.T, userID, addressID int) {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.SetAddress(ctx, userID, addressID)
	require.NoError(t, err)
	_, err = f.svc.SetDeliverySlot(ctx, userID, morningSlot)
	require.NoError(t, err)
	_, err = f.svc.SetPaymentMethod(ctx, userID, PayCard)
	require.NoError(t, err)
}

func (f *fixture) add(t *testing.T, userID, productID, qty int) {
	t.Helper()
	_, err := f.carts.AddItem(context.Background(), userID, productID, qty)
	require.NoError(t, err)
}

type submitterFunc func(ctx context.Context, p order.Payload) (order.Receipt, error)

func (f submitterFunc) CreateOrder(ctx context.Context, p order.Payload) (order.Receipt, error) {
	return f(ctx, p)
}

func TestPlaceOrder_IncompleteLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.add(t, individualID, tigerID, 2)
	_, err := f.svc.SetAddress(ctx, individualID, individualAddr)
	require.NoError(t, err)
	before, err := f.sessions.Load(ctx, individualID)
	require.NoError(t, err)

	_, err = f.svc.PlaceOrder(ctx, individualID)
	assert.ErrorIs(t, err, ErrCheckoutIncomplete)

	after, _ := f.sessions.Load(ctx, individualID)
	assert.Equal(t, before, after)
	assert.Nil(t, after.DeliverySlot)
	state, _ := f.carts.Get(ctx, individualID)
	assert.Equal(t, 2, state.Quantity(tigerID))
	orders, _ := f.orders.ListByUser(ctx, individualID)
	assert.Empty(t, orders)
	assert.False(t, f.svc.isPlacing(individualID))
}

func TestPlaceOrder_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.add(t, individualID, tigerID, 2)
	f.fill(t, individualID, individualAddr)
	_, err := f.svc.SetNotes(ctx, individualID, "ring twice")
	require.NoError(t, err)

	conf, err := f.svc.PlaceOrder(ctx, individualID)
	require.NoError(t, err)
	assert.NotEmpty(t, conf.OrderID)
	assert.Regexp(t, `^EASI-\d{8}-\d{6}$`, conf.OrderNumber)
	assert.Equal(t, "2026-10-16", conf.DeliveryDate)
	assert.Equal(t, "09:00 - 12:00", conf.TimeSlot)
	assert.True(t, conf.Total.Equal(dec("64")))
	assert.False(t, conf.RequiresApproval)

	stored, err := f.orders.GetByID(ctx, conf.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "Home, 1 Club Street 069400", stored.DeliveryAddress)
	assert.Equal(t, "card", stored.PaymentMethod)
	assert.Equal(t, "ring twice", stored.Notes)
	assert.True(t, stored.Subtotal.Equal(dec("50")))
	assert.True(t, stored.DeliveryFee.Equal(dec("10")))
	assert.True(t, stored.GST.Equal(dec("4")))
	require.Len(t, stored.Items, 1)
	assert.True(t, stored.Items[0].UnitPrice.Equal(dec("25")))
	assert.Nil(t, stored.CompanyID)

	state, _ := f.carts.Get(ctx, individualID)
	assert.True(t, state.IsEmpty())
	sess, _ := f.sessions.Load(ctx, individualID)
	assert.Equal(t, NewSession(), sess)
}

func TestPlaceOrder_FailurePreservesState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.add(t, individualID, tigerID, 2)
	f.fill(t, individualID, individualAddr)
	working := f.svc.orders

	f.svc.orders = submitterFunc(func(context.Context, order.Payload) (order.Receipt, error) {
		return order.Receipt{}, order.ErrOrderSubmissionFailed
	})
	_, err := f.svc.PlaceOrder(ctx, individualID)
	assert.ErrorIs(t, err, order.ErrOrderSubmissionFailed)
	assert.False(t, f.svc.isPlacing(individualID))

	sess, _ := f.sessions.Load(ctx, individualID)
	assert.True(t, sess.IsComplete())
	state, _ := f.carts.Get(ctx, individualID)
	assert.Equal(t, 2, state.Quantity(tigerID))

	f.svc.orders = working
	_, err = f.svc.PlaceOrder(ctx, individualID)
	assert.NoError(t, err)
}

func TestPlaceOrder_RejectsReentry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.add(t, individualID, tigerID, 1)
	f.fill(t, individualID, individualAddr)

	entered := make(chan struct{})
	release := make(chan struct{})
	f.svc.orders = submitterFunc(func(context.Context, order.Payload) (order.Receipt, error) {
		close(entered)
		<-release
		return order.Receipt{OrderID: "0b7c", OrderNumber: "EASI-20261015-000001"}, nil
	})

	var wg sync.WaitGroup
	wg.Add(1)
	var first error
	go func() {
		defer wg.Done()
		_, first = f.svc.PlaceOrder(ctx, individualID)
	}()

	<-entered
	v, err := f.svc.Get(ctx, individualID)
	require.NoError(t, err)
	assert.True(t, v.Placing)

	_, err = f.svc.PlaceOrder(ctx, individualID)
	assert.ErrorIs(t, err, ErrOrderInProgress)

	close(release)
	wg.Wait()
	require.NoError(t, first)
	assert.False(t, f.svc.isPlacing(individualID))
}

func TestPlaceOrder_CompanyMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.add(t, buyerID, tigerID, 2)
	f.fill(t, buyerID, buyerAddr)
	conf, err := f.svc.PlaceOrder(ctx, buyerID)
	require.NoError(t, err)
	// trade price: 40 + 10 delivery + 3.20 GST
	assert.True(t, conf.Total.Equal(dec("53.2")), conf.Total.String())
	assert.True(t, conf.RequiresApproval)

	stored, _ := f.orders.GetByID(ctx, conf.OrderID)
	require.NotNil(t, stored.CompanyID)
	assert.Equal(t, 10, *stored.CompanyID)
	assert.True(t, stored.Items[0].UnitPrice.Equal(dec("20")))

	f.add(t, buyerID, tigerID, 3)
	f.fill(t, buyerID, buyerAddr)
	_, err = f.svc.PlaceOrder(ctx, buyerID)
	assert.ErrorIs(t, err, ErrOrderLimitExceeded)
	state, _ := f.carts.Get(ctx, buyerID)
	assert.Equal(t, 3, state.Quantity(tigerID))
}

func TestPlaceOrder_RequiresCreateOrdersPermission(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.add(t, viewerID, tigerID, 1)
	_, err := f.svc.SetAddress(ctx, viewerID, buyerAddr)
	assert.ErrorIs(t, err, address.ErrNotFound)

	// viewer shares no address book entry, so build the session directly
	require.NoError(t, f.sessions.Save(ctx, viewerID, completeSession(t)))
	_, err = f.svc.PlaceOrder(ctx, viewerID)
	assert.ErrorIs(t, err, user.ErrAccessDenied)
}

func TestPlaceOrder_RechecksStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.add(t, individualID, chablisID, 3)
	f.fill(t, individualID, individualAddr)

	_, err := f.products.AdjustStock(ctx, chablisID, -2)
	require.NoError(t, err)

	_, err = f.svc.PlaceOrder(ctx, individualID)
	assert.ErrorIs(t, err, cart.ErrStockExceeded)
	var stock *cart.StockExceededError
	require.True(t, errors.As(err, &stock))
	assert.Equal(t, chablisID, stock.ProductID)

	state, _ := f.carts.Get(ctx, individualID)
	assert.Equal(t, 3, state.Quantity(chablisID))
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	f := newFixture(t)
	f.fill(t, individualID, individualAddr)
	_, err := f.svc.PlaceOrder(context.Background(), individualID)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestSetDeliverySlot_Express(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	express := order.DeliverySlot{ID: order.ExpressSlotID, Date: "2026-10-15", TimeSlot: "within 3 hours"}

	f.add(t, individualID, tigerID, 2)
	_, err := f.svc.SetAddress(ctx, individualID, individualAddr)
	require.NoError(t, err)
	v, err := f.svc.SetDeliverySlot(ctx, individualID, express)
	require.NoError(t, err)
	assert.Equal(t, pricing.TierExpress, v.Summary.Tier)
	assert.True(t, v.Summary.Totals.DeliveryFee.Equal(dec("20")))

	f.add(t, individualID, chablisID, 1)
	_, err = f.svc.SetDeliverySlot(ctx, individualID, express)
	assert.ErrorIs(t, err, ErrExpressUnavailable)
}

func TestSetPaymentMethod_CreditAccountForCompaniesOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SetAddress(ctx, individualID, individualAddr)
	require.NoError(t, err)
	_, err = f.svc.SetDeliverySlot(ctx, individualID, morningSlot)
	require.NoError(t, err)
	_, err = f.svc.SetPaymentMethod(ctx, individualID, PayCreditAccount)
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)

	_, err = f.svc.SetAddress(ctx, buyerID, buyerAddr)
	require.NoError(t, err)
	_, err = f.svc.SetDeliverySlot(ctx, buyerID, morningSlot)
	require.NoError(t, err)
	v, err := f.svc.SetPaymentMethod(ctx, buyerID, PayCreditAccount)
	require.NoError(t, err)
	assert.Equal(t, StepReview, v.Step)
}

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[key]
	if !ok {
		return nil, product.ErrCacheMiss
	}
	return b, nil
}

func (m *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memCache) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func TestCacheStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewCacheStore(&memCache{data: map[string][]byte{}}, time.Hour)

	fresh, err := store.Load(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, NewSession(), fresh)

	s := completeSession(t).WithNotes("gate code 1234")
	require.NoError(t, store.Save(ctx, 9, s))
	loaded, err := store.Load(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, s, loaded)

	require.NoError(t, store.Delete(ctx, 9))
	loaded, _ = store.Load(ctx, 9)
	assert.Equal(t, NewSession(), loaded)
}

package favorite

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/easi-backend/internal/product"
	"github.com/wichananm65/easi-backend/internal/user"
)

const (
	retailUser = 1
	tradeUser  = 2
)

func newTestService(t *testing.T, saved map[int][]int) (*Service, *InMemoryRepository) {
	t.Helper()
	products := product.NewService(product.NewInMemoryRepository([]product.Product{
		{ID: 1, Name: "Tiger Lager", Category: "Beer", Stock: 10, RetailPrice: decimal.NewFromInt(25), TradePrice: decimal.NewFromInt(20), SameDayEligible: true},
		{ID: 2, Name: "Chablis 2022", Category: "Wine", Stock: 0, RetailPrice: decimal.NewFromInt(40), TradePrice: decimal.NewFromInt(32)},
	}), nil, 0, nil)
	users := user.NewService(user.NewInMemoryRepository([]user.User{
		{ID: retailUser, AccountType: user.AccountIndividual, Individual: &user.IndividualProfile{}},
		{ID: tradeUser, AccountType: user.AccountCompany, Company: &user.CompanyMembership{
			CompanyID: 4, Role: user.RoleStaff, Permissions: user.Permissions{ViewTradePricing: true},
		}},
	}), nil)
	repo := NewInMemoryRepository(saved)
	return NewService(repo, products, users, nil), repo
}

func TestService_AddKeepsSaveOrder(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.Add(ctx, retailUser, 2)
	require.NoError(t, err)
	ids, err := svc.Add(ctx, retailUser, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, ids)

	_, err = svc.Add(ctx, retailUser, 1)
	assert.ErrorIs(t, err, ErrAlreadyFavorite)

	_, err = svc.Add(ctx, retailUser, 404)
	assert.ErrorIs(t, err, ErrUnknownProduct)

	items, err := svc.List(ctx, retailUser)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Chablis 2022", items[0].Name)
	assert.False(t, items[0].InStock)
	assert.True(t, items[1].SameDayEligible)
}

func TestService_ListPricesForCaller(t *testing.T) {
	svc, _ := newTestService(t, map[int][]int{retailUser: {1}, tradeUser: {1}})
	ctx := context.Background()

	retail, err := svc.List(ctx, retailUser)
	require.NoError(t, err)
	assert.True(t, retail[0].UnitPrice.Equal(decimal.NewFromInt(25)))

	trade, err := svc.List(ctx, tradeUser)
	require.NoError(t, err)
	assert.True(t, trade[0].UnitPrice.Equal(decimal.NewFromInt(20)))
}

func TestService_ListSkipsDelistedProducts(t *testing.T) {
	svc, _ := newTestService(t, map[int][]int{retailUser: {99, 1}})

	items, err := svc.List(context.Background(), retailUser)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].ProductID)
}

func TestService_RemoveAndUnknownUser(t *testing.T) {
	svc, _ := newTestService(t, map[int][]int{retailUser: {1, 2}})
	ctx := context.Background()

	ids, err := svc.Remove(ctx, retailUser, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, ids)

	_, err = svc.Remove(ctx, retailUser, 1)
	assert.ErrorIs(t, err, ErrNotFavorite)

	_, err = svc.List(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

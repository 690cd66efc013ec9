package recommended

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/easi-backend/internal/product"
)

func newTestService() *Service {
	repo := product.NewInMemoryRepository([]product.Product{
		{ID: 1, Name: "Tiger Lager", Stock: 40, RetailPrice: decimal.NewFromInt(25), SameDayEligible: true},
		{ID: 2, Name: "Chablis 2022", Stock: 90, RetailPrice: decimal.NewFromInt(40)},
		{ID: 3, Name: "Jinro Soju", Stock: 200, RetailPrice: decimal.RequireFromString("6.90"), SameDayEligible: true},
		{ID: 4, Name: "Monkey Shoulder", Stock: 0, RetailPrice: decimal.NewFromInt(79), SameDayEligible: true},
		{ID: 5, Name: "Heineken", Stock: 40, RetailPrice: decimal.RequireFromString("62.90"), SameDayEligible: true},
	})
	return NewService(product.NewService(repo, nil, 0, nil))
}

func TestService_ListSameDayInStockByStock(t *testing.T) {
	items, err := newTestService().List(context.Background(), 10, 0)
	require.NoError(t, err)

	ids := make([]int, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	assert.Equal(t, []int{3, 1, 5}, ids)
}

func TestService_ListPages(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	page, err := svc.List(ctx, 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, 1, page[0].ProductID)

	empty, err := svc.List(ctx, 2, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRecommendedRoute(t *testing.T) {
	app := fiber.New()
	NewHandler(newTestService()).RegisterPublicRoutes(app)

	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/product/recommended?limit=1&offset=bogus", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)

	var items []Item
	require.NoError(t, json.NewDecoder(res.Body).Decode(&items))
	require.Len(t, items, 1)
	assert.Equal(t, "Jinro Soju", items[0].ProductName)
}

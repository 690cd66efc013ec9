package cart

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"github.com/wichananm65/easi-backend/internal/pricing"
	"github.com/wichananm65/easi-backend/internal/product"
	"github.com/wichananm65/easi-backend/internal/user"
)

func makeAppWithCartHandler(cHandler *Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			id, err := strconv.Atoi(v)
			if err == nil {
				claims := jwt.MapClaims{"user_id": id}
				tok := &jwt.Token{Claims: claims}
				c.Locals("user", tok)
			}
		}
		return c.Next()
	})
	cHandler.RegisterProtectedRoutes(app)
	return app
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	products := product.NewService(product.NewInMemoryRepository([]product.Product{lager, wine, empty}), nil, 0, nil)
	users := user.NewService(user.NewInMemoryRepository([]user.User{
		{ID: 42, AccountType: user.AccountIndividual, Individual: &user.IndividualProfile{}},
		{ID: 43, AccountType: user.AccountCompany, Company: &user.CompanyMembership{
			CompanyID: 1, Role: user.RoleStaff, Permissions: user.Permissions{ViewTradePricing: true},
		}},
	}), nil)
	return NewService(NewInMemoryRepository(map[int][]Line{42: {{ProductID: wine.ID, Quantity: 1}}}), products, users, pricing.DefaultRules(), nil)
}

func doJSON(app *fiber.App, method, path, body, userID string) (*httptestResponse, error) {
	var req = httptest.NewRequest(method, path, nil)
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	res, err := app.Test(req)
	if err != nil {
		return nil, err
	}
	b, _ := io.ReadAll(res.Body)
	return &httptestResponse{Status: res.StatusCode, Body: string(b)}, nil
}

type httptestResponse struct {
	Status int
	Body   string
}

func TestCartRoutes_Basic(t *testing.T) {
	app := makeAppWithCartHandler(NewHandler(newTestService(t)))

	res, _ := doJSON(app, "GET", "/api/v1/cart", "", "")
	if res.Status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthenticated GET, got %d", res.Status)
	}

	res, _ = doJSON(app, "GET", "/api/v1/cart", "", "42")
	if res.Status != fiber.StatusOK || !strings.Contains(res.Body, "Cloudy Bay") {
		t.Fatalf("expected seeded cart, got %d %s", res.Status, res.Body)
	}

	res, _ = doJSON(app, "POST", "/api/v1/cart", `{"productID":1,"quantity":2}`, "42")
	if res.Status != fiber.StatusOK {
		t.Fatalf("expected 200 for adding to cart, got %d", res.Status)
	}
	res, _ = doJSON(app, "POST", "/api/v1/cart", `{"productID":1,"quantity":1}`, "42")
	if !strings.Contains(res.Body, `"quantity":3`) {
		t.Fatalf("expected quantity 3 after second add, got %s", res.Body)
	}

	res, _ = doJSON(app, "POST", "/api/v1/cart", `{"productID":1,"quantity":3}`, "42")
	if res.Status != fiber.StatusConflict {
		t.Fatalf("expected 409 when exceeding stock, got %d", res.Status)
	}
	if !strings.Contains(res.Body, "Only 5 of Tiger Lager available") {
		t.Fatalf("expected stock message, got %s", res.Body)
	}

	res, _ = doJSON(app, "PATCH", "/api/v1/cart", `{"productID":1,"quantity":5}`, "42")
	if res.Status != fiber.StatusOK || !strings.Contains(res.Body, `"quantity":5`) {
		t.Fatalf("expected update to 5, got %d %s", res.Status, res.Body)
	}

	res, _ = doJSON(app, "PATCH", "/api/v1/cart", `{"productID":1,"quantity":0}`, "42")
	if strings.Contains(res.Body, "Tiger Lager") {
		t.Fatalf("expected product 1 removed after quantity zero, got %s", res.Body)
	}

	res, _ = doJSON(app, "POST", "/api/v1/cart", `{"productID":404}`, "42")
	if res.Status != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unknown product, got %d", res.Status)
	}

	res, _ = doJSON(app, "DELETE", "/api/v1/cart/2", "", "42")
	if res.Status != fiber.StatusOK || strings.Contains(res.Body, "Cloudy Bay") {
		t.Fatalf("expected wine removed, got %d %s", res.Status, res.Body)
	}

	doJSON(app, "POST", "/api/v1/cart", `{"productID":2}`, "42")
	res, _ = doJSON(app, "DELETE", "/api/v1/cart", "", "42")
	if res.Status != fiber.StatusNoContent {
		t.Fatalf("expected 204 for clear cart, got %d", res.Status)
	}
	res, _ = doJSON(app, "GET", "/api/v1/cart", "", "42")
	if strings.Contains(res.Body, "productID") {
		t.Fatalf("expected empty cart after clear, got %s", res.Body)
	}
}

func TestCartSummary_UsesCallerRole(t *testing.T) {
	svc := newTestService(t)
	app := makeAppWithCartHandler(NewHandler(svc))
	ctx := context.Background()

	for _, uid := range []int{42, 43} {
		if err := svc.Clear(ctx, uid); err != nil {
			t.Fatalf("clear: %v", err)
		}
		if _, err := svc.AddItem(ctx, uid, lager.ID, 2); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	res, _ := doJSON(app, "GET", "/api/v1/cart/summary", "", "42")
	var retail Summary
	if err := json.Unmarshal([]byte(res.Body), &retail); err != nil {
		t.Fatalf("decode: %v (%s)", err, res.Body)
	}
	if retail.Role != pricing.RoleRetail || retail.Totals.FinalTotal.String() != "64" {
		t.Fatalf("unexpected retail summary %+v", retail)
	}
	if retail.AmountToFreeDelivery.String() != "50" {
		t.Fatalf("expected 50 to free delivery, got %s", retail.AmountToFreeDelivery)
	}

	res, _ = doJSON(app, "GET", "/api/v1/cart/summary?tier=express", "", "43")
	var trade Summary
	if err := json.Unmarshal([]byte(res.Body), &trade); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// 2 x 20 trade, express 20, gst 3.2
	if trade.Role != pricing.RoleTrade || trade.Totals.Subtotal.String() != "40" || trade.Totals.FinalTotal.String() != "63.2" {
		t.Fatalf("unexpected trade summary %+v", trade.Totals)
	}

	res, _ = doJSON(app, "GET", "/api/v1/cart/summary?tier=drone", "", "42")
	if res.Status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for unknown tier, got %d", res.Status)
	}
}

func TestService_DropsDelistedProducts(t *testing.T) {
	svc := newTestService(t)
	repo := svc.repo.(*InMemoryRepository)
	_ = repo.Save(context.Background(), 42, []Line{{ProductID: 999, Quantity: 1}, {ProductID: lager.ID, Quantity: 1}})

	state, err := svc.Get(context.Background(), 42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(state.Items) != 1 || state.Items[0].Product.ID != lager.ID {
		t.Fatalf("expected only lager to remain, got %+v", state.Items)
	}
}

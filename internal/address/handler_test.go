package address

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

func makeAppWithAddressHandler(a *Handler) *fiber.App {
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
	a.RegisterProtectedRoutes(app)
	return app
}

func TestAddressRoute(t *testing.T) {
	seed := map[int][]Address{
		42: {{AddressID: 1, UserID: 42, AddressName: "Bar", AddressDesc: "1 Club Street", PostalCode: "069400", Phone: "65551234"}},
	}
	app := makeAppWithAddressHandler(NewHandler(NewService(NewInMemoryRepository(seed))))

	req := httptest.NewRequest("GET", "/api/v1/address", nil)
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.StatusCode)
	}

	req2 := httptest.NewRequest("GET", "/api/v1/address", nil)
	req2.Header.Set("X-User-ID", "42")
	res2, _ := app.Test(req2)
	if res2.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res2.StatusCode)
	}
	b, _ := io.ReadAll(res2.Body)
	if !strings.Contains(string(b), "Club Street") {
		t.Fatalf("unexpected body: %s", string(b))
	}

	req3 := httptest.NewRequest("POST", "/api/v1/address", strings.NewReader(`{"addressDesc":"9 Raffles Place","phone":"123"}`))
	req3.Header.Set("Content-Type", "application/json")
	req3.Header.Set("X-User-ID", "42")
	res3, _ := app.Test(req3)
	if res3.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201 for add, got %d", res3.StatusCode)
	}
	var created Address
	if err := json.NewDecoder(res3.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.AddressID != 2 {
		t.Fatalf("expected new id 2, got %d", created.AddressID)
	}

	req4 := httptest.NewRequest("PATCH", "/api/v1/address", strings.NewReader(`{"addressId":2,"addressDesc":"10 Raffles Place"}`))
	req4.Header.Set("Content-Type", "application/json")
	req4.Header.Set("X-User-ID", "42")
	res4, _ := app.Test(req4)
	if res4.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for patch, got %d", res4.StatusCode)
	}
	b4, _ := io.ReadAll(res4.Body)
	if !strings.Contains(string(b4), "10 Raffles") {
		t.Fatalf("patch response unexpected: %s", string(b4))
	}

	// another user cannot touch user 42's address
	req5 := httptest.NewRequest("DELETE", "/api/v1/address", strings.NewReader(`{"addressId":2}`))
	req5.Header.Set("Content-Type", "application/json")
	req5.Header.Set("X-User-ID", "7")
	res5, _ := app.Test(req5)
	if res5.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for foreign delete, got %d", res5.StatusCode)
	}

	req6 := httptest.NewRequest("DELETE", "/api/v1/address", strings.NewReader(`{"addressId":2}`))
	req6.Header.Set("Content-Type", "application/json")
	req6.Header.Set("X-User-ID", "42")
	res6, _ := app.Test(req6)
	if res6.StatusCode != fiber.StatusNoContent {
		t.Fatalf("expected 204 for delete, got %d", res6.StatusCode)
	}

	req7 := httptest.NewRequest("GET", "/api/v1/address", nil)
	req7.Header.Set("X-User-ID", "42")
	res7, _ := app.Test(req7)
	b7, _ := io.ReadAll(res7.Body)
	if strings.Contains(string(b7), "Raffles") {
		t.Fatalf("delete did not remove entry: %s", string(b7))
	}

	req8 := httptest.NewRequest("POST", "/api/v1/address", strings.NewReader(`{"phone":"1"}`))
	req8.Header.Set("Content-Type", "application/json")
	req8.Header.Set("X-User-ID", "42")
	res8, _ := app.Test(req8)
	if res8.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for empty address, got %d", res8.StatusCode)
	}
}

func TestAddress_Label(t *testing.T) {
	a := Address{AddressName: "Bar", AddressDesc: "1 Club Street", PostalCode: "069400"}
	if got := a.Label(); got != "Bar, 1 Club Street 069400" {
		t.Fatalf("unexpected label %q", got)
	}
}

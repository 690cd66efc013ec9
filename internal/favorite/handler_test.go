package favorite

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeAppWithFavoriteHandler(h *Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			if id, err := strconv.Atoi(v); err == nil {
				c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{"user_id": id}})
			}
		}
		return c.Next()
	})
	h.RegisterProtectedRoutes(app)
	return app
}

func TestFavoriteRoutes(t *testing.T) {
	svc, _ := newTestService(t, nil)
	app := makeAppWithFavoriteHandler(NewHandler(svc))

	send := func(method, body string) (int, []byte) {
		req := httptest.NewRequest(method, "/api/v1/favorites", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User-ID", "1")
		res, err := app.Test(req)
		require.NoError(t, err)
		b, _ := io.ReadAll(res.Body)
		return res.StatusCode, b
	}
	status := func(method, body string) int {
		code, _ := send(method, body)
		return code
	}

	unauth, _ := app.Test(httptest.NewRequest("GET", "/api/v1/favorites", nil))
	assert.Equal(t, fiber.StatusUnauthorized, unauth.StatusCode)

	assert.Equal(t, fiber.StatusOK, status("POST", `{"productId":1}`))
	assert.Equal(t, fiber.StatusConflict, status("POST", `{"productId":1}`))
	assert.Equal(t, fiber.StatusNotFound, status("POST", `{"productId":404}`))
	assert.Equal(t, fiber.StatusBadRequest, status("POST", `{"productId":0}`))

	code, body := send("GET", "")
	require.Equal(t, fiber.StatusOK, code)
	var items []Item
	require.NoError(t, json.Unmarshal(body, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Tiger Lager", items[0].Name)

	assert.Equal(t, fiber.StatusOK, status("DELETE", `{"productId":1}`))
	assert.Equal(t, fiber.StatusBadRequest, status("DELETE", `{"productId":1}`))
}

package logger

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInternalError_LogsCauseAndHidesIt(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	app := fiber.New()
	app.Use(RequestLogger(zap.New(core)))
	app.Get("/boom", func(c *fiber.Ctx) error {
		return InternalError(c, errors.New("pq: connection refused"))
	})

	res, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, res.StatusCode)

	body, _ := io.ReadAll(res.Body)
	assert.JSONEq(t, `{"message":"internal server error"}`, string(body))

	failed := logs.FilterMessage("request failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "/boom", failed[0].ContextMap()["path"])
	assert.Equal(t, "pq: connection refused", failed[0].ContextMap()["error"])
}

func TestFromCtx_WithoutMiddleware(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		assert.NotNil(t, FromCtx(c))
		return InternalError(c, errors.New("boom"))
	})

	res, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, res.StatusCode)
}

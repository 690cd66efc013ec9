package logger

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wichananm65/easi-backend/internal/config"
)

// New builds the application logger. Development mode switches to a
// console encoder at debug level.
func New(cfg config.LoggerConfig, development bool) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level.SetLevel(zapcore.InfoLevel)
	}

	zcfg := zap.NewProductionConfig()
	if development {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = level
	if cfg.Encoding != "" {
		zcfg.Encoding = cfg.Encoding
	}
	zcfg.DisableCaller = cfg.DisableCaller
	zcfg.DisableStacktrace = cfg.DisableStacktrace
	zcfg.EncoderConfig.TimeKey = "ts"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zcfg.Build()
}

const localsKey = "logger"

// RequestLogger logs one line per request and makes log available to
// handlers through FromCtx.
func RequestLogger(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(localsKey, log)
		start := time.Now()
		err := c.Next()
		log.Info("request",
			zap.String("method", c.Method()),
			zap.String("path", c.OriginalURL()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
		)
		return err
	}
}

// FromCtx returns the logger installed by RequestLogger, or a no-op logger.
func FromCtx(c *fiber.Ctx) *zap.Logger {
	if log, ok := c.Locals(localsKey).(*zap.Logger); ok && log != nil {
		return log
	}
	return zap.NewNop()
}

// InternalError logs err and answers 500 without exposing its text.
func InternalError(c *fiber.Ctx, err error) error {
	FromCtx(c).Error("request failed",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "internal server error"})
}

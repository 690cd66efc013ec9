package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds environment-driven configuration.
type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Postgres PostgresConfig
	JWT      JWTConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Pricing  PricingConfig
	Rewards  RewardsConfig
}

type ServerConfig struct {
	Addr           string
	AppEnv         string
	RequestTimeout time.Duration
	AllowOrigins   string
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

type PostgresConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SeedCatalog     bool
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

// RedisConfig is optional; an empty Addr disables the catalog cache and
// keeps checkout sessions in process memory.
type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	TTL        time.Duration
	SessionTTL time.Duration
}

// KafkaConfig is optional; no brokers means order events are not published.
type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// PricingConfig carries the single canonical set of pricing rules.
type PricingConfig struct {
	GSTRate               decimal.Decimal
	FreeDeliveryThreshold decimal.Decimal
	StandardDeliveryFee   decimal.Decimal
	ExpressDeliveryFee    decimal.Decimal
}

type RewardsConfig struct {
	ProcessingDelay time.Duration
	StartingPoints  int
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           getEnv("EASI_ADDR", ":8080"),
			AppEnv:         getEnv("APP_ENV", "dev"),
			RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),
			AllowOrigins:   getEnv("CORS_ALLOW_ORIGINS", "*"),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "info"),
			Encoding:          getEnv("LOGGER_ENCODING", "json"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Postgres: PostgresConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getEnvInt("POSTGRES_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("POSTGRES_CONN_MAX_LIFETIME", 5*time.Minute),
			SeedCatalog:     getEnvBool("SEED_CATALOG", true),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			TTL:    getEnvDuration("JWT_TTL", 72*time.Hour),
		},
		Redis: RedisConfig{
			Addr:       getEnv("REDIS_ADDR", ""),
			Password:   getEnv("REDIS_PASSWORD", ""),
			DB:         getEnvInt("REDIS_DB", 0),
			TTL:        getEnvDuration("CATALOG_CACHE_TTL", 5*time.Minute),
			SessionTTL: getEnvDuration("CHECKOUT_SESSION_TTL", 24*time.Hour),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvSlice("KAFKA_BROKERS", nil),
			Topic:   getEnv("KAFKA_TOPIC_ORDERS", "easi.orders"),
			GroupID: getEnv("KAFKA_GROUP_ID", "easi-inventory"),
		},
		Pricing: PricingConfig{
			GSTRate:               getEnvDecimal("GST_RATE", decimal.RequireFromString("0.08")),
			FreeDeliveryThreshold: getEnvDecimal("FREE_DELIVERY_THRESHOLD", decimal.NewFromInt(100)),
			StandardDeliveryFee:   getEnvDecimal("STANDARD_DELIVERY_FEE", decimal.NewFromInt(10)),
			ExpressDeliveryFee:    getEnvDecimal("EXPRESS_DELIVERY_FEE", decimal.NewFromInt(20)),
		},
		Rewards: RewardsConfig{
			ProcessingDelay: getEnvDuration("REDEMPTION_PROCESSING_DELAY", 2*time.Second),
			StartingPoints:  getEnvInt("REWARDS_STARTING_POINTS", 0),
		},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "dev" || c.Server.AppEnv == "development"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return fallback
}

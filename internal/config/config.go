package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/cart"
	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/checkout"
	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/pricing"
	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/storage"
	"github.com/shopspring/decimal"
)

type Config struct {
	HTTPPort           string
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64
	LogLevel           string

	Rates           pricing.Rates
	ProcessingDelay time.Duration
	Breaker         checkout.BreakerSettings

	CatalogDBPath  string
	OrdersDBDriver string
	OrdersDBPath   string
	OrdersDB       storage.Credentials

	RedisAddr     string
	RedisPassword string
	CacheTTL      time.Duration

	SessionIdleTimeout   time.Duration
	SessionSweepInterval time.Duration

	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads the environment. Malformed values are collected and reported
// together instead of silently falling back to defaults.
func Load() (*Config, error) {
	p := &parser{}

	cfg := &Config{
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		RequestTimeout:     p.duration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout:    p.duration("SHUTDOWN_TIMEOUT", 10*time.Second),
		MaxRequestBodySize: 1 << 20, // 1MB
		LogLevel:           getEnv("LOG_LEVEL", "info"),

		Rates: pricing.Rates{
			TaxRate:     p.decimal("TAX_RATE", "0.08"),
			DeliveryFee: p.decimal("DELIVERY_FEE", "5.99"),
			Currency:    getEnv("CURRENCY", "USD"),
		},
		ProcessingDelay: p.duration("PROCESSING_DELAY", checkout.DefaultProcessingDelay),
		Breaker: checkout.BreakerSettings{
			MaxFailures: uint32(p.integer("BREAKER_MAX_FAILURES", 5)),
			OpenTimeout: p.duration("BREAKER_OPEN_TIMEOUT", 30*time.Second),
		},

		CatalogDBPath:  getEnv("CATALOG_DB_PATH", "catalog.db"),
		OrdersDBDriver: getEnv("ORDERS_DB_DRIVER", storage.DialectSQLite),
		OrdersDBPath:   getEnv("ORDERS_DB_PATH", "orders.db"),
		OrdersDB: storage.Credentials{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     p.integer("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "goodgrounds"),
		},

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		CacheTTL:      p.duration("CACHE_TTL", 24*time.Hour),

		SessionIdleTimeout:   p.duration("SESSION_IDLE_TIMEOUT", cart.DefaultIdleTimeout),
		SessionSweepInterval: p.duration("SESSION_SWEEP_INTERVAL", cart.DefaultSweepInterval),

		KafkaBrokers: splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "orders.placed"),
	}

	switch cfg.OrdersDBDriver {
	case storage.DialectSQLite, storage.DialectPostgres:
	default:
		p.fail("ORDERS_DB_DRIVER", cfg.OrdersDBDriver, errors.New("want sqlite or postgres"))
	}
	if cfg.Rates.TaxRate.IsNegative() {
		p.fail("TAX_RATE", cfg.Rates.TaxRate.String(), errors.New("must not be negative"))
	}
	if cfg.Rates.DeliveryFee.IsNegative() {
		p.fail("DELIVERY_FEE", cfg.Rates.DeliveryFee.String(), errors.New("must not be negative"))
	}
	if cfg.SessionIdleTimeout == 0 {
		p.fail("SESSION_IDLE_TIMEOUT", "0", errors.New("must be positive"))
	}
	if cfg.SessionSweepInterval == 0 {
		p.fail("SESSION_SWEEP_INTERVAL", "0", errors.New("must be positive"))
	}
	if cfg.Breaker.MaxFailures == 0 {
		p.fail("BREAKER_MAX_FAILURES", "0", errors.New("must be positive"))
	}

	if err := errors.Join(p.errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

type parser struct {
	errs []error
}

func (p *parser) fail(key, value string, err error) {
	p.errs = append(p.errs, fmt.Errorf("invalid %s %q: %w", key, value, err))
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		p.fail(key, raw, err)
		return def
	}
	if d < 0 {
		p.fail(key, raw, errors.New("must not be negative"))
		return def
	}
	return d
}

func (p *parser) integer(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(key, raw, err)
		return def
	}
	if n < 0 {
		p.fail(key, raw, errors.New("must not be negative"))
		return def
	}
	return n
}

func (p *parser) decimal(key, def string) decimal.Decimal {
	raw := getEnv(key, def)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		p.fail(key, raw, err)
		return decimal.RequireFromString(def)
	}
	return d
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel string
	HTTPPort string

	// Exchange API
	PredictAPIURL  string
	PredictAPIKey  string
	ChainID        int64
	RequestTimeout time.Duration

	// Order signing
	ExchangeAddress             string
	NegRiskExchangeAddress      string
	YieldBearingExchangeAddress string
	OrderExpiryWindow           time.Duration

	// Redis (event streams)
	RedisAddr     string
	RedisPassword string

	// Storage
	StorageMode  string // "postgres" or "memory"
	PostgresHost string
	PostgresPort string
	PostgresUser string
	PostgresPass string
	PostgresDB   string
	PostgresSSL  string

	// Markets listing
	MarketsCacheTTL time.Duration
	MarketsLimit    int
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		// Application defaults
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort: getEnvOrDefault("HTTP_PORT", "8000"),

		// Exchange API defaults
		PredictAPIURL:  getEnvOrDefault("PREDICT_API_URL", "https://api.predict.fun"),
		PredictAPIKey:  os.Getenv("PREDICT_API_KEY"),
		ChainID:        int64(getIntOrDefault("PREDICT_CHAIN_ID", 56)),
		RequestTimeout: getDurationOrDefault("PREDICT_REQUEST_TIMEOUT", 30*time.Second),

		// Order signing defaults
		ExchangeAddress:             os.Getenv("PREDICT_EXCHANGE_ADDRESS"),
		NegRiskExchangeAddress:      os.Getenv("PREDICT_NEG_RISK_EXCHANGE_ADDRESS"),
		YieldBearingExchangeAddress: os.Getenv("PREDICT_YIELD_BEARING_EXCHANGE_ADDRESS"),
		OrderExpiryWindow:           getDurationOrDefault("PREDICT_ORDER_EXPIRY_WINDOW", 30*time.Minute),

		// Redis defaults
		RedisAddr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		// Storage defaults
		StorageMode:  getEnvOrDefault("STORAGE_MODE", "postgres"),
		PostgresHost: getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser: getEnvOrDefault("POSTGRES_USER", "predict"),
		PostgresPass: getEnvOrDefault("POSTGRES_PASSWORD", "predict123"),
		PostgresDB:   getEnvOrDefault("POSTGRES_DB", "predict_account"),
		PostgresSSL:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),

		// Markets listing defaults
		MarketsCacheTTL: getDurationOrDefault("MARKETS_CACHE_TTL", 30*time.Second),
		MarketsLimit:    getIntOrDefault("MARKETS_LIMIT", 50),
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT cannot be empty")
	}

	if c.PredictAPIURL == "" {
		return fmt.Errorf("PREDICT_API_URL cannot be empty")
	}

	if c.ChainID <= 0 {
		return fmt.Errorf("PREDICT_CHAIN_ID must be positive, got %d", c.ChainID)
	}

	if c.StorageMode != "postgres" && c.StorageMode != "memory" {
		return fmt.Errorf("STORAGE_MODE must be 'postgres' or 'memory', got %q", c.StorageMode)
	}

	if c.OrderExpiryWindow <= 0 {
		return fmt.Errorf("PREDICT_ORDER_EXPIRY_WINDOW must be positive, got %s", c.OrderExpiryWindow)
	}

	return nil
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}

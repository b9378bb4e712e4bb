package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL string
	DBMaxConns  int32

	// Auth0
	Auth0Domain   string
	Auth0Audience string

	// Server
	Port        string
	CORSOrigins []string
	Env         string

	// Budgets and expenses
	CurrencySymbol    string
	ExpenseEditWindow time.Duration

	// Exports
	ExportRateLimitPerMinute int
	ExportRateLimitBurst     int

	// S3 Storage
	S3 S3Config

	// AMQP notification delivery
	AMQP AMQPConfig
}

// S3Config holds AWS S3 configuration
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // Optional: for LocalStack local dev
}

// Enabled reports whether receipts and archives can be stored
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// AMQPConfig holds the broker settings. An empty URL disables publishing.
type AMQPConfig struct {
	URL      string
	Exchange string
	Queue    string
}

func (c AMQPConfig) Enabled() bool {
	return c.URL != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	editHours, err := getEnvInt("EXPENSE_EDIT_WINDOW_HOURS", 72)
	if err != nil {
		return nil, err
	}
	exportLimit, err := getEnvInt("EXPORT_RATE_LIMIT_PER_MINUTE", 10)
	if err != nil {
		return nil, err
	}
	exportBurst, err := getEnvInt("EXPORT_RATE_LIMIT_BURST", 3)
	if err != nil {
		return nil, err
	}
	maxConns, err := getEnvInt("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:              getEnv("DATABASE_URL", ""),
		DBMaxConns:               int32(maxConns),
		Auth0Domain:              getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience:            getEnv("AUTH0_AUDIENCE", ""),
		Port:                     getEnv("PORT", "8080"),
		CORSOrigins:              strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		Env:                      getEnv("ENV", "development"),
		CurrencySymbol:           getEnv("CURRENCY_SYMBOL", "৳"),
		ExpenseEditWindow:        time.Duration(editHours) * time.Hour,
		ExportRateLimitPerMinute: exportLimit,
		ExportRateLimitBurst:     exportBurst,
		S3: S3Config{
			Region:          getEnv("S3_REGION", "us-east-1"),
			Bucket:          getEnv("S3_BUCKET", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""),
		},
		AMQP: AMQPConfig{
			URL:      getEnv("AMQP_URL", ""),
			Exchange: getEnv("AMQP_EXCHANGE", "spendwise.notifications"),
			Queue:    getEnv("AMQP_QUEUE", "spendwise.notifications"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// IsProduction reports whether the service runs with ENV=production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Auth0Domain == "" {
		return fmt.Errorf("AUTH0_DOMAIN is required")
	}
	if c.Auth0Audience == "" {
		return fmt.Errorf("AUTH0_AUDIENCE is required")
	}
	if c.ExpenseEditWindow <= 0 {
		return fmt.Errorf("EXPENSE_EDIT_WINDOW_HOURS must be positive")
	}
	if c.ExportRateLimitPerMinute <= 0 {
		return fmt.Errorf("EXPORT_RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.ExportRateLimitBurst <= 0 {
		return fmt.Errorf("EXPORT_RATE_LIMIT_BURST must be positive")
	}
	if c.DBMaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

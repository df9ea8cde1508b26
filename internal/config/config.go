package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/joho/godotenv"

	"github.com/simaogato/pemetrics-backend/internal/domain"
)

// Config holds application configuration
type Config struct {
	GRPCAddr         string
	HTTPAddr         string
	LogLevel         string
	LogPretty        bool
	AsOf             time.Time // Zero means "today" at evaluation time
	Currency         string    // ISO 4217 code used when rendering amounts
	ShutdownTimeout  time.Duration
	IRRMaxIterations int
}

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first when present;
// variables already set in the environment take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		GRPCAddr:         getEnv("PEM_GRPC_ADDR", ":8080"),
		HTTPAddr:         getEnv("PEM_HTTP_ADDR", ":8081"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogPretty:        getEnvAsBool("LOG_PRETTY", false),
		Currency:         strings.ToUpper(getEnv("PEM_CURRENCY", "USD")),
		ShutdownTimeout:  10 * time.Second,
		IRRMaxIterations: 100,
	}

	if raw := getEnv("PEM_AS_OF", ""); raw != "" {
		asOf, err := time.Parse(domain.DateLayout, raw)
		if err != nil {
			return nil, fmt.Errorf("invalid PEM_AS_OF %q: expected YYYY-MM-DD", raw)
		}
		cfg.AsOf = asOf
	}

	if raw := getEnv("PEM_SHUTDOWN_TIMEOUT", ""); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid PEM_SHUTDOWN_TIMEOUT %q: %w", raw, err)
		}
		cfg.ShutdownTimeout = timeout
	}

	if raw := getEnv("PEM_IRR_MAX_ITERATIONS", ""); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid PEM_IRR_MAX_ITERATIONS %q: %w", raw, err)
		}
		cfg.IRRMaxIterations = n
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.GRPCAddr == "" || c.HTTPAddr == "" {
		return errors.New("PEM_GRPC_ADDR and PEM_HTTP_ADDR must not be blank")
	}
	if c.GRPCAddr == c.HTTPAddr {
		return errors.New("PEM_GRPC_ADDR and PEM_HTTP_ADDR must differ")
	}
	if len(c.Currency) != 3 {
		return fmt.Errorf("PEM_CURRENCY must be a three letter code, got %q", c.Currency)
	}
	if money.GetCurrency(c.Currency) == nil {
		return fmt.Errorf("PEM_CURRENCY %q is not a known currency", c.Currency)
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("PEM_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.IRRMaxIterations <= 0 {
		return errors.New("PEM_IRR_MAX_ITERATIONS must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vizboard/vizboard/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Billing gateway configuration
	Billing BillingConfig

	// Secrets configuration for email and subscription id encryption
	Secrets SecretsConfig

	// Redis configuration for distributed rate limiting
	Redis RedisConfig

	// Reconciler configuration
	Reconciler ReconcilerConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// DatabaseConfig holds PostgreSQL settings
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// BillingConfig holds billing gateway settings
type BillingConfig struct {
	StripeAPIKey string
	// BaseURL overrides the gateway endpoint, used against stripe-mock in
	// staging
	BaseURL string
	Timeout time.Duration
}

// SecretsConfig holds the encryption key material
type SecretsConfig struct {
	Secret string
	Salt   string
}

// RedisConfig holds Redis settings; rate limiting falls back to in-process
// buckets when disabled
type RedisConfig struct {
	Enabled  bool
	URL      string
	Password string
	DB       int
	PoolSize int
}

// ReconcilerConfig holds the seat-drift reconciler settings
type ReconcilerConfig struct {
	// Schedule is a cron expression
	Schedule string
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel observability.LogLevel

	// Metrics
	MetricsEnabled bool

	// OpenTelemetry
	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool // Use insecure gRPC connection
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("VIZBOARD_HOST", "0.0.0.0"),
			Port:            getEnv("VIZBOARD_PORT", "8080"),
			ReadTimeout:     getEnvDuration("VIZBOARD_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("VIZBOARD_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("VIZBOARD_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("VIZBOARD_SHUTDOWN_TIMEOUT", 30*time.Second),
			HealthPort:      getEnv("VIZBOARD_HEALTH_PORT", "9090"),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getEnvInt("VIZBOARD_DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("VIZBOARD_DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("VIZBOARD_DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Billing: BillingConfig{
			StripeAPIKey: getEnv("STRIPE_API_KEY", ""),
			BaseURL:      getEnv("VIZBOARD_BILLING_BASE_URL", ""),
			Timeout:      getEnvDuration("VIZBOARD_BILLING_TIMEOUT", 10*time.Second),
		},
		Secrets: SecretsConfig{
			Secret: getEnv("VIZBOARD_SECRET", ""),
			Salt:   getEnv("VIZBOARD_SECRET_SALT", "vizboard"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("VIZBOARD_REDIS_ENABLED", false),
			URL:      getEnv("VIZBOARD_REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("VIZBOARD_REDIS_PASSWORD", ""),
			DB:       getEnvInt("VIZBOARD_REDIS_DB", 0),
			PoolSize: getEnvInt("VIZBOARD_REDIS_POOL_SIZE", 10),
		},
		Reconciler: ReconcilerConfig{
			Schedule: getEnv("VIZBOARD_RECONCILE_SCHEDULE", "0 * * * *"),
		},
		Observability: ObservabilityConfig{
			LogLevel:           observability.ParseLogLevel(getEnv("VIZBOARD_LOG_LEVEL", "info")),
			MetricsEnabled:     getEnvBool("VIZBOARD_METRICS_ENABLED", true),
			OTelEnabled:        getEnvBool("VIZBOARD_OTEL_ENABLED", false),
			OTelEndpoint:       getEnv("VIZBOARD_OTEL_ENDPOINT", "localhost:4317"),
			OTelServiceName:    getEnv("VIZBOARD_OTEL_SERVICE_NAME", "vizboard"),
			OTelServiceVersion: getEnv("VIZBOARD_OTEL_SERVICE_VERSION", "1.0.0"),
			OTelInsecure:       getEnvBool("VIZBOARD_OTEL_INSECURE", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Secrets.Secret == "" {
		return fmt.Errorf("VIZBOARD_SECRET is required")
	}

	if c.Billing.StripeAPIKey == "" {
		return fmt.Errorf("STRIPE_API_KEY is required")
	}

	if c.Redis.Enabled && c.Redis.URL == "" {
		return fmt.Errorf("redis URL is required when redis is enabled")
	}

	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

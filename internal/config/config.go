package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers
const (
	DriverDynamoDB = "dynamodb"
	DriverMemory   = "memory"
)

type Config struct {
	App     AppConfig
	Server  ServerConfig
	Storage StorageConfig
	AWS     AWSConfig
	Events  EventsConfig
}

type AppConfig struct {
	Env string
}

type ServerConfig struct {
	Addr     string
	RunLocal bool
	BasePath string
}

type StorageConfig struct {
	Driver           string
	OrdersTable      string
	IdempotencyTable string
	IdempotencyTTL   time.Duration
}

type AWSConfig struct {
	Region           string
	EndpointOverride string
}

type EventsConfig struct {
	QueueURL         string
	MetricsNamespace string
}

// Load reads .env when present, then the environment. Unset and empty
// variables fall back to their defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Env: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Addr:     getEnv("HTTP_ADDR", ":8080"),
			RunLocal: getEnvBool("RUN_LOCAL", false),
			BasePath: getEnv("API_BASE_PATH", "/api/material-orders"),
		},
		Storage: StorageConfig{
			Driver:           getEnv("STORAGE_DRIVER", DriverDynamoDB),
			OrdersTable:      getEnv("MATERIAL_ORDERS_TABLE", "material-orders"),
			IdempotencyTable: getEnv("IDEMPOTENCY_TABLE", ""),
			IdempotencyTTL:   getEnvDuration("IDEMPOTENCY_TTL", 48*time.Hour),
		},
		AWS: AWSConfig{
			Region:           getEnv("AWS_REGION", "us-east-1"),
			EndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		},
		Events: EventsConfig{
			QueueURL:         getEnv("EVENTS_QUEUE_URL", ""),
			MetricsNamespace: getEnv("METRICS_NAMESPACE", "MaterialOrders"),
		},
	}

	return cfg, cfg.Validate()
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverDynamoDB:
		if c.Storage.OrdersTable == "" {
			return fmt.Errorf("MATERIAL_ORDERS_TABLE is required for the %s driver", DriverDynamoDB)
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Storage.IdempotencyTable != "" && c.Storage.IdempotencyTTL <= 0 {
		return fmt.Errorf("IDEMPOTENCY_TTL must be positive")
	}
	return nil
}

/* ================= helpers ================= */

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

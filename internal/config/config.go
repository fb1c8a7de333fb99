package config

import (
	"fmt"
	"time"

	"github.com/vetty/storefront/pkg/config"
)

// Config holds all storefront configuration, loaded from the environment.
type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"storefront"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	// BackendURL is the base URL of the commerce backend, without a
	// trailing slash.
	BackendURL string `env:"BACKEND_URL" envDefault:"http://localhost:5000/api"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// CartTTL is the sliding expiry on stored carts, refreshed on write.
	CartTTL time.Duration `env:"CART_TTL" envDefault:"720h"`

	// CatalogRefreshInterval enables periodic background catalog reloads
	// when greater than zero.
	CatalogRefreshInterval time.Duration `env:"CATALOG_REFRESH_INTERVAL" envDefault:"5m"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	TracingEnabled    bool    `env:"TRACING_ENABLED" envDefault:"false"`
	OTLPEndpoint      string  `env:"OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TracingSampleRate float64 `env:"TRACING_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks invariants the env tags cannot express.
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.HTTPPort)
	}
	if c.BackendURL == "" {
		return fmt.Errorf("BACKEND_URL must not be empty")
	}
	if c.CartTTL <= 0 {
		return fmt.Errorf("CART_TTL must be positive, got %s", c.CartTTL)
	}
	if c.TracingSampleRate < 0 || c.TracingSampleRate > 1 {
		return fmt.Errorf("TRACING_SAMPLE_RATE must be between 0 and 1, got %g", c.TracingSampleRate)
	}
	return nil
}

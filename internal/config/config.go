package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"wallet/internal/log"
)

type Config struct {
	// HTTP Server
	Port string `env:"WALLET_PORT" envDefault:"8081"`

	// Storage
	Backend string `env:"WALLET_BACKEND" envDefault:"sqlite"`
	DBPath  string `env:"WALLET_DB_PATH" envDefault:"./data/wallet.db"`

	LogLevel string `env:"WALLET_LOG_LEVEL" envDefault:"info"`

	// AMQP change feed; disabled when the URL is empty.
	AMQPURL      string `env:"WALLET_AMQP_URL"`
	AMQPExchange string `env:"WALLET_AMQP_EXCHANGE" envDefault:"wallet"`
	AMQPQueue    string `env:"WALLET_AMQP_QUEUE" envDefault:"wallet_changes"`

	// Snapshot cache
	CacheSize int           `env:"WALLET_CACHE_SIZE" envDefault:"64"`
	CacheTTL  time.Duration `env:"WALLET_CACHE_TTL" envDefault:"5m"`

	SeedOnStart bool `env:"WALLET_SEED_ON_START" envDefault:"false"`

	// Requests per minute per client on the HTTP API; 0 disables limiting.
	RateLimit int `env:"WALLET_RATE_LIMIT" envDefault:"120"`
}

var validBackends = []string{"sqlite", "memory"}

// Load reads the configuration from the environment. Call
// godotenv.Load first to pick up a local .env file.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !slices.Contains(validBackends, c.Backend) {
		errors = append(errors, fmt.Sprintf("invalid backend '%s': must be one of %v", c.Backend, validBackends))
	}

	if c.Backend == "sqlite" {
		if c.DBPath == "" {
			errors = append(errors, "database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.DBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.CacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheSize))
	} else if c.CacheSize > 10000 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must be at most 10000", c.CacheSize))
	}

	if c.CacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be at least 1 second", c.CacheTTL))
	} else if c.CacheTTL > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be at most 24 hours", c.CacheTTL))
	}

	if c.RateLimit < 0 || c.RateLimit > 10000 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be between 0 and 10000", c.RateLimit))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// AMQPEnabled reports whether the change feed is configured.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

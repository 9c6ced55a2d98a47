// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file if
// present), loads them into structured Go types and validates that
// required values are present.
//
// Two kinds of configuration live here:
//   - Config: process settings (server, logging, redis). Loaded once at startup.
//   - IntegrationConfig: provider secrets and form settings. Re-read on every
//     request so that rotated secrets are picked up without a restart.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists, it gets loaded into the
	// process env before any config is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read using the TAXSITE_ prefix. Keys are lowercased, the
	prefix is removed and a double underscore marks nesting:

	  TAXSITE_SERVER__PORT                   -> server.port
	  TAXSITE_INTEGRATION__RESEND_API_KEY    -> integration.resend_api_key
*/

const (
	// EnvPrefix is the prefix every configuration variable carries.
	EnvPrefix = "TAXSITE_"

	// ServiceName tags logs and New Relic data.
	ServiceName = "taxsite"
)

// Config is the root configuration object for the application.
//
// Redis is a pointer because it is optional: without it the idempotency
// key support is disabled. Observability is filled with defaults when absent.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Redis         *RedisConfig         `koanf:"redis"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required,oneof=development staging production test"`
}

// ServerConfig groups settings for the HTTP server runtime.
type ServerConfig struct {
	Port         string        `koanf:"port" validate:"required"`
	ReadTimeout  time.Duration `koanf:"read_timeout" validate:"min=1s"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"min=1s"`
	IdleTimeout  time.Duration `koanf:"idle_timeout" validate:"min=1s"`

	// CORSAllowedOrigin is written to Access-Control-Allow-Origin on every
	// form response.
	CORSAllowedOrigin string `koanf:"cors_allowed_origin" validate:"required"`

	// RateLimit is the allowed requests per second per client IP on the form
	// endpoints. Zero disables rate limiting.
	RateLimit float64 `koanf:"rate_limit" validate:"gte=0"`
}

// RedisConfig contains Redis connection details.
// Address is typically "host:port".
type RedisConfig struct {
	Address  string `koanf:"address" validate:"required"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db" validate:"gte=0"`
}

// validate is shared; validator caches struct metadata between calls.
var validate = validator.New()

// defaults are loaded before the environment so any env var wins.
func defaults() map[string]any {
	return map[string]any{
		"primary.env":                "development",
		"server.port":                "8080",
		"server.read_timeout":        "10s",
		"server.write_timeout":       "30s",
		"server.idle_timeout":        "60s",
		"server.cors_allowed_origin": "*",
		"server.rate_limit":          0,

		"observability.logging.format":                        "json",
		"observability.new_relic.app_log_forwarding_enabled":  true,
		"observability.new_relic.distributed_tracing_enabled": true,
		"observability.new_relic.debug_logging":               false,
	}
}

// envProvider maps TAXSITE_A__B_C to a.b_c.
func envProvider() *env.Env {
	return env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	})
}

// LoadConfig loads configuration from environment variables, unmarshals it
// into Config, validates it and applies observability defaults.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("could not load config defaults: %w", err)
	}

	if err := k.Load(envProvider(), nil); err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	// Service name is not configurable; environment follows primary.env.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := validate.Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

// RedisEnabled reports whether a redis address was configured.
func (c *Config) RedisEnabled() bool {
	return c.Redis != nil && c.Redis.Address != ""
}

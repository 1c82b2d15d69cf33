// Package config loads server configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full process configuration. Every field has a default that
// works for a local stdio run with only the bundled recipe pack: Postgres,
// Redis and offline-license verification are opt-in.
type Config struct {
	// Transport selects how the MCP server is exposed: "stdio" or "http".
	Transport string `env:"RECIPEMCP_TRANSPORT" envDefault:"stdio"`
	// HTTPAddr is the listen address for the http transport and REST API.
	HTTPAddr string `env:"RECIPEMCP_HTTP_ADDR" envDefault:":8080"`

	// PackPath points at the recipe pack JSON document.
	PackPath string `env:"RECIPEMCP_PACK_PATH" envDefault:"recipes.json"`
	// ResyncEvery re-applies the pack on this interval; zero disables resync.
	ResyncEvery time.Duration `env:"RECIPEMCP_RESYNC_EVERY" envDefault:"5m"`
	// SQLitePath, when set, persists recipes to SQLite instead of memory.
	SQLitePath string `env:"RECIPEMCP_SQLITE_PATH"`

	// PostgresURL, when set, enables the Postgres license registry.
	PostgresURL string `env:"RECIPEMCP_POSTGRES_URL"`
	// PostgresSchema is the schema holding the licenses table.
	PostgresSchema string `env:"RECIPEMCP_POSTGRES_SCHEMA" envDefault:"licensing"`

	// RedisAddr, when set, backs the decision cache and rate limiter with
	// Redis; otherwise both run in process memory.
	RedisAddr     string `env:"RECIPEMCP_REDIS_ADDR"`
	RedisPassword string `env:"RECIPEMCP_REDIS_PASSWORD"`
	RedisDB       int    `env:"RECIPEMCP_REDIS_DB" envDefault:"0"`

	// DecisionTTL bounds how long a cached entitlement decision may serve
	// after the license record changes.
	DecisionTTL time.Duration `env:"RECIPEMCP_DECISION_TTL" envDefault:"1m"`

	// OfflineKeyPEM is the path to a PEM-encoded RSA public key used to
	// verify offline license tokens; empty disables offline validation.
	OfflineKeyPEM string `env:"RECIPEMCP_OFFLINE_KEY_PEM"`
	// OfflineKeyID names the verification key in the published JWKS.
	OfflineKeyID string `env:"RECIPEMCP_OFFLINE_KEY_ID" envDefault:"lic-1"`

	// LogLevel is a logrus level name (debug, info, warn, error).
	LogLevel string `env:"RECIPEMCP_LOG_LEVEL" envDefault:"info"`
	// LogFormat is "text" or "json".
	LogFormat string `env:"RECIPEMCP_LOG_FORMAT" envDefault:"text"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Transport != "stdio" && cfg.Transport != "http" {
		return Config{}, fmt.Errorf("unknown transport %q", cfg.Transport)
	}
	return cfg, nil
}

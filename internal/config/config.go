package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// OMDb contains configuration for the OMDb metadata API.
type OMDb struct {
	APIKey                  string  `toml:"api_key" validate:"required"`
	BaseURL                 string  `toml:"base_url" validate:"required,url"`
	TimeoutSeconds          int     `toml:"timeout_seconds" validate:"gte=1,lte=120"`
	RequestsPerSecond       float64 `toml:"requests_per_second" validate:"gte=0"`
	BreakerEnabled          bool    `toml:"breaker_enabled"`
	BreakerFailureThreshold uint32  `toml:"breaker_failure_threshold" validate:"gte=1"`
	BreakerOpenSeconds      int     `toml:"breaker_open_seconds" validate:"gte=1"`
}

// Browse contains configuration for the interactive browsing session.
type Browse struct {
	DefaultQuery      string `toml:"default_query" validate:"required"`
	DebounceMillis    int    `toml:"debounce_ms" validate:"gte=1,lte=5000"`
	PlaceholderPoster string `toml:"placeholder_poster" validate:"required,url"`
	Columns           int    `toml:"columns" validate:"gte=1,lte=8"`
	// DiscardStale drops responses for queries that were superseded while in flight.
	DiscardStale bool `toml:"discard_stale"`
}

// Cache contains configuration for the in-memory metadata cache.
type Cache struct {
	TTLSeconds int `toml:"ttl_seconds" validate:"gte=0"`
}

// Server contains configuration for the HTTP browsing surface.
type Server struct {
	Bind string `toml:"bind" validate:"required,hostname_port"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format  string   `toml:"format" validate:"oneof=console json"`
	Level   string   `toml:"level" validate:"oneof=debug info warn error"`
	Outputs []string `toml:"outputs"`
}

// Config encapsulates all configuration values for marquee.
//
// Configuration sections by subsystem:
//   - OMDb: metadata API credentials, timeouts, pacing, circuit breaker
//   - Browse: default query, debounce, poster placeholder, grid width
//   - Cache: in-memory response cache lifetime
//   - Server: HTTP surface bind address
//   - Logging: log format, level, and outputs
type Config struct {
	OMDb    OMDb    `toml:"omdb"`
	Browse  Browse  `toml:"browse"`
	Cache   Cache   `toml:"cache"`
	Server  Server  `toml:"server"`
	Logging Logging `toml:"logging"`
}

// Load locates, parses, and validates a configuration file.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// RequestTimeout returns the per-request OMDb timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.OMDb.TimeoutSeconds) * time.Second
}

// BreakerOpenTimeout returns how long an open circuit rejects calls before probing.
func (c *Config) BreakerOpenTimeout() time.Duration {
	return time.Duration(c.OMDb.BreakerOpenSeconds) * time.Second
}

// DebounceDelay returns the input inactivity window before a search is issued.
func (c *Config) DebounceDelay() time.Duration {
	return time.Duration(c.Browse.DebounceMillis) * time.Millisecond
}

// CacheTTL returns the metadata cache lifetime; zero disables caching.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"marquee/internal/config"
)

func TestLoadDefaultConfigUsesEnvOMDbKey(t *testing.T) {
	t.Setenv("OMDB_API_KEY", " test-key ")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if cfg.OMDb.APIKey != "test-key" {
		t.Fatalf("expected OMDb key from env, got %q", cfg.OMDb.APIKey)
	}
	defaults := config.Default()
	if cfg.OMDb.BaseURL != defaults.OMDb.BaseURL {
		t.Fatalf("unexpected OMDb base url: %q", cfg.OMDb.BaseURL)
	}
	if cfg.Browse.DefaultQuery != "guardians of the galaxy" {
		t.Fatalf("unexpected default query: %q", cfg.Browse.DefaultQuery)
	}
	if cfg.DebounceDelay() != 300*time.Millisecond {
		t.Fatalf("unexpected debounce delay: %v", cfg.DebounceDelay())
	}
	if cfg.CacheTTL() != 10*time.Minute {
		t.Fatalf("unexpected cache ttl: %v", cfg.CacheTTL())
	}
	if !cfg.Browse.DiscardStale {
		t.Fatal("expected stale responses to be discarded by default")
	}
	if cfg.Server.Bind != "127.0.0.1:7488" {
		t.Fatalf("unexpected server bind: %q", cfg.Server.Bind)
	}
	if len(cfg.Logging.Outputs) != 1 || cfg.Logging.Outputs[0] != "stderr" {
		t.Fatalf("unexpected log outputs: %v", cfg.Logging.Outputs)
	}
}

func TestLoadCustomPath(t *testing.T) {
	t.Setenv("OMDB_API_KEY", "")
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "marquee.toml")

	type payload struct {
		OMDb struct {
			APIKey  string `toml:"api_key"`
			BaseURL string `toml:"base_url"`
		} `toml:"omdb"`
		Browse struct {
			DefaultQuery   string `toml:"default_query"`
			DebounceMillis int    `toml:"debounce_ms"`
			DiscardStale   bool   `toml:"discard_stale"`
		} `toml:"browse"`
		Logging struct {
			Level string `toml:"level"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.OMDb.APIKey = "abc123"
	custom.OMDb.BaseURL = "https://example.com/omdb/"
	custom.Browse.DefaultQuery = "  Star Wars "
	custom.Browse.DebounceMillis = 150
	custom.Logging.Level = "WARNING"

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom path to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.OMDb.APIKey != "abc123" {
		t.Fatalf("unexpected api key: %q", cfg.OMDb.APIKey)
	}
	if cfg.OMDb.BaseURL != "https://example.com/omdb/" {
		t.Fatalf("unexpected base url: %q", cfg.OMDb.BaseURL)
	}
	if cfg.Browse.DefaultQuery != "star wars" {
		t.Fatalf("expected normalized default query, got %q", cfg.Browse.DefaultQuery)
	}
	if cfg.DebounceDelay() != 150*time.Millisecond {
		t.Fatalf("unexpected debounce: %v", cfg.DebounceDelay())
	}
	if cfg.Browse.DiscardStale {
		t.Fatal("expected discard_stale override to be honored")
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("expected warning to normalize to warn, got %q", cfg.Logging.Level)
	}
	if cfg.OMDb.TimeoutSeconds != config.Default().OMDb.TimeoutSeconds {
		t.Fatalf("expected default timeout to survive partial file, got %d", cfg.OMDb.TimeoutSeconds)
	}
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("OMDB_API_KEY", "")
	path := filepath.Join(t.TempDir(), "missing.toml")
	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected error when api key missing")
	}
	if !strings.Contains(err.Error(), "omdb.api_key") {
		t.Fatalf("expected api key hint, got %v", err)
	}
}

func TestValidateReportsFieldNames(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"base url", func(c *config.Config) { c.OMDb.BaseURL = "not a url" }, "omdb.base_url"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"columns", func(c *config.Config) { c.Browse.Columns = 12 }, "browse.columns"},
		{"bind", func(c *config.Config) { c.Server.Bind = "nowhere" }, "server.bind"},
		{"debounce", func(c *config.Config) { c.Browse.DebounceMillis = -1 }, "browse.debounce_ms"},
		{"zero debounce", func(c *config.Config) { c.Browse.DebounceMillis = 0 }, "browse.debounce_ms must be >= 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.OMDb.APIKey = "key"
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in %q", tt.want, err.Error())
			}
		})
	}
}

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	cfg.OMDb.APIKey = "key"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestCreateSampleParsesBack(t *testing.T) {
	t.Setenv("OMDB_API_KEY", "from-env")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if cfg.Browse.Columns != 4 {
		t.Fatalf("unexpected columns from sample: %d", cfg.Browse.Columns)
	}
}

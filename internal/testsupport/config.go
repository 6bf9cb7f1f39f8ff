// Package testsupport provides fixtures shared by package tests: a seeded
// configuration and a fake OMDb server.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"marquee/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a valid config with a test API key and logs under a
// per-test temp directory.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.OMDb.APIKey = "test"
	cfgVal.Logging.Outputs = []string{filepath.Join(base, "logs", "marquee.log")}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithOMDbServer points the config at a fake OMDb endpoint and turns off pacing.
func WithOMDbServer(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.OMDb.BaseURL = url
		b.cfg.OMDb.RequestsPerSecond = 0
	}
}

// WithDebounceMillis overrides the input debounce.
func WithDebounceMillis(ms int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Browse.DebounceMillis = ms
	}
}

// WriteConfig encodes cfg as TOML at path.
func WriteConfig(t testing.TB, path string, cfg *config.Config) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

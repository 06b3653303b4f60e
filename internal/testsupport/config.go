package testsupport

import (
	"path/filepath"
	"testing"

	"patchforge/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.CatalogDB = filepath.Join(base, "data", "catalog.db")
	cfgVal.Paths.ExportDir = filepath.Join(base, "exports")
	cfgVal.Paths.ObservDir = filepath.Join(base, "observations")
	cfgVal.Vision.APIKey = "test"

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

// WithVisionEndpoint points the photo-inference client at a test server.
func WithVisionEndpoint(baseURL, model string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Vision.BaseURL = baseURL
		if model != "" {
			b.cfg.Vision.Model = model
		}
	}
}

// WithGeneration overrides patch generation defaults on the test config.
func WithGeneration(variations int, intent string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Generation.Variations = variations
		b.cfg.Generation.Intent = intent
	}
}

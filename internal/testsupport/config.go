package testsupport

import (
	"path/filepath"
	"testing"

	"idmend/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The workspace points at hydrants.gpkg inside the temp dir; it is not created.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Dataset.Workspace = filepath.Join(base, "hydrants.gpkg")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")

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

// WithFeatureClass overrides the feature class and field names.
func WithFeatureClass(name, oidField, idField string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Dataset.FeatureClass = name
		b.cfg.Dataset.OIDField = oidField
		b.cfg.Dataset.IDField = idField
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}

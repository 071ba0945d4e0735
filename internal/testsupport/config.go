package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/ins8ai/wer/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config rooted in a unique temp directory per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(t.TempDir(), "state")

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithRulesFile points normalization at a custom rule asset.
func WithRulesFile(path string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Normalize.RulesFile = path
	}
}

// WithHistoryDisabled turns off run recording.
func WithHistoryDisabled() ConfigOption {
	return func(cfg *config.Config) {
		cfg.History.Enabled = false
	}
}

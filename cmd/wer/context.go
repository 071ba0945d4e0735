package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/ins8ai/wer/internal/config"
	"github.com/ins8ai/wer/internal/history"
	"github.com/ins8ai/wer/internal/logging"
	"github.com/ins8ai/wer/internal/normalize"
)

var errHistoryDisabled = errors.New("history is disabled (set history.enabled = true in the config)")

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

// ensureLogger builds the process logger once. The --log-level flag wins
// over the config file.
func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			c.logger, c.loggerErr = logging.New(logging.Options{
				Level:  strings.TrimSpace(*c.logLevelFlag),
				Format: cfg.Logging.Format,
			})
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// componentLogger never fails: when logger construction already errored the
// command will surface that on its own path, and a no-op logger keeps the
// call sites unconditional.
func (c *commandContext) componentLogger(component string) *slog.Logger {
	logger, err := c.ensureLogger()
	if err != nil {
		return logging.NewComponentLogger(nil, component)
	}
	return logging.NewComponentLogger(logger, component)
}

// openHistory opens the run store, or reports that recording is turned off.
func (c *commandContext) openHistory() (*history.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.History.Enabled {
		return nil, errHistoryDisabled
	}
	return history.Open(cfg)
}

// newNormalizer builds the canonicalizer from the configured rule asset,
// falling back to the embedded rules.
func newNormalizer(cfg *config.Config) (*normalize.Normalizer, error) {
	if cfg.Normalize.RulesFile != "" {
		rules, err := normalize.Load(cfg.Normalize.RulesFile)
		if err != nil {
			return nil, fmt.Errorf("load normalization rules: %w", err)
		}
		return normalize.New(rules), nil
	}
	return normalize.New(nil), nil
}

// normalizeEnabled resolves the --normalize flag against the config default:
// an explicit flag always wins.
func normalizeEnabled(cmd *cobra.Command, cfg *config.Config, flagValue bool) bool {
	if cmd.Flags().Changed("normalize") {
		return flagValue
	}
	return cfg.Normalize.Enabled
}

func effectiveWorkers(flagWorkers int, cfg *config.Config) int {
	if flagWorkers > 0 {
		return flagWorkers
	}
	if cfg.Scoring.Workers > 0 {
		return cfg.Scoring.Workers
	}
	return runtime.NumCPU()
}

// modelName derives a model label from a prediction file path.
func modelName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

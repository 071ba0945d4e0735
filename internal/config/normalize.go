package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeNormalize(); err != nil {
		return err
	}
	c.normalizeScoring()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	var err error
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeNormalize() error {
	c.Normalize.RulesFile = strings.TrimSpace(c.Normalize.RulesFile)
	if c.Normalize.RulesFile == "" {
		if value, ok := os.LookupEnv("WER_RULES_FILE"); ok {
			c.Normalize.RulesFile = strings.TrimSpace(value)
		}
	}
	if c.Normalize.RulesFile == "" {
		return nil
	}
	var err error
	if c.Normalize.RulesFile, err = expandPath(c.Normalize.RulesFile); err != nil {
		return fmt.Errorf("normalize.rules_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeScoring() {
	if c.Scoring.Workers < 0 {
		c.Scoring.Workers = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

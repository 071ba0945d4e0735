package config

import (
	"errors"
	"fmt"
	"os"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateScoring(); err != nil {
		return err
	}
	if err := c.validateNormalize(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateScoring() error {
	if c.Scoring.Workers < 0 {
		return errors.New("scoring.workers must be >= 0")
	}
	return nil
}

func (c *Config) validateNormalize() error {
	if c.Normalize.RulesFile == "" {
		return nil
	}
	info, err := os.Stat(c.Normalize.RulesFile)
	if err != nil {
		return fmt.Errorf("normalize.rules_file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("normalize.rules_file %q is a directory", c.Normalize.RulesFile)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q must be console or json", c.Logging.Format)
	}
	return nil
}

package logging

import (
	"fmt"
	"time"

	"go.uber.org/zap/zapcore"
)

// Config holds logging configuration.
type Config struct {
	Level    zapcore.Level     `koanf:"level"`
	Format   string            `koanf:"format"`
	Sampling SamplingConfig    `koanf:"sampling"`
	Fields   map[string]string `koanf:"fields"`
}

// SamplingConfig controls log volume reduction.
type SamplingConfig struct {
	Enabled    bool          `koanf:"enabled"`
	Tick       time.Duration `koanf:"tick"`
	Initial    int           `koanf:"initial"`
	Thereafter int           `koanf:"thereafter"`
}

// NewDefaultConfig returns production defaults: info level, JSON output,
// sampling off.
func NewDefaultConfig() *Config {
	return &Config{
		Level:  zapcore.InfoLevel,
		Format: "json",
		Sampling: SamplingConfig{
			Tick:       time.Second,
			Initial:    100,
			Thereafter: 100,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Format != "json" && c.Format != "console" {
		return fmt.Errorf("invalid format %q (must be json or console)", c.Format)
	}
	if c.Level < TraceLevel || c.Level > zapcore.FatalLevel {
		return fmt.Errorf("invalid level %d", c.Level)
	}
	if c.Sampling.Enabled {
		if c.Sampling.Tick <= 0 {
			return fmt.Errorf("sampling tick must be positive")
		}
		if c.Sampling.Initial < 0 || c.Sampling.Thereafter < 0 {
			return fmt.Errorf("sampling counts cannot be negative")
		}
	}
	return nil
}

// Package config provides configuration loading for verdictd.
package config

import (
	"fmt"
	"time"
)

// Config is the top-level verdictd configuration.
type Config struct {
	Workflow WorkflowConfig `koanf:"workflow"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// WorkflowConfig tunes the orchestration engine.
type WorkflowConfig struct {
	// Rounds is the number of additional evaluate -> delegate rounds
	// permitted per run. Zero disables the back-edge.
	Rounds int `koanf:"rounds"`

	// Concurrency bounds simultaneously running investigation tasks.
	Concurrency int `koanf:"concurrency"`

	// TaskTimeout applies to every individual investigation task.
	TaskTimeout time.Duration `koanf:"task_timeout"`
}

// LoggingConfig selects log verbosity and encoding.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Workflow: WorkflowConfig{
			Rounds:      3,
			Concurrency: 4,
			TaskTimeout: 2 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// MaxRounds converts the configured round budget into the engine's
// convention: the engine reads zero as "use the built-in default", so a
// configured zero maps to the negative value that disables the
// evaluate -> delegate back-edge.
func (w WorkflowConfig) MaxRounds() int {
	if w.Rounds == 0 {
		return -1
	}
	return w.Rounds
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Workflow.Rounds < 0 {
		return fmt.Errorf("workflow.rounds cannot be negative")
	}
	if c.Workflow.Concurrency < 1 {
		return fmt.Errorf("workflow.concurrency must be at least 1")
	}
	if c.Workflow.TaskTimeout <= 0 {
		return fmt.Errorf("workflow.task_timeout must be positive")
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

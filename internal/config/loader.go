package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// envPrefix scopes environment overrides, e.g. VERDICT_WORKFLOW_ROUNDS.
const envPrefix = "VERDICT_"

// Load reads configuration from an optional YAML file and the
// environment. Environment variables take precedence over the file.
// An empty path loads defaults plus environment overrides.
//
// Defaults are loaded into the key store first, so an explicit zero in the
// file or environment (e.g. rounds: 0) overrides them rather than being
// mistaken for an unset value.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	def := Default()
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"workflow.rounds":       def.Workflow.Rounds,
		"workflow.concurrency":  def.Workflow.Concurrency,
		"workflow.task_timeout": def.Workflow.TaskTimeout,
		"logging.level":         def.Logging.Level,
		"logging.format":        def.Logging.Format,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// envTransform maps VERDICT_WORKFLOW_TASK_TIMEOUT to
// workflow.task_timeout: the first underscore separates the section,
// the remainder is the field name.
func envTransform(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	section, field, found := strings.Cut(s, "_")
	if !found {
		return s
	}
	return section + "." + field
}

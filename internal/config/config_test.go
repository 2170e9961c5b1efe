package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Workflow.Rounds)
	assert.Equal(t, 4, cfg.Workflow.Concurrency)
	assert.Equal(t, 2*time.Minute, cfg.Workflow.TaskTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verdict.yaml")
	content := `
workflow:
  rounds: 1
  concurrency: 8
  task_timeout: 30s
logging:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Workflow.Rounds)
	assert.Equal(t, 8, cfg.Workflow.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.Workflow.TaskTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verdict.yaml")
	content := `
workflow:
  rounds: 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Workflow.Rounds)
	assert.Equal(t, 4, cfg.Workflow.Concurrency)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verdict.yaml")
	content := `
workflow:
  concurrency: 8
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("VERDICT_WORKFLOW_CONCURRENCY", "2")
	t.Setenv("VERDICT_LOGGING_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Workflow.Concurrency)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadExplicitZeroRounds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verdict.yaml")
	content := `
workflow:
  rounds: 0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	// An explicit zero is kept, not re-defaulted to 3.
	assert.Equal(t, 0, cfg.Workflow.Rounds)
	assert.Equal(t, -1, cfg.Workflow.MaxRounds())
}

func TestLoadExplicitZeroRoundsFromEnv(t *testing.T) {
	t.Setenv("VERDICT_WORKFLOW_ROUNDS", "0")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Workflow.Rounds)
}

func TestMaxRoundsMapping(t *testing.T) {
	w := WorkflowConfig{Rounds: 3}
	assert.Equal(t, 3, w.MaxRounds())

	w.Rounds = 0
	assert.Equal(t, -1, w.MaxRounds())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verdict.yaml")
	content := `
logging:
  format: xml
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "logging.format")
}

func TestValidateNegativeRounds(t *testing.T) {
	cfg := Default()
	cfg.Workflow.Rounds = -1
	assert.Error(t, cfg.Validate())
}

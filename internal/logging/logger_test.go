package logging

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLoggerValidatesConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Format = "xml"
	_, err := NewLogger(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestNewLoggerDefaults(t *testing.T) {
	logger, err := NewLogger(NewDefaultConfig())
	require.NoError(t, err)
	assert.True(t, logger.Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Enabled(zapcore.DebugLevel))
}

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"trace", TraceLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"info", zapcore.InfoLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"loud", zapcore.InfoLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := LevelFromString(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestContextFieldsAttached(t *testing.T) {
	logger := NewTestLogger()

	ctx := WithRunID(context.Background(), "run-42")
	ctx = WithPhase(ctx, "delegate")
	ctx = WithTaskID(ctx, "task-7")

	logger.Info(ctx, "dispatching")

	entries := logger.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "run-42", fields["run.id"])
	assert.Equal(t, "delegate", fields["run.phase"])
	assert.Equal(t, "task-7", fields["task.id"])
}

func TestContextFieldsAbsent(t *testing.T) {
	logger := NewTestLogger()
	logger.Info(context.Background(), "plain")
	require.Len(t, logger.All(), 1)
	assert.Empty(t, logger.All()[0].Context)
}

func TestTraceLevelGated(t *testing.T) {
	logger := NewTestLogger()
	logger.Trace(context.Background(), "step detail", zap.Int("step", 1))
	assert.Equal(t, 1, logger.FilterMessage("step detail").Len())
}

func TestNamedAndWith(t *testing.T) {
	logger := NewTestLogger()
	child := logger.Named("delegator").With(zap.String("pool", "review"))
	child.Info(context.Background(), "started")

	entries := logger.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "delegator", entries[0].LoggerName)
	assert.Equal(t, "review", entries[0].ContextMap()["pool"])
}

func TestSamplingConfigValidation(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Sampling.Enabled = true
	cfg.Sampling.Tick = 0
	assert.Error(t, cfg.Validate())

	cfg.Sampling.Tick = time.Second
	cfg.Sampling.Initial = -1
	assert.Error(t, cfg.Validate())

	cfg.Sampling.Initial = 10
	assert.NoError(t, cfg.Validate())
}

func TestNopLogger(t *testing.T) {
	logger := NewNop()
	logger.Info(context.Background(), "discarded")
	assert.NoError(t, logger.Sync())
}

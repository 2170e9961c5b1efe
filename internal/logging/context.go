package logging

import (
	"context"

	"go.uber.org/zap"
)

// Context key types
type runCtxKey struct{}
type phaseCtxKey struct{}
type taskCtxKey struct{}

// ContextFields extracts correlation data from context.
func ContextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 3)

	if runID := RunIDFromContext(ctx); runID != "" {
		fields = append(fields, zap.String("run.id", runID))
	}
	if phase := PhaseFromContext(ctx); phase != "" {
		fields = append(fields, zap.String("run.phase", phase))
	}
	if taskID := TaskIDFromContext(ctx); taskID != "" {
		fields = append(fields, zap.String("task.id", taskID))
	}

	return fields
}

// WithRunID attaches a workflow run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runCtxKey{}, runID)
}

// RunIDFromContext extracts the run ID, or "" when absent.
func RunIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(runCtxKey{}).(string); ok {
		return id
	}
	return ""
}

// WithPhase attaches the current workflow phase to the context.
func WithPhase(ctx context.Context, phase string) context.Context {
	return context.WithValue(ctx, phaseCtxKey{}, phase)
}

// PhaseFromContext extracts the phase, or "" when absent.
func PhaseFromContext(ctx context.Context) string {
	if p, ok := ctx.Value(phaseCtxKey{}).(string); ok {
		return p
	}
	return ""
}

// WithTaskID attaches an investigation task ID to the context.
func WithTaskID(ctx context.Context, taskID string) context.Context {
	return context.WithValue(ctx, taskCtxKey{}, taskID)
}

// TaskIDFromContext extracts the task ID, or "" when absent.
func TaskIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(taskCtxKey{}).(string); ok {
		return id
	}
	return ""
}

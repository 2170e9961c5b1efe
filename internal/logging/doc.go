// Package logging provides the zap-based structured logger for verdictd.
//
// The Logger wraps zap with context-aware methods: correlation fields (run
// ID, workflow phase) travel in the context.Context and are attached to every
// entry automatically. A custom trace level below debug exists for
// step-by-step engine output.
//
// Sampling keeps chatty per-task logging affordable; error and above are
// never sampled. Tests use NewTestLogger, which records entries through
// zap's observer core.
package logging

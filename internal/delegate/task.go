package delegate

import (
	"context"
	"time"

	"github.com/fyrsmithlabs/verdictd/internal/findings"
)

// Status is the lifecycle state of an investigation task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusTimedOut  Status = "timed_out"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the status is a terminal one.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusTimedOut, StatusCancelled:
		return true
	}
	return false
}

// Task is one unit of investigation handed to the Pool. It carries an
// immutable snapshot of the planned work; the pool owns the task for its
// lifetime and discards it once its result is collected.
type Task struct {
	ID          string   `json:"id"`
	Specialist  string   `json:"specialist"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	TodoIDs     []string `json:"todo_ids"`
	Evidence    []string `json:"evidence"`
}

// Result is the typed outcome of a task. Partial findings emitted before a
// failure or timeout are preserved.
type Result struct {
	TaskID   string             `json:"task_id"`
	Status   Status             `json:"status"`
	Findings []findings.Finding `json:"findings"`
	Err      string             `json:"error,omitempty"`
	Duration time.Duration      `json:"duration"`
}

// Investigator is the external investigation-unit contract. Implementations
// are opaque to the core: they may call any tool or model. On error they
// should still return whatever findings they had produced; the pool keeps
// them as partial results.
type Investigator interface {
	// Investigate runs one task to completion or context expiry.
	Investigate(ctx context.Context, task Task) ([]findings.Finding, error)
}

// InvestigatorFunc adapts a function to the Investigator interface.
type InvestigatorFunc func(ctx context.Context, task Task) ([]findings.Finding, error)

// Investigate implements Investigator.
func (f InvestigatorFunc) Investigate(ctx context.Context, task Task) ([]findings.Finding, error) {
	return f(ctx, task)
}

package delegate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fyrsmithlabs/verdictd/internal/logging"
	"github.com/fyrsmithlabs/verdictd/internal/metrics"
)

const (
	// DefaultLimit bounds concurrent tasks when the caller passes zero.
	DefaultLimit = 4

	// DefaultTaskTimeout applies when the caller passes zero.
	DefaultTaskTimeout = 2 * time.Minute
)

// Pool fans investigation tasks out to registered investigators and fans
// their results back in. It holds no long-lived shared state between runs.
type Pool struct {
	units  map[string]Investigator
	logger *logging.Logger
}

// NewPool creates a pool. A nil logger is replaced with a no-op logger.
func NewPool(logger *logging.Logger) *Pool {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pool{
		units:  make(map[string]Investigator),
		logger: logger.Named("delegator"),
	}
}

// Register binds a specialist identifier to an investigation unit.
func (p *Pool) Register(specialist string, unit Investigator) {
	p.units[specialist] = unit
}

// Specialists returns the registered specialist identifiers.
func (p *Pool) Specialists() []string {
	out := make([]string, 0, len(p.units))
	for name := range p.units {
		out = append(out, name)
	}
	return out
}

// Batch is an in-flight fan-out. Wait blocks until every task has resolved
// and returns results in the original task order.
type Batch struct {
	results []Result
	done    chan struct{}
}

// Wait blocks until all tasks in the batch have a terminal result.
func (b *Batch) Wait() []Result {
	<-b.done
	return b.results
}

// Run delegates tasks and blocks for the full batch. Equivalent to
// Start followed by Wait.
func (p *Pool) Run(ctx context.Context, tasks []Task, limit int, perTaskTimeout time.Duration) []Result {
	return p.Start(ctx, tasks, limit, perTaskTimeout).Wait()
}

// Start launches up to limit tasks concurrently; as each finishes the next
// queued task starts immediately (no barrier between batches). Every task is
// subject to perTaskTimeout. Cancellation of ctx cancels outstanding tasks
// cooperatively; results of already-finished tasks are preserved.
func (p *Pool) Start(ctx context.Context, tasks []Task, limit int, perTaskTimeout time.Duration) *Batch {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if perTaskTimeout <= 0 {
		perTaskTimeout = DefaultTaskTimeout
	}

	batch := &Batch{
		results: make([]Result, len(tasks)),
		done:    make(chan struct{}),
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i, task := range tasks {
		i, task := i, task
		g.Go(func() error {
			batch.results[i] = p.runTask(ctx, task, perTaskTimeout)
			return nil
		})
	}

	go func() {
		_ = g.Wait() // task outcomes live in results, never in errors
		close(batch.done)
	}()

	return batch
}

// runTask executes one task under its own timeout and converts any failure
// into a typed result.
func (p *Pool) runTask(ctx context.Context, task Task, timeout time.Duration) Result {
	start := time.Now()
	tctx := logging.WithTaskID(ctx, task.ID)

	unit, ok := p.units[task.Specialist]
	if !ok {
		p.logger.Error(tctx, "no investigator registered", zap.String("specialist", task.Specialist))
		res := Result{
			TaskID: task.ID,
			Status: StatusFailed,
			Err:    fmt.Sprintf("no investigator registered for specialist %q", task.Specialist),
		}
		metrics.RecordTaskStatus(string(res.Status))
		return res
	}

	// Abandoned before starting: report cancelled without invoking the unit.
	if err := ctx.Err(); err != nil {
		metrics.RecordTaskStatus(string(StatusCancelled))
		return Result{TaskID: task.ID, Status: StatusCancelled, Err: err.Error()}
	}

	p.logger.Trace(tctx, "task running", zap.String("specialist", task.Specialist))

	runCtx, cancel := context.WithTimeout(tctx, timeout)
	defer cancel()

	found, err := unit.Investigate(runCtx, task)

	res := Result{
		TaskID:   task.ID,
		Status:   StatusCompleted,
		Findings: found,
		Duration: time.Since(start),
	}
	if err != nil {
		res.Err = err.Error()
		switch {
		case errors.Is(ctx.Err(), context.Canceled) || errors.Is(err, context.Canceled):
			res.Status = StatusCancelled
		case errors.Is(err, context.DeadlineExceeded) || errors.Is(runCtx.Err(), context.DeadlineExceeded):
			res.Status = StatusTimedOut
		default:
			res.Status = StatusFailed
		}
		p.logger.Warn(tctx, "task did not complete",
			zap.String("status", string(res.Status)),
			zap.Int("partial_findings", len(found)),
			zap.Error(err))
	} else {
		p.logger.Debug(tctx, "task completed",
			zap.Int("findings", len(found)),
			zap.Duration("duration", res.Duration))
	}

	metrics.RecordTaskStatus(string(res.Status))
	return res
}

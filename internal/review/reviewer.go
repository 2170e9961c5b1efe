package review

import (
	"context"
	"sort"
	"time"

	"github.com/fyrsmithlabs/verdictd/internal/delegate"
	"github.com/fyrsmithlabs/verdictd/internal/findings"
	"github.com/fyrsmithlabs/verdictd/internal/logging"
	"github.com/fyrsmithlabs/verdictd/internal/workflow"
)

// Config tunes a review run.
type Config struct {
	// MaxRounds bounds additional evaluate → delegate rounds.
	MaxRounds int

	// Concurrency bounds simultaneously running investigation tasks.
	Concurrency int

	// TaskTimeout applies to every individual investigation task.
	TaskTimeout time.Duration
}

// Reviewer owns the phase handlers of one review workflow. It holds the
// delegator pool and the in-flight batch between the delegate and collect
// phases; the workflow context itself never touches the batch.
type Reviewer struct {
	cfg    Config
	pool   *delegate.Pool
	agg    *findings.Aggregator
	logger *logging.Logger

	// pending is the batch started by delegate and awaited by collect.
	pending *delegate.Batch
}

// NewReviewer creates a reviewer around an investigator pool. A nil keyFn
// selects the default dedup comparator.
func NewReviewer(cfg Config, pool *delegate.Pool, keyFn findings.KeyFunc, logger *logging.Logger) *Reviewer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Reviewer{
		cfg:    cfg,
		pool:   pool,
		agg:    findings.NewAggregator(keyFn),
		logger: logger.Named("review"),
	}
}

// Machine builds the state machine with every phase handler registered.
func (r *Reviewer) Machine() *workflow.Machine {
	m := workflow.New(workflow.Config{MaxRounds: r.cfg.MaxRounds}, r.logger)
	m.Register(r.intakeHandler())
	m.Register(r.planHandler())
	m.Register(r.delegateHandler())
	m.Register(r.collectHandler())
	m.Register(r.consolidateHandler())
	m.Register(r.evaluateHandler())
	m.Register(r.doneHandler())
	return m
}

// Run drives a complete review over the inputs.
func (r *Reviewer) Run(ctx context.Context, inputs []string) (*workflow.Context, error) {
	return r.Machine().Run(ctx, workflow.NewContext(inputs))
}

// specialists returns the registered specialist names in stable order, so
// task construction is deterministic.
func (r *Reviewer) specialists() []string {
	names := r.pool.Specialists()
	sort.Strings(names)
	return names
}

// RunWorkflow is the package-level entry point: it reviews the inputs with
// the built-in inspectors and default settings. On return the context state
// is always done; in-run failures surface as a degraded assessment, not as
// an error.
func RunWorkflow(ctx context.Context, inputs []string, logger *logging.Logger) (*workflow.Context, error) {
	pool := delegate.NewPool(logger)
	RegisterBuiltinInspectors(pool)
	return NewReviewer(Config{}, pool, nil, logger).Run(ctx, inputs)
}

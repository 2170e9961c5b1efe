package workflow

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/verdictd/internal/assess"
	"github.com/fyrsmithlabs/verdictd/internal/logging"
	"github.com/fyrsmithlabs/verdictd/internal/metrics"
	"github.com/fyrsmithlabs/verdictd/internal/trace"
)

// DefaultMaxRounds bounds additional evaluate → delegate rounds. An
// unbounded loop is a real risk; three extra rounds is the documented
// default.
const DefaultMaxRounds = 3

// Config tunes the state machine.
type Config struct {
	// MaxRounds is the number of additional delegate rounds permitted via
	// the evaluate → delegate back-edge. Zero selects DefaultMaxRounds;
	// negative disables the back-edge entirely.
	MaxRounds int
}

func (c Config) maxRounds() int {
	if c.MaxRounds == 0 {
		return DefaultMaxRounds
	}
	if c.MaxRounds < 0 {
		return 0
	}
	return c.MaxRounds
}

// Handler executes the work of one phase. It mutates only the Context, must
// append exactly one trace frame for the phase it runs, and returns the next
// legal state.
type Handler interface {
	// Phase returns the phase this handler manages.
	Phase() Phase

	// Execute runs the phase work against the shared context.
	Execute(ctx context.Context, wc *Context) (Phase, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc struct {
	For Phase
	Fn  func(ctx context.Context, wc *Context) (Phase, error)
}

// Phase implements Handler.
func (h HandlerFunc) Phase() Phase { return h.For }

// Execute implements Handler.
func (h HandlerFunc) Execute(ctx context.Context, wc *Context) (Phase, error) {
	return h.Fn(ctx, wc)
}

// Machine drives a run from intake to done through registered handlers.
type Machine struct {
	handlers map[Phase]Handler
	cfg      Config
	logger   *logging.Logger
}

// New creates a machine. A nil logger is replaced with a no-op logger.
func New(cfg Config, logger *logging.Logger) *Machine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Machine{
		handlers: make(map[Phase]Handler),
		cfg:      cfg,
		logger:   logger.Named("workflow"),
	}
}

// Register binds a handler to its phase. A later registration for the same
// phase replaces the earlier one.
func (m *Machine) Register(h Handler) {
	m.handlers[h.Phase()] = h
}

// Run drives the machine from the context's current state to done. The run
// always terminates in done with either a genuine or a degraded assessment;
// only programmer errors (an unregistered phase, an illegal transition
// returned by a handler) surface as returned errors.
func (m *Machine) Run(ctx context.Context, wc *Context) (*Context, error) {
	ctx = logging.WithRunID(ctx, wc.RunID)
	maxRounds := m.cfg.maxRounds()

	for {
		// Cancellation is checked only at the phase boundary: a phase
		// either fully completes or is abandoned before starting.
		if err := ctx.Err(); err != nil && wc.State != PhaseDone {
			m.logger.Warn(ctx, "run cancelled", zap.String("phase", string(wc.State)))
			m.degrade(ctx, wc, wc.State, fmt.Sprintf("run cancelled: %v", err))
			return wc, nil
		}

		handler, ok := m.handlers[wc.State]
		if !ok {
			return wc, fmt.Errorf("no handler registered for phase %s", wc.State)
		}

		phaseCtx := logging.WithPhase(ctx, string(wc.State))
		start := time.Now()
		framesBefore := len(wc.Log.Frames)

		m.logger.Debug(phaseCtx, "phase starting")
		next, err := m.execute(phaseCtx, handler, wc)
		metrics.ObservePhase(string(wc.State), start)

		if err == nil && len(wc.Log.Frames) == framesBefore {
			err = fmt.Errorf("%w: phase %s", ErrMissingFrame, wc.State)
		}
		if err != nil {
			m.logger.Error(phaseCtx, "phase failed", zap.Error(err))
			m.degrade(ctx, wc, wc.State, err.Error())
			return wc, nil
		}

		m.logger.Debug(phaseCtx, "phase completed",
			zap.String("next", string(next)),
			zap.Duration("duration", time.Since(start)))

		if wc.State == PhaseDone {
			metrics.RecordRunOutcome(false)
			metrics.InvestigationRounds.Observe(float64(wc.Rounds + 1))
			return wc, nil
		}

		if err := AssertTransition(wc.State, next); err != nil {
			// Illegal edge from a handler is a bug, never caught here.
			return wc, err
		}

		if wc.State == PhaseEvaluate && next == PhaseDelegate {
			wc.Rounds++
			if wc.Rounds > maxRounds {
				m.logger.Warn(phaseCtx, "round budget exhausted", zap.Int("rounds", wc.Rounds))
				m.degrade(ctx, wc, wc.State, ErrBudgetExceeded.Error())
				return wc, nil
			}
		}

		wc.State = next
	}
}

// execute invokes a handler, converting a panic into an error so a buggy
// handler degrades the run instead of killing the process.
func (m *Machine) execute(ctx context.Context, handler Handler, wc *Context) (next Phase, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("phase %s panicked: %v", wc.State, r)
		}
	}()
	return handler.Execute(ctx, wc)
}

// degrade records the failure in the trace, attaches a degraded block
// assessment naming the failing phase, and forces the terminal state. The
// forced edge deliberately bypasses AssertTransition: the failure path is
// the one sanctioned shortcut to done.
func (m *Machine) degrade(ctx context.Context, wc *Context, failed Phase, reason string) {
	stop := trace.NewStep(trace.StepStop, reason).WithNext(string(PhaseDone))

	if last := wc.Log.Last(); last != nil && last.State == string(failed) {
		wc.Log.AmendLast(stop)
	} else {
		frame := trace.NewFrame(string(failed))
		frame.Note(stop)
		frame.Decide(fmt.Sprintf("phase %s aborted", failed))
		if err := wc.Log.Add(frame); err != nil {
			// Duplicate-frame guard can reject the synthetic frame; the
			// stop step still lands on the existing trail.
			wc.Log.AmendLast(stop)
		}
	}

	final := trace.NewFrame(string(PhaseDone))
	final.Note(trace.NewStep(trace.StepStop, fmt.Sprintf("terminating degraded after %s", failed)))
	final.Decide("degraded assessment issued")
	if err := wc.Log.Add(final); err != nil {
		m.logger.Error(ctx, "failed to record terminal frame", zap.Error(err))
	}

	a := assess.Degraded(string(failed), reason)
	wc.Assessment = &a
	wc.State = PhaseDone

	metrics.RecordRunOutcome(true)
	metrics.InvestigationRounds.Observe(float64(wc.Rounds + 1))
}

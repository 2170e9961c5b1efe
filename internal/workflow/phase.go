package workflow

import (
	"errors"
	"fmt"
)

// Phase represents one named step in the fixed workflow graph.
type Phase string

const (
	// PhaseIntake records initial goals from the run input.
	PhaseIntake Phase = "intake"

	// PhasePlanTodos populates the todo list from the intake goals.
	PhasePlanTodos Phase = "plan_todos"

	// PhaseDelegate fans investigation tasks out to specialists.
	PhaseDelegate Phase = "delegate"

	// PhaseCollect gathers task results and merges their findings.
	PhaseCollect Phase = "collect"

	// PhaseConsolidate reconciles conflicting findings.
	PhaseConsolidate Phase = "consolidate"

	// PhaseEvaluate decides between another round and termination.
	PhaseEvaluate Phase = "evaluate"

	// PhaseDone is terminal and produces the assessment.
	PhaseDone Phase = "done"
)

// ErrInvalidTransition reports an illegal phase edge. It is a programmer
// error: the run loop never catches it.
var ErrInvalidTransition = errors.New("invalid transition")

// ErrBudgetExceeded reports too many evaluate → delegate rounds.
var ErrBudgetExceeded = errors.New("investigation round budget exceeded")

// ErrMissingFrame reports a phase handler that exited without recording a
// trace frame, which violates the handler contract.
var ErrMissingFrame = errors.New("phase handler recorded no trace frame")

// successors is the static adjacency table; AssertTransition is its only
// reader.
var successors = map[Phase][]Phase{
	PhaseIntake:      {PhasePlanTodos},
	PhasePlanTodos:   {PhaseDelegate},
	PhaseDelegate:    {PhaseCollect, PhaseConsolidate, PhaseEvaluate, PhaseDone},
	PhaseCollect:     {PhaseConsolidate},
	PhaseConsolidate: {PhaseEvaluate},
	PhaseEvaluate:    {PhaseDelegate, PhaseDone},
	PhaseDone:        {},
}

// RepeatablePhases lists the states an additional investigation round
// revisits; these are the only states allowed to own more than one trace
// frame.
func RepeatablePhases() []string {
	return []string{
		string(PhaseDelegate),
		string(PhaseCollect),
		string(PhaseConsolidate),
		string(PhaseEvaluate),
	}
}

// AssertTransition fails with ErrInvalidTransition when to is not in the
// allowed successor set of from. It has no side effects; every state change
// in the engine must pass through it before the context state mutates.
func AssertTransition(from, to Phase) error {
	allowed, ok := successors[from]
	if !ok {
		return fmt.Errorf("%w: unknown phase %q", ErrInvalidTransition, from)
	}
	for _, next := range allowed {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

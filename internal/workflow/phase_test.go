package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssertTransitionLegality(t *testing.T) {
	legal := []struct{ from, to Phase }{
		{PhaseIntake, PhasePlanTodos},
		{PhasePlanTodos, PhaseDelegate},
		{PhaseDelegate, PhaseCollect},
		{PhaseDelegate, PhaseConsolidate},
		{PhaseDelegate, PhaseEvaluate},
		{PhaseDelegate, PhaseDone},
		{PhaseCollect, PhaseConsolidate},
		{PhaseConsolidate, PhaseEvaluate},
		{PhaseEvaluate, PhaseDelegate},
		{PhaseEvaluate, PhaseDone},
	}
	for _, tt := range legal {
		assert.NoError(t, AssertTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}

	// Everything not in the table is illegal, including identity edges and
	// anything out of the terminal state.
	all := []Phase{PhaseIntake, PhasePlanTodos, PhaseDelegate, PhaseCollect,
		PhaseConsolidate, PhaseEvaluate, PhaseDone}
	legalSet := make(map[[2]Phase]bool, len(legal))
	for _, tt := range legal {
		legalSet[[2]Phase{tt.from, tt.to}] = true
	}
	for _, from := range all {
		for _, to := range all {
			if legalSet[[2]Phase{from, to}] {
				continue
			}
			err := AssertTransition(from, to)
			assert.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s", from, to)
		}
	}
}

func TestAssertTransitionUnknownPhase(t *testing.T) {
	assert.ErrorIs(t, AssertTransition(Phase("limbo"), PhaseDone), ErrInvalidTransition)
}

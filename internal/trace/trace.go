package trace

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fyrsmithlabs/verdictd/internal/findings"
)

// ErrDuplicateFrame reports a second frame for a phase that may only be
// visited once. It indicates a phase-handler bug, not a recoverable
// condition.
var ErrDuplicateFrame = fmt.Errorf("duplicate phase frame")

// StepKind classifies an atomic reasoning step.
type StepKind string

const (
	StepTransition StepKind = "transition"
	StepTool       StepKind = "tool"
	StepDelegate   StepKind = "delegate"
	StepGate       StepKind = "gate"
	StepStop       StepKind = "stop"
)

// Step is one atomic reasoning note. Immutable once created.
type Step struct {
	Kind       StepKind            `json:"kind"`
	Why        string              `json:"why"`
	Evidence   []string            `json:"evidence,omitempty"`
	Next       string              `json:"next,omitempty"`
	Confidence findings.Confidence `json:"confidence"`
}

// NewStep builds a step with the default medium confidence.
func NewStep(kind StepKind, why string, evidence ...string) Step {
	return Step{
		Kind:       kind,
		Why:        why,
		Evidence:   evidence,
		Confidence: findings.ConfidenceMedium,
	}
}

// WithNext returns a copy of the step with the implied next state or action.
func (s Step) WithNext(next string) Step {
	s.Next = next
	return s
}

// WithConfidence returns a copy of the step with the given confidence.
func (s Step) WithConfidence(c findings.Confidence) Step {
	s.Confidence = c
	return s
}

// Frame captures all steps taken while in one phase. Exactly one frame exists
// per phase entry; steps within a frame are append-only.
type Frame struct {
	State     string    `json:"state"`
	Timestamp time.Time `json:"timestamp"`
	Goals     []string  `json:"goals,omitempty"`
	Checks    []string  `json:"checks,omitempty"`
	Risks     []string  `json:"risks,omitempty"`
	Steps     []Step    `json:"steps"`
	Decision  string    `json:"decision"`
}

// NewFrame starts a frame for the given phase.
func NewFrame(state string) *Frame {
	return &Frame{
		State:     state,
		Timestamp: time.Now().UTC(),
		Steps:     []Step{},
	}
}

// Note appends a step to the frame.
func (f *Frame) Note(step Step) *Frame {
	f.Steps = append(f.Steps, step)
	return f
}

// Decide sets the frame's one-line decision summary.
func (f *Frame) Decide(decision string) *Frame {
	f.Decision = decision
	return f
}

// RunLog is the full, append-only trace of one run.
type RunLog struct {
	Frames []Frame `json:"frames"`

	// repeatable names the states allowed to recur across frames.
	repeatable map[string]bool
}

// NewRunLog creates a log. The repeatable states are the only ones allowed to
// appear in more than one frame; for the review workflow these are the states
// revisited by an additional investigation round.
func NewRunLog(repeatable ...string) *RunLog {
	r := make(map[string]bool, len(repeatable))
	for _, s := range repeatable {
		r[s] = true
	}
	return &RunLog{Frames: []Frame{}, repeatable: r}
}

// Add appends a frame. It fails with ErrDuplicateFrame when a frame for the
// same state already exists and the state is not a permitted repeat visit.
func (l *RunLog) Add(frame *Frame) error {
	if frame == nil {
		return fmt.Errorf("nil frame")
	}
	if !l.repeatable[frame.State] {
		for _, existing := range l.Frames {
			if existing.State == frame.State {
				return fmt.Errorf("%w: state %q already recorded", ErrDuplicateFrame, frame.State)
			}
		}
	}
	l.Frames = append(l.Frames, *frame)
	return nil
}

// Last returns the most recently added frame, or nil when empty.
func (l *RunLog) Last() *Frame {
	if len(l.Frames) == 0 {
		return nil
	}
	return &l.Frames[len(l.Frames)-1]
}

// AmendLast appends a step to the most recent frame. Used by the engine to
// record a stop step against the frame of a failing phase.
func (l *RunLog) AmendLast(step Step) {
	if len(l.Frames) == 0 {
		return
	}
	l.Frames[len(l.Frames)-1].Steps = append(l.Frames[len(l.Frames)-1].Steps, step)
}

// MarshalJSON serializes the log losslessly, preserving frame and step order.
func (l *RunLog) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Frames []Frame `json:"frames"`
	}{Frames: l.Frames})
}

// UnmarshalRunLog parses a serialized log. The repeatable-state set is not
// part of the wire form; a parsed log is a read model, not a live recorder,
// so repeat enforcement does not apply to it.
func UnmarshalRunLog(data []byte) (*RunLog, error) {
	var wire struct {
		Frames []Frame `json:"frames"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("parse run log: %w", err)
	}
	return &RunLog{Frames: wire.Frames, repeatable: map[string]bool{}}, nil
}

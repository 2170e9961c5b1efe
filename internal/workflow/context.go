package workflow

import (
	"github.com/google/uuid"

	"github.com/fyrsmithlabs/verdictd/internal/assess"
	"github.com/fyrsmithlabs/verdictd/internal/findings"
	"github.com/fyrsmithlabs/verdictd/internal/trace"
)

// Todo is a planned, evidence-linked unit of future investigation work.
// Todos are appended during planning and consumed, never removed, during
// delegation.
type Todo struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Rationale string   `json:"rationale"`
	Evidence  []string `json:"evidence"`

	// Dispatched marks a todo already handed to the delegator.
	Dispatched bool `json:"dispatched"`
}

// Context is the single mutable aggregate threaded through a run. It is
// owned exclusively by the state-machine loop and never shared with
// concurrent investigation tasks.
type Context struct {
	RunID    string
	State    Phase
	Inputs   []string
	Todos    []Todo
	Findings findings.Set
	Log      *trace.RunLog

	// Assessment is populated only in the terminal phase.
	Assessment *assess.Assessment

	// Rounds counts additional delegate rounds taken via the
	// evaluate → delegate back-edge.
	Rounds int
}

// NewContext creates a run context positioned at intake.
func NewContext(inputs []string) *Context {
	return &Context{
		RunID:    uuid.NewString(),
		State:    PhaseIntake,
		Inputs:   inputs,
		Findings: findings.NewSet(),
		Log:      trace.NewRunLog(RepeatablePhases()...),
	}
}

// PendingTodos returns the todos not yet handed to the delegator.
func (c *Context) PendingTodos() []Todo {
	var out []Todo
	for _, td := range c.Todos {
		if !td.Dispatched {
			out = append(out, td)
		}
	}
	return out
}

// MarkDispatched flags the given todo IDs as consumed.
func (c *Context) MarkDispatched(ids ...string) {
	dispatched := make(map[string]bool, len(ids))
	for _, id := range ids {
		dispatched[id] = true
	}
	for i := range c.Todos {
		if dispatched[c.Todos[i].ID] {
			c.Todos[i].Dispatched = true
		}
	}
}

// HasTodo reports whether a todo with the given ID exists.
func (c *Context) HasTodo(id string) bool {
	for _, td := range c.Todos {
		if td.ID == id {
			return true
		}
	}
	return false
}

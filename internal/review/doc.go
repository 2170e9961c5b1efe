// Package review wires the workflow engine into the canonical code-review
// run: seven phase handlers that plan investigation todos, fan them out to
// registered specialists, merge and reconcile the findings, and reduce them
// to a terminal assessment.
//
// The engine only ever sees the delegate.Investigator interface; the
// built-in inspectors in this package are reference collaborators for the
// CLI, not part of the orchestration core.
package review

// Package workflow implements the fixed-phase state machine that drives a
// review run.
//
// # Phase graph
//
//	intake → plan_todos → delegate → {collect, consolidate, evaluate, done}
//	collect → consolidate → evaluate → {delegate, done}
//
// The graph is static: AssertTransition checks every state change against the
// adjacency table and is the single source of truth for legality. The only
// back-edge is evaluate → delegate, used for additional investigation rounds
// and bounded by a configurable budget.
//
// # Execution model
//
// Phases run strictly sequentially; there is never more than one handler
// active at a time. Handlers mutate only the shared Context and must append
// exactly one trace frame per phase entry. Concurrency exists solely inside
// the delegate/collect handlers, behind the delegate.Pool fan-out.
//
// # Failure semantics
//
// An error (or panic) inside a handler is not retried: it is recorded as a
// stop step, the run transitions to done with a degraded block assessment
// naming the failing phase, and Run returns the context normally. Only
// programmer errors, such as an illegal transition, surface as returned
// errors.
package workflow

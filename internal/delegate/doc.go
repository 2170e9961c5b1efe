// Package delegate runs bounded sets of investigation tasks concurrently.
//
// The Pool is a pure fan-out/fan-in primitive: it starts up to a limit of
// tasks at once, applies a per-task timeout, and reports every task's outcome
// as a typed Result in input order. Task failures and timeouts never escape
// as errors; retry policy, if any, belongs to the caller.
//
// Tasks receive immutable snapshots of their planned work and communicate
// only through their return value, so no shared mutable state needs locking.
package delegate

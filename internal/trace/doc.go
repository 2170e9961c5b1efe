// Package trace records the reasoning trail of a workflow run.
//
// Every phase the engine enters appends exactly one Frame to the RunLog, and
// every atomic decision inside that phase is a Step. The log is append-only
// and owned by a single run; it is never shared or copied across runs.
//
// Two read projections are provided for trace sinks: Render produces the
// human-scannable console transcript, and MarshalJSON/UnmarshalRunLog give a
// lossless structured form that round-trips. Neither projection mutates the
// log.
package trace

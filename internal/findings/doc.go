// Package findings models investigation evidence and its aggregation.
//
// # Overview
//
// Concurrent investigations report overlapping evidence. This package owns the
// Finding data model, the ordered Severity/Confidence enums, and the
// Aggregator that folds raw findings into a canonical deduplicated set.
//
// # Deduplication
//
// Two findings are duplicates when they share a dedup key: a normalized tuple
// of issue category and primary evidence reference. Key derivation is a
// pluggable KeyFunc; DefaultKey is deliberately conservative (exact match
// after normalization, no fuzzy matching).
//
// # Merge semantics
//
// Merging is a pure fold: severity and confidence promote to the maximum of
// the inputs, evidence lists are unioned, owners accumulate. The result is
// independent of input order, so completion order of concurrent
// investigations can never change the final set.
package findings

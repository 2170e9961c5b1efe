package findings

import "sort"

// Set is the canonical deduplicated finding collection, keyed by dedup key.
// A Set never holds two findings with the same key.
type Set map[DedupKey]Finding

// NewSet returns an empty Set.
func NewSet() Set {
	return make(Set)
}

// Sorted returns the findings ordered by descending severity, then
// descending confidence, then key. The ordering is total, so consumers get
// the same sequence for the same set regardless of map iteration order.
func (s Set) Sorted() []Finding {
	out := make([]Finding, 0, len(s))
	for _, f := range s {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Severity.Rank() != out[j].Severity.Rank() {
			return out[i].Severity.Rank() > out[j].Severity.Rank()
		}
		if out[i].Confidence.Rank() != out[j].Confidence.Rank() {
			return out[i].Confidence.Rank() > out[j].Confidence.Rank()
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// MaxSeverity returns the highest severity in the set, or info when empty.
func (s Set) MaxSeverity() Severity {
	max := SeverityInfo
	for _, f := range s {
		max = MaxSeverity(max, f.Severity)
	}
	return max
}

// Aggregator folds raw findings into a deduplicated Set.
type Aggregator struct {
	key KeyFunc
}

// NewAggregator creates an Aggregator with the given key derivation.
// A nil keyFn selects DefaultKey.
func NewAggregator(keyFn KeyFunc) *Aggregator {
	if keyFn == nil {
		keyFn = DefaultKey
	}
	return &Aggregator{key: keyFn}
}

// Merge folds incoming findings into existing and returns a new Set. It is a
// pure function: neither input is mutated, and the result is independent of
// the order of incoming, which lets a crashed consolidation be re-run against
// the same accumulated findings. Incoming findings sharing a key are combined
// as one group so the result cannot depend on the fold order within the
// batch.
func (a *Aggregator) Merge(existing Set, incoming []Finding) Set {
	out := make(Set, len(existing)+len(incoming))
	for k, f := range existing {
		out[k] = f
	}

	groups := make(map[DedupKey][]Finding, len(incoming))
	keys := make([]DedupKey, 0, len(incoming))
	for _, f := range incoming {
		f.Key = a.key(f)
		f.Owners = sortedUnion(nil, f.Owners)
		if _, ok := groups[f.Key]; !ok {
			keys = append(keys, f.Key)
		}
		groups[f.Key] = append(groups[f.Key], f)
	}

	for _, key := range keys {
		group := groups[key]
		if prev, ok := out[key]; ok {
			group = append(group, prev)
		}
		out[key] = combine(group)
	}
	return out
}

// combine merges findings that share a dedup key. Severity and confidence
// promote to the maximum (never averaged: a false negative costs more than a
// duplicate). Contributors are ranked by their raw confidence, severity, ID
// and title; the top-ranked one donates the descriptive text and the
// evidence-list order, so the merged value is identical for every arrival
// order of the same contributors.
func combine(group []Finding) Finding {
	sorted := append([]Finding(nil), group...)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Confidence.Rank() != b.Confidence.Rank() {
			return a.Confidence.Rank() > b.Confidence.Rank()
		}
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() > b.Severity.Rank()
		}
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		return a.Title < b.Title
	})

	merged := sorted[0]
	for _, f := range sorted[1:] {
		merged.Severity = MaxSeverity(merged.Severity, f.Severity)
		merged.Confidence = MaxConfidence(merged.Confidence, f.Confidence)
		merged.Evidence = unionEvidence(merged.Evidence, f.Evidence)
		merged.Owners = sortedUnion(merged.Owners, f.Owners)
	}
	return merged
}

// unionEvidence keeps the primary list's order and appends references the
// secondary list adds, dropping exact duplicates.
func unionEvidence(primary, secondary []string) []string {
	seen := make(map[string]bool, len(primary)+len(secondary))
	out := make([]string, 0, len(primary)+len(secondary))
	for _, ref := range primary {
		if !seen[ref] {
			seen[ref] = true
			out = append(out, ref)
		}
	}
	for _, ref := range secondary {
		if !seen[ref] {
			seen[ref] = true
			out = append(out, ref)
		}
	}
	return out
}

// sortedUnion merges two owner lists into a sorted, duplicate-free slice.
// Sorting keeps the owner set deterministic regardless of merge order.
func sortedUnion(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, lst := range [][]string{a, b} {
		for _, v := range lst {
			if v != "" && !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	sort.Strings(out)
	return out
}

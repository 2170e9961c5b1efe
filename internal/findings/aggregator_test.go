package findings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityOrdering(t *testing.T) {
	ordered := []Severity{SeverityInfo, SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
	for i := 1; i < len(ordered); i++ {
		assert.Greater(t, ordered[i].Rank(), ordered[i-1].Rank())
	}
	assert.Equal(t, -1, Severity("bogus").Rank())
	assert.Equal(t, SeverityHigh, MaxSeverity(SeverityLow, SeverityHigh))
	assert.True(t, SeverityCritical.AtLeast(SeverityHigh))
	assert.False(t, SeverityLow.AtLeast(SeverityMedium))
}

func TestConfidenceOrdering(t *testing.T) {
	assert.True(t, ConfidenceHigh.AtLeast(ConfidenceMedium))
	assert.Equal(t, ConfidenceHigh, MaxConfidence(ConfidenceLow, ConfidenceHigh))
	assert.Equal(t, -1, Confidence("maybe").Rank())
}

func TestDefaultKey(t *testing.T) {
	tests := []struct {
		name string
		f    Finding
		want DedupKey
	}{
		{
			name: "category normalized",
			f:    Finding{Category: " Hardcoded Secret ", Evidence: []string{"cfg/app.yaml"}},
			want: "hardcoded_secret|cfg/app.yaml",
		},
		{
			name: "line suffix stripped from path",
			f:    Finding{Category: "sql-injection", Evidence: []string{"store/query.go:42"}},
			want: "sql-injection|store/query.go",
		},
		{
			name: "line and column stripped",
			f:    Finding{Category: "sql-injection", Evidence: []string{"store/query.go:42:7"}},
			want: "sql-injection|store/query.go",
		},
		{
			name: "tool output id untouched",
			f:    Finding{Category: "lint", Evidence: []string{"run-19"}},
			want: "lint|run-19",
		},
		{
			name: "separator without dot stripped",
			f:    Finding{Category: "build", Evidence: []string{"cmd/build:7"}},
			want: "build|cmd/build",
		},
		{
			name: "extensionless bare name keeps suffix",
			f:    Finding{Category: "build", Evidence: []string{"Makefile:12"}},
			want: "build|makefile:12",
		},
		{
			name: "no evidence",
			f:    Finding{Category: "lint"},
			want: "lint|",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultKey(tt.f))
		})
	}
}

func TestMergeDedupIdempotence(t *testing.T) {
	agg := NewAggregator(nil)
	f := Finding{
		ID:       "f-1",
		Title:    "credentials in config",
		Category: "hardcoded-secret",
		Severity: SeverityHigh, Confidence: ConfidenceMedium,
		Owners:   []string{"security"},
		Evidence: []string{"cfg/app.yaml:14"},
	}

	once := agg.Merge(NewSet(), []Finding{f})
	twice := agg.Merge(once, []Finding{f})

	require.Len(t, once, 1)
	assert.Equal(t, once, twice)
}

func TestMergeCommutativity(t *testing.T) {
	agg := NewAggregator(nil)
	f1 := Finding{
		ID: "f-1", Title: "raw query", Description: "string-built SQL",
		Category: "sql-injection",
		Severity: SeverityMedium, Confidence: ConfidenceLow,
		Owners:   []string{"static-analysis"},
		Evidence: []string{"store/query.go:42", "run-3"},
	}
	f2 := Finding{
		ID: "f-2", Title: "raw query confirmed", Description: "reachable from handler",
		Category: "sql-injection",
		Severity: SeverityHigh, Confidence: ConfidenceHigh,
		Owners:   []string{"dynamic-analysis"},
		Evidence: []string{"store/query.go:42", "trace-9"},
	}

	ab := agg.Merge(NewSet(), []Finding{f1, f2})
	ba := agg.Merge(NewSet(), []Finding{f2, f1})

	require.Len(t, ab, 1)
	assert.Equal(t, ab, ba)

	merged := ab.Sorted()[0]
	assert.Equal(t, SeverityHigh, merged.Severity)
	assert.Equal(t, ConfidenceHigh, merged.Confidence)
	// Higher-confidence description wins the tie.
	assert.Equal(t, "reachable from handler", merged.Description)
	assert.Equal(t, []string{"dynamic-analysis", "static-analysis"}, merged.Owners)
	assert.ElementsMatch(t, []string{"store/query.go:42", "run-3", "trace-9"}, merged.Evidence)
}

func TestMergeOrderIndependenceThreeContributors(t *testing.T) {
	agg := NewAggregator(nil)
	f1 := Finding{ID: "z", Description: "d1", Category: "cat",
		Severity: SeverityHigh, Confidence: ConfidenceMedium, Evidence: []string{"x.go:1"}}
	f2 := Finding{ID: "a", Description: "d2", Category: "cat",
		Severity: SeverityLow, Confidence: ConfidenceHigh, Evidence: []string{"x.go:2"}}
	f3 := Finding{ID: "m", Description: "d3", Category: "cat",
		Severity: SeverityHigh, Confidence: ConfidenceHigh, Evidence: []string{"x.go:3"}}

	perms := [][]Finding{
		{f1, f2, f3}, {f1, f3, f2}, {f2, f1, f3},
		{f2, f3, f1}, {f3, f1, f2}, {f3, f2, f1},
	}

	first := agg.Merge(NewSet(), perms[0])
	require.Len(t, first, 1)
	merged := first.Sorted()[0]

	// f3 outranks f2 on raw severity and f1 on raw confidence.
	assert.Equal(t, "m", merged.ID)
	assert.Equal(t, "d3", merged.Description)
	assert.Equal(t, SeverityHigh, merged.Severity)
	assert.Equal(t, ConfidenceHigh, merged.Confidence)
	assert.Equal(t, []string{"x.go:3", "x.go:2", "x.go:1"}, merged.Evidence)

	for _, perm := range perms[1:] {
		assert.Equal(t, first, agg.Merge(NewSet(), perm))
	}
}

func TestMergeEqualFindingsDeterministic(t *testing.T) {
	agg := NewAggregator(nil)
	f1 := Finding{ID: "a", Description: "first", Category: "lint",
		Severity: SeverityLow, Confidence: ConfidenceMedium, Evidence: []string{"x.go:1"}}
	f2 := Finding{ID: "b", Description: "second", Category: "lint",
		Severity: SeverityLow, Confidence: ConfidenceMedium, Evidence: []string{"x.go:2"}}

	ab := agg.Merge(NewSet(), []Finding{f1, f2})
	ba := agg.Merge(NewSet(), []Finding{f2, f1})

	require.Equal(t, ab, ba)
	// Smaller ID acts as the deterministic primary when rank ties.
	assert.Equal(t, "first", ab.Sorted()[0].Description)
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	agg := NewAggregator(nil)
	f := Finding{ID: "f-1", Category: "lint", Severity: SeverityInfo,
		Confidence: ConfidenceLow, Evidence: []string{"a.go"}}
	existing := agg.Merge(NewSet(), []Finding{f})

	higher := f
	higher.ID = "f-2"
	higher.Severity = SeverityHigh
	merged := agg.Merge(existing, []Finding{higher})

	assert.Equal(t, SeverityInfo, existing.Sorted()[0].Severity)
	assert.Equal(t, SeverityHigh, merged.Sorted()[0].Severity)
}

func TestMergeDistinctKeysAccumulate(t *testing.T) {
	agg := NewAggregator(nil)
	set := agg.Merge(NewSet(), []Finding{
		{ID: "1", Category: "lint", Evidence: []string{"a.go"}, Severity: SeverityInfo, Confidence: ConfidenceLow},
		{ID: "2", Category: "lint", Evidence: []string{"b.go"}, Severity: SeverityLow, Confidence: ConfidenceLow},
		{ID: "3", Category: "secrets", Evidence: []string{"a.go"}, Severity: SeverityHigh, Confidence: ConfidenceHigh},
	})
	assert.Len(t, set, 3)
	assert.Equal(t, SeverityHigh, set.MaxSeverity())
	sorted := set.Sorted()
	assert.Equal(t, "3", sorted[0].ID)
}

func TestEmptySetMaxSeverity(t *testing.T) {
	assert.Equal(t, SeverityInfo, NewSet().MaxSeverity())
}

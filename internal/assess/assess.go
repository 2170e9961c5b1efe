// Package assess reduces a canonical finding set into a terminal verdict.
package assess

import (
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/verdictd/internal/findings"
)

// Recommendation is the terminal merge verdict.
type Recommendation string

const (
	RecommendApprove      Recommendation = "approve"
	RecommendNeedsChanges Recommendation = "needs_changes"
	RecommendBlock        Recommendation = "block"
)

// Note is one actionable item for whoever acts on the assessment.
type Note struct {
	FindingID string            `json:"finding_id"`
	Severity  findings.Severity `json:"severity"`
	Action    string            `json:"action"`
	Evidence  []string          `json:"evidence"`
}

// Assessment is the terminal, evidence-citing output of a run.
type Assessment struct {
	OverallSeverity findings.Severity `json:"overall_severity"`
	Recommendation  Recommendation    `json:"merge_recommendation"`
	Summary         string            `json:"summary"`
	Notes           []Note            `json:"notes_for_next_actor"`

	// Degraded marks an assessment produced by the failure path rather
	// than a full evaluation.
	Degraded bool `json:"degraded,omitempty"`
}

// Generate reduces the finding set into one Assessment. The synthesis is
// deterministic: the same set always yields the same summary, and every
// claim traces to finding evidence.
func Generate(set findings.Set) Assessment {
	sorted := set.Sorted()

	a := Assessment{
		OverallSeverity: set.MaxSeverity(),
		Recommendation:  recommend(sorted),
		Summary:         summarize(sorted),
		Notes:           notes(sorted),
	}
	return a
}

// Degraded builds the block assessment used when a phase fails. The summary
// names the failing phase so the verdict is explainable from the trace alone.
func Degraded(phase string, reason string) Assessment {
	return Assessment{
		OverallSeverity: findings.SeverityCritical,
		Recommendation:  RecommendBlock,
		Summary:         fmt.Sprintf("run degraded: phase %s failed: %s", phase, reason),
		Notes: []Note{{
			Severity: findings.SeverityCritical,
			Action:   fmt.Sprintf("re-run the workflow after addressing the %s failure", phase),
			Evidence: []string{fmt.Sprintf("phase:%s", phase)},
		}},
		Degraded: true,
	}
}

// recommend applies the severity/confidence thresholds: block when any
// finding is at least high severity with at least medium confidence,
// needs_changes when any finding is at least medium severity, approve
// otherwise.
func recommend(sorted []findings.Finding) Recommendation {
	rec := RecommendApprove
	for _, f := range sorted {
		if f.Severity.AtLeast(findings.SeverityHigh) && f.Confidence.AtLeast(findings.ConfidenceMedium) {
			return RecommendBlock
		}
		if f.Severity.AtLeast(findings.SeverityMedium) {
			rec = RecommendNeedsChanges
		}
	}
	return rec
}

func summarize(sorted []findings.Finding) string {
	if len(sorted) == 0 {
		return "no findings; nothing blocks the change"
	}

	counts := map[findings.Severity]int{}
	for _, f := range sorted {
		counts[f.Severity]++
	}

	var parts []string
	for _, sev := range []findings.Severity{
		findings.SeverityCritical, findings.SeverityHigh, findings.SeverityMedium,
		findings.SeverityLow, findings.SeverityInfo,
	} {
		if n := counts[sev]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, sev))
		}
	}

	top := sorted[0]
	cite := top.PrimaryEvidence()
	if cite == "" {
		cite = top.ID
	}
	return fmt.Sprintf("%d finding(s): %s; most severe: %s (%s)",
		len(sorted), strings.Join(parts, ", "), top.Title, cite)
}

// notes lists one actionable item per high/critical finding, in descending
// severity order (Sorted already guarantees the ordering).
func notes(sorted []findings.Finding) []Note {
	var out []Note
	for _, f := range sorted {
		if !f.Severity.AtLeast(findings.SeverityHigh) {
			continue
		}
		out = append(out, Note{
			FindingID: f.ID,
			Severity:  f.Severity,
			Action:    fmt.Sprintf("resolve %s: %s", f.Category, f.Title),
			Evidence:  f.Evidence,
		})
	}
	return out
}

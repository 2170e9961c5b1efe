package findings

// Severity ranks how serious a finding is.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// severityRank maps severities to their position in the ordering.
var severityRank = map[Severity]int{
	SeverityInfo:     0,
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// Rank returns the ordinal position of the severity. Unknown values rank
// below info so a malformed finding can never dominate a merge.
func (s Severity) Rank() int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return -1
}

// AtLeast reports whether s is at least as severe as other.
func (s Severity) AtLeast(other Severity) bool {
	return s.Rank() >= other.Rank()
}

// MaxSeverity returns the more severe of a and b.
func MaxSeverity(a, b Severity) Severity {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// Confidence ranks how much an investigation trusts a finding.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

var confidenceRank = map[Confidence]int{
	ConfidenceLow:    0,
	ConfidenceMedium: 1,
	ConfidenceHigh:   2,
}

// Rank returns the ordinal position of the confidence.
func (c Confidence) Rank() int {
	if r, ok := confidenceRank[c]; ok {
		return r
	}
	return -1
}

// AtLeast reports whether c is at least as confident as other.
func (c Confidence) AtLeast(other Confidence) bool {
	return c.Rank() >= other.Rank()
}

// MaxConfidence returns the higher of a and b.
func MaxConfidence(a, b Confidence) Confidence {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// Finding is one piece of evidence produced by an investigation.
// Findings are immutable once merged; the Aggregator produces new Finding
// values that supersede their inputs rather than mutating them.
type Finding struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category"`
	Severity    Severity   `json:"severity"`
	Confidence  Confidence `json:"confidence"`

	// Owners lists every investigation that contributed to this finding.
	Owners []string `json:"owners"`

	// Evidence holds concrete references (file paths, tool-output IDs),
	// never free-text guesses.
	Evidence []string `json:"evidence"`

	// Key is the derived dedup identity. Populated by the Aggregator.
	Key DedupKey `json:"dedup_key"`
}

// PrimaryEvidence returns the first evidence reference, or "" if none.
func (f Finding) PrimaryEvidence() string {
	if len(f.Evidence) == 0 {
		return ""
	}
	return f.Evidence[0]
}

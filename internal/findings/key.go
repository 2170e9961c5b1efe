package findings

import (
	"regexp"
	"strings"
)

// DedupKey is the normalized identity used to detect that two findings
// describe the same issue.
type DedupKey string

// KeyFunc derives a dedup key from a finding. Implementations must be
// deterministic: the same finding always yields the same key.
type KeyFunc func(Finding) DedupKey

// lineSuffix matches a trailing ":line" or ":line:col" on path-like
// evidence references.
var lineSuffix = regexp.MustCompile(`:\d+(?::\d+)?$`)

// DefaultKey is the conservative default key derivation: lower-cased issue
// category plus the normalized primary evidence reference. Path-like
// references are stripped of line/column suffixes so findings about the same
// file region collide. No fuzzy or semantic matching happens here; a finer
// comparator belongs to the caller, not the core.
func DefaultKey(f Finding) DedupKey {
	category := strings.ToLower(strings.TrimSpace(f.Category))
	category = strings.ReplaceAll(category, " ", "_")

	ref := strings.TrimSpace(f.PrimaryEvidence())
	// Only references carrying a separator or an extension dot count as
	// paths. A bare "Makefile:12" keeps its suffix: nothing distinguishes
	// it from a tool-output identifier like "run:19", and a missed
	// collision surfaces as a duplicate finding rather than a wrong merge.
	if strings.ContainsAny(ref, "/.") {
		ref = lineSuffix.ReplaceAllString(ref, "")
	}
	ref = strings.ToLower(ref)

	return DedupKey(category + "|" + ref)
}

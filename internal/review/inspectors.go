package review

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/fyrsmithlabs/verdictd/internal/delegate"
	"github.com/fyrsmithlabs/verdictd/internal/findings"
)

// Built-in specialist identifiers.
const (
	SpecialistSecrets = "secret-scan"
	SpecialistHygiene = "hygiene-scan"
)

// RegisterBuiltinInspectors installs the reference investigation units used
// by the CLI. They are deliberately simple pattern scanners: the orchestration
// core treats them as opaque.
func RegisterBuiltinInspectors(pool *delegate.Pool) {
	pool.Register(SpecialistSecrets, NewSecretInspector())
	pool.Register(SpecialistHygiene, NewHygieneInspector())
}

// rule is one line-level pattern check.
type rule struct {
	category   string
	title      string
	pattern    *regexp.Regexp
	severity   findings.Severity
	confidence findings.Confidence
}

// patternInspector scans the files named in a task's evidence line by line.
type patternInspector struct {
	owner string
	rules []rule
}

// NewSecretInspector detects credential-looking literals.
func NewSecretInspector() delegate.Investigator {
	return &patternInspector{
		owner: SpecialistSecrets,
		rules: []rule{
			{
				category:   "hardcoded-secret",
				title:      "credential-looking literal",
				pattern:    regexp.MustCompile(`(?i)(password|passwd|secret|api[_-]?key|token)\s*[:=]\s*["'][^"']+["']`),
				severity:   findings.SeverityHigh,
				confidence: findings.ConfidenceMedium,
			},
			{
				category:   "private-key",
				title:      "embedded private key",
				pattern:    regexp.MustCompile(`-----BEGIN (RSA |EC )?PRIVATE KEY-----`),
				severity:   findings.SeverityCritical,
				confidence: findings.ConfidenceHigh,
			},
		},
	}
}

// NewHygieneInspector flags maintenance and transport hygiene issues.
func NewHygieneInspector() delegate.Investigator {
	return &patternInspector{
		owner: SpecialistHygiene,
		rules: []rule{
			{
				category:   "insecure-transport",
				title:      "plaintext http endpoint",
				pattern:    regexp.MustCompile(`http://[^\s"']+`),
				severity:   findings.SeverityMedium,
				confidence: findings.ConfidenceLow,
			},
			{
				category:   "leftover-marker",
				title:      "unresolved TODO/FIXME marker",
				pattern:    regexp.MustCompile(`\b(TODO|FIXME|XXX)\b`),
				severity:   findings.SeverityInfo,
				confidence: findings.ConfidenceHigh,
			},
		},
	}
}

// Investigate implements delegate.Investigator. It surrenders the findings
// accumulated so far when the context expires or a file cannot be read, so
// the pool keeps them as partial results.
func (p *patternInspector) Investigate(ctx context.Context, task delegate.Task) ([]findings.Finding, error) {
	var out []findings.Finding
	for _, path := range task.Evidence {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return out, fmt.Errorf("read %s: %w", path, err)
		}
		out = append(out, p.scan(path, string(data))...)
	}
	return out, nil
}

func (p *patternInspector) scan(path, content string) []findings.Finding {
	var out []findings.Finding
	for lineNo, line := range strings.Split(content, "\n") {
		for _, r := range p.rules {
			if !r.pattern.MatchString(line) {
				continue
			}
			ref := fmt.Sprintf("%s:%d", path, lineNo+1)
			out = append(out, findings.Finding{
				// Deterministic ID: re-running the same scan in a later
				// round reproduces the same finding identity.
				ID:          fmt.Sprintf("%s@%s", r.category, ref),
				Title:       r.title,
				Description: fmt.Sprintf("%s at %s", r.title, ref),
				Category:    r.category,
				Severity:    r.severity,
				Confidence:  r.confidence,
				Owners:      []string{p.owner},
				Evidence:    []string{ref},
			})
		}
	}
	return out
}

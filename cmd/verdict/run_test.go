package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/verdictd/internal/assess"
	"github.com/fyrsmithlabs/verdictd/internal/config"
	"github.com/fyrsmithlabs/verdictd/internal/logging"
	"github.com/fyrsmithlabs/verdictd/internal/review"
)

func TestWriteAssessment(t *testing.T) {
	var buf bytes.Buffer
	writeAssessment(&buf, &assess.Assessment{
		OverallSeverity: "high",
		Recommendation:  assess.RecommendBlock,
		Summary:         "1 finding(s): 1 high",
		Notes: []assess.Note{
			{Severity: "high", Action: "resolve secrets: credential in source"},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "recommendation: block")
	assert.Contains(t, out, "overall severity: high")
	assert.Contains(t, out, "[high] resolve secrets: credential in source")
}

func TestWriteAssessmentNil(t *testing.T) {
	var buf bytes.Buffer
	writeAssessment(&buf, nil)
	assert.Contains(t, buf.String(), "no assessment produced")
}

func TestWriteReportJSON(t *testing.T) {
	jsonOutput = true
	t.Cleanup(func() { jsonOutput = false })

	wc, err := review.RunWorkflow(context.Background(), nil, logging.NewNop())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, wc))

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	assert.Equal(t, wc.RunID, parsed["run_id"])
	assert.Contains(t, parsed, "assessment")
	assert.Contains(t, parsed, "trace")
}

func TestWriteReportTranscript(t *testing.T) {
	wc, err := review.RunWorkflow(context.Background(), nil, logging.NewNop())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, wc))

	out := buf.String()
	assert.Contains(t, out, "== intake ==")
	assert.Contains(t, out, "recommendation: approve")
}

func TestApplyFlagOverrides(t *testing.T) {
	cmd := runCmd
	require.NoError(t, cmd.Flags().Set("rounds", "1"))
	require.NoError(t, cmd.Flags().Set("log-level", "debug"))
	t.Cleanup(func() {
		rounds = 0
		logLevel = ""
		cmd.Flags().Lookup("rounds").Changed = false
		cmd.Flags().Lookup("log-level").Changed = false
	})

	cfg, err := config.Load("")
	require.NoError(t, err)
	applyFlagOverrides(cmd, cfg)

	assert.Equal(t, 1, cfg.Workflow.Rounds)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 4, cfg.Workflow.Concurrency)
}

func TestRunCmdRequiresArgs(t *testing.T) {
	err := runCmd.Args(runCmd, nil)
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "arg"))
}

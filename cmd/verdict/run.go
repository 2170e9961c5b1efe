package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/verdictd/internal/assess"
	"github.com/fyrsmithlabs/verdictd/internal/config"
	"github.com/fyrsmithlabs/verdictd/internal/delegate"
	"github.com/fyrsmithlabs/verdictd/internal/findings"
	"github.com/fyrsmithlabs/verdictd/internal/logging"
	"github.com/fyrsmithlabs/verdictd/internal/review"
	"github.com/fyrsmithlabs/verdictd/internal/trace"
	"github.com/fyrsmithlabs/verdictd/internal/workflow"
)

var (
	cfgPath     string
	jsonOutput  bool
	noTrace     bool
	rounds      int
	concurrency int
	taskTimeout time.Duration
	logLevel    string
)

var runCmd = &cobra.Command{
	Use:   "run [file...]",
	Short: "Review the given files and print a verdict",
	Long: `Run the full review workflow over one or more input files.

The transcript of the run is printed first, followed by the assessment.
The command exits non-zero when the recommendation is block.

Examples:
  # Review two files with defaults
  verdict run main.go handler.go

  # Machine-readable output
  verdict run --json main.go

  # Tighter budget
  verdict run --rounds 1 --task-timeout 10s main.go`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReview,
}

func init() {
	runCmd.Flags().StringVar(&cfgPath, "config", "", "path to a YAML config file")
	runCmd.Flags().BoolVar(&jsonOutput, "json", false, "emit the run report as JSON")
	runCmd.Flags().BoolVar(&noTrace, "no-trace", false, "suppress the run transcript")
	runCmd.Flags().IntVar(&rounds, "rounds", 0, "max additional investigation rounds (0 disables)")
	runCmd.Flags().IntVar(&concurrency, "concurrency", 0, "max concurrent investigation tasks")
	runCmd.Flags().DurationVar(&taskTimeout, "task-timeout", 0, "per-task timeout")
	runCmd.Flags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
}

// report is the top-level JSON output of a run.
type report struct {
	RunID      string             `json:"run_id"`
	Rounds     int                `json:"rounds"`
	Findings   []findings.Finding `json:"findings"`
	Assessment *assess.Assessment `json:"assessment"`
	Trace      *trace.RunLog      `json:"trace"`
}

func runReview(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	applyFlagOverrides(cmd, cfg)

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	pool := delegate.NewPool(logger)
	review.RegisterBuiltinInspectors(pool)

	reviewer := review.NewReviewer(review.Config{
		MaxRounds:   cfg.Workflow.MaxRounds(),
		Concurrency: cfg.Workflow.Concurrency,
		TaskTimeout: cfg.Workflow.TaskTimeout,
	}, pool, nil, logger)

	wc, err := reviewer.Run(cmd.Context(), args)
	if err != nil {
		return err
	}

	if err := writeReport(cmd.OutOrStdout(), wc); err != nil {
		return err
	}

	if wc.Assessment != nil && wc.Assessment.Recommendation == assess.RecommendBlock {
		logger.Sync() //nolint:errcheck
		os.Exit(1)
	}
	return nil
}

// applyFlagOverrides layers explicitly set flags over the loaded config.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("rounds") {
		cfg.Workflow.Rounds = rounds
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Workflow.Concurrency = concurrency
	}
	if cmd.Flags().Changed("task-timeout") {
		cfg.Workflow.TaskTimeout = taskTimeout
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
}

func newLogger(cfg *config.Config) (*logging.Logger, error) {
	lvl, err := logging.LevelFromString(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	logCfg := logging.NewDefaultConfig()
	logCfg.Level = lvl
	logCfg.Format = cfg.Logging.Format
	return logging.NewLogger(logCfg)
}

// writeReport prints either the JSON report or the human transcript plus
// assessment.
func writeReport(w io.Writer, wc *workflow.Context) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report{
			RunID:      wc.RunID,
			Rounds:     wc.Rounds,
			Findings:   wc.Findings.Sorted(),
			Assessment: wc.Assessment,
			Trace:      wc.Log,
		})
	}

	if !noTrace {
		fmt.Fprintln(w, trace.Render(wc.Log))
	}
	writeAssessment(w, wc.Assessment)
	return nil
}

func writeAssessment(w io.Writer, a *assess.Assessment) {
	if a == nil {
		fmt.Fprintln(w, "no assessment produced")
		return
	}
	fmt.Fprintf(w, "recommendation: %s\n", a.Recommendation)
	fmt.Fprintf(w, "overall severity: %s\n", a.OverallSeverity)
	fmt.Fprintf(w, "summary: %s\n", a.Summary)
	if a.Degraded {
		fmt.Fprintln(w, "degraded: the run did not complete a full evaluation")
	}
	for _, n := range a.Notes {
		fmt.Fprintf(w, "  [%s] %s\n", n.Severity, n.Action)
	}
}

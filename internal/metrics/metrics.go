// Package metrics provides Prometheus metrics for workflow runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsTotal counts workflow runs by outcome.
	// Labels: outcome (completed, degraded)
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "verdictd",
			Subsystem: "workflow",
			Name:      "runs_total",
			Help:      "Total number of workflow runs by outcome",
		},
		[]string{"outcome"},
	)

	// PhaseDuration tracks how long each phase takes.
	// Labels: phase (intake, plan_todos, delegate, ...)
	PhaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "verdictd",
			Subsystem: "workflow",
			Name:      "phase_duration_seconds",
			Help:      "Duration of workflow phase execution in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"phase"},
	)

	// TasksTotal counts investigation tasks by terminal status.
	// Labels: status (completed, failed, timed_out, cancelled)
	TasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "verdictd",
			Subsystem: "delegator",
			Name:      "tasks_total",
			Help:      "Total number of investigation tasks by terminal status",
		},
		[]string{"status"},
	)

	// FindingsMerged counts raw findings folded into the canonical set.
	FindingsMerged = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "verdictd",
			Subsystem: "aggregator",
			Name:      "findings_merged_total",
			Help:      "Total number of raw findings folded into the deduplicated set",
		},
	)

	// InvestigationRounds tracks delegate rounds per run.
	InvestigationRounds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "verdictd",
			Subsystem: "workflow",
			Name:      "investigation_rounds",
			Help:      "Number of delegation rounds executed per run",
			Buckets:   []float64{1, 2, 3, 4, 5},
		},
	)
)

// ObservePhase records the duration of one phase execution.
func ObservePhase(phase string, start time.Time) {
	PhaseDuration.WithLabelValues(phase).Observe(time.Since(start).Seconds())
}

// RecordRunOutcome records a finished run.
func RecordRunOutcome(degraded bool) {
	if degraded {
		RunsTotal.WithLabelValues("degraded").Inc()
	} else {
		RunsTotal.WithLabelValues("completed").Inc()
	}
}

// RecordTaskStatus records one terminal task status.
func RecordTaskStatus(status string) {
	TasksTotal.WithLabelValues(status).Inc()
}

// Package telemetry declares the Prometheus instrumentation for the
// reconciliation engine. Metrics are registered with promauto on the
// default registry and served via promhttp on the API's /metrics route.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PollCycles counts reconciliation cycles by outcome: "run" or
	// "skipped" (a tick that fired while the previous cycle was still
	// draining).
	PollCycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jobscout",
		Subsystem: "poller",
		Name:      "cycles_total",
		Help:      "Total reconciliation cycles, labelled by outcome.",
	}, []string{"outcome"})

	// PollCycleDuration observes how long a full cycle takes to drain.
	PollCycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "jobscout",
		Subsystem: "poller",
		Name:      "cycle_duration_seconds",
		Help:      "End-to-end reconciliation cycle time in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
	})

	// PendingTasks gauges how many tasks were eligible in the latest cycle.
	PendingTasks = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "jobscout",
		Subsystem: "poller",
		Name:      "pending_tasks",
		Help:      "Tasks eligible for reconciliation in the latest cycle.",
	})

	// SnapshotFetches counts snapshot fetches by result: "snapshot",
	// "no_data", or "error".
	SnapshotFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jobscout",
		Subsystem: "poller",
		Name:      "snapshot_fetches_total",
		Help:      "Total snapshot fetches, labelled by result.",
	}, []string{"result"})

	// TaskTransitions counts task status transitions applied by the
	// engine, labelled by the resulting status.
	TaskTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jobscout",
		Subsystem: "tasks",
		Name:      "transitions_total",
		Help:      "Total task status transitions, labelled by new status.",
	}, []string{"status"})

	// RegenerationOutcomes counts on-demand regeneration attempts by
	// outcome: "assessed", "timeout", or "rejected".
	RegenerationOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jobscout",
		Subsystem: "regen",
		Name:      "outcomes_total",
		Help:      "Total regeneration retry loops, labelled by outcome.",
	}, []string{"outcome"})

	// BackfilledTasks counts applied-flag backfills by source: "match"
	// (flag copied from the listing) or "default" (no match or error).
	BackfilledTasks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jobscout",
		Subsystem: "backfill",
		Name:      "tasks_total",
		Help:      "Total tasks backfilled with an applied flag, labelled by source.",
	}, []string{"source"})
)

// Metric label values used by the engine.
const (
	CycleOutcomeRun     = "run"
	CycleOutcomeSkipped = "skipped"

	FetchResultSnapshot = "snapshot"
	FetchResultNoData   = "no_data"
	FetchResultError    = "error"

	RegenOutcomeAssessed = "assessed"
	RegenOutcomeTimeout  = "timeout"
	RegenOutcomeRejected = "rejected"

	BackfillSourceMatch   = "match"
	BackfillSourceDefault = "default"
)

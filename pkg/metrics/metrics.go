// Package metrics provides Prometheus instrumentation for the pipeline
// stages.
//
// Each stage is a short-lived process, so nothing is scraped. Instead the
// registry is written once at exit in the node_exporter textfile format:
//
//	ecomsynth load --metrics-file /var/lib/node_exporter/ecomsynth.prom
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ─────────────────────────────────────────────
// Pipeline metrics
// ─────────────────────────────────────────────

var (
	// RowsGenerated counts rows produced by the generator, per table.
	RowsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ecomsynth",
			Name:      "rows_generated_total",
			Help:      "Rows produced by the generator.",
		},
		[]string{"table"},
	)

	// RowsLoaded counts rows inserted by the loader, per table.
	RowsLoaded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ecomsynth",
			Name:      "rows_loaded_total",
			Help:      "Rows inserted into the relational store.",
		},
		[]string{"table"},
	)

	// ReportRows is the row count of each report query on its last run.
	ReportRows = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "ecomsynth",
			Subsystem: "report",
			Name:      "rows",
			Help:      "Rows returned by each report query.",
		},
		[]string{"query"},
	)

	// StageDuration is the wall time of the last run of a stage.
	StageDuration = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "ecomsynth",
			Name:      "stage_duration_seconds",
			Help:      "Duration of the last run of a stage in seconds.",
		},
		[]string{"stage"}, // "generate" | "load" | "report" | "verify"
	)

	// StageLastSuccess is the unix time a stage last finished without error.
	StageLastSuccess = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "ecomsynth",
			Name:      "stage_last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run of a stage.",
		},
		[]string{"stage"},
	)
)

// ─────────────────────────────────────────────
// Registry
// ─────────────────────────────────────────────

// DefaultRegistry holds every pipeline metric.
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(
		RowsGenerated,
		RowsLoaded,
		ReportRows,
		StageDuration,
		StageLastSuccess,
	)
}

// Register adds a collector to the registry.
func Register(c prometheus.Collector) error {
	return DefaultRegistry.Register(c)
}

// MustRegister panics if registration fails.
func MustRegister(c ...prometheus.Collector) {
	DefaultRegistry.MustRegister(c...)
}

// ObserveStage records how long stage took since start and, when err is
// nil, stamps its last success time.
func ObserveStage(stage string, start time.Time, err error) {
	StageDuration.WithLabelValues(stage).Set(time.Since(start).Seconds())
	if err == nil {
		StageLastSuccess.WithLabelValues(stage).SetToCurrentTime()
	}
}

// WriteTextfile writes the registry to path atomically.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, DefaultRegistry)
}

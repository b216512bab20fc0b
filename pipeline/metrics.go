package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the counters of one run, registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	FilesDiscovered *prometheus.CounterVec
	FilesExtracted  *prometheus.CounterVec
	FileErrors      *prometheus.CounterVec
	Constructs      *prometheus.CounterVec
	Fallbacks       prometheus.Counter
	Triples         prometheus.Gauge
	StageDuration   *prometheus.HistogramVec
	StageFailures   *prometheus.CounterVec
}

// NewMetrics creates and registers the run metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		FilesDiscovered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "semcode_files_discovered_total",
				Help: "Total number of discovered files per classification confidence",
			},
			[]string{"confidence"},
		),
		FilesExtracted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "semcode_files_extracted_total",
				Help: "Total number of files written to the graph per language",
			},
			[]string{"language"},
		),
		FileErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "semcode_file_errors_total",
				Help: "Total number of per-file errors per failed operation",
			},
			[]string{"operation"},
		),
		Constructs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "semcode_constructs_total",
				Help: "Total number of extracted constructs per kind",
			},
			[]string{"kind"},
		),
		Fallbacks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "semcode_relation_fallbacks_total",
				Help: "Total number of relations written with the generic fallback property",
			},
		),
		Triples: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "semcode_graph_triples",
				Help: "Number of triples in the persisted graph",
			},
		),
		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "semcode_stage_duration_seconds",
				Help:    "Duration of pipeline stages in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		StageFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "semcode_stage_failures_total",
				Help: "Total number of failed pipeline stages",
			},
			[]string{"stage"},
		),
	}

	m.registry.MustRegister(
		m.FilesDiscovered,
		m.FilesExtracted,
		m.FileErrors,
		m.Constructs,
		m.Fallbacks,
		m.Triples,
		m.StageDuration,
		m.StageFailures,
	)
	return m
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

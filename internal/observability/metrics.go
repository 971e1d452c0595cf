// Package observability holds the Prometheus metrics, the tracer and
// the HTTP endpoint exposing both. Everything here is optional at
// runtime: a run with observability disabled never touches the network.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "codescope_scan_seconds",
		Help:    "Time spent discovering files for one run.",
		Buckets: prometheus.DefBuckets,
	})

	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "codescope_parsing_seconds",
		Help:    "Time spent parsing a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "codescope_analysis_seconds",
		Help:    "Time spent on high-level analysis tasks.",
		Buckets: prometheus.DefBuckets,
	}, []string{"task"})

	FilesAnalyzed = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "codescope_files_analyzed",
		Help: "Files included in the most recent run.",
	})

	ParseFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "codescope_parse_failures_total",
		Help: "Files skipped because parsing failed.",
	})

	GraphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "codescope_graph_nodes_total",
		Help: "Nodes in the dependency graph after the last run.",
	})

	GraphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "codescope_graph_edges_total",
		Help: "Edges in the dependency graph after the last run.",
	})

	CyclesDetected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "codescope_cycles_detected",
		Help: "Import cycles found by the last run.",
	})

	FindingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codescope_findings_total",
		Help: "Pattern findings emitted, by rule.",
	}, []string{"rule"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "codescope_watcher_events_total",
		Help: "File system events received by the watcher.",
	})

	RescansTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "codescope_rescans_total",
		Help: "Re-analyses triggered in watch mode.",
	})
)

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "callsight_parsing_seconds",
		Help:    "Time spent parsing a source file.",
		Buckets: prometheus.DefBuckets,
	})

	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "callsight_analysis_seconds",
		Help:    "Time spent on high-level analysis tasks.",
		Buckets: prometheus.DefBuckets,
	}, []string{"task"})

	FilesAnalyzed = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "callsight_files_analyzed",
		Help: "Number of files in the most recent analysis run.",
	})

	CallOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "callsight_call_outcomes_total",
		Help: "Call resolution outcomes, by status and unresolved reason.",
	}, []string{"status", "reason"})

	BindingsCollected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "callsight_bindings_collected_total",
		Help: "Total number of name bindings collected.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "callsight_watcher_events_total",
		Help: "Total number of file system change batches received.",
	})
)

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ScanDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "archmap_scan_seconds",
		Help:    "Time spent on a full scan of the source tree.",
		Buckets: prometheus.DefBuckets,
	})

	ScanPhaseSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "archmap_scan_phase_seconds",
		Help:    "Time spent in the individual phases of a scan.",
		Buckets: prometheus.DefBuckets,
	}, []string{"phase"})

	ScansTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "archmap_scans_total",
		Help: "Total number of completed scans.",
	})

	ScanFilesSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "archmap_scan_files_skipped_total",
		Help: "Total number of selected files dropped because they could not be read.",
	})

	GraphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "archmap_graph_nodes_total",
		Help: "Total number of nodes in the dependency graph.",
	})

	GraphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "archmap_graph_edges_total",
		Help: "Total number of edges in the dependency graph.",
	})

	GraphCircularDependencies = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "archmap_graph_circular_dependencies",
		Help: "Number of dependency cycles found by the last scan.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "archmap_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	WatcherRescansTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "archmap_watcher_rescans_total",
		Help: "Total number of rescans triggered by file system events.",
	})

	WebsocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "archmap_websocket_clients",
		Help: "Number of currently connected WebSocket clients.",
	})
)

package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storewise_runs_total",
			Help: "Total number of ask runs by terminal status.",
		},
		[]string{"status"},
	)
	runDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storewise_run_duration_seconds",
			Help:    "End-to-end ask run latency in seconds.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
		},
	)
	runAttempts = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storewise_run_sql_attempts",
			Help:    "SQL execution attempts consumed per run.",
			Buckets: []float64{1, 2, 3, 4, 5, 6},
		},
	)
	nodeVisitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storewise_node_visits_total",
			Help: "Total number of workflow node executions.",
		},
		[]string{"node"},
	)
	nodeDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storewise_node_duration_seconds",
			Help:    "Workflow node latency in seconds.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"node"},
	)
	gatewayRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storewise_gateway_requests_total",
			Help: "Total number of model gateway requests by task and outcome.",
		},
		[]string{"task", "outcome"},
	)
	gatewayLatencySeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storewise_gateway_latency_seconds",
			Help:    "Model gateway request latency in seconds.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30},
		},
		[]string{"task"},
	)
	cacheEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storewise_cache_events_total",
			Help: "Total number of gateway cache lookups by outcome.",
		},
		[]string{"event"},
	)
	datasetSyncTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storewise_dataset_sync_total",
			Help: "Total number of dataset sync passes by outcome.",
		},
		[]string{"outcome"},
	)
	datasetLastSyncTimestamp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "storewise_dataset_last_sync_timestamp_seconds",
			Help: "Unix timestamp of the last successful dataset sync.",
		},
	)
	exportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storewise_exports_total",
			Help: "Total number of result exports by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		runsTotal,
		runDurationSeconds,
		runAttempts,
		nodeVisitsTotal,
		nodeDurationSeconds,
		gatewayRequestsTotal,
		gatewayLatencySeconds,
		cacheEventsTotal,
		datasetSyncTotal,
		datasetLastSyncTimestamp,
		exportsTotal,
	)
}

func ObserveRun(status string, attempts int, elapsed time.Duration) {
	runsTotal.WithLabelValues(status).Inc()
	runDurationSeconds.Observe(elapsed.Seconds())
	if attempts > 0 {
		runAttempts.Observe(float64(attempts))
	}
}

func ObserveNode(node string, elapsed time.Duration) {
	nodeVisitsTotal.WithLabelValues(node).Inc()
	nodeDurationSeconds.WithLabelValues(node).Observe(elapsed.Seconds())
}

func ObserveGatewayRequest(task, outcome string, elapsed time.Duration) {
	gatewayRequestsTotal.WithLabelValues(task, outcome).Inc()
	gatewayLatencySeconds.WithLabelValues(task).Observe(elapsed.Seconds())
}

func IncrementCacheEvent(event string) {
	cacheEventsTotal.WithLabelValues(event).Inc()
}

func ObserveDatasetSync(outcome string, finishedAt time.Time) {
	datasetSyncTotal.WithLabelValues(outcome).Inc()
	if outcome == "success" {
		datasetLastSyncTimestamp.Set(float64(finishedAt.Unix()))
	}
}

func IncrementExport(outcome string) {
	exportsTotal.WithLabelValues(outcome).Inc()
}

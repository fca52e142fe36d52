// Package metrics exposes Prometheus instrumentation for a partition
// materializer: operation-cache and snapshot-cache occupancy, GC activity,
// and read/update/rehydration/handoff latency.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Operation cache
	OpsCacheKeys = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "materializer_ops_cache_keys",
			Help: "Number of keys currently tracked in the operation cache",
		},
	)

	OpsCacheEntrySize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "materializer_ops_cache_entry_len",
			Help:    "Live operation count per key at insert time",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250},
		},
	)

	OpsCacheResizeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "materializer_ops_cache_resize_total",
			Help: "Total number of per-key operation ring resizes by direction",
		},
		[]string{"direction"}, // "grow" | "shrink" | "none"
	)

	// Snapshot cache
	SnapshotCacheKeys = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "materializer_snapshot_cache_keys",
			Help: "Number of keys currently tracked in the snapshot cache",
		},
	)

	SnapshotCacheEntrySize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "materializer_snapshot_cache_entry_len",
			Help:    "Snapshot count per key at insert time",
			Buckets: []float64{1, 2, 5, 10},
		},
	)

	// GC
	GCRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "materializer_gc_runs_total",
			Help: "Total number of GC passes by trigger",
		},
		[]string{"trigger"}, // "write" | "read"
	)

	GCDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "materializer_gc_duration_seconds",
			Help:    "Time taken by a single GC pass",
			Buckets: prometheus.DefBuckets,
		},
	)

	GCOpsPruned = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "materializer_gc_ops_pruned",
			Help:    "Number of operations pruned per GC pass",
			Buckets: []float64{0, 1, 5, 10, 25, 50},
		},
	)

	// Read / update path
	ReadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "materializer_read_duration_seconds",
			Help:    "Time taken to materialize a read, by protocol",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"protocol"},
	)

	ReadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "materializer_reads_total",
			Help: "Total reads by outcome",
		},
		[]string{"outcome"}, // "snapshot_hit" | "log_fallback" | "empty_key" | "error"
	)

	UpdateDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "materializer_update_duration_seconds",
			Help:    "Time taken to insert an operation",
			Buckets: prometheus.DefBuckets,
		},
	)

	UpdatesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "materializer_updates_total",
			Help: "Total number of operations inserted",
		},
	)

	// Rehydration
	RehydrationOpsLoaded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "materializer_rehydration_ops_loaded_total",
			Help: "Total operations replayed from the log during rehydration",
		},
	)

	RehydrationReady = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "materializer_rehydration_ready",
			Help: "Whether the partition has finished rehydration (1) or not (0)",
		},
	)

	// Handoff
	HandoffKeysTransferred = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "materializer_handoff_keys_transferred_total",
			Help: "Total keys folded out during handoff",
		},
	)

	HandoffBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "materializer_handoff_bytes_total",
			Help: "Total bytes produced by the handoff encoder",
		},
	)
)

func init() {
	prometheus.MustRegister(
		OpsCacheKeys,
		OpsCacheEntrySize,
		OpsCacheResizeTotal,
		SnapshotCacheKeys,
		SnapshotCacheEntrySize,
		GCRunsTotal,
		GCDuration,
		GCOpsPruned,
		ReadDuration,
		ReadsTotal,
		UpdateDuration,
		UpdatesTotal,
		RehydrationOpsLoaded,
		RehydrationReady,
		HandoffKeysTransferred,
		HandoffBytes,
	)
}

// Handler returns the Prometheus HTTP handler for /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

/*
Package metrics provides Prometheus metrics collection and exposition for the
partition materializer.

Metrics are grouped by the component that produces them:

  - Operation cache: key count, per-key entry size distribution, resize events.
  - Snapshot cache: key count, per-key entry size distribution.
  - GC engine: run count by trigger (write-induced vs read-induced), duration,
    operations pruned per pass.
  - Materialize engine: read latency by protocol, read outcome counts, update
    latency and count.
  - Rehydration: operations replayed, readiness gauge.
  - Handoff: keys transferred, bytes encoded.

# Usage

	http.Handle("/metrics", metrics.Handler())

	timer := metrics.NewTimer()
	// ... do work ...
	timer.ObserveDurationVec(metrics.ReadDuration, string(protocol))

# See Also

  - pkg/materializer for the read/update path these metrics instrument
  - pkg/gc for GC trigger/duration metrics
  - pkg/rehydrate for rehydration metrics
*/
package metrics

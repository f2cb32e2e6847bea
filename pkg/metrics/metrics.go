// Package metrics exposes the Prometheus metrics of the aggregator.
// All metrics are defined in their respective packages (client, ratelimit,
// snapshot, cache, enrich) to keep those packages self-contained.
//
// This package provides the HTTP handler and a reference of all metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the aggregator.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer reads the metrics registered in Registry.
var Gatherer = prometheus.DefaultGatherer

// Handler serves the registered metrics in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - swapi_requests_total{endpoint, status} (Counter): Upstream HTTP attempts by resource kind and status
//   - swapi_request_duration_seconds{endpoint} (Histogram): Fetch duration, retries included
//   - swapi_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network)
//
// Retry Metrics (pkg/client):
//   - swapi_retries_total{error_class} (Counter): Retry attempts
//   - swapi_retry_backoff_seconds{error_class} (Histogram): Linear backoff waits
//   - swapi_retry_exhausted_total{error_class} (Counter): Fetches still rate limited after the last attempt
//
// Admission Metrics (pkg/ratelimit):
//   - swapi_admission_slots (Gauge): Configured pool size
//   - swapi_admission_in_flight (Gauge): Upstream calls holding a slot
//   - swapi_admission_wait_seconds (Histogram): Time spent waiting for a slot
//
// Snapshot Metrics (pkg/snapshot):
//   - swapi_snapshot_refreshes_total{result} (Counter): Refresh attempts ("success", "error")
//   - swapi_snapshot_refresh_duration_seconds (Histogram): Full listing walk duration
//   - swapi_snapshot_entities (Gauge): Entities in the published snapshot
//   - swapi_snapshot_stale_served_total (Counter): Previous snapshot served after a failed refresh
//
// Reference Cache Metrics (pkg/cache):
//   - swapi_reference_cache_hits_total{kind, layer} (Counter): Hits by kind (film, species) and store
//   - swapi_reference_cache_misses_total{kind} (Counter): Misses
//   - swapi_reference_cache_writes_total{kind} (Counter): Successful writes
//   - swapi_reference_cache_errors_total{operation} (Counter): Store errors
//
// Enrichment Metrics (pkg/enrich):
//   - swapi_degraded_fields_total{field, kind} (Counter): Fields replaced by the sentinel
//   - swapi_enriched_entities_total{result} (Counter): Entities by outcome (complete, partial, degraded)
//   - swapi_enrich_duration_seconds (Histogram): Batch enrichment duration
//
// Example Prometheus Queries:
//
//   # Film Title Cache Hit Rate
//   sum(rate(swapi_reference_cache_hits_total{kind="film"}[5m])) /
//   (sum(rate(swapi_reference_cache_hits_total{kind="film"}[5m])) + sum(rate(swapi_reference_cache_misses_total{kind="film"}[5m])))
//
//   # Upstream Rate Limiting
//   rate(swapi_retries_total{error_class="rate_limit"}[5m])
//
//   # Admission Saturation
//   swapi_admission_in_flight / swapi_admission_slots
//
//   # Degraded Field Rate
//   sum by (field) (rate(swapi_degraded_fields_total[5m]))
//
//   # P95 Upstream Latency
//   histogram_quantile(0.95, rate(swapi_request_duration_seconds_bucket[5m]))

// Package snapshot holds the process-wide list of primary entities.
//
// A Store publishes immutable Snapshot values through an atomic pointer.
// Refreshes walk the whole upstream listing and replace the published
// snapshot only after every page succeeded, so readers observe either the
// previous complete list or the new one. Concurrent refreshes are collapsed
// into a single upstream walk.
//
// Freshness is TTL gated. A TTL of zero loads once and treats the result as
// fresh for the life of the process. When a refresh fails and an earlier
// snapshot exists, the earlier one keeps being served; only the very first
// load failing is reported to callers as a LoadError.
//
// Metrics:
//   - swapi_snapshot_refreshes_total{result} - Refresh attempts ("success", "error")
//   - swapi_snapshot_refresh_duration_seconds - Full listing walk duration
//   - swapi_snapshot_entities - Entities in the published snapshot
//   - swapi_snapshot_stale_served_total - Requests served from a snapshot whose refresh failed
package snapshot

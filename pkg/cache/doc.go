// Package cache provides the reference caches: process-wide maps from a
// stable reference (a film URL, a species URL) to its resolved display
// string.
//
// Referenced catalog data is treated as immutable, so entries carry no TTL.
// Two storage layers exist:
//
//   - MemoryStore: in-process map, the default.
//   - RedisStore: a Redis hash per reference kind, for sharing resolved
//     values between proxy replicas.
//
// # Basic Usage
//
//	films := cache.NewReferenceCache(cache.KindFilm, cache.NewMemoryStore(), logger)
//
//	if title, ok := films.Get(ctx, filmURL); ok {
//		return title
//	}
//	films.Set(ctx, filmURL, "A New Hope")
//
// Store errors never surface to callers of ReferenceCache: a failing Redis
// degrades to a cache miss and is counted in swapi_reference_cache_errors_total.
//
// # Metrics
//
//   - swapi_reference_cache_hits_total{kind,layer} - Cache hits
//   - swapi_reference_cache_misses_total{kind} - Cache misses
//   - swapi_reference_cache_writes_total{kind} - Successful writes
//   - swapi_reference_cache_errors_total{operation} - Store operation errors
package cache

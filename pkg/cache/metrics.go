package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by reference kind and layer
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapi_reference_cache_hits_total",
			Help: "Total number of reference cache hits",
		},
		[]string{"kind", "layer"}, // "memory", "redis"
	)

	// CacheMisses tracks cache misses by reference kind
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapi_reference_cache_misses_total",
			Help: "Total number of reference cache misses",
		},
		[]string{"kind"},
	)

	// CacheWrites tracks successful writes by reference kind
	CacheWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapi_reference_cache_writes_total",
			Help: "Total number of reference cache writes",
		},
		[]string{"kind"},
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapi_reference_cache_errors_total",
			Help: "Total number of reference cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "count"
	)
)

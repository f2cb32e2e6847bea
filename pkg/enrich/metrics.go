package enrich

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// degradedFields counts fields replaced by the sentinel
	degradedFields = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapi_degraded_fields_total",
			Help: "Total number of enriched fields replaced by the sentinel",
		},
		[]string{"field", "kind"}, // field: detail, homeworld, species, films
	)

	// entitiesTotal counts enriched entities by outcome
	entitiesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapi_enriched_entities_total",
			Help: "Total number of enriched entities by outcome",
		},
		[]string{"result"}, // "complete", "partial", "degraded"
	)

	// enrichDuration tracks the duration of one Enrich call
	enrichDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "swapi_enrich_duration_seconds",
			Help:    "Duration of enriching one batch of entities",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		},
	)
)

// Package metrics holds the Prometheus collectors exported by marquee.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	OMDbRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marquee",
		Name:      "omdb_requests_total",
		Help:      "Total OMDb requests by call kind and result classification.",
	}, []string{"kind", "status"})

	OMDbRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "marquee",
		Name:      "omdb_request_duration_seconds",
		Help:      "OMDb request duration in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"kind"})

	ResolutionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marquee",
		Name:      "resolutions_total",
		Help:      "Query resolutions by outcome (direct, fallback, empty).",
	}, []string{"outcome"})

	FallbackAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marquee",
		Name:      "fallback_attempts_total",
		Help:      "Fallback strategy attempts for short ambiguous queries by strategy and result.",
	}, []string{"strategy", "result"})

	EnrichmentFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "marquee",
		Name:      "enrichment_failures_total",
		Help:      "Matches dropped because fetch-by-id failed.",
	})

	CacheHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marquee",
		Name:      "cache_hits_total",
		Help:      "Metadata cache hits by entry kind.",
	}, []string{"kind"})

	CacheMissesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marquee",
		Name:      "cache_misses_total",
		Help:      "Metadata cache misses by entry kind.",
	}, []string{"kind"})
)

// Register adds every marquee collector to reg.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		OMDbRequestsTotal,
		OMDbRequestDuration,
		ResolutionsTotal,
		FallbackAttemptsTotal,
		EnrichmentFailuresTotal,
		CacheHitsTotal,
		CacheMissesTotal,
	)
}

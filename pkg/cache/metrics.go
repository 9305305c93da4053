package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by layer (memory, redis)
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "character_cache_hits_total",
			Help: "Total number of characters query cache hits",
		},
		[]string{"layer"},
	)

	// CacheMisses tracks cache misses by layer
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "character_cache_misses_total",
			Help: "Total number of characters query cache misses",
		},
		[]string{"layer"},
	)

	// InFlightJoins tracks callers that attached to an in-flight request
	InFlightJoins = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "character_cache_inflight_joins_total",
			Help: "Total number of requests deduplicated onto an in-flight load",
		},
	)

	// Prefetches tracks prefetch outcomes
	Prefetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "character_cache_prefetches_total",
			Help: "Total number of prefetches by outcome",
		},
		[]string{"outcome"}, // "skipped", "ok", "error"
	)

	// Entries tracks the number of entries by status
	Entries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "character_cache_entries",
			Help: "Current number of characters query cache entries by status",
		},
		[]string{"status"},
	)

	// CacheErrors tracks store operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "character_cache_errors_total",
			Help: "Total number of cache store operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)
)

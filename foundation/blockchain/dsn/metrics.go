package dsn

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics
var (
	segmentsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "subspace_dsn_segments_published_total",
		Help: "Total number of archived segments published",
	})
	segmentsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "subspace_dsn_segments_skipped_total",
		Help: "Total number of repeated segments skipped",
	})
	piecesPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "subspace_dsn_pieces_published_total",
		Help: "Total number of pieces published",
	})
	publishDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "subspace_dsn_publish_duration_seconds",
		Help:    "Duration of segment publication",
		Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	})
	cacheHitCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "subspace_dsn_cache_hits_total",
		Help: "Total cache hits by type",
	}, []string{"type"})
	cacheMissCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "subspace_dsn_cache_misses_total",
		Help: "Total cache misses by type",
	}, []string{"type"})
)

package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// cacheHits counts cache hits per collection kind.
	cacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "configurator_catalog_cache_hits_total",
		Help: "Total number of catalog cache hits by collection",
	}, []string{"collection"})

	// cacheMisses counts cache misses per collection kind.
	cacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "configurator_catalog_cache_misses_total",
		Help: "Total number of catalog cache misses by collection",
	}, []string{"collection"})

	// loadDuration tracks source load times per collection kind.
	loadDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "configurator_catalog_load_duration_seconds",
		Help:    "Time taken to load catalog collections from the source",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"collection"})

	// loadErrors counts source load failures per collection kind.
	loadErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "configurator_catalog_load_errors_total",
		Help: "Total number of catalog load errors by collection",
	}, []string{"collection"})
)

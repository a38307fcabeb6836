package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// configChanges counts committed configuration changes by field.
	configChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "configurator_session_changes_total",
		Help: "Total number of committed configuration changes by field",
	}, []string{"field"})

	// recomputeDuration tracks the full rules->availability->sku->match pass.
	recomputeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "configurator_recompute_duration_seconds",
		Help:    "Time taken for one full configuration recompute pass",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	})

	// noMatch counts recomputes that found no catalog product.
	noMatch = promauto.NewCounter(prometheus.CounterOpts{
		Name: "configurator_no_match_total",
		Help: "Total number of recomputes with no matching catalog product",
	})

	// lineSwitches counts product-line switches.
	lineSwitches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "configurator_line_switches_total",
		Help: "Total number of product line switches",
	})

	// activeSessions tracks currently held sessions.
	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "configurator_sessions_active",
		Help: "Number of active configurator sessions",
	})

	// sweptSessions counts sessions dropped by the idle sweeper.
	sweptSessions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "configurator_sessions_swept_total",
		Help: "Total number of idle sessions dropped by the sweeper",
	})

	// staleRecomputes counts async completions discarded by the version guard.
	staleRecomputes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "configurator_stale_recomputes_total",
		Help: "Total number of recompute results discarded as superseded",
	})
)

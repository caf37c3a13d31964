// Package metrics exposes prometheus collectors for analysis runs. They
// are registered on the default registry and served at /metrics by the
// HTTP adapter.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talus_analysis_runs_total",
			Help: "Total analysis runs by outcome.",
		},
		[]string{"outcome"},
	)

	runFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talus_analysis_failures_total",
			Help: "Failed analysis runs by reason (validation, engine, timeout, other).",
		},
		[]string{"reason"},
	)

	runDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "talus_analysis_duration_seconds",
			Help:    "Wall time of successful engine calls.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)
)

func init() {
	prometheus.MustRegister(runsTotal, runFailures, runDuration)
}

// RunSucceeded records a successful run and its duration.
func RunSucceeded(elapsed time.Duration) {
	runsTotal.WithLabelValues("success").Inc()
	runDuration.Observe(elapsed.Seconds())
}

// RunFailed records a failed run with its reason.
func RunFailed(reason string) {
	runsTotal.WithLabelValues("failure").Inc()
	runFailures.WithLabelValues(reason).Inc()
}

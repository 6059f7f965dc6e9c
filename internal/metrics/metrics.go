// Package metrics exposes the orchestrator's Prometheus collectors. They
// register on the default registry at init and are served by the app's
// auxiliary HTTP server under /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vk/matrixci/internal/pipeline"
)

var (
	// CombinationsTotal counts finished combinations by terminal status.
	CombinationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matrixci_combinations_total",
		Help: "Finished matrix combinations by terminal status.",
	}, []string{"status"})

	// StepsTotal counts recorded step outcomes by status. Steps unreached
	// after a failure are not counted; they never produced an outcome.
	StepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matrixci_steps_total",
		Help: "Recorded step outcomes by status.",
	}, []string{"status"})

	// CombinationsInFlight tracks combinations currently being run.
	CombinationsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "matrixci_combinations_in_flight",
		Help: "Combinations currently executing their pipeline.",
	})

	// CombinationDuration observes per-combination wall-clock time.
	CombinationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "matrixci_combination_duration_seconds",
		Help:    "Wall-clock duration of one combination's pipeline run.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})
)

// ObserveResult records one finalized combination result.
func ObserveResult(res *pipeline.Result) {
	CombinationsTotal.WithLabelValues(res.Status.String()).Inc()
	CombinationDuration.Observe(res.Duration.Seconds())
	for _, step := range res.Steps {
		StepsTotal.WithLabelValues(step.Status.String()).Inc()
	}
}

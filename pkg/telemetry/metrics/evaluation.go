// Package metrics exposes Prometheus instrumentation for policy
// evaluation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// EvaluationMetrics tracks metrics related to compliance evaluation.
//
// Metrics:
//   - ganymede_evaluations_total: total evaluations by overall outcome
//   - ganymede_evaluation_duration_seconds: evaluation duration
//   - ganymede_leaf_outcomes_total: per-condition outcomes by display state
//   - ganymede_parse_errors_total: expressions rejected at parse time
type EvaluationMetrics struct {
	registry *prometheus.Registry

	evaluationsTotal   *prometheus.CounterVec
	evaluationDuration prometheus.Histogram
	leafOutcomesTotal  *prometheus.CounterVec
	parseErrorsTotal   prometheus.Counter
}

// NewEvaluationMetrics creates and registers evaluation metrics on a
// fresh registry.
func NewEvaluationMetrics(namespace string) *EvaluationMetrics {
	registry := prometheus.NewRegistry()

	em := &EvaluationMetrics{
		registry: registry,

		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "evaluations_total",
				Help:      "Total number of compliance evaluations",
			},
			[]string{"outcome"},
		),

		evaluationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "evaluation_duration_seconds",
				Help:      "Duration of a single subject evaluation in seconds",
				// In-memory tree walks are fast (well under a millisecond).
				Buckets: prometheus.ExponentialBuckets(0.000001, 2, 15),
			},
		),

		leafOutcomesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "leaf_outcomes_total",
				Help:      "Per-condition outcomes by display state",
			},
			[]string{"display_state"},
		),

		parseErrorsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "parse_errors_total",
				Help:      "Expressions rejected at parse time",
			},
		),
	}

	registry.MustRegister(
		em.evaluationsTotal,
		em.evaluationDuration,
		em.leafOutcomesTotal,
		em.parseErrorsTotal,
	)

	return em
}

// RecordEvaluation records one subject evaluation.
func (em *EvaluationMetrics) RecordEvaluation(compliant bool, duration time.Duration) {
	outcome := "non_compliant"
	if compliant {
		outcome = "compliant"
	}
	em.evaluationsTotal.WithLabelValues(outcome).Inc()
	em.evaluationDuration.Observe(duration.Seconds())
}

// RecordLeafOutcome records a single condition's display state.
func (em *EvaluationMetrics) RecordLeafOutcome(displayState string) {
	em.leafOutcomesTotal.WithLabelValues(displayState).Inc()
}

// RecordParseError records an expression rejected by the parser.
func (em *EvaluationMetrics) RecordParseError() {
	em.parseErrorsTotal.Inc()
}

// Handler returns an HTTP handler serving the metrics in Prometheus
// exposition format.
func (em *EvaluationMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(em.registry, promhttp.HandlerOpts{})
}

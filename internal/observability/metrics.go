// Package observability holds the prometheus instrumentation of the binding
// runtime. Metrics are optional: a nil *Metrics disables collection without
// any call-site branching.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics aggregates the runtime's collectors.
type Metrics struct {
	evaluations    *prometheus.CounterVec
	cacheHits      prometheus.Counter
	actionRuns     *prometheus.CounterVec
	actionDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bindery",
			Name:      "evaluations_total",
			Help:      "Expression evaluations by outcome.",
		}, []string{"outcome"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bindery",
			Name:      "evaluation_cache_hits_total",
			Help:      "Expression evaluations served from the value cache.",
		}),
		actionRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bindery",
			Name:      "action_runs_total",
			Help:      "Action executions by variant and outcome.",
		}, []string{"type", "outcome"}),
		actionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bindery",
			Name:      "action_duration_seconds",
			Help:      "Action execution latency by variant.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"type"}),
	}
	reg.MustRegister(m.evaluations, m.cacheHits, m.actionRuns, m.actionDuration)
	return m
}

func outcomeLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// ObserveEvaluation records one expression evaluation.
func (m *Metrics) ObserveEvaluation(ok bool) {
	if m == nil {
		return
	}
	m.evaluations.WithLabelValues(outcomeLabel(ok)).Inc()
}

// ObserveCacheHit records a value-cache hit.
func (m *Metrics) ObserveCacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

// ObserveActionRun records one action execution with its latency.
func (m *Metrics) ObserveActionRun(actionType string, ok bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.actionRuns.WithLabelValues(actionType, outcomeLabel(ok)).Inc()
	m.actionDuration.WithLabelValues(actionType).Observe(elapsed.Seconds())
}

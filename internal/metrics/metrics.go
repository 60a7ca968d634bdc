// Package metrics wires Prometheus counters and histograms for cycle runs,
// grounded on the Camunda-Workers example's internal/common/observability
// package.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every counter/histogram the pipeline records. It mirrors the
// CycleReport counters from spec §6 so operators can graph them without
// re-deriving them from CycleReport JSON.
type Metrics struct {
	ProfilesScored   prometheus.Counter
	PairsConsidered  prometheus.Counter
	PairsEmitted     prometheus.Counter
	PairsDroppedFair prometheus.Counter
	OracleFallbacks  prometheus.Counter
	OracleCacheHits  prometheus.Counter
	StageDuration    *prometheus.HistogramVec
}

// New registers and returns a fresh Metrics set against reg. Passing a
// dedicated registry (rather than the global default) keeps repeated cycle
// runs in tests from panicking on duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ProfilesScored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jv_profiles_scored_total",
			Help: "Number of profiles that entered the scoring stage.",
		}),
		PairsConsidered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jv_pairs_considered_total",
			Help: "Number of ordered candidate pairs considered by the scorer.",
		}),
		PairsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jv_pairs_emitted_total",
			Help: "Number of match suggestions persisted.",
		}),
		PairsDroppedFair: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jv_pairs_dropped_fairness_total",
			Help: "Number of Top-3 slots dropped by the popularity cap.",
		}),
		OracleFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jv_oracle_fallback_total",
			Help: "Number of times the semantic oracle fell back to Jaccard.",
		}),
		OracleCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jv_oracle_cache_hits_total",
			Help: "Number of oracle calls served from the memoization cache.",
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "jv_cycle_duration_seconds",
			Help:    "Wall-clock duration of each pipeline stage (resolve, assemble, score, fair).",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
	}
	reg.MustRegister(
		m.ProfilesScored,
		m.PairsConsidered,
		m.PairsEmitted,
		m.PairsDroppedFair,
		m.OracleFallbacks,
		m.OracleCacheHits,
		m.StageDuration,
	)
	return m
}

// ObserveStage records how long a named pipeline stage took.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil || m.StageDuration == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// NewNoOp returns a Metrics with a fresh, unregistered registry, safe for
// tests that don't care about export but still want non-nil counters.
func NewNoOp() *Metrics {
	return New(prometheus.NewRegistry())
}

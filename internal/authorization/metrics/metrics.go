package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the authorization module.
type Metrics struct {
	// Persisted transitions by kind and resulting status
	Transitions *prometheus.CounterVec

	// Optimistic-concurrency losers by kind
	StatusConflicts *prometheus.CounterVec

	// Adapter calls that ended in an unknown outcome, by kind
	TechnicalFailures *prometheus.CounterVec

	// Full update-call latency including adapter round trips
	UpdateLatency prometheus.Histogram
}

// New creates a Metrics instance with all authorization metrics registered.
func New() *Metrics {
	return &Metrics{
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "xs2gate_sca_transitions_total",
			Help: "Persisted SCA status transitions by kind and new status",
		}, []string{"kind", "status"}),

		StatusConflicts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "xs2gate_sca_status_conflicts_total",
			Help: "Transitions rejected because a concurrent update won",
		}, []string{"kind"}),

		TechnicalFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "xs2gate_spi_technical_failures_total",
			Help: "Adapter calls with an unknown outcome where no state was persisted",
		}, []string{"kind"}),

		UpdateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "xs2gate_sca_update_duration_seconds",
			Help:    "Duration of one update-authorisation call including adapter round trips",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// RecordTransition counts a persisted status transition.
func (m *Metrics) RecordTransition(kind, status string) {
	if m != nil {
		m.Transitions.WithLabelValues(kind, status).Inc()
	}
}

// RecordConflict counts a compare-and-set loss.
func (m *Metrics) RecordConflict(kind string) {
	if m != nil {
		m.StatusConflicts.WithLabelValues(kind).Inc()
	}
}

// RecordTechnicalFailure counts an unknown-outcome adapter call.
func (m *Metrics) RecordTechnicalFailure(kind string) {
	if m != nil {
		m.TechnicalFailures.WithLabelValues(kind).Inc()
	}
}

// ObserveUpdateLatency records the duration of one update call.
func (m *Metrics) ObserveUpdateLatency(d time.Duration) {
	if m != nil {
		m.UpdateLatency.Observe(d.Seconds())
	}
}

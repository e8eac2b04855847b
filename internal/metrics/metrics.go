// Package metrics holds the Prometheus collectors for rounding and summaries.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Rounding run outcomes used as the "result" label.
const (
	ResultApplied = "applied"
	ResultNoop    = "noop"
	ResultError   = "error"
)

// Metrics bundles the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	RoundingRuns     *prometheus.CounterVec
	AdjustedEntries  prometheus.Counter
	CappedDays       prometheus.Counter
	RoundingDuration prometheus.Histogram
	Summaries        prometheus.Counter
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RoundingRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tk",
			Name:      "rounding_runs_total",
			Help:      "End-of-day rounding runs by result.",
		}, []string{"result"}),
		AdjustedEntries: f.NewCounter(prometheus.CounterOpts{
			Namespace: "tk",
			Name:      "rounding_adjusted_entries_total",
			Help:      "Entries whose end time was shifted by rounding.",
		}),
		CappedDays: f.NewCounter(prometheus.CounterOpts{
			Namespace: "tk",
			Name:      "rounding_capped_days_total",
			Help:      "Rounded days whose bonus was reduced by the weekly goal.",
		}),
		RoundingDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tk",
			Name:      "rounding_duration_seconds",
			Help:      "Time spent applying rounding for one user and day.",
			Buckets:   prometheus.DefBuckets,
		}),
		Summaries: f.NewCounter(prometheus.CounterOpts{
			Namespace: "tk",
			Name:      "weekly_summaries_total",
			Help:      "Weekly summaries computed.",
		}),
	}
}

// ObserveRounding records one finished rounding run.
func (m *Metrics) ObserveRounding(result string, adjusted int, capped bool, seconds float64) {
	if m == nil {
		return
	}
	m.RoundingRuns.WithLabelValues(result).Inc()
	m.AdjustedEntries.Add(float64(adjusted))
	if capped {
		m.CappedDays.Inc()
	}
	m.RoundingDuration.Observe(seconds)
}

// ObserveSummary records one computed weekly summary.
func (m *Metrics) ObserveSummary() {
	if m == nil {
		return
	}
	m.Summaries.Inc()
}

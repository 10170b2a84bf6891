package research

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Probe outcomes used as the "outcome" label.
const (
	outcomeHit     = "hit"
	outcomeAbsent  = "absent"
	outcomeError   = "error"
	outcomeTimeout = "timeout"
)

// Metrics holds the Prometheus collectors for research requests.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	requests      *prometheus.CounterVec
	probes        *prometheus.CounterVec
	probeDuration *prometheus.HistogramVec
	confidence    prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
// Pass prometheus.NewRegistry() in tests to keep them isolated.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		// requestsTotal counts answered questions.
		// Labels: outcome (answered, escalated), stop_reason
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hoofy",
			Subsystem: "research",
			Name:      "requests_total",
			Help:      "Research questions answered, by outcome and stop reason",
		}, []string{"outcome", "stop_reason"}),

		// probesTotal counts provider invocations.
		// Labels: source, outcome (hit, absent, error, timeout)
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hoofy",
			Subsystem: "research",
			Name:      "probes_total",
			Help:      "Provider probes by source and outcome",
		}, []string{"source", "outcome"}),

		probeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hoofy",
			Subsystem: "research",
			Name:      "probe_duration_seconds",
			Help:      "Provider probe latency",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		}, []string{"source"}),

		confidence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hoofy",
			Subsystem: "research",
			Name:      "confidence",
			Help:      "Final aggregated confidence per question",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
		}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.probes, m.probeDuration, m.confidence)
	}
	return m
}

func (m *Metrics) observeProbe(source SourceKind, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.probes.WithLabelValues(string(source), outcome).Inc()
	m.probeDuration.WithLabelValues(string(source)).Observe(d.Seconds())
}

func (m *Metrics) observeResult(r *ResearchResult) {
	if m == nil {
		return
	}
	outcome := "answered"
	if r.NeedsWebSearch {
		outcome = "escalated"
	}
	m.requests.WithLabelValues(outcome, string(r.Metadata.StopReason)).Inc()
	m.confidence.Observe(r.Confidence)
}

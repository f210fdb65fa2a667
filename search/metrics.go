package search

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "searchflow"

// Request kinds and fetch outcomes used as label values.
const (
	KindFresh = "fresh"
	KindMore  = "more"

	OutcomeFresh = "fresh"
	OutcomeMore  = "more"
	OutcomeEnd   = "end"
	OutcomeError = "error"
)

// Metrics instruments an Orchestrator. A nil *Metrics records nothing.
type Metrics struct {
	requests      *prometheus.CounterVec
	outcomes      *prometheus.CounterVec
	discarded     prometheus.Counter
	cancellations prometheus.Counter
	fetchDuration *prometheus.HistogramVec
}

// NewMetrics registers the orchestrator collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "page_requests_total",
			Help:      "Page fetches issued, by kind",
		}, []string{"kind"}),
		outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "page_outcomes_total",
			Help:      "Page fetches folded into the view state, by outcome",
		}, []string{"outcome"}),
		discarded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "stale_results_total",
			Help:      "Fetch results dropped because their search was superseded",
		}),
		cancellations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "cancellations_total",
			Help:      "Search sessions cancelled by a phrase change",
		}),
		fetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "fetch_duration_seconds",
			Help:      "Latency of page fetches",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"kind"}),
	}
}

func (m *Metrics) request(kind string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(kind).Inc()
}

func (m *Metrics) outcome(outcome string, kind string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(outcome).Inc()
	m.fetchDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

func (m *Metrics) stale() {
	if m == nil {
		return
	}
	m.discarded.Inc()
}

func (m *Metrics) cancelled() {
	if m == nil {
		return
	}
	m.cancellations.Inc()
}

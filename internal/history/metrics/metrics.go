package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Search outcomes.
const (
	OutcomeOK         = "ok"
	OutcomeEmpty      = "empty"
	OutcomeDegraded   = "degraded"
	OutcomeSuperseded = "superseded"
	OutcomeInvalid    = "invalid"
	OutcomeError      = "error"
)

// Metrics provides observability for the history module.
type Metrics struct {
	// Searches by outcome
	Searches *prometheus.CounterVec

	// Selections by candidate kind
	Selections *prometheus.CounterVec

	// Backend fetch latency and failures by collection
	FetchDuration *prometheus.HistogramVec
	FetchFailures *prometheus.CounterVec

	// Candidates surfaced per search, after deduplication
	Candidates prometheus.Histogram

	// Raw matches per rule, before deduplication
	MatchedRule *prometheus.CounterVec
}

// New registers the history metrics on the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the history metrics on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Searches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "history_search_total",
			Help: "Total history searches by outcome",
		}, []string{"outcome"}),

		Selections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "history_select_total",
			Help: "Total candidate selections by candidate kind",
		}, []string{"kind"}),

		FetchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "history_fetch_duration_seconds",
			Help:    "Duration of backend collection fetches",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"collection"}), // collection: "clients", "orders"

		FetchFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "history_fetch_failures_total",
			Help: "Total failed backend collection fetches",
		}, []string{"collection"}),

		Candidates: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "history_candidates",
			Help:    "Number of deduplicated candidates per search",
			Buckets: []float64{0, 1, 2, 3, 5, 10, 25, 50},
		}),

		MatchedRule: f.NewCounterVec(prometheus.CounterOpts{
			Name: "history_matched_rule_total",
			Help: "Records matched per rule before deduplication",
		}, []string{"rule"}),
	}
}

func (m *Metrics) IncrementSearch(outcome string) {
	if m != nil {
		m.Searches.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncrementSelection(kind string) {
	if m != nil {
		m.Selections.WithLabelValues(kind).Inc()
	}
}

// ObserveFetch records one collection fetch and whether it failed.
func (m *Metrics) ObserveFetch(collection string, d time.Duration, failed bool) {
	if m == nil {
		return
	}
	m.FetchDuration.WithLabelValues(collection).Observe(d.Seconds())
	if failed {
		m.FetchFailures.WithLabelValues(collection).Inc()
	}
}

func (m *Metrics) ObserveCandidates(n int) {
	if m != nil {
		m.Candidates.Observe(float64(n))
	}
}

// AddRuleHits adds per-rule match counts.
func (m *Metrics) AddRuleHits(hits map[string]int) {
	if m == nil {
		return
	}
	for rule, n := range hits {
		m.MatchedRule.WithLabelValues(rule).Add(float64(n))
	}
}

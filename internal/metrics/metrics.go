// Package metrics exposes Prometheus counters for the research pipeline.
// All recording methods are safe to call on a nil *Metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "prospect_research"

// Fetch outcomes.
const (
	FetchOK      = "ok"
	FetchStatus  = "status"
	FetchError   = "error"
	FetchBlocked = "blocked"
)

// Metrics holds the pipeline counters and the registry they live in.
type Metrics struct {
	registry *prometheus.Registry

	FetchesTotal       *prometheus.CounterVec
	FetchRetriesTotal  prometheus.Counter
	TLSDowngradesTotal prometheus.Counter
	SearchHitsTotal    *prometheus.CounterVec
	SelectorFailOpen   prometheus.Counter
	ExtractionsTotal   *prometheus.CounterVec
	LookupsTotal       *prometheus.CounterVec
	LLMTokensTotal     *prometheus.CounterVec
}

// New creates a Metrics bound to a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{registry: reg}

	m.FetchesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "fetch",
			Name:      "requests_total",
			Help:      "Page fetches by outcome",
		},
		[]string{"outcome"},
	)
	m.FetchRetriesTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "fetch",
		Name:      "retries_total",
		Help:      "Backoff sleeps taken after a retryable failure",
	})
	m.TLSDowngradesTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "fetch",
		Name:      "tls_downgrades_total",
		Help:      "Requests retried with certificate validation disabled",
	})
	m.SearchHitsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "search",
			Name:      "hits_total",
			Help:      "Search hits returned by provider",
		},
		[]string{"provider"},
	)
	m.SelectorFailOpen = factory.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "relevance",
		Name:      "fail_open_total",
		Help:      "Relevance selections that kept every candidate after a model failure",
	})
	m.ExtractionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "extract",
			Name:      "results_total",
			Help:      "Extraction results by target type and parse path",
		},
		[]string{"target_type", "source"},
	)
	m.LookupsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "pipeline",
			Name:      "lookups_total",
			Help:      "Entity lookups by target type and outcome",
		},
		[]string{"target_type", "outcome"},
	)
	m.LLMTokensTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "llm",
			Name:      "tokens_total",
			Help:      "Model tokens consumed by direction",
		},
		[]string{"direction"},
	)

	return m
}

// Registry returns the registry backing m, or nil for a nil m.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveFetch(outcome string) {
	if m == nil {
		return
	}
	m.FetchesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncFetchRetry() {
	if m == nil {
		return
	}
	m.FetchRetriesTotal.Inc()
}

func (m *Metrics) IncTLSDowngrade() {
	if m == nil {
		return
	}
	m.TLSDowngradesTotal.Inc()
}

func (m *Metrics) AddSearchHits(provider string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.SearchHitsTotal.WithLabelValues(provider).Add(float64(n))
}

func (m *Metrics) IncSelectorFailOpen() {
	if m == nil {
		return
	}
	m.SelectorFailOpen.Inc()
}

func (m *Metrics) ObserveExtraction(targetType, source string) {
	if m == nil {
		return
	}
	if source == "" {
		source = "none"
	}
	m.ExtractionsTotal.WithLabelValues(targetType, source).Inc()
}

func (m *Metrics) ObserveLookup(targetType, outcome string) {
	if m == nil {
		return
	}
	m.LookupsTotal.WithLabelValues(targetType, outcome).Inc()
}

func (m *Metrics) AddTokens(input, output int64) {
	if m == nil {
		return
	}
	if input > 0 {
		m.LLMTokensTotal.WithLabelValues("input").Add(float64(input))
	}
	if output > 0 {
		m.LLMTokensTotal.WithLabelValues("output").Add(float64(output))
	}
}

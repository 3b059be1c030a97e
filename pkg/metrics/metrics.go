// Package metrics defines the Prometheus metric collectors used by the speller
// service and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	LookupsTotal         *prometheus.CounterVec
	LookupLatency        *prometheus.HistogramVec
	MatchDistance        prometheus.Histogram
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
	DictionaryWords      prometheus.Gauge
	DictionaryPostings   prometheus.Gauge
	DictionaryLoadsTotal *prometheus.CounterVec
	WordsAddedTotal      prometheus.Counter
	RejectedInputTotal   *prometheus.CounterVec
	EventsPublishedTotal *prometheus.CounterVec
	CircuitBreakerState  *prometheus.GaugeVec
}

// New creates all collectors and registers them with reg. A nil reg means
// the global default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		LookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "speller_lookups_total",
				Help: "Dictionary lookups by operation (match, check, contains) and result (found, not_found, error).",
			},
			[]string{"op", "result"},
		),
		LookupLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "speller_lookup_latency_seconds",
				Help:    "Dictionary lookup latency in seconds.",
				Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
			},
			[]string{"op"},
		),
		MatchDistance: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "speller_match_distance",
				Help:    "Edit distance of returned best matches.",
				Buckets: []float64{0, 1, 2},
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of match cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of match cache misses.",
			},
		),
		DictionaryWords: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "speller_dictionary_words",
				Help: "Number of distinct words in the dictionary.",
			},
		),
		DictionaryPostings: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "speller_dictionary_postings",
				Help: "Number of deletion-variant postings in the index.",
			},
		),
		DictionaryLoadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "speller_dictionary_loads_total",
				Help: "Dictionary bulk loads by status.",
			},
			[]string{"status"},
		),
		WordsAddedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "speller_words_added_total",
				Help: "Words added after the initial load.",
			},
		),
		RejectedInputTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "speller_rejected_input_total",
				Help: "Requests rejected by validation, by reason.",
			},
			[]string{"reason"},
		),
		EventsPublishedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "speller_events_published_total",
				Help: "Analytics events handed to Kafka by status.",
			},
			[]string{"status"},
		),
		CircuitBreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open).",
			},
			[]string{"name"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.LookupsTotal,
		m.LookupLatency,
		m.MatchDistance,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.DictionaryWords,
		m.DictionaryPostings,
		m.DictionaryLoadsTotal,
		m.WordsAddedTotal,
		m.RejectedInputTotal,
		m.EventsPublishedTotal,
		m.CircuitBreakerState,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler for the default
// gatherer.
func Handler() http.Handler {
	return promhttp.Handler()
}

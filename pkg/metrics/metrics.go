// Package metrics defines the Prometheus collectors used by the indexer and
// the search service and exposes an HTTP handler for scraping. Every
// recording method is safe to call on a nil *Metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Document outcomes recorded by DocsProcessedTotal.
const (
	OutcomeIndexed   = "indexed"
	OutcomeDuplicate = "duplicate"
	OutcomeSkipped   = "skipped"
)

// Metrics holds all Prometheus collectors.
type Metrics struct {
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPRequestsInFlight  prometheus.Gauge
	DocsProcessedTotal    *prometheus.CounterVec
	IndexFlushesTotal     *prometheus.CounterVec
	PartialIndexDocs      prometheus.Histogram
	MergeDuration         prometheus.Histogram
	FinalIndexTerms       prometheus.Gauge
	SearchQueriesTotal    *prometheus.CounterVec
	SearchLatency         *prometheus.HistogramVec
	SearchResultsCount    prometheus.Histogram
	SpellCorrectionsTotal prometheus.Counter
	CacheHitsTotal        prometheus.Counter
	CacheMissesTotal      prometheus.Counter
}

// New creates all collectors and registers them with reg. When reg is nil the
// default Prometheus registerer is used.
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
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		DocsProcessedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docs_processed_total",
				Help: "Corpus records processed by outcome (indexed, duplicate, skipped).",
			},
			[]string{"outcome"},
		),
		IndexFlushesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "index_flushes_total",
				Help: "Total partial index flush operations by status.",
			},
			[]string{"status"},
		),
		PartialIndexDocs: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "partial_index_docs",
				Help:    "Documents contained in each flushed partial index.",
				Buckets: []float64{1, 10, 100, 250, 500, 1000, 5000},
			},
		),
		MergeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "merge_duration_seconds",
				Help:    "Wall time of the partial index merge phase.",
				Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
			},
		),
		FinalIndexTerms: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "final_index_terms",
				Help: "Number of distinct terms in the loaded or last written final index.",
			},
		),
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_queries_total",
				Help: "Total search queries by result type (hit, zero_result, error).",
			},
			[]string{"result_type"},
		),
		SearchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "search_latency_seconds",
				Help:    "Search query latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"cache_status"},
		),
		SearchResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "search_results_count",
				Help:    "Number of results returned per search query.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
			},
		),
		SpellCorrectionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "spell_corrections_total",
				Help: "Queries whose terms were rewritten by spell correction.",
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of cache misses.",
			},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.DocsProcessedTotal,
		m.IndexFlushesTotal,
		m.PartialIndexDocs,
		m.MergeDuration,
		m.FinalIndexTerms,
		m.SearchQueriesTotal,
		m.SearchLatency,
		m.SearchResultsCount,
		m.SpellCorrectionsTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
	)

	return m
}

// DocProcessed counts one corpus record with the given outcome.
func (m *Metrics) DocProcessed(outcome string) {
	if m == nil {
		return
	}
	m.DocsProcessedTotal.WithLabelValues(outcome).Inc()
}

// Flushed records a partial index flush of docs documents.
func (m *Metrics) Flushed(docs int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.IndexFlushesTotal.WithLabelValues("error").Inc()
		return
	}
	m.IndexFlushesTotal.WithLabelValues("ok").Inc()
	m.PartialIndexDocs.Observe(float64(docs))
}

// Merged records the merge phase duration and the resulting vocabulary size.
func (m *Metrics) Merged(d time.Duration, terms int) {
	if m == nil {
		return
	}
	m.MergeDuration.Observe(d.Seconds())
	m.FinalIndexTerms.Set(float64(terms))
}

// IndexLoaded records the vocabulary size of a freshly loaded final index.
func (m *Metrics) IndexLoaded(terms int) {
	if m == nil {
		return
	}
	m.FinalIndexTerms.Set(float64(terms))
}

// Searched records one executed query.
func (m *Metrics) Searched(latency time.Duration, results int, corrected, cacheHit bool) {
	if m == nil {
		return
	}
	cacheStatus := "miss"
	if cacheHit {
		cacheStatus = "hit"
	}
	resultType := "hit"
	if results == 0 {
		resultType = "zero_result"
	}
	m.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	m.SearchLatency.WithLabelValues(cacheStatus).Observe(latency.Seconds())
	m.SearchResultsCount.Observe(float64(results))
	if corrected {
		m.SpellCorrectionsTotal.Inc()
	}
}

// SearchFailed counts a query that ended in an error.
func (m *Metrics) SearchFailed() {
	if m == nil {
		return
	}
	m.SearchQueriesTotal.WithLabelValues("error").Inc()
}

// CacheLookup counts a cache hit or miss.
func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.Inc()
	} else {
		m.CacheMissesTotal.Inc()
	}
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

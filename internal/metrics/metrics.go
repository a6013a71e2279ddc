// Package metrics defines the Prometheus collectors of the language server
// and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all collectors, registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	IndexOperationsTotal *prometheus.CounterVec
	EditsTotal           *prometheus.CounterVec
	CompletionsTotal     prometheus.Counter
	CompletionLatency    prometheus.Histogram
	CompletionCandidates prometheus.Histogram
	TrackedDocuments     prometheus.Gauge
	WordListLoadsTotal   *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		IndexOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wordcomplete_index_operations_total",
				Help: "Index store operations by kind (index, reindex, remove) and status.",
			},
			[]string{"op", "status"},
		),
		EditsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wordcomplete_edits_total",
				Help: "Edit notifications by how they were applied (patched, reindexed, skipped).",
			},
			[]string{"result"},
		),
		CompletionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "wordcomplete_completions_total",
				Help: "Total completion requests served.",
			},
		),
		CompletionLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "wordcomplete_completion_latency_seconds",
				Help:    "Completion request latency in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
			},
		),
		CompletionCandidates: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "wordcomplete_completion_candidates",
				Help:    "Number of candidates returned per completion request.",
				Buckets: []float64{0, 10, 50, 100, 500, 1000, 5000, 10000},
			},
		),
		TrackedDocuments: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "wordcomplete_tracked_documents",
				Help: "Number of documents with a token inventory.",
			},
		),
		WordListLoadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wordcomplete_wordlist_loads_total",
				Help: "Word-list file loads by status.",
			},
			[]string{"status"},
		),
	}

	m.registry.MustRegister(
		m.IndexOperationsTotal,
		m.EditsTotal,
		m.CompletionsTotal,
		m.CompletionLatency,
		m.CompletionCandidates,
		m.TrackedDocuments,
		m.WordListLoadsTotal,
	)

	return m
}

// ObserveIndex counts one store operation.
func (m *Metrics) ObserveIndex(op string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}

	m.IndexOperationsTotal.WithLabelValues(op, status).Inc()
}

// ObserveCompletion records one served completion request.
func (m *Metrics) ObserveCompletion(started time.Time, candidates int) {
	m.CompletionsTotal.Inc()
	m.CompletionLatency.Observe(time.Since(started).Seconds())
	m.CompletionCandidates.Observe(float64(candidates))
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus scrape HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics records provider fetch observability with Prometheus
// collectors. A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors for the annotation engine.
type Metrics struct {
	registry *prometheus.Registry

	// FetchLatency is the duration of one provider Fetch call by provider.
	FetchLatency *prometheus.HistogramVec

	// FetchResults counts per-identifier results by provider and status.
	FetchResults *prometheus.CounterVec

	// AnnotateLatency is the duration of one whole aggregation call.
	AnnotateLatency prometheus.Histogram

	// Records counts merged records produced.
	Records prometheus.Counter
}

// New creates the collectors on a fresh registry, so several engines in
// one process (tests included) do not collide.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		FetchLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gene_annotator_provider_fetch_duration_seconds",
			Help:    "Duration of provider fetch calls by provider",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"provider"}),

		FetchResults: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gene_annotator_provider_results_total",
			Help: "Per-identifier provider results by provider and status",
		}, []string{"provider", "status"}),

		AnnotateLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "gene_annotator_annotate_duration_seconds",
			Help:    "Duration of full aggregation calls",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		}),

		Records: f.NewCounter(prometheus.CounterOpts{
			Name: "gene_annotator_records_total",
			Help: "Total annotation records produced",
		}),
	}
}

// ObserveFetch records one Fetch call's duration.
func (m *Metrics) ObserveFetch(provider string, d time.Duration) {
	if m != nil {
		m.FetchLatency.WithLabelValues(provider).Observe(d.Seconds())
	}
}

// IncrementResult counts one per-identifier result.
func (m *Metrics) IncrementResult(provider, status string) {
	if m != nil {
		m.FetchResults.WithLabelValues(provider, status).Inc()
	}
}

// ObserveAnnotate records one aggregation call's duration and record count.
func (m *Metrics) ObserveAnnotate(d time.Duration, records int) {
	if m != nil {
		m.AnnotateLatency.Observe(d.Seconds())
		m.Records.Add(float64(records))
	}
}

// Gatherer exposes the registry, e.g. for an HTTP handler or tests.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.registry
}

// WriteTextfile writes the current values in the Prometheus text format to
// path, for node_exporter's textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Gatherer())
}

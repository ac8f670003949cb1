// Package metrics holds the Prometheus instrumentation of the enrichment
// engine. A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "metadata_enricher"

// Metrics holds the Prometheus collectors for enrichment and fetch operations.
type Metrics struct {
	// Enrichment
	enrichmentsTotal   *prometheus.CounterVec // By outcome
	enrichmentDuration prometheus.Histogram
	stageFailures      *prometheus.CounterVec // By stage and error kind
	mergeConflicts     prometheus.Counter
	multipleCandidates prometheus.Counter
	diagnostics        *prometheus.CounterVec // By code

	// Fetch
	fetchesTotal  *prometheus.CounterVec   // By kind and outcome
	fetchDuration *prometheus.HistogramVec // By kind
	responseSize  *prometheus.HistogramVec // By kind
}

// New creates the collectors and registers them with reg. A nil reg creates
// unregistered collectors, which is convenient in tests.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		enrichmentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "enrich",
			Name:      "requests_total",
			Help:      "Total number of enrichment requests",
		}, []string{"outcome"}), // outcome: success, failure

		enrichmentDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "enrich",
			Name:      "duration_seconds",
			Help:      "End-to-end enrichment duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),

		stageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "enrich",
			Name:      "stage_failures_total",
			Help:      "Total number of aborted enrichments by failing stage",
		}, []string{"stage", "kind"}),

		mergeConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "enrich",
			Name:      "merge_conflicts_total",
			Help:      "Total number of local fields kept despite a differing remote value",
		}),

		multipleCandidates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "enrich",
			Name:      "multiple_candidates_total",
			Help:      "Total number of lookups that returned more than one candidate",
		}),

		diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "enrich",
			Name:      "diagnostics_total",
			Help:      "Total number of mapping diagnostics by code",
		}, []string{"code"}),

		fetchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "requests_total",
			Help:      "Total number of remote fetches",
		}, []string{"kind", "outcome"}), // kind: json, bytes

		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "duration_seconds",
			Help:      "Remote fetch duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5},
		}, []string{"kind"}),

		responseSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "response_size_bytes",
			Help:      "Distribution of response body sizes in bytes",
			Buckets:   prometheus.ExponentialBuckets(256, 4, 8), // 256B to ~4MB
		}, []string{"kind"}),
	}

	if reg == nil {
		return m, nil
	}

	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.enrichmentsTotal,
		m.enrichmentDuration,
		m.stageFailures,
		m.mergeConflicts,
		m.multipleCandidates,
		m.diagnostics,
		m.fetchesTotal,
		m.fetchDuration,
		m.responseSize,
	}
}

// RecordEnrichment records a finished enrichment.
func (m *Metrics) RecordEnrichment(success bool, duration time.Duration) {
	if m == nil {
		return
	}

	m.enrichmentsTotal.WithLabelValues(outcome(success)).Inc()
	m.enrichmentDuration.Observe(duration.Seconds())
}

// RecordStageFailure records an enrichment aborted in stage with an error of kind.
func (m *Metrics) RecordStageFailure(stage, kind string) {
	if m == nil {
		return
	}

	m.stageFailures.WithLabelValues(stage, kind).Inc()
}

// RecordMerge records the merge conflicts and candidate multiplicity of one enrichment.
func (m *Metrics) RecordMerge(conflicts int, multipleCandidates bool) {
	if m == nil {
		return
	}

	if conflicts > 0 {
		m.mergeConflicts.Add(float64(conflicts))
	}

	if multipleCandidates {
		m.multipleCandidates.Inc()
	}
}

// RecordDiagnostic counts a diagnostic by code.
func (m *Metrics) RecordDiagnostic(code string) {
	if m == nil {
		return
	}

	m.diagnostics.WithLabelValues(code).Inc()
}

// RecordFetch records a remote fetch of kind ("json" or "bytes").
func (m *Metrics) RecordFetch(kind string, success bool, duration time.Duration, size int) {
	if m == nil {
		return
	}

	m.fetchesTotal.WithLabelValues(kind, outcome(success)).Inc()
	m.fetchDuration.WithLabelValues(kind).Observe(duration.Seconds())

	if size > 0 {
		m.responseSize.WithLabelValues(kind).Observe(float64(size))
	}
}

func outcome(success bool) string {
	if success {
		return "success"
	}

	return "failure"
}

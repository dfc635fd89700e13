// Package metrics exposes Prometheus collectors for parsing and creditor resolution.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for report parsing. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	// Full ParseText latency
	ParseLatency prometheus.Histogram

	// Parsed reports by detected format
	ReportsParsed *prometheus.CounterVec

	// Recovered section extractor failures by section
	SectionErrors *prometheus.CounterVec

	// Creditor resolutions by match type ("none" for the no-match sentinel)
	CreditorMatches *prometheus.CounterVec

	// Batch documents by outcome: "ok", "timeout", "canceled"
	BatchDocuments *prometheus.CounterVec
}

// New creates a Metrics instance with all collectors registered on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ParseLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "creditai_parse_duration_seconds",
			Help:    "Duration of credit report parsing",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),

		ReportsParsed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "creditai_reports_parsed_total",
			Help: "Total credit reports parsed by detected format",
		}, []string{"format"}),

		SectionErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "creditai_section_errors_total",
			Help: "Total recovered section extraction failures by section",
		}, []string{"section"}),

		CreditorMatches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "creditai_creditor_matches_total",
			Help: "Total creditor name resolutions by match type",
		}, []string{"match_type"}),

		BatchDocuments: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "creditai_batch_documents_total",
			Help: "Total batch documents processed by outcome",
		}, []string{"status"}),
	}
}

// ObserveParse records one parsed report.
func (m *Metrics) ObserveParse(format string, d time.Duration) {
	if m != nil {
		m.ParseLatency.Observe(d.Seconds())
		m.ReportsParsed.WithLabelValues(format).Inc()
	}
}

// IncrementSectionError records a recovered section failure.
func (m *Metrics) IncrementSectionError(section string) {
	if m != nil {
		m.SectionErrors.WithLabelValues(section).Inc()
	}
}

// IncrementCreditorMatch records a creditor resolution.
func (m *Metrics) IncrementCreditorMatch(matchType string) {
	if m != nil {
		m.CreditorMatches.WithLabelValues(matchType).Inc()
	}
}

// IncrementBatchDocument records a batch document outcome.
func (m *Metrics) IncrementBatchDocument(status string) {
	if m != nil {
		m.BatchDocuments.WithLabelValues(status).Inc()
	}
}

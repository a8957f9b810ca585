// Package metrics defines the Prometheus instruments exposed on /metrics.
package metrics

import (
	"context"
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/trace"
)

// BusinessMetrics tracks analysis and import outcomes.
//
// Metrics:
//   - <ns>_analyses_total: analyses run, by status
//   - <ns>_analysis_duration_seconds: analysis latency, by status
//   - <ns>_imports_total: review imports processed, by status
//   - <ns>_import_duration_seconds: end-to-end import latency, by status
//   - <ns>_keywords_extracted_total: keywords produced across all analyses
//   - <ns>_charts_rendered_total: charts rendered, by chart type
type BusinessMetrics struct {
	AnalysesTotal    *prometheus.CounterVec
	AnalysisDuration *prometheus.HistogramVec
	ImportsTotal     *prometheus.CounterVec
	ImportDuration   *prometheus.HistogramVec

	KeywordsExtractedTotal prometheus.Counter
	ChartsRenderedTotal    *prometheus.CounterVec
}

// NewBusinessMetrics registers the business instruments under the given
// namespace on the default registerer.
func NewBusinessMetrics(namespace string) *BusinessMetrics {
	return &BusinessMetrics{
		AnalysesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Total number of content analyses by status",
		}, []string{"status"}),
		AnalysisDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Duration of content analyses in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		ImportsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imports_total",
			Help:      "Total number of review imports by status",
		}, []string{"status"}),
		ImportDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "import_duration_seconds",
			Help:      "End-to-end duration of review imports in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"status"}),
		KeywordsExtractedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keywords_extracted_total",
			Help:      "Total number of keywords extracted from analyzed content",
		}),
		ChartsRenderedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "charts_rendered_total",
			Help:      "Total number of charts rendered by chart type",
		}, []string{"chart"}),
	}
}

// ObserveDurationWithExemplar records seconds on vec and attaches the
// current trace ID as an exemplar when ctx carries a valid span, so
// latency outliers link back to their traces.
func (m *BusinessMetrics) ObserveDurationWithExemplar(ctx context.Context, vec *prometheus.HistogramVec, seconds float64, status string) {
	observer := vec.WithLabelValues(status)
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		if eo, ok := observer.(prometheus.ExemplarObserver); ok {
			eo.ObserveWithExemplar(seconds, prometheus.Labels{"trace_id": sc.TraceID().String()})
			return
		}
	}
	observer.Observe(seconds)
}

// DatabaseMetrics mirrors sql.DBStats as gauges.
type DatabaseMetrics struct {
	OpenConnections prometheus.Gauge
	InUse           prometheus.Gauge
	Idle            prometheus.Gauge
	WaitCount       prometheus.Gauge
	WaitDuration    prometheus.Gauge
}

// NewDatabaseMetrics registers connection pool gauges under the given
// namespace on the default registerer.
func NewDatabaseMetrics(namespace string) *DatabaseMetrics {
	return &DatabaseMetrics{
		OpenConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_open",
			Help:      "Open connections in the database pool",
		}),
		InUse: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_in_use",
			Help:      "Connections currently in use",
		}),
		Idle: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_idle",
			Help:      "Idle connections in the pool",
		}),
		WaitCount: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_wait_count",
			Help:      "Cumulative number of waits for a connection",
		}),
		WaitDuration: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_wait_duration_seconds",
			Help:      "Cumulative time spent waiting for a connection",
		}),
	}
}

// UpdateDBStats refreshes the gauges from the pool's current statistics.
func (m *DatabaseMetrics) UpdateDBStats(db *sql.DB) {
	stats := db.Stats()
	m.OpenConnections.Set(float64(stats.OpenConnections))
	m.InUse.Set(float64(stats.InUse))
	m.Idle.Set(float64(stats.Idle))
	m.WaitCount.Set(float64(stats.WaitCount))
	m.WaitDuration.Set(stats.WaitDuration.Seconds())
}

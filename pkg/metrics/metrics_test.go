package metrics

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/trace"

	_ "modernc.org/sqlite"
)

// swapRegisterer isolates each test from the process-wide registry so
// repeated NewBusinessMetrics calls do not collide.
func swapRegisterer(t *testing.T) {
	t.Helper()
	orig := prometheus.DefaultRegisterer
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	t.Cleanup(func() { prometheus.DefaultRegisterer = orig })
}

func TestBusinessMetricsCounters(t *testing.T) {
	swapRegisterer(t)
	m := NewBusinessMetrics("reviewpulse")

	m.AnalysesTotal.WithLabelValues("success").Inc()
	m.AnalysesTotal.WithLabelValues("success").Inc()
	m.AnalysesTotal.WithLabelValues("error").Inc()
	m.KeywordsExtractedTotal.Add(10)
	m.ChartsRenderedTotal.WithLabelValues("sentiment").Inc()

	if got := testutil.ToFloat64(m.AnalysesTotal.WithLabelValues("success")); got != 2 {
		t.Errorf("expected 2 successful analyses, got %v", got)
	}
	if got := testutil.ToFloat64(m.AnalysesTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("expected 1 failed analysis, got %v", got)
	}
	if got := testutil.ToFloat64(m.KeywordsExtractedTotal); got != 10 {
		t.Errorf("expected 10 keywords, got %v", got)
	}
	if got := testutil.ToFloat64(m.ChartsRenderedTotal.WithLabelValues("sentiment")); got != 1 {
		t.Errorf("expected 1 sentiment chart, got %v", got)
	}
}

func TestObserveDurationWithExemplar(t *testing.T) {
	swapRegisterer(t)
	m := NewBusinessMetrics("reviewpulse")

	// Without a span the observation takes the plain path.
	m.ObserveDurationWithExemplar(context.Background(), m.AnalysisDuration, 0.05, "success")

	// With a sampled span context the exemplar path is exercised.
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x01},
		SpanID:     trace.SpanID{0x02},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	m.ObserveDurationWithExemplar(ctx, m.AnalysisDuration, 0.10, "success")
	m.ObserveDurationWithExemplar(ctx, m.ImportDuration, 1.5, "error")

	if got := testutil.CollectAndCount(m.AnalysisDuration); got != 1 {
		t.Errorf("expected 1 analysis duration series, got %d", got)
	}
	if got := testutil.CollectAndCount(m.ImportDuration); got != 1 {
		t.Errorf("expected 1 import duration series, got %d", got)
	}
}

func TestUpdateDBStats(t *testing.T) {
	swapRegisterer(t)
	m := NewDatabaseMetrics("reviewpulse")

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "metrics.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	m.UpdateDBStats(db)

	if got := testutil.ToFloat64(m.OpenConnections); got != 1 {
		t.Errorf("expected 1 open connection, got %v", got)
	}
	if got := testutil.ToFloat64(m.InUse); got != 0 {
		t.Errorf("expected 0 connections in use, got %v", got)
	}
}

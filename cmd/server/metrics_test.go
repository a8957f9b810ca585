package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zombar/reviewpulse/pkg/metrics"
)

func TestMetricsEndpoint(t *testing.T) {
	// Register the service metrics on the default registry the handler serves
	m := metrics.NewBusinessMetrics("reviewpulse")
	m.AnalysesTotal.WithLabelValues("success").Inc()

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()

	handler := promhttp.Handler()
	handler.ServeHTTP(w, req)

	resp := w.Result()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "text/plain") {
		t.Errorf("Expected content-type to contain 'text/plain', got '%s'", contentType)
	}

	body := w.Body.String()

	// Go runtime metrics come from the default collectors
	expectedMetrics := []string{
		"go_goroutines",
		"go_threads",
		"go_info",
		"promhttp_metric_handler",
		"reviewpulse_analyses_total",
		"reviewpulse_keywords_extracted_total",
	}

	for _, metric := range expectedMetrics {
		if !strings.Contains(body, metric) {
			t.Errorf("Expected metrics to contain '%s'", metric)
		}
	}
}

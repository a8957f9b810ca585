package queue

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// TestTraceContextCapture tests that enqueue-side span IDs survive the
// round trip through the task payload
func TestTraceContextCapture(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(trace.NewNoopTracerProvider())

	ctx, span := tp.Tracer("test").Start(context.Background(), "enqueue-import")
	defer span.End()

	payload := ImportReviewPayload{
		JobID:      "job-trace-1",
		ProjectID:  1,
		URL:        "https://example.com/reviews/kettle",
		EnqueuedAt: time.Now().UnixNano(),
	}
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		payload.TraceID = sc.TraceID().String()
		payload.SpanID = sc.SpanID().String()
	}

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}

	var decoded ImportReviewPayload
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("failed to unmarshal payload: %v", err)
	}

	sc := span.SpanContext()
	if decoded.TraceID != sc.TraceID().String() {
		t.Errorf("trace ID mismatch: got %s, want %s", decoded.TraceID, sc.TraceID())
	}
	if decoded.SpanID != sc.SpanID().String() {
		t.Errorf("span ID mismatch: got %s, want %s", decoded.SpanID, sc.SpanID())
	}
	if decoded.EnqueuedAt == 0 {
		t.Error("expected a non-zero enqueue timestamp")
	}
}

// TestHandleImportReviewLinksRemoteSpan tests that the worker continues the
// trace that enqueued the task
func TestHandleImportReviewLinksRemoteSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(trace.NewNoopTracerProvider())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(reviewPage))
	}))
	defer srv.Close()

	w, db := setupTestWorker(t)
	projectID := seedImportJob(t, db, "job-trace-2", srv.URL)

	_, parent := tp.Tracer("test").Start(context.Background(), "enqueue-import")
	parentSC := parent.SpanContext()
	parent.End()

	payload := ImportReviewPayload{
		JobID:      "job-trace-2",
		ProjectID:  projectID,
		URL:        srv.URL,
		TraceID:    parentSC.TraceID().String(),
		SpanID:     parentSC.SpanID().String(),
		EnqueuedAt: time.Now().UnixNano(),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}

	if err := w.handleImportReview(context.Background(), asynq.NewTask(TypeImportReview, data)); err != nil {
		t.Fatalf("handleImportReview() failed: %v", err)
	}

	var taskSpan *tracetest.SpanStub
	spans := exporter.GetSpans()
	for i := range spans {
		if spans[i].Name == "asynq.task.process" {
			taskSpan = &spans[i]
			break
		}
	}
	if taskSpan == nil {
		t.Fatal("asynq.task.process span not found")
	}

	if taskSpan.SpanKind != trace.SpanKindConsumer {
		t.Errorf("expected consumer span kind, got %v", taskSpan.SpanKind)
	}
	if got := taskSpan.SpanContext.TraceID(); got != parentSC.TraceID() {
		t.Errorf("task span not in enqueue trace: got %s, want %s", got, parentSC.TraceID())
	}
	if got := taskSpan.Parent.SpanID(); got != parentSC.SpanID() {
		t.Errorf("task span parent mismatch: got %s, want %s", got, parentSC.SpanID())
	}
}

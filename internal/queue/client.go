package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Task type constants
const (
	TypeImportReview = "reviewpulse:import_review"
)

// ImportReviewPayload carries everything the worker needs to fetch a page
// and store it as an analyzed review.
type ImportReviewPayload struct {
	JobID     string `json:"job_id"`
	ProjectID int64  `json:"project_id"`
	URL       string `json:"url"`
	// Tracing and timing fields
	TraceID    string `json:"trace_id,omitempty"`
	SpanID     string `json:"span_id,omitempty"`
	EnqueuedAt int64  `json:"enqueued_at"` // Unix timestamp in nanoseconds
}

// Client wraps the Asynq client for enqueueing tasks
type Client struct {
	client *asynq.Client
}

// ClientConfig contains configuration for the queue client
type ClientConfig struct {
	RedisAddr string
}

// NewClient creates a new queue client
func NewClient(cfg ClientConfig) *Client {
	redisOpt := asynq.RedisClientOpt{
		Addr: cfg.RedisAddr,
	}

	return &Client{
		client: asynq.NewClient(redisOpt),
	}
}

// EnqueueImportReview enqueues a review import task. The job ID doubles as
// the task ID, so re-enqueueing the same job is rejected by the broker
// instead of importing the page twice.
func (c *Client) EnqueueImportReview(ctx context.Context, jobID string, projectID int64, url string) (string, error) {
	payload := ImportReviewPayload{
		JobID:      jobID,
		ProjectID:  projectID,
		URL:        url,
		EnqueuedAt: time.Now().UnixNano(), // Record enqueue time for queue wait metrics
	}

	// Add tracing context if available
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		spanCtx := span.SpanContext()
		payload.TraceID = spanCtx.TraceID().String()
		payload.SpanID = spanCtx.SpanID().String()

		span.AddEvent("task_enqueued", trace.WithAttributes(
			attribute.String("task.type", TypeImportReview),
			attribute.String("task.id", jobID),
			attribute.String("import.url", url),
			attribute.Int64("enqueued_at", payload.EnqueuedAt),
		))
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal task payload: %w", err)
	}

	task := asynq.NewTask(TypeImportReview, payloadBytes, asynq.TaskID(jobID))

	opts := []asynq.Option{
		asynq.MaxRetry(5),
		asynq.Timeout(2 * time.Minute),
		asynq.Queue("imports"),
		asynq.Retention(7 * 24 * time.Hour), // Keep completed tasks for 7 days
	}

	info, err := c.client.Enqueue(task, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue import review task: %w", err)
	}

	return info.ID, nil
}

// Close closes the client connection
func (c *Client) Close() error {
	return c.client.Close()
}

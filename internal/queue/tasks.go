package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zombar/reviewpulse/internal/analyzer"
	"github.com/zombar/reviewpulse/internal/database"
	"github.com/zombar/reviewpulse/internal/models"
	"github.com/zombar/reviewpulse/internal/scraper"
)

// handleImportReview fetches the page behind an import job, analyzes the
// extracted text, and stores the outcome as a review on the job's project.
func (w *Worker) handleImportReview(ctx context.Context, t *asynq.Task) error {
	var payload ImportReviewPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		w.logger.Error("failed to unmarshal task payload", "error", err)
		return fmt.Errorf("invalid task payload: %v: %w", err, asynq.SkipRetry)
	}

	retryCount, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)

	// Calculate queue wait time
	var queueWaitTime time.Duration
	if payload.EnqueuedAt > 0 {
		queueWaitTime = time.Since(time.Unix(0, payload.EnqueuedAt))
	}

	w.logger.Info("processing review import",
		"job_id", payload.JobID,
		"project_id", payload.ProjectID,
		"url", payload.URL,
		"retry_count", retryCount,
		"max_retries", maxRetry,
		"queue_wait_seconds", queueWaitTime.Seconds(),
	)

	// Recreate trace context from payload if available
	var span trace.Span
	if payload.TraceID != "" && payload.SpanID != "" {
		traceID, err := trace.TraceIDFromHex(payload.TraceID)
		if err == nil {
			spanID, err := trace.SpanIDFromHex(payload.SpanID)
			if err == nil {
				remoteSpanCtx := trace.NewSpanContext(trace.SpanContextConfig{
					TraceID:    traceID,
					SpanID:     spanID,
					TraceFlags: trace.FlagsSampled,
					Remote:     true,
				})

				ctx = trace.ContextWithRemoteSpanContext(ctx, remoteSpanCtx)

				ctx, span = otel.Tracer("reviewpulse").Start(ctx, "asynq.task.process",
					trace.WithSpanKind(trace.SpanKindConsumer),
					trace.WithAttributes(
						attribute.String("task.type", TypeImportReview),
						attribute.String("job.id", payload.JobID),
						attribute.Int64("project.id", payload.ProjectID),
						attribute.String("import.url", payload.URL),
						attribute.Int("retry_count", retryCount),
						attribute.Float64("queue.wait_time_seconds", queueWaitTime.Seconds()),
						attribute.Int64("enqueued_at", payload.EnqueuedAt),
					),
				)
				defer span.End()

				span.AddEvent("task_processing_started", trace.WithAttributes(
					attribute.Float64("wait_time_seconds", queueWaitTime.Seconds()),
				))
			}
		}
	} else {
		// No trace context in payload, annotate whatever span is current
		if existingSpan := trace.SpanFromContext(ctx); existingSpan.SpanContext().IsValid() {
			existingSpan.SetAttributes(
				attribute.String("job.id", payload.JobID),
				attribute.Int64("project.id", payload.ProjectID),
				attribute.String("import.url", payload.URL),
				attribute.Int("retry_count", retryCount),
				attribute.Float64("queue.wait_time_seconds", queueWaitTime.Seconds()),
			)
		}
	}

	// Record the end-to-end import outcome once a terminal state is known.
	// Transient errors leave importStatus empty so retries are not counted.
	importTimer := time.Now()
	var importStatus string
	defer func() {
		if importStatus != "" {
			duration := time.Since(importTimer).Seconds()
			w.businessMetrics.ObserveDurationWithExemplar(ctx, w.businessMetrics.ImportDuration, duration, importStatus)
			w.businessMetrics.ImportsTotal.WithLabelValues(importStatus).Inc()
		}
	}()

	if err := w.db.UpdateImportJobStatus(ctx, payload.JobID, models.JobStatusProcessing, nil, ""); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			// The job row is gone, most likely a cascade from project deletion.
			w.logger.Warn("import job vanished before processing", "job_id", payload.JobID)
			return fmt.Errorf("job %s no longer exists: %w", payload.JobID, asynq.SkipRetry)
		}
		return fmt.Errorf("failed to mark job processing: %w", err)
	}

	page, err := w.scraper.Fetch(ctx, payload.URL)
	if err != nil {
		if isRetriableError(err) {
			w.logger.Warn("retriable fetch error, will retry",
				"job_id", payload.JobID,
				"url", payload.URL,
				"error", err,
				"retry_count", retryCount,
			)
			return err // Let Asynq retry
		}

		importStatus = "error"
		w.markJobFailed(ctx, payload.JobID, err)
		return fmt.Errorf("failed to fetch %s: %v: %w", payload.URL, err, asynq.SkipRetry)
	}

	// Time the analysis stage with exemplar support
	analysisTimer := time.Now()
	var analysisStatus string
	defer func() {
		if analysisStatus != "" {
			duration := time.Since(analysisTimer).Seconds()
			w.businessMetrics.ObserveDurationWithExemplar(ctx, w.businessMetrics.AnalysisDuration, duration, analysisStatus)
			w.businessMetrics.AnalysesTotal.WithLabelValues(analysisStatus).Inc()
		}
	}()

	result, err := w.analyzer.Analyze(page.Content, page.Title)
	if err != nil {
		analysisStatus = "error"
		importStatus = "error"
		w.markJobFailed(ctx, payload.JobID, err)
		return fmt.Errorf("failed to analyze %s: %v: %w", payload.URL, err, asynq.SkipRetry)
	}
	analysisStatus = "success"
	w.businessMetrics.KeywordsExtractedTotal.Add(float64(len(result.Keywords)))

	review := &models.Review{
		ProjectID:           payload.ProjectID,
		Title:               result.Title,
		Content:             page.Content,
		SourceURL:           payload.URL,
		SentimentScore:      result.Sentiment.Compound,
		SentimentLabel:      result.Sentiment.Label,
		SentimentConfidence: result.SentimentConfidence,
		PositiveScore:       result.Sentiment.Positive,
		NegativeScore:       result.Sentiment.Negative,
		NeutralScore:        result.Sentiment.Neutral,
		WordCount:           result.Statistics.WordCount,
		ReadabilityScore:    result.Statistics.ReadabilityScore,
		Keywords:            result.Keywords,
	}

	if err := w.db.CreateReview(ctx, review); err != nil {
		if isRetriableError(err) {
			w.logger.Warn("retriable database error, will retry",
				"job_id", payload.JobID,
				"error", err,
				"retry_count", retryCount,
			)
			return err // Let Asynq retry
		}

		importStatus = "error"
		w.markJobFailed(ctx, payload.JobID, err)
		return fmt.Errorf("failed to store review: %v: %w", err, asynq.SkipRetry)
	}

	if err := w.db.UpdateImportJobStatus(ctx, payload.JobID, models.JobStatusCompleted, &review.ID, ""); err != nil {
		// The review exists, so the import itself succeeded. Surface the
		// bookkeeping failure without retrying the whole task.
		w.logger.Error("failed to mark job completed", "job_id", payload.JobID, "error", err)
	}

	importStatus = "success"

	w.logger.Info("review import completed",
		"job_id", payload.JobID,
		"review_id", review.ID,
		"word_count", review.WordCount,
		"sentiment_label", review.SentimentLabel,
		"retry_count", retryCount,
	)

	return nil
}

// markJobFailed records a permanent import failure on the job row.
func (w *Worker) markJobFailed(ctx context.Context, jobID string, cause error) {
	if err := w.db.UpdateImportJobStatus(ctx, jobID, models.JobStatusFailed, nil, cause.Error()); err != nil {
		w.logger.Error("failed to mark job failed", "job_id", jobID, "error", err)
	}
}

// isRetriableError separates transient failures worth retrying from
// permanent ones such as malformed URLs or pages with no usable text.
func isRetriableError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, scraper.ErrInvalidURL) || errors.Is(err, scraper.ErrNoContent) {
		return false
	}
	if errors.Is(err, analyzer.ErrEmptyContent) {
		return false
	}

	var statusErr *scraper.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}

	errStr := strings.ToLower(err.Error())

	retriablePatterns := []string{
		"connection refused",
		"connection reset",
		"timeout",
		"temporary failure",
		"context deadline exceeded",
		"context canceled",
		"i/o timeout",
		"no such host",
		"network is unreachable",
		"database is locked",
		"database table is locked",
	}

	for _, pattern := range retriablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}

package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/zombar/reviewpulse/internal/analyzer"
	"github.com/zombar/reviewpulse/internal/database"
	"github.com/zombar/reviewpulse/internal/scraper"
	"github.com/zombar/reviewpulse/pkg/metrics"
)

// Worker wraps the Asynq server for processing import tasks
type Worker struct {
	server          *asynq.Server
	mux             *asynq.ServeMux
	db              *database.DB
	analyzer        *analyzer.Analyzer
	scraper         *scraper.Scraper
	concurrency     int
	logger          *slog.Logger
	businessMetrics *metrics.BusinessMetrics
}

// WorkerConfig contains configuration for the queue worker
type WorkerConfig struct {
	RedisAddr   string
	Concurrency int
}

// NewWorker creates a new queue worker
func NewWorker(cfg WorkerConfig, db *database.DB, analyzer *analyzer.Analyzer, scraper *scraper.Scraper) *Worker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}

	w := &Worker{
		mux:             asynq.NewServeMux(),
		db:              db,
		analyzer:        analyzer,
		scraper:         scraper,
		concurrency:     cfg.Concurrency,
		logger:          slog.Default(),
		businessMetrics: metrics.NewBusinessMetrics("reviewpulse"),
	}

	redisOpt := asynq.RedisClientOpt{
		Addr: cfg.RedisAddr,
	}

	serverCfg := asynq.Config{
		// Concurrency determines how many imports can run simultaneously
		Concurrency: cfg.Concurrency,

		Queues: map[string]int{
			"imports": 1,
		},

		// Fetch failures are usually rate limits or flaky hosts that
		// clear within minutes, so delays grow from seconds to minutes
		RetryDelayFunc: retryDelay,

		// Graceful shutdown timeout
		ShutdownTimeout: 30 * time.Second,

		ErrorHandler: asynq.ErrorHandlerFunc(w.handleTaskError),
	}

	w.server = asynq.NewServer(redisOpt, serverCfg)

	// Register task handlers
	w.registerHandlers()

	return w
}

// retryDelay returns the wait before retry n+1
func retryDelay(n int, _ error, _ *asynq.Task) time.Duration {
	delays := []time.Duration{
		10 * time.Second,
		30 * time.Second,
		1 * time.Minute,
		5 * time.Minute,
		10 * time.Minute,
	}
	if n < len(delays) {
		return delays[n]
	}
	return delays[len(delays)-1]
}

// registerHandlers registers all task handlers with the worker
func (w *Worker) registerHandlers() {
	w.mux.HandleFunc(TypeImportReview, w.handleImportReview)
}

// handleTaskError runs after every failed attempt. Once retries are
// exhausted it marks the job failed so clients polling the job see a
// terminal state instead of a permanent "processing".
func (w *Worker) handleTaskError(ctx context.Context, task *asynq.Task, err error) {
	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)

	w.logger.Error("task processing error",
		"task_type", task.Type(),
		"error", err,
		"retry_count", retried,
		"max_retries", maxRetry,
	)

	if errors.Is(err, asynq.SkipRetry) {
		return // the handler already recorded the failure on the job
	}
	if retried < maxRetry || task.Type() != TypeImportReview {
		return
	}

	var payload ImportReviewPayload
	if uerr := json.Unmarshal(task.Payload(), &payload); uerr != nil {
		return
	}
	w.markJobFailed(ctx, payload.JobID, fmt.Errorf("retries exhausted: %w", err))
	w.businessMetrics.ImportsTotal.WithLabelValues("error").Inc()
}

// Start starts the worker to begin processing tasks
func (w *Worker) Start() error {
	w.logger.Info("starting asynq worker",
		"concurrency", w.concurrency,
		"queues", map[string]int{"imports": 1},
	)

	// Run is blocking - starts processing tasks
	if err := w.server.Run(w.mux); err != nil {
		return fmt.Errorf("asynq server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the worker
func (w *Worker) Shutdown() {
	w.logger.Info("shutting down asynq worker")
	w.server.Shutdown()
}

package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/subosito/gotenv"

	"github.com/zombar/reviewpulse/internal/analyzer"
	"github.com/zombar/reviewpulse/internal/api"
	"github.com/zombar/reviewpulse/internal/database"
	"github.com/zombar/reviewpulse/internal/queue"
	"github.com/zombar/reviewpulse/internal/scraper"
	"github.com/zombar/reviewpulse/pkg/logging"
	"github.com/zombar/reviewpulse/pkg/metrics"
	"github.com/zombar/reviewpulse/pkg/tracing"
)

func main() {
	// Load .env if present; real environment variables win
	_ = gotenv.Load()

	var (
		port          = flag.String("port", getEnv("PORT", "8080"), "Server port (env: PORT)")
		dbPath        = flag.String("db", getEnv("DB_PATH", "reviewpulse.db"), "Database file path (env: DB_PATH)")
		redisAddr     = flag.String("redis", getEnv("REDIS_ADDR", "localhost:6379"), "Redis address for the task queue (env: REDIS_ADDR)")
		workerMode    = flag.Bool("worker", getEnvBool("WORKER_MODE", false), "Run the import worker instead of the HTTP server (env: WORKER_MODE)")
		concurrency   = flag.Int("concurrency", getEnvInt("WORKER_CONCURRENCY", 5), "Worker concurrency (env: WORKER_CONCURRENCY)")
		scrapeTimeout = flag.Duration("scrape-timeout", getEnvDuration("SCRAPE_TIMEOUT", 30*time.Second), "Per-page fetch timeout (env: SCRAPE_TIMEOUT)")
		logLevel      = flag.String("log-level", getEnv("LOG_LEVEL", "info"), "Log level: debug, info, warn, error (env: LOG_LEVEL)")
		logFormat     = flag.String("log-format", getEnv("LOG_FORMAT", "json"), "Log format: json or text (env: LOG_FORMAT)")
		enableTracing = flag.Bool("tracing", getEnvBool("TRACING_ENABLED", true), "Export OTLP traces (env: TRACING_ENABLED)")
	)
	flag.Parse()

	logger := newLogger(parseLogLevel(*logLevel), *logFormat)
	slog.SetDefault(logger)

	logger.Info("reviewpulse service initializing", "version", "1.0.0")

	// Initialize tracing
	if *enableTracing {
		tp, err := tracing.InitTracer("reviewpulse")
		if err != nil {
			logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
		} else {
			defer func() {
				if err := tp.Shutdown(context.Background()); err != nil {
					logger.Error("error shutting down tracer", "error", err)
				}
			}()
			logger.Info("tracing initialized successfully")
		}
	}

	// Initialize database
	db, err := database.New(*dbPath)
	if err != nil {
		logger.Error("failed to initialize database", "error", err, "database_path", *dbPath)
		os.Exit(1)
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize database metrics
	dbMetrics := metrics.NewDatabaseMetrics("reviewpulse")
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			dbMetrics.UpdateDBStats(db.Conn())
		}
	}()
	logger.Info("database metrics initialized")

	contentAnalyzer := analyzer.New()
	pageScraper := scraper.New(*scrapeTimeout)

	if *workerMode {
		runWorker(logger, db, contentAnalyzer, pageScraper, *redisAddr, *concurrency)
		return
	}

	runServer(logger, db, contentAnalyzer, pageScraper, *redisAddr, *port, *dbPath)
}

// runWorker consumes import tasks until the process is signalled to stop.
func runWorker(logger *slog.Logger, db *database.DB, contentAnalyzer *analyzer.Analyzer, pageScraper *scraper.Scraper, redisAddr string, concurrency int) {
	worker := queue.NewWorker(queue.WorkerConfig{
		RedisAddr:   redisAddr,
		Concurrency: concurrency,
	}, db, contentAnalyzer, pageScraper)

	logger.Info("reviewpulse worker starting", "redis", redisAddr, "concurrency", concurrency)

	// Run blocks until SIGINT or SIGTERM and drains in-flight tasks
	if err := worker.Start(); err != nil {
		logger.Error("worker failed", "error", err)
		os.Exit(1)
	}

	logger.Info("worker stopped")
}

func runServer(logger *slog.Logger, db *database.DB, contentAnalyzer *analyzer.Analyzer, pageScraper *scraper.Scraper, redisAddr, port, dbPath string) {
	queueClient := queue.NewClient(queue.ClientConfig{RedisAddr: redisAddr})
	defer queueClient.Close()

	businessMetrics := metrics.NewBusinessMetrics("reviewpulse")
	apiHandler := api.NewHandler(db, contentAnalyzer, queueClient, businessMetrics)

	// Wrap handler with middleware chain: HTTP logging -> tracing -> handlers
	handler := logging.HTTPLoggingMiddleware(logger)(
		tracing.HTTPMiddleware("reviewpulse")(apiHandler),
	)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // chart rendering can take a moment on large documents
		IdleTimeout:  120 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("reviewpulse service starting",
			"port", port,
			"database", dbPath,
			"redis", redisAddr,
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// newLogger builds the process logger. JSON goes to stdout for collectors,
// the text format uses tint for local development.
func newLogger(level slog.Level, format string) *slog.Logger {
	if format == "text" {
		return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zombar/reviewpulse/internal/analyzer"
	"github.com/zombar/reviewpulse/internal/database"
	"github.com/zombar/reviewpulse/internal/models"
	"github.com/zombar/reviewpulse/internal/scraper"
	"github.com/zombar/reviewpulse/pkg/logging"
	"github.com/zombar/reviewpulse/pkg/metrics"
	"github.com/zombar/reviewpulse/pkg/tracing"
)

// dbTimeout bounds database work done on behalf of one request.
const dbTimeout = 30 * time.Second

// importEnqueuer is the slice of the queue client the handler needs.
type importEnqueuer interface {
	EnqueueImportReview(ctx context.Context, jobID string, projectID int64, url string) (string, error)
}

// Handler handles HTTP requests
type Handler struct {
	db          *database.DB
	analyzer    *analyzer.Analyzer
	queueClient importEnqueuer
	metrics     *metrics.BusinessMetrics
	logger      *slog.Logger
	mux         *http.ServeMux
}

// NewHandler creates a new API handler with CORS support
func NewHandler(db *database.DB, analyzer *analyzer.Analyzer, queueClient importEnqueuer, businessMetrics *metrics.BusinessMetrics) http.Handler {
	h := newHandler(db, analyzer, queueClient, businessMetrics)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	return c.Handler(h.mux)
}

// newHandler wires the routes without the CORS wrapper.
func newHandler(db *database.DB, analyzer *analyzer.Analyzer, queueClient importEnqueuer, businessMetrics *metrics.BusinessMetrics) *Handler {
	h := &Handler{
		db:          db,
		analyzer:    analyzer,
		queueClient: queueClient,
		metrics:     businessMetrics,
		logger:      slog.Default(),
		mux:         http.NewServeMux(),
	}
	h.setupRoutes()
	return h
}

// setupRoutes configures all API routes
func (h *Handler) setupRoutes() {
	h.mux.Handle("/metrics", promhttp.Handler()) // Prometheus metrics endpoint
	h.mux.HandleFunc("/health", h.handleHealth)
	h.mux.HandleFunc("/api/analyze", h.handleAnalyze)
	h.mux.HandleFunc("/api/dashboard", h.handleDashboard)
	h.mux.HandleFunc("/api/analytics", h.handleAnalytics)
	h.mux.HandleFunc("/api/projects", h.handleProjects)
	h.mux.HandleFunc("/api/projects/", h.handleProjectSubtree)
	h.mux.HandleFunc("/api/reviews/", h.handleReviewSubtree)
	h.mux.HandleFunc("/api/jobs/", h.handleJobStatus)
}

// handleHealth reports liveness, including whether the database answers
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		respondJSON(w, map[string]string{
			"status": "degraded",
			"error":  err.Error(),
			"time":   time.Now().Format(time.RFC3339),
		}, http.StatusServiceUnavailable)
		return
	}

	respondJSON(w, map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleAnalyze runs the full analysis pipeline on posted content and
// returns the result without storing anything
func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Content string `json:"content"`
		Title   string `json:"title,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ctx, span := tracing.StartSpan(r.Context(), "analysis.analyze_content")
	defer span.End()
	tracing.SetSpanAttributes(ctx, attribute.Int("content.length", len(req.Content)))

	result, err := h.analyzeContent(ctx, req.Content, req.Title)
	if err != nil {
		if errors.Is(err, analyzer.ErrEmptyContent) {
			respondJSON(w, map[string]interface{}{
				"success": false,
				"error":   "No content provided",
			}, http.StatusBadRequest)
			return
		}
		h.serverError(w, r, err)
		return
	}

	respondJSON(w, result, http.StatusOK)
}

// handleDashboard serves the landing page aggregates
func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resultChan := make(chan *models.DashboardStats, 1)
	errorChan := make(chan error, 1)

	go func() {
		stats, err := h.db.DashboardStats(r.Context())
		if err != nil {
			errorChan <- err
			return
		}
		resultChan <- stats
	}()

	select {
	case stats := <-resultChan:
		respondJSON(w, stats, http.StatusOK)
	case err := <-errorChan:
		h.serverError(w, r, err)
	case <-time.After(dbTimeout):
		respondError(w, "Request timeout", http.StatusRequestTimeout)
	}
}

// handleAnalytics serves the cross-project report
func (h *Handler) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resultChan := make(chan *models.AnalyticsReport, 1)
	errorChan := make(chan error, 1)

	go func() {
		report, err := h.db.AnalyticsReport(r.Context())
		if err != nil {
			errorChan <- err
			return
		}
		resultChan <- report
	}()

	select {
	case report := <-resultChan:
		respondJSON(w, report, http.StatusOK)
	case err := <-errorChan:
		h.serverError(w, r, err)
	case <-time.After(dbTimeout):
		respondError(w, "Request timeout", http.StatusRequestTimeout)
	}
}

// handleProjects lists and creates projects
func (h *Handler) handleProjects(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listProjects(w, r)
	case http.MethodPost:
		h.createProject(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) listProjects(w http.ResponseWriter, r *http.Request) {
	resultChan := make(chan []models.ProjectSummary, 1)
	errorChan := make(chan error, 1)

	go func() {
		projects, err := h.db.ListProjects(r.Context())
		if err != nil {
			errorChan <- err
			return
		}
		resultChan <- projects
	}()

	select {
	case projects := <-resultChan:
		respondJSON(w, projects, http.StatusOK)
	case err := <-errorChan:
		h.serverError(w, r, err)
	case <-time.After(dbTimeout):
		respondError(w, "Request timeout", http.StatusRequestTimeout)
	}
}

func (h *Handler) createProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, "Project name is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), dbTimeout)
	defer cancel()

	project, err := h.db.CreateProject(ctx, strings.TrimSpace(req.Name), req.Description)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	respondJSON(w, project, http.StatusCreated)
}

// handleProjectSubtree routes /api/projects/{id} and its children
func (h *Handler) handleProjectSubtree(w http.ResponseWriter, r *http.Request) {
	segs := splitPath(r.URL.Path, "/api/projects/")
	if len(segs) == 0 {
		respondError(w, "Project ID is required", http.StatusBadRequest)
		return
	}
	projectID, err := strconv.ParseInt(segs[0], 10, 64)
	if err != nil {
		respondError(w, "Invalid project ID", http.StatusBadRequest)
		return
	}

	switch {
	case len(segs) == 1 && r.Method == http.MethodGet:
		h.getProject(w, r, projectID)
	case len(segs) == 1 && r.Method == http.MethodDelete:
		h.deleteProject(w, r, projectID)
	case len(segs) == 1:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	case len(segs) == 2 && segs[1] == "reviews":
		h.handleProjectReviews(w, r, projectID)
	case len(segs) == 2 && segs[1] == "imports":
		h.handleProjectImports(w, r, projectID)
	case len(segs) == 2 && segs[1] == "sentiment-data":
		h.getSentimentData(w, r, projectID)
	default:
		http.NotFound(w, r)
	}
}

// getProject returns one project with its aggregates and a page of reviews
func (h *Handler) getProject(w http.ResponseWriter, r *http.Request, projectID int64) {
	limit, offset := parseLimitOffset(r)

	type detail struct {
		summary *models.ProjectSummary
		reviews []models.Review
	}
	resultChan := make(chan detail, 1)
	errorChan := make(chan error, 1)

	go func() {
		summary, err := h.db.GetProjectSummary(r.Context(), projectID)
		if err != nil {
			errorChan <- err
			return
		}
		reviews, err := h.db.ListReviewsByProject(r.Context(), projectID, limit, offset)
		if err != nil {
			errorChan <- err
			return
		}
		resultChan <- detail{summary: summary, reviews: reviews}
	}()

	select {
	case d := <-resultChan:
		respondJSON(w, map[string]interface{}{
			"project": d.summary,
			"reviews": d.reviews,
		}, http.StatusOK)
	case err := <-errorChan:
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, "Project not found", http.StatusNotFound)
			return
		}
		h.serverError(w, r, err)
	case <-time.After(dbTimeout):
		respondError(w, "Request timeout", http.StatusRequestTimeout)
	}
}

func (h *Handler) deleteProject(w http.ResponseWriter, r *http.Request, projectID int64) {
	ctx, cancel := context.WithTimeout(r.Context(), dbTimeout)
	defer cancel()

	if err := h.db.DeleteProject(ctx, projectID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, "Project not found", http.StatusNotFound)
			return
		}
		h.serverError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleProjectReviews lists and creates reviews under one project
func (h *Handler) handleProjectReviews(w http.ResponseWriter, r *http.Request, projectID int64) {
	switch r.Method {
	case http.MethodGet:
		h.listReviews(w, r, projectID)
	case http.MethodPost:
		h.createReview(w, r, projectID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) listReviews(w http.ResponseWriter, r *http.Request, projectID int64) {
	limit, offset := parseLimitOffset(r)

	resultChan := make(chan []models.Review, 1)
	errorChan := make(chan error, 1)

	go func() {
		if _, err := h.db.GetProject(r.Context(), projectID); err != nil {
			errorChan <- err
			return
		}
		reviews, err := h.db.ListReviewsByProject(r.Context(), projectID, limit, offset)
		if err != nil {
			errorChan <- err
			return
		}
		resultChan <- reviews
	}()

	select {
	case reviews := <-resultChan:
		respondJSON(w, reviews, http.StatusOK)
	case err := <-errorChan:
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, "Project not found", http.StatusNotFound)
			return
		}
		h.serverError(w, r, err)
	case <-time.After(dbTimeout):
		respondError(w, "Request timeout", http.StatusRequestTimeout)
	}
}

// createReview analyzes posted content and stores it as a review
func (h *Handler) createReview(w http.ResponseWriter, r *http.Request, projectID int64) {
	var req struct {
		Content   string `json:"content"`
		Title     string `json:"title,omitempty"`
		Author    string `json:"author,omitempty"`
		SourceURL string `json:"source_url,omitempty"`
		Rating    *int   `json:"rating,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		respondError(w, "Rating must be between 1 and 5", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), dbTimeout)
	defer cancel()

	if _, err := h.db.GetProject(ctx, projectID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, "Project not found", http.StatusNotFound)
			return
		}
		h.serverError(w, r, err)
		return
	}

	ctx, span := tracing.StartSpan(ctx, "review.create")
	defer span.End()
	tracing.SetSpanAttributes(ctx,
		attribute.Int64("project.id", projectID),
		attribute.Int("content.length", len(req.Content)),
	)

	result, err := h.analyzeContent(ctx, req.Content, req.Title)
	if err != nil {
		if errors.Is(err, analyzer.ErrEmptyContent) {
			respondJSON(w, map[string]interface{}{
				"success": false,
				"error":   "No content provided",
			}, http.StatusBadRequest)
			return
		}
		h.serverError(w, r, err)
		return
	}

	review := &models.Review{
		ProjectID:           projectID,
		Title:               result.Title,
		Content:             req.Content,
		Author:              req.Author,
		SourceURL:           req.SourceURL,
		Rating:              req.Rating,
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
	if err := h.db.CreateReview(ctx, review); err != nil {
		h.serverError(w, r, err)
		return
	}

	respondJSON(w, map[string]interface{}{
		"review":   review,
		"analysis": result,
	}, http.StatusCreated)
}

// handleProjectImports lists import jobs and enqueues new ones
func (h *Handler) handleProjectImports(w http.ResponseWriter, r *http.Request, projectID int64) {
	switch r.Method {
	case http.MethodGet:
		h.listImports(w, r, projectID)
	case http.MethodPost:
		h.createImport(w, r, projectID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) listImports(w http.ResponseWriter, r *http.Request, projectID int64) {
	ctx, cancel := context.WithTimeout(r.Context(), dbTimeout)
	defer cancel()

	if _, err := h.db.GetProject(ctx, projectID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, "Project not found", http.StatusNotFound)
			return
		}
		h.serverError(w, r, err)
		return
	}

	jobs, err := h.db.ListImportJobsByProject(ctx, projectID, 50)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	respondJSON(w, jobs, http.StatusOK)
}

// createImport validates the URL, records a job, and hands it to the queue
func (h *Handler) createImport(w http.ResponseWriter, r *http.Request, projectID int64) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := scraper.ValidateURL(req.URL); err != nil {
		respondError(w, "Invalid URL", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), dbTimeout)
	defer cancel()

	if _, err := h.db.GetProject(ctx, projectID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, "Project not found", http.StatusNotFound)
			return
		}
		h.serverError(w, r, err)
		return
	}

	ctx, span := tracing.StartSpan(ctx, "import.enqueue")
	defer span.End()
	tracing.SetSpanAttributes(ctx,
		attribute.Int64("project.id", projectID),
		attribute.String("import.url", req.URL),
	)

	jobID := uuid.NewString()
	job := &models.ImportJob{ID: jobID, ProjectID: projectID, URL: req.URL}
	if err := h.db.CreateImportJob(ctx, job); err != nil {
		h.serverError(w, r, err)
		return
	}

	taskID, err := h.queueClient.EnqueueImportReview(ctx, jobID, projectID, req.URL)
	if err != nil {
		// Leave a terminal state behind so the job is not forever "queued".
		if uerr := h.db.UpdateImportJobStatus(ctx, jobID, models.JobStatusFailed, nil, "failed to enqueue: "+err.Error()); uerr != nil {
			h.logger.Error("failed to mark job failed", "job_id", jobID, "error", uerr)
		}
		h.serverError(w, r, err)
		return
	}

	respondJSON(w, map[string]interface{}{
		"job_id":  jobID,
		"task_id": taskID,
		"status":  models.JobStatusQueued,
		"message": "Import queued for processing",
	}, http.StatusAccepted)
}

// getSentimentData returns the 30-day sentiment series for one project
func (h *Handler) getSentimentData(w http.ResponseWriter, r *http.Request, projectID int64) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resultChan := make(chan []models.SentimentPoint, 1)
	errorChan := make(chan error, 1)

	go func() {
		if _, err := h.db.GetProject(r.Context(), projectID); err != nil {
			errorChan <- err
			return
		}
		points, err := h.db.SentimentTrend(r.Context(), projectID, 30)
		if err != nil {
			errorChan <- err
			return
		}
		resultChan <- points
	}()

	select {
	case points := <-resultChan:
		respondJSON(w, points, http.StatusOK)
	case err := <-errorChan:
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, "Project not found", http.StatusNotFound)
			return
		}
		h.serverError(w, r, err)
	case <-time.After(dbTimeout):
		respondError(w, "Request timeout", http.StatusRequestTimeout)
	}
}

// handleReviewSubtree routes /api/reviews/{id} and its children
func (h *Handler) handleReviewSubtree(w http.ResponseWriter, r *http.Request) {
	segs := splitPath(r.URL.Path, "/api/reviews/")
	if len(segs) == 0 {
		respondError(w, "Review ID is required", http.StatusBadRequest)
		return
	}
	reviewID, err := strconv.ParseInt(segs[0], 10, 64)
	if err != nil {
		respondError(w, "Invalid review ID", http.StatusBadRequest)
		return
	}

	switch {
	case len(segs) == 1 && r.Method == http.MethodGet:
		h.getReview(w, r, reviewID)
	case len(segs) == 1 && r.Method == http.MethodDelete:
		h.deleteReview(w, r, reviewID)
	case len(segs) == 1:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	case len(segs) == 2 && segs[1] == "replies" && r.Method == http.MethodGet:
		h.listReplies(w, r, reviewID)
	case len(segs) == 2 && segs[1] == "replies" && r.Method == http.MethodPost:
		h.createReply(w, r, reviewID)
	case len(segs) == 2 && segs[1] == "replies":
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	default:
		http.NotFound(w, r)
	}
}

// getReview returns one review together with its replies
func (h *Handler) getReview(w http.ResponseWriter, r *http.Request, reviewID int64) {
	type detail struct {
		review  *models.Review
		replies []models.Reply
	}
	resultChan := make(chan detail, 1)
	errorChan := make(chan error, 1)

	go func() {
		review, err := h.db.GetReview(r.Context(), reviewID)
		if err != nil {
			errorChan <- err
			return
		}
		replies, err := h.db.ListRepliesByReview(r.Context(), reviewID)
		if err != nil {
			errorChan <- err
			return
		}
		resultChan <- detail{review: review, replies: replies}
	}()

	select {
	case d := <-resultChan:
		respondJSON(w, map[string]interface{}{
			"review":  d.review,
			"replies": d.replies,
		}, http.StatusOK)
	case err := <-errorChan:
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, "Review not found", http.StatusNotFound)
			return
		}
		h.serverError(w, r, err)
	case <-time.After(dbTimeout):
		respondError(w, "Request timeout", http.StatusRequestTimeout)
	}
}

func (h *Handler) deleteReview(w http.ResponseWriter, r *http.Request, reviewID int64) {
	ctx, cancel := context.WithTimeout(r.Context(), dbTimeout)
	defer cancel()

	if err := h.db.DeleteReview(ctx, reviewID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, "Review not found", http.StatusNotFound)
			return
		}
		h.serverError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listReplies(w http.ResponseWriter, r *http.Request, reviewID int64) {
	ctx, cancel := context.WithTimeout(r.Context(), dbTimeout)
	defer cancel()

	if _, err := h.db.GetReview(ctx, reviewID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, "Review not found", http.StatusNotFound)
			return
		}
		h.serverError(w, r, err)
		return
	}

	replies, err := h.db.ListRepliesByReview(ctx, reviewID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	respondJSON(w, replies, http.StatusOK)
}

// createReply analyzes posted content and stores it as a reply
func (h *Handler) createReply(w http.ResponseWriter, r *http.Request, reviewID int64) {
	var req struct {
		Content string `json:"content"`
		Author  string `json:"author,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), dbTimeout)
	defer cancel()

	if _, err := h.db.GetReview(ctx, reviewID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, "Review not found", http.StatusNotFound)
			return
		}
		h.serverError(w, r, err)
		return
	}

	ctx, span := tracing.StartSpan(ctx, "reply.create")
	defer span.End()
	tracing.SetSpanAttributes(ctx,
		attribute.Int64("review.id", reviewID),
		attribute.Int("content.length", len(req.Content)),
	)

	result, err := h.analyzeContent(ctx, req.Content, "")
	if err != nil {
		if errors.Is(err, analyzer.ErrEmptyContent) {
			respondJSON(w, map[string]interface{}{
				"success": false,
				"error":   "No content provided",
			}, http.StatusBadRequest)
			return
		}
		h.serverError(w, r, err)
		return
	}

	reply := &models.Reply{
		ReviewID:            reviewID,
		Content:             req.Content,
		Author:              req.Author,
		SentimentScore:      result.Sentiment.Compound,
		SentimentLabel:      result.Sentiment.Label,
		SentimentConfidence: result.SentimentConfidence,
		PositiveScore:       result.Sentiment.Positive,
		NegativeScore:       result.Sentiment.Negative,
		NeutralScore:        result.Sentiment.Neutral,
		WordCount:           result.Statistics.WordCount,
		Keywords:            result.Keywords,
	}
	if err := h.db.CreateReply(ctx, reply); err != nil {
		h.serverError(w, r, err)
		return
	}

	respondJSON(w, map[string]interface{}{
		"reply":    reply,
		"analysis": result,
	}, http.StatusCreated)
}

// handleJobStatus reports the state of one import job
func (h *Handler) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	if idx := strings.Index(jobID, "/"); idx != -1 {
		jobID = jobID[:idx]
	}
	if jobID == "" {
		respondError(w, "Job ID is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), dbTimeout)
	defer cancel()

	job, err := h.db.GetImportJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondJSON(w, map[string]interface{}{
				"job_id":  jobID,
				"status":  "not_found",
				"message": "Import job not found - it may have expired",
			}, http.StatusNotFound)
			return
		}
		h.serverError(w, r, err)
		return
	}

	respondJSON(w, job, http.StatusOK)
}

// analyzeContent runs the analyzer and records its metrics and span data.
func (h *Handler) analyzeContent(ctx context.Context, content, title string) (*models.AnalysisResult, error) {
	start := time.Now()
	result, err := h.analyzer.Analyze(content, title)
	seconds := time.Since(start).Seconds()

	status := "success"
	if err != nil {
		status = "error"
	}
	h.metrics.ObserveDurationWithExemplar(ctx, h.metrics.AnalysisDuration, seconds, status)
	h.metrics.AnalysesTotal.WithLabelValues(status).Inc()
	if err != nil {
		return nil, err
	}

	h.metrics.KeywordsExtractedTotal.Add(float64(len(result.Keywords)))
	for name := range result.Charts {
		h.metrics.ChartsRenderedTotal.WithLabelValues(name).Inc()
	}

	tracing.SetSpanAttributes(ctx,
		attribute.String("sentiment.label", result.Sentiment.Label),
		attribute.Int("keywords.count", len(result.Keywords)),
	)

	return result, nil
}

// serverError logs the failure against the request and responds 500
func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	logging.HTTPErrorLogger(h.logger, http.StatusInternalServerError, err, r)
	respondError(w, err.Error(), http.StatusInternalServerError)
}

// splitPath returns the non-empty path segments after prefix.
func splitPath(path, prefix string) []string {
	rest := strings.TrimPrefix(path, prefix)
	rest = strings.Trim(rest, "/")
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}

// parseLimitOffset reads pagination parameters, defaulting to 20/0.
func parseLimitOffset(r *http.Request) (int, int) {
	limit := 20
	offset := 0

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}
	return limit, offset
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

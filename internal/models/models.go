package models

import "time"

// Sentiment label values stored with every review and reply.
const (
	LabelPositive = "Positive"
	LabelNegative = "Negative"
	LabelNeutral  = "Neutral"
)

// Import job lifecycle states.
const (
	JobStatusQueued     = "queued"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// AnalysisResult is the full bundle produced for one analyzed document.
// It is built once per request and never mutated afterwards.
type AnalysisResult struct {
	Success bool   `json:"success"`
	Title   string `json:"title"`

	Statistics Statistics      `json:"statistics"`
	Sentiment  SentimentScores `json:"sentiment"`

	TopWords []WordFrequency `json:"top_words"`
	Keywords []string        `json:"keywords"` // words of TopWords, same order
	Summary  string          `json:"summary"`

	// Charts maps chart name ("sentiment", "words") to a PNG data URI.
	// Holds zero, one, or two entries depending on rendering outcomes.
	Charts map[string]string `json:"charts"`

	SentimentConfidence float64 `json:"sentiment_confidence"`
}

// Statistics holds document-level counts and readability scores.
type Statistics struct {
	WordCount         int     `json:"word_count"`      // whitespace-split count of the raw content
	CharacterCount    int     `json:"character_count"` // characters, not bytes
	SentenceCount     int     `json:"sentence_count"`
	AvgSentenceLength float64 `json:"avg_sentence_length"`
	ReadabilityScore  float64 `json:"readability_score"` // Flesch Reading Ease
	GradeLevel        float64 `json:"grade_level"`       // Flesch-Kincaid grade
}

// SentimentScores carries the polarity breakdown for a document.
type SentimentScores struct {
	Compound float64 `json:"compound"` // -1.0 to 1.0
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
	Label    string  `json:"label"`
}

// WordFrequency represents a word and its frequency
type WordFrequency struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Project groups reviews gathered for one product or initiative.
type Project struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProjectSummary is a project plus the aggregates list views need.
type ProjectSummary struct {
	Project
	ReviewCount  int     `json:"review_count"`
	AvgSentiment float64 `json:"avg_sentiment"`
}

// Review is a stored piece of feedback together with its analysis fields.
type Review struct {
	ID        int64  `json:"id"`
	ProjectID int64  `json:"project_id"`
	Title     string `json:"title,omitempty"`
	Content   string `json:"content"`
	Author    string `json:"author,omitempty"`
	SourceURL string `json:"source_url,omitempty"`
	Rating    *int   `json:"rating,omitempty"` // 1-5 when supplied

	// Analysis snapshot taken when the review was stored.
	SentimentScore      float64  `json:"sentiment_score"` // compound
	SentimentLabel      string   `json:"sentiment_label"`
	SentimentConfidence float64  `json:"sentiment_confidence"`
	PositiveScore       float64  `json:"positive_score"`
	NegativeScore       float64  `json:"negative_score"`
	NeutralScore        float64  `json:"neutral_score"`
	WordCount           int      `json:"word_count"`
	ReadabilityScore    float64  `json:"readability_score"`
	Keywords            []string `json:"keywords"`

	CreatedAt  time.Time `json:"created_at"`
	AnalyzedAt time.Time `json:"analyzed_at"`
}

// Reply is a response to a review, analyzed the same way minus readability.
type Reply struct {
	ID       int64  `json:"id"`
	ReviewID int64  `json:"review_id"`
	Content  string `json:"content"`
	Author   string `json:"author,omitempty"`

	SentimentScore      float64  `json:"sentiment_score"`
	SentimentLabel      string   `json:"sentiment_label"`
	SentimentConfidence float64  `json:"sentiment_confidence"`
	PositiveScore       float64  `json:"positive_score"`
	NegativeScore       float64  `json:"negative_score"`
	NeutralScore        float64  `json:"neutral_score"`
	WordCount           int      `json:"word_count"`
	Keywords            []string `json:"keywords"`

	CreatedAt  time.Time `json:"created_at"`
	AnalyzedAt time.Time `json:"analyzed_at"`
}

// ImportJob tracks one URL import from enqueue through review creation.
type ImportJob struct {
	ID        string    `json:"id"`
	ProjectID int64     `json:"project_id"`
	URL       string    `json:"url"`
	Status    string    `json:"status"`
	ReviewID  *int64    `json:"review_id,omitempty"` // set once completed
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SentimentDistribution buckets reviews by label.
type SentimentDistribution struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// SentimentPoint is one day of aggregated sentiment for trend charts.
type SentimentPoint struct {
	Date         string  `json:"date"` // YYYY-MM-DD
	AvgSentiment float64 `json:"avg_sentiment"`
	Count        int     `json:"count"`
}

// ProjectPerformance is the per-project rollup shown on the analytics page.
type ProjectPerformance struct {
	ProjectID       int64   `json:"project_id"`
	Name            string  `json:"name"`
	ReviewCount     int     `json:"review_count"`
	AvgSentiment    float64 `json:"avg_sentiment"`
	PositivePercent float64 `json:"positive_percent"`
}

// DashboardStats feeds the landing dashboard.
type DashboardStats struct {
	TotalProjects int     `json:"total_projects"`
	TotalReviews  int     `json:"total_reviews"`
	TotalReplies  int     `json:"total_replies"`
	AvgSentiment  float64 `json:"avg_sentiment"`

	SentimentDistribution SentimentDistribution `json:"sentiment_distribution"`
	RecentReviews         []Review              `json:"recent_reviews"`
	RecentProjects        []ProjectSummary      `json:"recent_projects"`
}

// AnalyticsReport aggregates stored analyses across all projects.
type AnalyticsReport struct {
	TotalProjects int     `json:"total_projects"`
	TotalReviews  int     `json:"total_reviews"`
	TotalReplies  int     `json:"total_replies"`
	AvgSentiment  float64 `json:"avg_sentiment"`

	SentimentTrend     []SentimentPoint     `json:"sentiment_trend"` // last 30 days
	TopKeywords        []WordFrequency      `json:"top_keywords"`
	ProjectPerformance []ProjectPerformance `json:"project_performance"`
}

package database

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/zombar/reviewpulse/internal/models"
)

const (
	dashboardRecentLimit = 5
	topKeywordLimit      = 20
	trendWindowDays      = 30
)

// DashboardStats assembles the landing page aggregates in one call.
func (db *DB) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}

	err := db.conn.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM projects),
			(SELECT COUNT(*) FROM reviews),
			(SELECT COUNT(*) FROM replies),
			(SELECT COALESCE(AVG(sentiment_score), 0) FROM reviews)
	`).Scan(&stats.TotalProjects, &stats.TotalReviews, &stats.TotalReplies, &stats.AvgSentiment)
	if err != nil {
		return nil, fmt.Errorf("failed to query dashboard totals: %w", err)
	}

	stats.SentimentDistribution, err = db.sentimentDistribution(ctx)
	if err != nil {
		return nil, err
	}

	stats.RecentReviews, err = db.RecentReviews(ctx, dashboardRecentLimit)
	if err != nil {
		return nil, err
	}

	projects, err := db.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	if len(projects) > dashboardRecentLimit {
		projects = projects[:dashboardRecentLimit]
	}
	stats.RecentProjects = projects

	return stats, nil
}

// AnalyticsReport assembles the cross-project analytics payload.
func (db *DB) AnalyticsReport(ctx context.Context) (*models.AnalyticsReport, error) {
	report := &models.AnalyticsReport{}

	err := db.conn.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM projects),
			(SELECT COUNT(*) FROM reviews),
			(SELECT COUNT(*) FROM replies),
			(SELECT COALESCE(AVG(sentiment_score), 0) FROM reviews)
	`).Scan(&report.TotalProjects, &report.TotalReviews, &report.TotalReplies, &report.AvgSentiment)
	if err != nil {
		return nil, fmt.Errorf("failed to query analytics totals: %w", err)
	}

	if report.SentimentTrend, err = db.SentimentTrend(ctx, 0, trendWindowDays); err != nil {
		return nil, err
	}
	if report.TopKeywords, err = db.TopKeywords(ctx, topKeywordLimit); err != nil {
		return nil, err
	}
	if report.ProjectPerformance, err = db.ProjectPerformance(ctx); err != nil {
		return nil, err
	}
	return report, nil
}

// SentimentTrend buckets reviews by day over the trailing window. A zero
// projectID covers all projects.
func (db *DB) SentimentTrend(ctx context.Context, projectID int64, days int) ([]models.SentimentPoint, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days).Unix()

	query := `
		SELECT strftime('%Y-%m-%d', created_at, 'unixepoch') AS day,
			AVG(sentiment_score), COUNT(*)
		FROM reviews
		WHERE created_at >= ?`
	args := []any{cutoff}
	if projectID != 0 {
		query += " AND project_id = ?"
		args = append(args, projectID)
	}
	query += " GROUP BY day ORDER BY day ASC"

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sentiment trend: %w", err)
	}
	defer rows.Close()

	var points []models.SentimentPoint
	for rows.Next() {
		var p models.SentimentPoint
		if err := rows.Scan(&p.Date, &p.AvgSentiment, &p.Count); err != nil {
			return nil, fmt.Errorf("failed to scan trend row: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return points, nil
}

// TopKeywords aggregates the per-review keyword lists across all reviews.
// The lists live as JSON arrays, so counting happens here rather than in
// SQL. Ties order alphabetically to keep output stable.
func (db *DB) TopKeywords(ctx context.Context, limit int) ([]models.WordFrequency, error) {
	rows, err := db.conn.QueryContext(ctx, "SELECT keywords FROM reviews")
	if err != nil {
		return nil, fmt.Errorf("failed to query keywords: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan keywords row: %w", err)
		}
		var keywords []string
		if err := json.Unmarshal([]byte(raw), &keywords); err != nil {
			return nil, fmt.Errorf("failed to unmarshal keywords: %w", err)
		}
		for _, k := range keywords {
			counts[k]++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	frequencies := make([]models.WordFrequency, 0, len(counts))
	for word, count := range counts {
		frequencies = append(frequencies, models.WordFrequency{Word: word, Count: count})
	}
	sort.Slice(frequencies, func(i, j int) bool {
		if frequencies[i].Count != frequencies[j].Count {
			return frequencies[i].Count > frequencies[j].Count
		}
		return frequencies[i].Word < frequencies[j].Word
	})
	if len(frequencies) > limit {
		frequencies = frequencies[:limit]
	}
	return frequencies, nil
}

// ProjectPerformance summarizes review volume and sentiment per project,
// busiest projects first.
func (db *DB) ProjectPerformance(ctx context.Context) ([]models.ProjectPerformance, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT p.id, p.name, COUNT(r.id),
			COALESCE(AVG(r.sentiment_score), 0),
			COALESCE(100.0 * SUM(CASE WHEN r.sentiment_label = ? THEN 1 ELSE 0 END) / COUNT(r.id), 0)
		FROM projects p
		LEFT JOIN reviews r ON r.project_id = p.id
		GROUP BY p.id
		ORDER BY COUNT(r.id) DESC, p.id ASC
	`, models.LabelPositive)
	if err != nil {
		return nil, fmt.Errorf("failed to query project performance: %w", err)
	}
	defer rows.Close()

	var performance []models.ProjectPerformance
	for rows.Next() {
		var p models.ProjectPerformance
		if err := rows.Scan(&p.ProjectID, &p.Name, &p.ReviewCount,
			&p.AvgSentiment, &p.PositivePercent); err != nil {
			return nil, fmt.Errorf("failed to scan performance row: %w", err)
		}
		performance = append(performance, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return performance, nil
}

// sentimentDistribution counts reviews by stored label.
func (db *DB) sentimentDistribution(ctx context.Context) (models.SentimentDistribution, error) {
	var dist models.SentimentDistribution

	rows, err := db.conn.QueryContext(ctx, `
		SELECT sentiment_label, COUNT(*)
		FROM reviews
		GROUP BY sentiment_label
	`)
	if err != nil {
		return dist, fmt.Errorf("failed to query sentiment distribution: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			label string
			count int
		)
		if err := rows.Scan(&label, &count); err != nil {
			return dist, fmt.Errorf("failed to scan distribution row: %w", err)
		}
		switch label {
		case models.LabelPositive:
			dist.Positive = count
		case models.LabelNegative:
			dist.Negative = count
		case models.LabelNeutral:
			dist.Neutral = count
		}
	}
	if err := rows.Err(); err != nil {
		return dist, fmt.Errorf("row iteration error: %w", err)
	}
	return dist, nil
}

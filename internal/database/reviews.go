package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zombar/reviewpulse/internal/models"
)

const reviewColumns = `id, project_id, title, content, author, source_url, rating,
	sentiment_score, sentiment_label, sentiment_confidence,
	positive_score, negative_score, neutral_score,
	word_count, readability_score, keywords, created_at, analyzed_at`

// CreateReview inserts a review, stamping its timestamps and filling in the
// assigned ID.
func (db *DB) CreateReview(ctx context.Context, review *models.Review) error {
	keywords, err := marshalKeywords(review.Keywords)
	if err != nil {
		return fmt.Errorf("failed to marshal keywords: %w", err)
	}

	created := now()
	review.CreatedAt = created
	review.AnalyzedAt = created

	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO reviews (project_id, title, content, author, source_url, rating,
			sentiment_score, sentiment_label, sentiment_confidence,
			positive_score, negative_score, neutral_score,
			word_count, readability_score, keywords, created_at, analyzed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, review.ProjectID, review.Title, review.Content, review.Author, review.SourceURL,
		review.Rating, review.SentimentScore, review.SentimentLabel, review.SentimentConfidence,
		review.PositiveScore, review.NegativeScore, review.NeutralScore,
		review.WordCount, review.ReadabilityScore, keywords,
		review.CreatedAt.Unix(), review.AnalyzedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert review: %w", err)
	}

	review.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read review id: %w", err)
	}
	return nil
}

// GetReview retrieves one review by ID.
func (db *DB) GetReview(ctx context.Context, id int64) (*models.Review, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT "+reviewColumns+" FROM reviews WHERE id = ?", id)

	review, err := scanReview(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("review %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return review, nil
}

// ListReviewsByProject returns a page of a project's reviews, newest first.
func (db *DB) ListReviewsByProject(ctx context.Context, projectID int64, limit, offset int) ([]models.Review, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT "+reviewColumns+` FROM reviews
		WHERE project_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`, projectID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	return collectReviews(rows)
}

// RecentReviews returns the latest reviews across all projects.
func (db *DB) RecentReviews(ctx context.Context, limit int) ([]models.Review, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT "+reviewColumns+` FROM reviews
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent reviews: %w", err)
	}
	defer rows.Close()

	return collectReviews(rows)
}

// DeleteReview removes a review and, through cascading deletes, its replies.
func (db *DB) DeleteReview(ctx context.Context, id int64) error {
	res, err := db.conn.ExecContext(ctx, "DELETE FROM reviews WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("review %d: %w", id, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReview(row rowScanner) (*models.Review, error) {
	var (
		r           models.Review
		rawKeywords string
		createdAt   int64
		analyzedAt  int64
	)
	err := row.Scan(&r.ID, &r.ProjectID, &r.Title, &r.Content, &r.Author, &r.SourceURL,
		&r.Rating, &r.SentimentScore, &r.SentimentLabel, &r.SentimentConfidence,
		&r.PositiveScore, &r.NegativeScore, &r.NeutralScore,
		&r.WordCount, &r.ReadabilityScore, &rawKeywords, &createdAt, &analyzedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(rawKeywords), &r.Keywords); err != nil {
		return nil, fmt.Errorf("failed to unmarshal keywords: %w", err)
	}
	r.CreatedAt = fromUnix(createdAt)
	r.AnalyzedAt = fromUnix(analyzedAt)
	return &r, nil
}

func collectReviews(rows *sql.Rows) ([]models.Review, error) {
	var reviews []models.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review row: %w", err)
		}
		reviews = append(reviews, *review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return reviews, nil
}

// marshalKeywords serializes keywords for the TEXT column, never null.
func marshalKeywords(keywords []string) (string, error) {
	if keywords == nil {
		keywords = []string{}
	}
	data, err := json.Marshal(keywords)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/zombar/reviewpulse/internal/models"
)

// CreateReply inserts a reply, stamping its timestamps and filling in the
// assigned ID.
func (db *DB) CreateReply(ctx context.Context, reply *models.Reply) error {
	keywords, err := marshalKeywords(reply.Keywords)
	if err != nil {
		return fmt.Errorf("failed to marshal keywords: %w", err)
	}

	created := now()
	reply.CreatedAt = created
	reply.AnalyzedAt = created

	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO replies (review_id, content, author,
			sentiment_score, sentiment_label, sentiment_confidence,
			positive_score, negative_score, neutral_score,
			word_count, keywords, created_at, analyzed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, reply.ReviewID, reply.Content, reply.Author,
		reply.SentimentScore, reply.SentimentLabel, reply.SentimentConfidence,
		reply.PositiveScore, reply.NegativeScore, reply.NeutralScore,
		reply.WordCount, keywords, reply.CreatedAt.Unix(), reply.AnalyzedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert reply: %w", err)
	}

	reply.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read reply id: %w", err)
	}
	return nil
}

// ListRepliesByReview returns a review's replies, oldest first.
func (db *DB) ListRepliesByReview(ctx context.Context, reviewID int64) ([]models.Reply, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, review_id, content, author,
			sentiment_score, sentiment_label, sentiment_confidence,
			positive_score, negative_score, neutral_score,
			word_count, keywords, created_at, analyzed_at
		FROM replies
		WHERE review_id = ?
		ORDER BY created_at ASC, id ASC
	`, reviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to query replies: %w", err)
	}
	defer rows.Close()

	var replies []models.Reply
	for rows.Next() {
		var (
			r           models.Reply
			rawKeywords string
			createdAt   int64
			analyzedAt  int64
		)
		if err := rows.Scan(&r.ID, &r.ReviewID, &r.Content, &r.Author,
			&r.SentimentScore, &r.SentimentLabel, &r.SentimentConfidence,
			&r.PositiveScore, &r.NegativeScore, &r.NeutralScore,
			&r.WordCount, &rawKeywords, &createdAt, &analyzedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reply row: %w", err)
		}
		if err := json.Unmarshal([]byte(rawKeywords), &r.Keywords); err != nil {
			return nil, fmt.Errorf("failed to unmarshal keywords: %w", err)
		}
		r.CreatedAt = fromUnix(createdAt)
		r.AnalyzedAt = fromUnix(analyzedAt)
		replies = append(replies, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return replies, nil
}

// CountReplies returns the total number of replies across all reviews.
func (db *DB) CountReplies(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM replies").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count replies: %w", err)
	}
	return count, nil
}

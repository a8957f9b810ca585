package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/zombar/reviewpulse/internal/models"
)

// Timestamps are stored as Unix seconds, so models round-trip exactly when
// truncated to the same resolution.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

func fromUnix(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

// CreateProject inserts a project and returns it with its assigned ID.
func (db *DB) CreateProject(ctx context.Context, name, description string) (*models.Project, error) {
	created := now()
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO projects (name, description, created_at)
		VALUES (?, ?, ?)
	`, name, description, created.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to insert project: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read project id: %w", err)
	}

	return &models.Project{ID: id, Name: name, Description: description, CreatedAt: created}, nil
}

// GetProject retrieves one project by ID.
func (db *DB) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	var (
		p         models.Project
		createdAt int64
	)
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, name, description, created_at
		FROM projects
		WHERE id = ?
	`, id).Scan(&p.ID, &p.Name, &p.Description, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	p.CreatedAt = fromUnix(createdAt)
	return &p, nil
}

// ListProjects returns all projects, newest first, each with its review
// count and average sentiment.
func (db *DB) ListProjects(ctx context.Context) ([]models.ProjectSummary, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT p.id, p.name, p.description, p.created_at,
			COUNT(r.id), COALESCE(AVG(r.sentiment_score), 0)
		FROM projects p
		LEFT JOIN reviews r ON r.project_id = p.id
		GROUP BY p.id
		ORDER BY p.created_at DESC, p.id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []models.ProjectSummary
	for rows.Next() {
		var (
			s         models.ProjectSummary
			createdAt int64
		)
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &createdAt,
			&s.ReviewCount, &s.AvgSentiment); err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		s.CreatedAt = fromUnix(createdAt)
		projects = append(projects, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return projects, nil
}

// GetProjectSummary retrieves one project with its review count and
// average sentiment.
func (db *DB) GetProjectSummary(ctx context.Context, id int64) (*models.ProjectSummary, error) {
	var (
		s         models.ProjectSummary
		createdAt int64
	)
	err := db.conn.QueryRowContext(ctx, `
		SELECT p.id, p.name, p.description, p.created_at,
			COUNT(r.id), COALESCE(AVG(r.sentiment_score), 0)
		FROM projects p
		LEFT JOIN reviews r ON r.project_id = p.id
		WHERE p.id = ?
		GROUP BY p.id
	`, id).Scan(&s.ID, &s.Name, &s.Description, &createdAt,
		&s.ReviewCount, &s.AvgSentiment)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project summary: %w", err)
	}
	s.CreatedAt = fromUnix(createdAt)
	return &s, nil
}

// DeleteProject removes a project. Cascading deletes take its reviews,
// replies, and import jobs with it.
func (db *DB) DeleteProject(ctx context.Context, id int64) error {
	res, err := db.conn.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("project %d: %w", id, ErrNotFound)
	}
	return nil
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/zombar/reviewpulse/internal/models"
)

// CreateImportJob records a new import job. The caller supplies the job ID,
// which doubles as the task ID on the queue.
func (db *DB) CreateImportJob(ctx context.Context, job *models.ImportJob) error {
	created := now()
	job.CreatedAt = created
	job.UpdatedAt = created
	if job.Status == "" {
		job.Status = models.JobStatusQueued
	}

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO import_jobs (id, project_id, url, status, review_id, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, job.ID, job.ProjectID, job.URL, job.Status, job.ReviewID, job.Error,
		job.CreatedAt.Unix(), job.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert import job: %w", err)
	}
	return nil
}

// GetImportJob retrieves one import job by ID.
func (db *DB) GetImportJob(ctx context.Context, id string) (*models.ImportJob, error) {
	var (
		job       models.ImportJob
		createdAt int64
		updatedAt int64
	)
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, project_id, url, status, review_id, error, created_at, updated_at
		FROM import_jobs
		WHERE id = ?
	`, id).Scan(&job.ID, &job.ProjectID, &job.URL, &job.Status, &job.ReviewID,
		&job.Error, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("import job %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get import job: %w", err)
	}
	job.CreatedAt = fromUnix(createdAt)
	job.UpdatedAt = fromUnix(updatedAt)
	return &job, nil
}

// UpdateImportJobStatus moves a job through its lifecycle, optionally
// attaching the created review or a failure message.
func (db *DB) UpdateImportJobStatus(ctx context.Context, id, status string, reviewID *int64, errMsg string) error {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE import_jobs
		SET status = ?, review_id = ?, error = ?, updated_at = ?
		WHERE id = ?
	`, status, reviewID, errMsg, now().Unix(), id)
	if err != nil {
		return fmt.Errorf("failed to update import job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("import job %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListImportJobsByProject returns a project's import jobs, newest first.
func (db *DB) ListImportJobsByProject(ctx context.Context, projectID int64, limit int) ([]models.ImportJob, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, project_id, url, status, review_id, error, created_at, updated_at
		FROM import_jobs
		WHERE project_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query import jobs: %w", err)
	}
	defer rows.Close()

	var jobs []models.ImportJob
	for rows.Next() {
		var (
			job       models.ImportJob
			createdAt int64
			updatedAt int64
		)
		if err := rows.Scan(&job.ID, &job.ProjectID, &job.URL, &job.Status,
			&job.ReviewID, &job.Error, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan import job row: %w", err)
		}
		job.CreatedAt = fromUnix(createdAt)
		job.UpdatedAt = fromUnix(updatedAt)
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return jobs, nil
}

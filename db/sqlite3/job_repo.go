package sqlite3

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/HCodeKeeper/ai-moderated-blog/autoreply"
	sq "github.com/Masterminds/squirrel"
)

const tableAutoReplyJobs = "auto_reply_jobs"

type JobRepository struct {
	db *sql.DB
}

var _ autoreply.JobRepository = (*JobRepository)(nil)

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

const (
	jobFieldID        = "id"
	jobFieldPostID    = "post_id"
	jobFieldCommentID = "comment_id"
	jobFieldRunAt     = "run_at"
	jobFieldStatus    = "status"
	jobFieldCreatedAt = "created_at"
)

func jobColumns() []string {
	return []string{
		jobFieldID,
		jobFieldPostID,
		jobFieldCommentID,
		jobFieldRunAt,
		jobFieldStatus,
		jobFieldCreatedAt,
	}
}

func scanJob(row sq.RowScanner) (*autoreply.Job, error) {
	var job autoreply.Job

	err := row.Scan(
		&job.ID,
		&job.PostID,
		&job.CommentID,
		&job.RunAt,
		&job.Status,
		&job.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	return &job, nil
}

func (repo *JobRepository) Insert(ctx context.Context, job *autoreply.Job) error {
	q := sq.Insert(tableAutoReplyJobs).
		Columns(jobColumns()...).
		Values(
			job.ID,
			job.PostID,
			job.CommentID,
			job.RunAt,
			job.Status,
			job.CreatedAt,
		).
		RunWith(repo.db)

	_, err := q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec insert: %w", err)
	}

	return nil
}

func (repo *JobRepository) Due(ctx context.Context, now time.Time, limit int) ([]*autoreply.Job, error) {
	q := sq.Select(jobColumns()...).
		From(tableAutoReplyJobs).
		Where(sq.Eq{jobFieldStatus: autoreply.JobStatusPending}).
		Where(sq.LtOrEq{jobFieldRunAt: now}).
		OrderBy(jobFieldRunAt + " ASC").
		Limit(uint64(limit)).
		RunWith(repo.db)

	rows, err := q.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			slog.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	jobs := make([]*autoreply.Job, 0)

	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}

		jobs = append(jobs, job)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return jobs, nil
}

func (repo *JobRepository) MarkDone(ctx context.Context, jobID string) error {
	return repo.setStatus(ctx, jobID, autoreply.JobStatusDone)
}

func (repo *JobRepository) MarkFailed(ctx context.Context, jobID string) error {
	return repo.setStatus(ctx, jobID, autoreply.JobStatusFailed)
}

func (repo *JobRepository) setStatus(ctx context.Context, jobID string, status autoreply.JobStatus) error {
	q := sq.Update(tableAutoReplyJobs).
		Set(jobFieldStatus, status).
		Where(sq.Eq{jobFieldID: jobID}).
		RunWith(repo.db)

	_, err := q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec update: %w", err)
	}

	return nil
}

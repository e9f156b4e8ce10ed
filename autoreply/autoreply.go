// Package autoreply implements the deferred AI-reply pipeline: comment
// creation schedules a delayed job when the parent post carries an auto-reply
// configuration, and a background worker executes due jobs.
package autoreply

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/HCodeKeeper/ai-moderated-blog/contents"
	"github.com/HCodeKeeper/ai-moderated-blog/discuss"
	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusPending JobStatus = "pending"
	JobStatusDone    JobStatus = "done"
	JobStatusFailed  JobStatus = "failed"
)

// Job is one scheduled AI-reply generation. Jobs are executed eventually,
// not exactly once, and are never proactively cancelled: a job whose comment
// disappeared detects that at execution time.
type Job struct {
	ID        string
	PostID    string
	CommentID string
	RunAt     time.Time
	Status    JobStatus
	CreatedAt time.Time
}

type JobRepository interface {
	Insert(ctx context.Context, job *Job) (err error)
	// Due returns up to limit pending jobs whose RunAt is not after now.
	Due(ctx context.Context, now time.Time, limit int) (jobs []*Job, err error)
	MarkDone(ctx context.Context, jobID string) (err error)
	MarkFailed(ctx context.Context, jobID string) (err error)
}

// ConfigSource looks up a post's auto-reply configuration. A post without
// one yields (nil, nil).
type ConfigSource interface {
	FindAutoReplyConfig(ctx context.Context, postID string) (config *contents.AutoReplyConfig, err error)
}

// Scheduler enqueues delayed AI-reply jobs onto the job table.
type Scheduler struct {
	jobRepo JobRepository
}

func NewScheduler(jobRepo JobRepository) *Scheduler {
	return &Scheduler{jobRepo: jobRepo}
}

func (s *Scheduler) Schedule(ctx context.Context, postID, commentID string, delay time.Duration) error {
	timeNow := time.Now().UTC()

	job := &Job{
		ID:        uuid.NewString(),
		PostID:    postID,
		CommentID: commentID,
		RunAt:     timeNow.Add(delay),
		Status:    JobStatusPending,
		CreatedAt: timeNow,
	}

	err := s.jobRepo.Insert(ctx, job)
	if err != nil {
		return fmt.Errorf("failed to insert auto-reply job: %w", err)
	}

	return nil
}

// Trigger reacts to comment creation. It is wired into the comments service
// as an explicit created-hook; scheduling is fire-and-forget and never fails
// the comment creation that caused it.
type Trigger struct {
	configs   ConfigSource
	scheduler *Scheduler
}

var _ discuss.CommentCreatedHook = (*Trigger)(nil)

func NewTrigger(configs ConfigSource, scheduler *Scheduler) *Trigger {
	return &Trigger{
		configs:   configs,
		scheduler: scheduler,
	}
}

func (t *Trigger) CommentCreated(ctx context.Context, comment *discuss.Comment) {
	config, err := t.configs.FindAutoReplyConfig(ctx, comment.PostID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to look up auto-reply config",
			"postId", comment.PostID, "commentId", comment.ID, "error", err)

		return
	}

	if config == nil {
		return
	}

	delay := time.Duration(config.DelaySecs) * time.Second

	err = t.scheduler.Schedule(ctx, comment.PostID, comment.ID, delay)
	if err != nil {
		slog.ErrorContext(ctx, "failed to schedule auto-reply job",
			"postId", comment.PostID, "commentId", comment.ID, "error", err)

		return
	}

	slog.InfoContext(ctx, "auto-reply scheduled",
		"postId", comment.PostID, "commentId", comment.ID, "delaySecs", config.DelaySecs)
}

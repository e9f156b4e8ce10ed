package autoreply

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/HCodeKeeper/ai-moderated-blog/contents"
	"github.com/HCodeKeeper/ai-moderated-blog/discuss"
	"github.com/HCodeKeeper/ai-moderated-blog/moderation"
	"github.com/HCodeKeeper/ai-moderated-blog/replies"
)

// CommentSource fetches a comment regardless of its blocked state.
type CommentSource interface {
	FindComment(ctx context.Context, commentID string) (comment *discuss.Comment, err error)
}

// PostSource fetches a post regardless of its blocked state.
type PostSource interface {
	FindPost(ctx context.Context, postID string) (post *contents.Post, err error)
}

// ReplyCreator persists a system-authored reply.
type ReplyCreator interface {
	CreateAIReply(ctx context.Context, req replies.CreateAIReplyRequest) (reply *replies.Reply, err error)
}

const defaultPollInterval = time.Second

// Worker polls the job table and executes due AI-reply jobs. Failures
// terminate the job attempt; there is no retry.
type Worker struct {
	jobRepo      JobRepository
	comments     CommentSource
	posts        PostSource
	generator    Generator
	replyCreator ReplyCreator
	batchSize    int
	pollInterval time.Duration
}

func NewWorker(
	jobRepo JobRepository,
	comments CommentSource,
	posts PostSource,
	generator Generator,
	replyCreator ReplyCreator,
	batchSize int,
) *Worker {
	return &Worker{
		jobRepo:      jobRepo,
		comments:     comments,
		posts:        posts,
		generator:    generator,
		replyCreator: replyCreator,
		batchSize:    batchSize,
		pollInterval: defaultPollInterval,
	}
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	slog.InfoContext(ctx, "auto-reply worker started", "pollInterval", w.pollInterval.String())

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "auto-reply worker stopped")

			return
		case <-ticker.C:
			w.runDueJobs(ctx)
		}
	}
}

func (w *Worker) runDueJobs(ctx context.Context) {
	jobs, err := w.jobRepo.Due(ctx, time.Now().UTC(), w.batchSize)
	if err != nil {
		slog.ErrorContext(ctx, "failed to fetch due auto-reply jobs", "error", err)

		return
	}

	for _, job := range jobs {
		w.process(ctx, job)
	}
}

func (w *Worker) process(ctx context.Context, job *Job) {
	comment, err := w.comments.FindComment(ctx, job.CommentID)
	if err != nil {
		var notExistErr *moderation.EntityDoesNotExistError
		if errors.As(err, &notExistErr) {
			// The comment went away before the delay elapsed; the opportunity
			// to reply has passed.
			slog.InfoContext(ctx, "comment deleted before auto-reply ran",
				"jobId", job.ID, "commentId", job.CommentID)
			w.finish(ctx, job, w.jobRepo.MarkDone)

			return
		}

		slog.ErrorContext(ctx, "failed to fetch comment for auto-reply",
			"jobId", job.ID, "commentId", job.CommentID, "error", err)
		w.finish(ctx, job, w.jobRepo.MarkFailed)

		return
	}

	post, err := w.posts.FindPost(ctx, job.PostID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to fetch post for auto-reply",
			"jobId", job.ID, "postId", job.PostID, "error", err)
		w.finish(ctx, job, w.jobRepo.MarkFailed)

		return
	}

	text, err := w.generator.Reply(ctx, post.Content, comment.Content)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate auto-reply",
			"jobId", job.ID, "commentId", job.CommentID, "error", err)
		w.finish(ctx, job, w.jobRepo.MarkFailed)

		return
	}

	text = truncateReply(text, moderation.MaxCommentLength)

	reply, err := w.replyCreator.CreateAIReply(ctx, replies.CreateAIReplyRequest{
		CommentID: job.CommentID,
		Content:   text,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create auto-reply",
			"jobId", job.ID, "commentId", job.CommentID, "error", err)
		w.finish(ctx, job, w.jobRepo.MarkFailed)

		return
	}

	slog.InfoContext(ctx, "auto-reply created",
		"jobId", job.ID, "commentId", job.CommentID, "replyId", reply.ID)
	w.finish(ctx, job, w.jobRepo.MarkDone)
}

func (w *Worker) finish(ctx context.Context, job *Job, mark func(context.Context, string) error) {
	err := mark(ctx, job.ID)
	if err != nil {
		slog.WarnContext(ctx, "failed to update auto-reply job status", "jobId", job.ID, "error", err)
	}
}

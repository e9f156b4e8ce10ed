// Package discuss manages comments under posts.
package discuss

import (
	"context"
	"fmt"
	"time"

	"github.com/HCodeKeeper/ai-moderated-blog/moderation"
	"github.com/google/uuid"
)

type Service struct {
	commentRepo CommentRepository
	posts       PostDirectory
	authors     AuthorDirectory
	detector    moderation.Detector
	hooks       []CommentCreatedHook
}

func NewService(
	commentRepo CommentRepository,
	posts PostDirectory,
	authors AuthorDirectory,
	detector moderation.Detector,
	hooks ...CommentCreatedHook,
) *Service {
	return &Service{
		commentRepo: commentRepo,
		posts:       posts,
		authors:     authors,
		detector:    detector,
		hooks:       hooks,
	}
}

type CreateCommentRequest struct {
	PostID   string
	AuthorID string
	Content  string
}

// UpdateCommentRequest names exactly the mutable comment fields.
type UpdateCommentRequest struct {
	Content string
}

// CreateComment persists a comment under an active post with the profanity
// outcome as its blocked flag. The created-hooks fire for every persisted
// comment, blocked ones included. A profane comment is saved and returned
// together with ContentContainsProfanityError.
func (svc *Service) CreateComment(ctx context.Context, req CreateCommentRequest) (*Comment, error) {
	err := moderation.ValidateCommentLength(req.Content)
	if err != nil {
		return nil, err
	}

	hasProfanity, err := svc.detector.Detect(ctx, []string{req.Content})
	if err != nil {
		return nil, fmt.Errorf("failed to detect profanity: %w", err)
	}

	postExists, err := svc.posts.ActivePostExists(ctx, req.PostID)
	if err != nil {
		return nil, fmt.Errorf("failed to check post existence: %w", err)
	}

	if !postExists {
		return nil, &moderation.EntityDoesNotExistError{Entity: "Post", ID: req.PostID}
	}

	authorExists, err := svc.authors.AuthorExists(ctx, req.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("failed to check author existence: %w", err)
	}

	if !authorExists {
		return nil, &moderation.EntityDoesNotExistError{Entity: "Author", ID: req.AuthorID}
	}

	timeNow := time.Now().UTC()

	comment := &Comment{
		ID:        uuid.NewString(),
		PostID:    req.PostID,
		AuthorID:  req.AuthorID,
		Content:   req.Content,
		IsBlocked: hasProfanity,
		CreatedAt: timeNow,
		UpdatedAt: timeNow,
	}

	err = svc.commentRepo.Insert(ctx, comment)
	if err != nil {
		return nil, fmt.Errorf("failed to insert comment: %w", err)
	}

	for _, hook := range svc.hooks {
		hook.CommentCreated(ctx, comment)
	}

	if comment.IsBlocked {
		return comment, &moderation.ContentContainsProfanityError{}
	}

	return comment, nil
}

func (svc *Service) ListCommentsByPost(ctx context.Context, postID string) ([]*Comment, error) {
	err := svc.requirePost(ctx, postID)
	if err != nil {
		return nil, err
	}

	comments, err := svc.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	return comments, nil
}

func (svc *Service) ListActiveCommentsByPost(ctx context.Context, postID string) ([]*Comment, error) {
	err := svc.requirePost(ctx, postID)
	if err != nil {
		return nil, err
	}

	comments, err := svc.commentRepo.ListByPostAndBlocked(ctx, postID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list active comments: %w", err)
	}

	return comments, nil
}

func (svc *Service) ListInactiveCommentsByPost(ctx context.Context, postID string) ([]*Comment, error) {
	err := svc.requirePost(ctx, postID)
	if err != nil {
		return nil, err
	}

	comments, err := svc.commentRepo.ListByPostAndBlocked(ctx, postID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list blocked comments: %w", err)
	}

	return comments, nil
}

func (svc *Service) GetComment(ctx context.Context, commentID string) (*Comment, error) {
	comment, err := svc.commentRepo.FindActive(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}

	return comment, nil
}

func (svc *Service) GetInactiveComment(ctx context.Context, commentID string) (*Comment, error) {
	comment, err := svc.commentRepo.FindBlocked(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find blocked comment: %w", err)
	}

	return comment, nil
}

// UpdateComment rejects profane content before persisting anything.
func (svc *Service) UpdateComment(ctx context.Context, commentID string, req UpdateCommentRequest) (*Comment, error) {
	comment, err := svc.commentRepo.FindActive(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}

	err = moderation.ValidateCommentLength(req.Content)
	if err != nil {
		return nil, err
	}

	err = moderation.ValidateProfanity(ctx, svc.detector, []string{req.Content})
	if err != nil {
		return nil, err
	}

	comment.Content = req.Content
	comment.UpdatedAt = time.Now().UTC()

	err = svc.commentRepo.Update(ctx, comment)
	if err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}

	return comment, nil
}

func (svc *Service) DeleteComment(ctx context.Context, commentID string) error {
	comment, err := svc.commentRepo.FindActive(ctx, commentID)
	if err != nil {
		return fmt.Errorf("failed to find comment: %w", err)
	}

	err = svc.commentRepo.Delete(ctx, comment.ID)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	return nil
}

func (svc *Service) requirePost(ctx context.Context, postID string) error {
	exists, err := svc.posts.PostExists(ctx, postID)
	if err != nil {
		return fmt.Errorf("failed to check post existence: %w", err)
	}

	if !exists {
		return &moderation.EntityDoesNotExistError{Entity: "Post", ID: postID}
	}

	return nil
}

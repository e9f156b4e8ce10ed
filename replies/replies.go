// Package replies manages the threaded replies under comments, including the
// system-authored replies the auto-reply pipeline produces.
package replies

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/HCodeKeeper/ai-moderated-blog/moderation"
	"github.com/google/uuid"
)

type Service struct {
	replyRepo ReplyRepository
	comments  CommentDirectory
	authors   AuthorDirectory
	detector  moderation.Detector
}

func NewService(
	replyRepo ReplyRepository,
	comments CommentDirectory,
	authors AuthorDirectory,
	detector moderation.Detector,
) *Service {
	return &Service{
		replyRepo: replyRepo,
		comments:  comments,
		authors:   authors,
		detector:  detector,
	}
}

type CreateReplyRequest struct {
	CommentID     string
	AuthorID      string
	Content       string
	ParentReplyID *string
}

// CreateAIReplyRequest carries a system-authored reply. There is no author
// and no profanity screening beyond the length bound.
type CreateAIReplyRequest struct {
	CommentID     string
	Content       string
	ParentReplyID *string
}

// UpdateReplyRequest names exactly the mutable reply fields.
type UpdateReplyRequest struct {
	Content string
}

// CreateReply persists a human-authored reply under an active comment with
// the profanity outcome as its blocked flag. A given parent reply must itself
// be active and belong to the same comment; a parent from another thread is
// reported as not found. Profane replies are saved and returned together with
// ContentContainsProfanityError.
func (svc *Service) CreateReply(ctx context.Context, req CreateReplyRequest) (*Reply, error) {
	err := moderation.ValidateCommentLength(req.Content)
	if err != nil {
		return nil, err
	}

	hasProfanity, err := svc.detector.Detect(ctx, []string{req.Content})
	if err != nil {
		return nil, fmt.Errorf("failed to detect profanity: %w", err)
	}

	err = svc.requireActiveComment(ctx, req.CommentID)
	if err != nil {
		return nil, err
	}

	authorExists, err := svc.authors.AuthorExists(ctx, req.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("failed to check author existence: %w", err)
	}

	if !authorExists {
		return nil, &moderation.EntityDoesNotExistError{Entity: "Author", ID: req.AuthorID}
	}

	if req.ParentReplyID != nil {
		err = svc.requireParentReply(ctx, *req.ParentReplyID, req.CommentID)
		if err != nil {
			return nil, err
		}
	}

	timeNow := time.Now().UTC()

	reply := &Reply{
		ID:            uuid.NewString(),
		CommentID:     req.CommentID,
		ParentReplyID: req.ParentReplyID,
		AuthorID:      &req.AuthorID,
		Content:       req.Content,
		IsBlocked:     hasProfanity,
		CreatedAt:     timeNow,
		UpdatedAt:     timeNow,
	}

	err = svc.replyRepo.Insert(ctx, reply)
	if err != nil {
		return nil, fmt.Errorf("failed to insert reply: %w", err)
	}

	if reply.IsBlocked {
		return reply, &moderation.ContentContainsProfanityError{}
	}

	return reply, nil
}

// CreateAIReply persists a system-authored reply: no author, never blocked,
// only the length bound is checked.
func (svc *Service) CreateAIReply(ctx context.Context, req CreateAIReplyRequest) (*Reply, error) {
	err := moderation.ValidateCommentLength(req.Content)
	if err != nil {
		return nil, err
	}

	err = svc.requireActiveComment(ctx, req.CommentID)
	if err != nil {
		return nil, err
	}

	timeNow := time.Now().UTC()

	reply := &Reply{
		ID:            uuid.NewString(),
		CommentID:     req.CommentID,
		ParentReplyID: req.ParentReplyID,
		Content:       req.Content,
		IsAIGenerated: true,
		IsBlocked:     false,
		CreatedAt:     timeNow,
		UpdatedAt:     timeNow,
	}

	err = svc.replyRepo.Insert(ctx, reply)
	if err != nil {
		return nil, fmt.Errorf("failed to insert AI reply: %w", err)
	}

	return reply, nil
}

func (svc *Service) ListRepliesByComment(ctx context.Context, commentID string) ([]*Reply, error) {
	err := svc.requireComment(ctx, commentID)
	if err != nil {
		return nil, err
	}

	result, err := svc.replyRepo.ListByComment(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list replies: %w", err)
	}

	return result, nil
}

func (svc *Service) ListActiveRepliesByComment(ctx context.Context, commentID string) ([]*Reply, error) {
	err := svc.requireComment(ctx, commentID)
	if err != nil {
		return nil, err
	}

	result, err := svc.replyRepo.ListByCommentAndBlocked(ctx, commentID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list active replies: %w", err)
	}

	return result, nil
}

func (svc *Service) ListInactiveRepliesByComment(ctx context.Context, commentID string) ([]*Reply, error) {
	err := svc.requireComment(ctx, commentID)
	if err != nil {
		return nil, err
	}

	result, err := svc.replyRepo.ListByCommentAndBlocked(ctx, commentID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list blocked replies: %w", err)
	}

	return result, nil
}

func (svc *Service) GetReply(ctx context.Context, replyID string) (*Reply, error) {
	reply, err := svc.replyRepo.FindActive(ctx, replyID)
	if err != nil {
		return nil, fmt.Errorf("failed to find reply: %w", err)
	}

	return reply, nil
}

func (svc *Service) GetInactiveReply(ctx context.Context, replyID string) (*Reply, error) {
	reply, err := svc.replyRepo.FindBlocked(ctx, replyID)
	if err != nil {
		return nil, fmt.Errorf("failed to find blocked reply: %w", err)
	}

	return reply, nil
}

// UpdateReply rejects profane content before persisting anything.
func (svc *Service) UpdateReply(ctx context.Context, replyID string, req UpdateReplyRequest) (*Reply, error) {
	reply, err := svc.replyRepo.FindActive(ctx, replyID)
	if err != nil {
		return nil, fmt.Errorf("failed to find reply: %w", err)
	}

	err = moderation.ValidateCommentLength(req.Content)
	if err != nil {
		return nil, err
	}

	err = moderation.ValidateProfanity(ctx, svc.detector, []string{req.Content})
	if err != nil {
		return nil, err
	}

	reply.Content = req.Content
	reply.UpdatedAt = time.Now().UTC()

	err = svc.replyRepo.Update(ctx, reply)
	if err != nil {
		return nil, fmt.Errorf("failed to update reply: %w", err)
	}

	return reply, nil
}

func (svc *Service) DeleteReply(ctx context.Context, replyID string) error {
	reply, err := svc.replyRepo.FindActive(ctx, replyID)
	if err != nil {
		return fmt.Errorf("failed to find reply: %w", err)
	}

	err = svc.replyRepo.Delete(ctx, reply.ID)
	if err != nil {
		return fmt.Errorf("failed to delete reply: %w", err)
	}

	return nil
}

func (svc *Service) requireComment(ctx context.Context, commentID string) error {
	exists, err := svc.comments.CommentExists(ctx, commentID)
	if err != nil {
		return fmt.Errorf("failed to check comment existence: %w", err)
	}

	if !exists {
		return &moderation.EntityDoesNotExistError{Entity: "Comment", ID: commentID}
	}

	return nil
}

func (svc *Service) requireActiveComment(ctx context.Context, commentID string) error {
	exists, err := svc.comments.ActiveCommentExists(ctx, commentID)
	if err != nil {
		return fmt.Errorf("failed to check comment existence: %w", err)
	}

	if !exists {
		return &moderation.EntityDoesNotExistError{Entity: "Comment", ID: commentID}
	}

	return nil
}

func (svc *Service) requireParentReply(ctx context.Context, parentReplyID, commentID string) error {
	parent, err := svc.replyRepo.FindActive(ctx, parentReplyID)
	if err != nil {
		var notExistErr *moderation.EntityDoesNotExistError
		if errors.As(err, &notExistErr) {
			return &moderation.EntityDoesNotExistError{Entity: "Parent Reply", ID: parentReplyID}
		}

		return fmt.Errorf("failed to find parent reply: %w", err)
	}

	// A parent from another comment's thread is not visible from here.
	if parent.CommentID != commentID {
		return &moderation.EntityDoesNotExistError{Entity: "Parent Reply", ID: parentReplyID}
	}

	return nil
}

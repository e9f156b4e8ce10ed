// Package contents manages posts and their moderation state.
package contents

import (
	"context"
	"fmt"
	"time"

	"github.com/HCodeKeeper/ai-moderated-blog/moderation"
	"github.com/google/uuid"
)

type Service struct {
	postRepo PostRepository
	authors  AuthorDirectory
	detector moderation.Detector
}

func NewService(postRepo PostRepository, authors AuthorDirectory, detector moderation.Detector) *Service {
	return &Service{
		postRepo: postRepo,
		authors:  authors,
		detector: detector,
	}
}

type CreatePostRequest struct {
	AuthorID string
	Title    string
	Content  string

	// AutoReplyDelaySecs, when set, attaches an AutoReplyConfig to the post.
	AutoReplyDelaySecs *int
}

// UpdatePostRequest names exactly the mutable post fields.
type UpdatePostRequest struct {
	Title   string
	Content string
}

// CreatePost validates the title, screens title and content for profanity and
// persists the post with the detection outcome as its blocked flag. A profane
// post IS saved; the returned ContentContainsProfanityError only signals the
// caller that moderation occurred, the post comes back alongside it.
func (svc *Service) CreatePost(ctx context.Context, req CreatePostRequest) (*Post, error) {
	err := moderation.ValidateTitle(req.Title)
	if err != nil {
		return nil, err
	}

	hasProfanity, err := svc.detector.Detect(ctx, []string{req.Title, req.Content})
	if err != nil {
		return nil, fmt.Errorf("failed to detect profanity: %w", err)
	}

	exists, err := svc.authors.AuthorExists(ctx, req.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("failed to check author existence: %w", err)
	}

	if !exists {
		return nil, &moderation.EntityDoesNotExistError{Entity: "Author", ID: req.AuthorID}
	}

	timeNow := time.Now().UTC()

	post := &Post{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Content:   req.Content,
		AuthorID:  req.AuthorID,
		IsBlocked: hasProfanity,
		CreatedAt: timeNow,
		UpdatedAt: timeNow,
	}

	if req.AutoReplyDelaySecs != nil {
		post.AutoReplyConfig = &AutoReplyConfig{
			PostID:    post.ID,
			DelaySecs: *req.AutoReplyDelaySecs,
		}
	}

	err = svc.postRepo.Insert(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("failed to insert post: %w", err)
	}

	if post.IsBlocked {
		return post, &moderation.ContentContainsProfanityError{}
	}

	return post, nil
}

func (svc *Service) ListPosts(ctx context.Context) ([]*Post, error) {
	posts, err := svc.postRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	return posts, nil
}

func (svc *Service) ListActivePosts(ctx context.Context) ([]*Post, error) {
	posts, err := svc.postRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active posts: %w", err)
	}

	return posts, nil
}

// GetPost returns the post only while it is not blocked; a blocked post is
// invisible here even though the row exists.
func (svc *Service) GetPost(ctx context.Context, postID string) (*Post, error) {
	post, err := svc.postRepo.FindActive(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to find post: %w", err)
	}

	return post, nil
}

func (svc *Service) GetInactivePost(ctx context.Context, postID string) (*Post, error) {
	post, err := svc.postRepo.FindBlocked(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to find blocked post: %w", err)
	}

	return post, nil
}

// UpdatePost revalidates the new title and content and applies them to an
// active post. Unlike creation, a profane update is rejected before anything
// is persisted, the post keeps its prior state.
func (svc *Service) UpdatePost(ctx context.Context, postID string, req UpdatePostRequest) (*Post, error) {
	post, err := svc.postRepo.FindActive(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to find post: %w", err)
	}

	err = moderation.ValidateTitle(req.Title)
	if err != nil {
		return nil, err
	}

	err = moderation.ValidateProfanity(ctx, svc.detector, []string{req.Title, req.Content})
	if err != nil {
		return nil, err
	}

	post.Title = req.Title
	post.Content = req.Content
	post.UpdatedAt = time.Now().UTC()

	err = svc.postRepo.Update(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	return post, nil
}

// DeletePost deletes an active post; comments and replies under it go with it.
func (svc *Service) DeletePost(ctx context.Context, postID string) error {
	post, err := svc.postRepo.FindActive(ctx, postID)
	if err != nil {
		return fmt.Errorf("failed to find post: %w", err)
	}

	err = svc.postRepo.Delete(ctx, post.ID)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	return nil
}

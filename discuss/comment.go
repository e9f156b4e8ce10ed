package discuss

import (
	"context"
	"time"
)

type Comment struct {
	ID        string
	PostID    string
	AuthorID  string
	Content   string
	IsBlocked bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CommentRepository interface {
	Insert(ctx context.Context, comment *Comment) (err error)
	FindActive(ctx context.Context, commentID string) (comment *Comment, err error)
	FindBlocked(ctx context.Context, commentID string) (comment *Comment, err error)
	ListByPost(ctx context.Context, postID string) (comments []*Comment, err error)
	ListByPostAndBlocked(ctx context.Context, postID string, blocked bool) (comments []*Comment, err error)
	Update(ctx context.Context, comment *Comment) (err error)
	Delete(ctx context.Context, commentID string) (err error)
}

// PostDirectory answers whether a post exists and is visible. Comments may
// only be created under active posts.
type PostDirectory interface {
	PostExists(ctx context.Context, postID string) (exists bool, err error)
	ActivePostExists(ctx context.Context, postID string) (exists bool, err error)
}

// AuthorDirectory answers whether a referenced author exists.
type AuthorDirectory interface {
	AuthorExists(ctx context.Context, authorID string) (exists bool, err error)
}

// CommentCreatedHook runs after a comment has been persisted. The creation
// path calls it explicitly; there is no implicit event wiring. A hook must
// not fail comment creation.
type CommentCreatedHook interface {
	CommentCreated(ctx context.Context, comment *Comment)
}

// CommentCreatedHookFunc adapts a function to the CommentCreatedHook interface.
type CommentCreatedHookFunc func(ctx context.Context, comment *Comment)

func (fn CommentCreatedHookFunc) CommentCreated(ctx context.Context, comment *Comment) {
	fn(ctx, comment)
}

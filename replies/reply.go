package replies

import (
	"context"
	"time"

	"github.com/HCodeKeeper/ai-moderated-blog/moderation"
)

type Reply struct {
	ID        string
	CommentID string

	// ParentReplyID is nil for top-level replies. Children form a tree under
	// their comment; a parent is deleted together with its children.
	ParentReplyID *string

	// AuthorID is nil only for AI-generated replies.
	AuthorID      *string
	Content       string
	IsAIGenerated bool
	IsBlocked     bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate is the last-resort structural guard the repository runs before
// persisting. The service layer should never produce a reply that fails it.
func (r *Reply) Validate() error {
	if r.AuthorID == nil && !r.IsAIGenerated {
		return &moderation.AnonymousReplyError{}
	}

	if r.ParentReplyID != nil && *r.ParentReplyID == r.ID {
		return &moderation.SelfReplyError{ID: r.ID}
	}

	return nil
}

type ReplyRepository interface {
	Insert(ctx context.Context, reply *Reply) (err error)
	FindActive(ctx context.Context, replyID string) (reply *Reply, err error)
	FindBlocked(ctx context.Context, replyID string) (reply *Reply, err error)
	ListByComment(ctx context.Context, commentID string) (replies []*Reply, err error)
	ListByCommentAndBlocked(ctx context.Context, commentID string, blocked bool) (replies []*Reply, err error)
	Update(ctx context.Context, reply *Reply) (err error)
	Delete(ctx context.Context, replyID string) (err error)
}

// CommentDirectory answers whether a comment exists and is visible. Replies
// may only be created under active comments.
type CommentDirectory interface {
	CommentExists(ctx context.Context, commentID string) (exists bool, err error)
	ActiveCommentExists(ctx context.Context, commentID string) (exists bool, err error)
}

// AuthorDirectory answers whether a referenced author exists.
type AuthorDirectory interface {
	AuthorExists(ctx context.Context, authorID string) (exists bool, err error)
}

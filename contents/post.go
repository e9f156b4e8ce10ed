package contents

import (
	"context"
	"time"
)

type Post struct {
	ID        string
	Title     string
	Content   string
	AuthorID  string
	IsBlocked bool
	CreatedAt time.Time
	UpdatedAt time.Time

	// AutoReplyConfig is the post's optional auto-reply configuration. It is
	// persisted atomically with the post and deleted with it.
	AutoReplyConfig *AutoReplyConfig
}

// AutoReplyConfig makes the system reply to every comment on the post after
// DelaySecs seconds.
type AutoReplyConfig struct {
	PostID    string
	DelaySecs int
}

type PostRepository interface {
	// Insert persists the post and its AutoReplyConfig, when present, in a
	// single transaction.
	Insert(ctx context.Context, post *Post) (err error)
	FindActive(ctx context.Context, postID string) (post *Post, err error)
	FindBlocked(ctx context.Context, postID string) (post *Post, err error)
	List(ctx context.Context) (posts []*Post, err error)
	ListActive(ctx context.Context) (posts []*Post, err error)
	Update(ctx context.Context, post *Post) (err error)
	Delete(ctx context.Context, postID string) (err error)
}

// AuthorDirectory answers whether a referenced author exists.
type AuthorDirectory interface {
	AuthorExists(ctx context.Context, authorID string) (exists bool, err error)
}

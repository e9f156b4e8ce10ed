package sqlite3

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/HCodeKeeper/ai-moderated-blog/contents"
	"github.com/HCodeKeeper/ai-moderated-blog/moderation"
	sq "github.com/Masterminds/squirrel"
)

const (
	tablePosts            = "posts"
	tableAutoReplyConfigs = "auto_reply_configs"
)

type PostRepository struct {
	db *sql.DB
}

var _ contents.PostRepository = (*PostRepository)(nil)

func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db: db}
}

const (
	postFieldID        = "id"
	postFieldTitle     = "title"
	postFieldContent   = "content"
	postFieldAuthorID  = "author_id"
	postFieldIsBlocked = "is_blocked"
	postFieldCreatedAt = "created_at"
	postFieldUpdatedAt = "updated_at"
)

func postColumns() []string {
	return []string{
		postFieldID,
		postFieldTitle,
		postFieldContent,
		postFieldAuthorID,
		postFieldIsBlocked,
		postFieldCreatedAt,
		postFieldUpdatedAt,
	}
}

func scanPost(row sq.RowScanner) (*contents.Post, error) {
	var post contents.Post

	err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Content,
		&post.AuthorID,
		&post.IsBlocked,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	return &post, nil
}

// Insert persists the post and, when present, its auto-reply config in one
// transaction: both rows exist afterwards or neither does.
func (repo *PostRepository) Insert(ctx context.Context, post *contents.Post) error {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		err := tx.Rollback()
		if err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.ErrorContext(ctx, "failed to rollback transaction", "error", err)
		}
	}()

	q := sq.Insert(tablePosts).
		Columns(postColumns()...).
		Values(
			post.ID,
			post.Title,
			post.Content,
			post.AuthorID,
			post.IsBlocked,
			post.CreatedAt,
			post.UpdatedAt,
		).
		RunWith(tx)

	_, err = q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec insert: %w", err)
	}

	if post.AutoReplyConfig != nil {
		q := sq.Insert(tableAutoReplyConfigs).
			Columns("post_id", "delay_secs").
			Values(post.AutoReplyConfig.PostID, post.AutoReplyConfig.DelaySecs).
			RunWith(tx)

		_, err = q.ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to exec insert auto-reply config: %w", err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (repo *PostRepository) find(ctx context.Context, postID string, blocked bool) (*contents.Post, error) {
	q := sq.Select(postColumns()...).
		From(tablePosts).
		Where(sq.Eq{postFieldID: postID, postFieldIsBlocked: blocked}).
		RunWith(repo.db)

	post, err := scanPost(q.QueryRowContext(ctx))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &moderation.EntityDoesNotExistError{Entity: "Post", ID: postID}
		}

		return nil, fmt.Errorf("failed to scan post: %w", err)
	}

	return post, nil
}

func (repo *PostRepository) FindActive(ctx context.Context, postID string) (*contents.Post, error) {
	return repo.find(ctx, postID, false)
}

func (repo *PostRepository) FindBlocked(ctx context.Context, postID string) (*contents.Post, error) {
	return repo.find(ctx, postID, true)
}

// FindPost fetches a post regardless of its blocked state.
func (repo *PostRepository) FindPost(ctx context.Context, postID string) (*contents.Post, error) {
	q := sq.Select(postColumns()...).
		From(tablePosts).
		Where(sq.Eq{postFieldID: postID}).
		RunWith(repo.db)

	post, err := scanPost(q.QueryRowContext(ctx))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &moderation.EntityDoesNotExistError{Entity: "Post", ID: postID}
		}

		return nil, fmt.Errorf("failed to scan post: %w", err)
	}

	return post, nil
}

func (repo *PostRepository) list(ctx context.Context, q sq.SelectBuilder) ([]*contents.Post, error) {
	rows, err := q.RunWith(repo.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			slog.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	posts := make([]*contents.Post, 0)

	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}

		posts = append(posts, post)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return posts, nil
}

func (repo *PostRepository) List(ctx context.Context) ([]*contents.Post, error) {
	q := sq.Select(postColumns()...).
		From(tablePosts).
		OrderBy(postFieldCreatedAt + " DESC")

	return repo.list(ctx, q)
}

func (repo *PostRepository) ListActive(ctx context.Context) ([]*contents.Post, error) {
	q := sq.Select(postColumns()...).
		From(tablePosts).
		Where(sq.Eq{postFieldIsBlocked: false}).
		OrderBy(postFieldCreatedAt + " DESC")

	return repo.list(ctx, q)
}

func (repo *PostRepository) Update(ctx context.Context, post *contents.Post) error {
	q := sq.Update(tablePosts).
		Set(postFieldTitle, post.Title).
		Set(postFieldContent, post.Content).
		Set(postFieldIsBlocked, post.IsBlocked).
		Set(postFieldUpdatedAt, post.UpdatedAt).
		Where(sq.Eq{postFieldID: post.ID}).
		RunWith(repo.db)

	_, err := q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec update: %w", err)
	}

	return nil
}

func (repo *PostRepository) Delete(ctx context.Context, postID string) error {
	q := sq.Delete(tablePosts).
		Where(sq.Eq{postFieldID: postID}).
		RunWith(repo.db)

	result, err := q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec delete: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return &moderation.EntityDoesNotExistError{Entity: "Post", ID: postID}
	}

	return nil
}

func (repo *PostRepository) PostExists(ctx context.Context, postID string) (bool, error) {
	return repo.exists(ctx, sq.Eq{postFieldID: postID})
}

func (repo *PostRepository) ActivePostExists(ctx context.Context, postID string) (bool, error) {
	return repo.exists(ctx, sq.Eq{postFieldID: postID, postFieldIsBlocked: false})
}

func (repo *PostRepository) exists(ctx context.Context, pred sq.Eq) (bool, error) {
	q := sq.Select("COUNT(*)").
		From(tablePosts).
		Where(pred).
		RunWith(repo.db)

	var count int

	err := q.QueryRowContext(ctx).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to count posts: %w", err)
	}

	return count > 0, nil
}

// FindAutoReplyConfig returns the post's auto-reply config or (nil, nil)
// when the post has none.
func (repo *PostRepository) FindAutoReplyConfig(ctx context.Context, postID string) (*contents.AutoReplyConfig, error) {
	q := sq.Select("post_id", "delay_secs").
		From(tableAutoReplyConfigs).
		Where(sq.Eq{"post_id": postID}).
		RunWith(repo.db)

	var config contents.AutoReplyConfig

	err := q.QueryRowContext(ctx).Scan(&config.PostID, &config.DelaySecs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to scan auto-reply config: %w", err)
	}

	return &config, nil
}

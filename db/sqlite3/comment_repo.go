package sqlite3

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/HCodeKeeper/ai-moderated-blog/discuss"
	"github.com/HCodeKeeper/ai-moderated-blog/moderation"
	sq "github.com/Masterminds/squirrel"
)

const tableComments = "comments"

type CommentRepository struct {
	db *sql.DB
}

var _ discuss.CommentRepository = (*CommentRepository)(nil)

func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

const (
	commentFieldID        = "id"
	commentFieldPostID    = "post_id"
	commentFieldAuthorID  = "author_id"
	commentFieldContent   = "content"
	commentFieldIsBlocked = "is_blocked"
	commentFieldCreatedAt = "created_at"
	commentFieldUpdatedAt = "updated_at"
)

func commentColumns() []string {
	return []string{
		commentFieldID,
		commentFieldPostID,
		commentFieldAuthorID,
		commentFieldContent,
		commentFieldIsBlocked,
		commentFieldCreatedAt,
		commentFieldUpdatedAt,
	}
}

func scanComment(row sq.RowScanner) (*discuss.Comment, error) {
	var comment discuss.Comment

	err := row.Scan(
		&comment.ID,
		&comment.PostID,
		&comment.AuthorID,
		&comment.Content,
		&comment.IsBlocked,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	return &comment, nil
}

func (repo *CommentRepository) Insert(ctx context.Context, comment *discuss.Comment) error {
	q := sq.Insert(tableComments).
		Columns(commentColumns()...).
		Values(
			comment.ID,
			comment.PostID,
			comment.AuthorID,
			comment.Content,
			comment.IsBlocked,
			comment.CreatedAt,
			comment.UpdatedAt,
		).
		RunWith(repo.db)

	_, err := q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec insert: %w", err)
	}

	return nil
}

func (repo *CommentRepository) find(ctx context.Context, commentID string, blocked bool) (*discuss.Comment, error) {
	q := sq.Select(commentColumns()...).
		From(tableComments).
		Where(sq.Eq{commentFieldID: commentID, commentFieldIsBlocked: blocked}).
		RunWith(repo.db)

	comment, err := scanComment(q.QueryRowContext(ctx))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &moderation.EntityDoesNotExistError{Entity: "Comment", ID: commentID}
		}

		return nil, fmt.Errorf("failed to scan comment: %w", err)
	}

	return comment, nil
}

func (repo *CommentRepository) FindActive(ctx context.Context, commentID string) (*discuss.Comment, error) {
	return repo.find(ctx, commentID, false)
}

func (repo *CommentRepository) FindBlocked(ctx context.Context, commentID string) (*discuss.Comment, error) {
	return repo.find(ctx, commentID, true)
}

// FindComment fetches a comment regardless of its blocked state.
func (repo *CommentRepository) FindComment(ctx context.Context, commentID string) (*discuss.Comment, error) {
	q := sq.Select(commentColumns()...).
		From(tableComments).
		Where(sq.Eq{commentFieldID: commentID}).
		RunWith(repo.db)

	comment, err := scanComment(q.QueryRowContext(ctx))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &moderation.EntityDoesNotExistError{Entity: "Comment", ID: commentID}
		}

		return nil, fmt.Errorf("failed to scan comment: %w", err)
	}

	return comment, nil
}

func (repo *CommentRepository) list(ctx context.Context, q sq.SelectBuilder) ([]*discuss.Comment, error) {
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

	comments := make([]*discuss.Comment, 0)

	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}

		comments = append(comments, comment)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return comments, nil
}

func (repo *CommentRepository) ListByPost(ctx context.Context, postID string) ([]*discuss.Comment, error) {
	q := sq.Select(commentColumns()...).
		From(tableComments).
		Where(sq.Eq{commentFieldPostID: postID}).
		OrderBy(commentFieldCreatedAt + " DESC")

	return repo.list(ctx, q)
}

func (repo *CommentRepository) ListByPostAndBlocked(
	ctx context.Context,
	postID string,
	blocked bool,
) ([]*discuss.Comment, error) {
	q := sq.Select(commentColumns()...).
		From(tableComments).
		Where(sq.Eq{commentFieldPostID: postID, commentFieldIsBlocked: blocked}).
		OrderBy(commentFieldCreatedAt + " DESC")

	return repo.list(ctx, q)
}

func (repo *CommentRepository) Update(ctx context.Context, comment *discuss.Comment) error {
	q := sq.Update(tableComments).
		Set(commentFieldContent, comment.Content).
		Set(commentFieldIsBlocked, comment.IsBlocked).
		Set(commentFieldUpdatedAt, comment.UpdatedAt).
		Where(sq.Eq{commentFieldID: comment.ID}).
		RunWith(repo.db)

	_, err := q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec update: %w", err)
	}

	return nil
}

func (repo *CommentRepository) Delete(ctx context.Context, commentID string) error {
	q := sq.Delete(tableComments).
		Where(sq.Eq{commentFieldID: commentID}).
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
		return &moderation.EntityDoesNotExistError{Entity: "Comment", ID: commentID}
	}

	return nil
}

func (repo *CommentRepository) CommentExists(ctx context.Context, commentID string) (bool, error) {
	return repo.exists(ctx, sq.Eq{commentFieldID: commentID})
}

func (repo *CommentRepository) ActiveCommentExists(ctx context.Context, commentID string) (bool, error) {
	return repo.exists(ctx, sq.Eq{commentFieldID: commentID, commentFieldIsBlocked: false})
}

func (repo *CommentRepository) exists(ctx context.Context, pred sq.Eq) (bool, error) {
	q := sq.Select("COUNT(*)").
		From(tableComments).
		Where(pred).
		RunWith(repo.db)

	var count int

	err := q.QueryRowContext(ctx).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to count comments: %w", err)
	}

	return count > 0, nil
}

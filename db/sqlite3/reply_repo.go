package sqlite3

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/HCodeKeeper/ai-moderated-blog/moderation"
	"github.com/HCodeKeeper/ai-moderated-blog/replies"
	sq "github.com/Masterminds/squirrel"
)

const tableReplies = "replies"

type ReplyRepository struct {
	db *sql.DB
}

var _ replies.ReplyRepository = (*ReplyRepository)(nil)

func NewReplyRepository(db *sql.DB) *ReplyRepository {
	return &ReplyRepository{db: db}
}

const (
	replyFieldID            = "id"
	replyFieldCommentID     = "comment_id"
	replyFieldParentReplyID = "parent_reply_id"
	replyFieldAuthorID      = "author_id"
	replyFieldContent       = "content"
	replyFieldIsAIGenerated = "is_ai_generated"
	replyFieldIsBlocked     = "is_blocked"
	replyFieldCreatedAt     = "created_at"
	replyFieldUpdatedAt     = "updated_at"
)

func replyColumns() []string {
	return []string{
		replyFieldID,
		replyFieldCommentID,
		replyFieldParentReplyID,
		replyFieldAuthorID,
		replyFieldContent,
		replyFieldIsAIGenerated,
		replyFieldIsBlocked,
		replyFieldCreatedAt,
		replyFieldUpdatedAt,
	}
}

func scanReply(row sq.RowScanner) (*replies.Reply, error) {
	var reply replies.Reply

	err := row.Scan(
		&reply.ID,
		&reply.CommentID,
		&reply.ParentReplyID,
		&reply.AuthorID,
		&reply.Content,
		&reply.IsAIGenerated,
		&reply.IsBlocked,
		&reply.CreatedAt,
		&reply.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	return &reply, nil
}

func (repo *ReplyRepository) Insert(ctx context.Context, reply *replies.Reply) error {
	err := reply.Validate()
	if err != nil {
		return fmt.Errorf("failed to validate reply: %w", err)
	}

	q := sq.Insert(tableReplies).
		Columns(replyColumns()...).
		Values(
			reply.ID,
			reply.CommentID,
			reply.ParentReplyID,
			reply.AuthorID,
			reply.Content,
			reply.IsAIGenerated,
			reply.IsBlocked,
			reply.CreatedAt,
			reply.UpdatedAt,
		).
		RunWith(repo.db)

	_, err = q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec insert: %w", err)
	}

	return nil
}

func (repo *ReplyRepository) find(ctx context.Context, replyID string, blocked bool) (*replies.Reply, error) {
	q := sq.Select(replyColumns()...).
		From(tableReplies).
		Where(sq.Eq{replyFieldID: replyID, replyFieldIsBlocked: blocked}).
		RunWith(repo.db)

	reply, err := scanReply(q.QueryRowContext(ctx))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &moderation.EntityDoesNotExistError{Entity: "Reply", ID: replyID}
		}

		return nil, fmt.Errorf("failed to scan reply: %w", err)
	}

	return reply, nil
}

func (repo *ReplyRepository) FindActive(ctx context.Context, replyID string) (*replies.Reply, error) {
	return repo.find(ctx, replyID, false)
}

func (repo *ReplyRepository) FindBlocked(ctx context.Context, replyID string) (*replies.Reply, error) {
	return repo.find(ctx, replyID, true)
}

func (repo *ReplyRepository) list(ctx context.Context, q sq.SelectBuilder) ([]*replies.Reply, error) {
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

	items := make([]*replies.Reply, 0)

	for rows.Next() {
		reply, err := scanReply(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reply: %w", err)
		}

		items = append(items, reply)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return items, nil
}

func (repo *ReplyRepository) ListByComment(ctx context.Context, commentID string) ([]*replies.Reply, error) {
	q := sq.Select(replyColumns()...).
		From(tableReplies).
		Where(sq.Eq{replyFieldCommentID: commentID}).
		OrderBy(replyFieldCreatedAt + " DESC")

	return repo.list(ctx, q)
}

func (repo *ReplyRepository) ListByCommentAndBlocked(
	ctx context.Context,
	commentID string,
	blocked bool,
) ([]*replies.Reply, error) {
	q := sq.Select(replyColumns()...).
		From(tableReplies).
		Where(sq.Eq{replyFieldCommentID: commentID, replyFieldIsBlocked: blocked}).
		OrderBy(replyFieldCreatedAt + " DESC")

	return repo.list(ctx, q)
}

func (repo *ReplyRepository) Update(ctx context.Context, reply *replies.Reply) error {
	q := sq.Update(tableReplies).
		Set(replyFieldContent, reply.Content).
		Set(replyFieldIsBlocked, reply.IsBlocked).
		Set(replyFieldUpdatedAt, reply.UpdatedAt).
		Where(sq.Eq{replyFieldID: reply.ID}).
		RunWith(repo.db)

	_, err := q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec update: %w", err)
	}

	return nil
}

func (repo *ReplyRepository) Delete(ctx context.Context, replyID string) error {
	q := sq.Delete(tableReplies).
		Where(sq.Eq{replyFieldID: replyID}).
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
		return &moderation.EntityDoesNotExistError{Entity: "Reply", ID: replyID}
	}

	return nil
}

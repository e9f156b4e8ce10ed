package sqlite3

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/HCodeKeeper/ai-moderated-blog/authentication"
	sq "github.com/Masterminds/squirrel"
)

const tableSessions = "sessions"

type SessionRepository struct {
	db *sql.DB
}

var _ authentication.SessionRepository = (*SessionRepository)(nil)

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const (
	sessionFieldID        = "id"
	sessionFieldUserID    = "user_id"
	sessionFieldCreatedAt = "created_at"
	sessionFieldExpiresAt = "expires_at"
)

func sessionColumns() []string {
	return []string{
		sessionFieldID,
		sessionFieldUserID,
		sessionFieldCreatedAt,
		sessionFieldExpiresAt,
	}
}

func scanSession(row sq.RowScanner) (*authentication.Session, error) {
	var session authentication.Session

	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.CreatedAt,
		&session.ExpiresAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	return &session, nil
}

func (repo *SessionRepository) Insert(ctx context.Context, session *authentication.Session) error {
	q := sq.Insert(tableSessions).
		Columns(sessionColumns()...).
		Values(
			session.ID,
			session.UserID,
			session.CreatedAt,
			session.ExpiresAt,
		).
		RunWith(repo.db)

	_, err := q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec insert: %w", err)
	}

	return nil
}

func (repo *SessionRepository) Find(ctx context.Context, sessionID string) (*authentication.Session, error) {
	q := sq.Select(sessionColumns()...).
		From(tableSessions).
		Where(sq.Eq{sessionFieldID: sessionID}).
		RunWith(repo.db)

	session, err := scanSession(q.QueryRowContext(ctx))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &authentication.SessionNotFoundError{ID: sessionID}
		}

		return nil, fmt.Errorf("failed to scan session: %w", err)
	}

	return session, nil
}

func (repo *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	q := sq.Delete(tableSessions).
		Where(sq.Eq{sessionFieldID: sessionID}).
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
		return &authentication.SessionNotFoundError{ID: sessionID}
	}

	return nil
}

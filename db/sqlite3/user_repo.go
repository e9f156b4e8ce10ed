package sqlite3

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/HCodeKeeper/ai-moderated-blog/authentication"
	sq "github.com/Masterminds/squirrel"
)

const tableUsers = "users"

type UserRepository struct {
	db *sql.DB
}

var _ authentication.UserRepository = (*UserRepository)(nil)

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const (
	userFieldID           = "id"
	userFieldUsername     = "username"
	userFieldEmail        = "email"
	userFieldPasswordHash = "password_hash"
	userFieldIsAdmin      = "is_admin"
	userFieldRegisteredAt = "registered_at"
)

func userColumns() []string {
	return []string{
		userFieldID,
		userFieldUsername,
		userFieldEmail,
		userFieldPasswordHash,
		userFieldIsAdmin,
		userFieldRegisteredAt,
	}
}

func scanUser(row sq.RowScanner) (*authentication.User, error) {
	var user authentication.User

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.IsAdmin,
		&user.RegisteredAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	return &user, nil
}

func (repo *UserRepository) Insert(ctx context.Context, user *authentication.User) error {
	q := sq.Insert(tableUsers).
		Columns(userColumns()...).
		Values(
			user.ID,
			user.Username,
			user.Email,
			user.PasswordHash,
			user.IsAdmin,
			user.RegisteredAt,
		).
		RunWith(repo.db)

	_, err := q.ExecContext(ctx)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.email") {
			return &authentication.UserAlreadyExistsError{Email: user.Email}
		}

		return fmt.Errorf("failed to exec insert: %w", err)
	}

	return nil
}

func (repo *UserRepository) Find(ctx context.Context, userID string) (*authentication.User, error) {
	q := sq.Select(userColumns()...).
		From(tableUsers).
		Where(sq.Eq{userFieldID: userID}).
		RunWith(repo.db)

	user, err := scanUser(q.QueryRowContext(ctx))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &authentication.UserNotFoundError{ID: userID}
		}

		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	return user, nil
}

func (repo *UserRepository) FindByEmail(ctx context.Context, email string) (*authentication.User, error) {
	q := sq.Select(userColumns()...).
		From(tableUsers).
		Where(sq.Eq{userFieldEmail: email}).
		RunWith(repo.db)

	user, err := scanUser(q.QueryRowContext(ctx))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &authentication.UserByEmailNotFoundError{Email: email}
		}

		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	return user, nil
}

func (repo *UserRepository) ListEmails(ctx context.Context) ([]string, error) {
	q := sq.Select(userFieldEmail).
		From(tableUsers).
		RunWith(repo.db)

	rows, err := q.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			slog.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	emails := make([]string, 0)

	for rows.Next() {
		var email string

		err := rows.Scan(&email)
		if err != nil {
			return nil, fmt.Errorf("failed to scan email: %w", err)
		}

		emails = append(emails, email)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return emails, nil
}

func (repo *UserRepository) AuthorExists(ctx context.Context, userID string) (bool, error) {
	q := sq.Select("COUNT(*)").
		From(tableUsers).
		Where(sq.Eq{userFieldID: userID}).
		RunWith(repo.db)

	var count int

	err := q.QueryRowContext(ctx).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to count users: %w", err)
	}

	return count > 0, nil
}

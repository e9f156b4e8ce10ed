package authentication

import (
	"context"
	"fmt"
	"time"
)

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	IsAdmin      bool
	RegisteredAt time.Time
}

type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

type UserRepository interface {
	Insert(ctx context.Context, user *User) (err error)
	Find(ctx context.Context, userID string) (user *User, err error)
	FindByEmail(ctx context.Context, email string) (user *User, err error)
	ListEmails(ctx context.Context) (emails []string, err error)
}

type SessionRepository interface {
	Insert(ctx context.Context, session *Session) (err error)
	Find(ctx context.Context, sessionID string) (session *Session, err error)
	Delete(ctx context.Context, sessionID string) (err error)
}

type UserAlreadyExistsError struct {
	Email string
}

func (err UserAlreadyExistsError) Error() string {
	return fmt.Sprintf("user with email %q already exists", err.Email)
}

type UserNotFoundError struct {
	ID string
}

func (err UserNotFoundError) Error() string {
	return fmt.Sprintf("user with id %q not found", err.ID)
}

type UserByEmailNotFoundError struct {
	Email string
}

func (err UserByEmailNotFoundError) Error() string {
	return fmt.Sprintf("user with email %q not found", err.Email)
}

type SessionNotFoundError struct {
	ID string
}

func (err SessionNotFoundError) Error() string {
	return fmt.Sprintf("session with id %q not found", err.ID)
}

type SessionExpiredError struct {
	ID string
}

func (err SessionExpiredError) Error() string {
	return fmt.Sprintf("session with id %q has expired", err.ID)
}

type InvalidEmailError struct {
	Email string
}

func (err InvalidEmailError) Error() string {
	return fmt.Sprintf("email %q is not valid", err.Email)
}

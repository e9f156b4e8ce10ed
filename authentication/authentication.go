// Package authentication manages users, credentials and sessions. The rest
// of the system only consumes the resulting boundary facts: a subject in the
// request context and the user's admin flag.
package authentication

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	authcontext "github.com/HCodeKeeper/ai-moderated-blog/authentication/context"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minEmailLength = 3

const defaultSessionDuration = 30 * 24 * time.Hour

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

type Service struct {
	userRepo    UserRepository
	sessionRepo SessionRepository

	// adminEmails are granted the admin flag at registration.
	adminEmails []string
	bloomFilter *BloomFilter
}

func NewService(userRepo UserRepository, sessionRepo SessionRepository, adminEmails []string) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		adminEmails: adminEmails,
	}
}

// LoadBloomFilter seeds the duplicate-email pre-check from the users table.
func (svc *Service) LoadBloomFilter(ctx context.Context, minCapacity uint, falsePositiveRate float64) error {
	emails, err := svc.userRepo.ListEmails(ctx)
	if err != nil {
		return fmt.Errorf("failed to list emails for bloom filter: %w", err)
	}

	capacity := uint(len(emails))
	if capacity < minCapacity {
		capacity = minCapacity
	}

	bf := NewBloomFilter(capacity, falsePositiveRate)
	for _, email := range emails {
		bf.Add(email)
	}

	svc.bloomFilter = bf

	return nil
}

func HashPassword(password string) (string, error) {
	bcryptHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(bcryptHash), nil
}

func (svc *Service) Register(ctx context.Context, username, email, password string) (*User, error) {
	if utf8.RuneCountInString(email) < minEmailLength || !strings.Contains(email, "@") {
		return nil, &InvalidEmailError{Email: email}
	}

	if svc.bloomFilter != nil && svc.bloomFilter.Test(email) {
		// Possible false positive, confirm against the table.
		_, err := svc.userRepo.FindByEmail(ctx, email)
		if err == nil {
			return nil, &UserAlreadyExistsError{Email: email}
		}

		var notFoundErr *UserByEmailNotFoundError
		if !errors.As(err, &notFoundErr) {
			return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
		}
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		IsAdmin:      slices.Contains(svc.adminEmails, email),
		RegisteredAt: time.Now().UTC(),
	}

	err = svc.userRepo.Insert(ctx, user)
	if err != nil {
		var alreadyExistsErr *UserAlreadyExistsError
		if errors.As(err, &alreadyExistsErr) {
			if svc.bloomFilter != nil {
				svc.bloomFilter.Add(email)
			}

			return nil, alreadyExistsErr
		}

		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	if svc.bloomFilter != nil {
		svc.bloomFilter.Add(email)
	}

	user.PasswordHash = ""

	return user, nil
}

func (svc *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := svc.userRepo.FindByEmail(ctx, email)
	if err != nil {
		var notFoundErr *UserByEmailNotFoundError
		if errors.As(err, &notFoundErr) {
			return nil, ErrInvalidCredentials
		}

		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}

		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	timeNow := time.Now().UTC()

	session := &Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: timeNow,
		ExpiresAt: timeNow.Add(defaultSessionDuration),
	}

	err = svc.sessionRepo.Insert(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

func (svc *Service) Logout(ctx context.Context, sessionID string) error {
	err := svc.sessionRepo.Delete(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

func (svc *Service) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	session, err := svc.sessionRepo.Find(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	if session.ExpiresAt.Before(time.Now()) {
		return nil, &SessionExpiredError{ID: sessionID}
	}

	return session, nil
}

// GetCurrentUser returns the user identified by the subject on the context.
func (svc *Service) GetCurrentUser(ctx context.Context) (*User, error) {
	subject := authcontext.GetSubject(ctx)
	if subject == authcontext.Anonymous {
		return nil, ErrNotAuthenticated
	}

	return svc.GetUser(ctx, subject)
}

func (svc *Service) GetUser(ctx context.Context, userID string) (*User, error) {
	user, err := svc.userRepo.Find(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by id: %w", err)
	}

	user.PasswordHash = "" // clear password hash before returning user

	return user, nil
}

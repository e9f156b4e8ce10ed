package moderation

import "fmt"

type InvalidTitleLengthError struct {
	Length int
}

func (err InvalidTitleLengthError) Error() string {
	return fmt.Sprintf(
		"title must be between %d and %d characters, got %d",
		MinTitleLength, MaxTitleLength, err.Length,
	)
}

type InvalidContentLengthError struct {
	Length int
	Min    int
	Max    int
}

func (err InvalidContentLengthError) Error() string {
	return fmt.Sprintf(
		"content must be between %d and %d characters, got %d",
		err.Min, err.Max, err.Length,
	)
}

type ContentContainsProfanityError struct{}

func (err ContentContainsProfanityError) Error() string {
	return "content contains profanity"
}

// EntityDoesNotExistError is the canonical not-found signal: the referenced
// entity is absent, or present but not visible to the operation (blocked rows
// are invisible to the active accessors).
type EntityDoesNotExistError struct {
	Entity string
	ID     string
}

func (err EntityDoesNotExistError) Error() string {
	return fmt.Sprintf("%s with id %q does not exist", err.Entity, err.ID)
}

// AnonymousReplyError is a last-resort structural guard: a reply without an
// author that is not AI-generated must never be persisted.
type AnonymousReplyError struct{}

func (err AnonymousReplyError) Error() string {
	return "a reply must have an author or be marked as AI-generated"
}

// SelfReplyError guards against a reply referencing itself as parent.
type SelfReplyError struct {
	ID string
}

func (err SelfReplyError) Error() string {
	return fmt.Sprintf("reply %q cannot be its own parent", err.ID)
}

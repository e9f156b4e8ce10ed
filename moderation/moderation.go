// Package moderation holds the content rules shared by the posts, comments and
// replies services: length bounds, profanity detection and the domain error
// taxonomy the services raise.
package moderation

import (
	"context"
	"fmt"
	"unicode/utf8"
)

const (
	MinTitleLength   = 5
	MaxTitleLength   = 100
	MinCommentLength = 1
	MaxCommentLength = 500
)

// Detector reports whether any of the given texts contains profanity. It is
// stateless and side-effect free. An error means the classifier itself is
// unavailable; moderation never defaults to allow or block in that case, the
// error propagates to the caller.
type Detector interface {
	Detect(ctx context.Context, texts []string) (bool, error)
}

func ValidateTitle(title string) error {
	length := utf8.RuneCountInString(title)
	if length < MinTitleLength || length > MaxTitleLength {
		return &InvalidTitleLengthError{Length: length}
	}

	return nil
}

// ValidateCommentLength bounds comment and reply content.
func ValidateCommentLength(content string) error {
	length := utf8.RuneCountInString(content)
	if length < MinCommentLength || length > MaxCommentLength {
		return &InvalidContentLengthError{Length: length, Min: MinCommentLength, Max: MaxCommentLength}
	}

	return nil
}

// ValidateProfanity fails with ContentContainsProfanityError when any of the
// texts is classified as profane. Update paths use it to reject a change
// outright; create paths call the detector directly and record the outcome as
// the entity's blocked flag instead.
func ValidateProfanity(ctx context.Context, detector Detector, texts []string) error {
	hasProfanity, err := detector.Detect(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to detect profanity: %w", err)
	}

	if hasProfanity {
		return &ContentContainsProfanityError{}
	}

	return nil
}

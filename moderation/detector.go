package moderation

import (
	"context"

	goaway "github.com/TwiN/go-away"
)

// WordListDetector classifies text with the go-away profanity word list.
type WordListDetector struct {
	detector *goaway.ProfanityDetector
}

var _ Detector = (*WordListDetector)(nil)

func NewWordListDetector() *WordListDetector {
	return &WordListDetector{
		detector: goaway.NewProfanityDetector(),
	}
}

// Detect returns true if any of the texts is profane, the boolean OR across
// per-text predictions.
func (d *WordListDetector) Detect(_ context.Context, texts []string) (bool, error) {
	for _, text := range texts {
		if d.detector.IsProfane(text) {
			return true, nil
		}
	}

	return false, nil
}

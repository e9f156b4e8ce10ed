package autoreply

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
)

// Generator produces the text of an AI reply to a comment on a post.
type Generator interface {
	Reply(ctx context.Context, postContent, commentContent string) (reply string, err error)
}

// As tokens can be subwords, the actual output can run slightly longer.
const maxReplyTokens = 100

const geminiModelName = "gemini-1.5-flash"

// GeminiGenerator backs Generator with the Gemini API. Construct it with an
// explicitly created client during bootstrap and inject it; there is no
// package-level instance.
type GeminiGenerator struct {
	model *genai.GenerativeModel
}

var _ Generator = (*GeminiGenerator)(nil)

func NewGeminiGenerator(client *genai.Client, systemInstruction string) *GeminiGenerator {
	model := client.GenerativeModel(geminiModelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemInstruction)},
	}
	model.SetMaxOutputTokens(maxReplyTokens)

	return &GeminiGenerator{model: model}
}

func (g *GeminiGenerator) Reply(ctx context.Context, postContent, commentContent string) (string, error) {
	prompt := "User commented: " + commentContent + ". \n| This is the post content: " + postContent

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("model returned no candidates")
	}

	var reply string

	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			reply += string(text)
		}
	}

	if reply == "" {
		return "", errors.New("model returned no text parts")
	}

	return reply, nil
}

// truncateReply bounds a generated reply to maxLength characters so it fits
// the reply content constraints.
func truncateReply(reply string, maxLength int) string {
	runes := []rune(reply)
	if len(runes) <= maxLength {
		return reply
	}

	return string(runes[:maxLength])
}

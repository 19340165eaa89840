// Package gemini holds the shared Google Gemini client plumbing used by the
// extractor and generator collaborators.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

var (
	ErrAPIKeyRequired = errors.New("gemini api key is required")
	ErrEmptyResponse  = errors.New("gemini returned no content")
	ErrBlocked        = errors.New("gemini blocked the prompt")
)

// Model is the subset of *genai.GenerativeModel the collaborators call.
type Model interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// ModelFactory returns a configured model for one call.
type ModelFactory func(name string, maxOutputTokens int) Model

func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrAPIKeyRequired
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return client, nil
}

// Factory builds models from client. A maxOutputTokens of zero leaves the model default.
func Factory(client *genai.Client) ModelFactory {
	return func(name string, maxOutputTokens int) Model {
		m := client.GenerativeModel(name)
		if maxOutputTokens > 0 {
			m.SetMaxOutputTokens(int32(maxOutputTokens))
		}
		return m
	}
}

// ResponseText joins the text parts of the first candidate. A candidate
// without text yields "" and no error; a blocked prompt or a response
// without candidates is an error.
func ResponseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", ErrEmptyResponse
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return "", fmt.Errorf("%w: %s", ErrBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", ErrEmptyResponse
	}

	cand := resp.Candidates[0]
	if cand.FinishReason == genai.FinishReasonSafety || cand.FinishReason == genai.FinishReasonRecitation {
		return "", fmt.Errorf("%w: %s", ErrBlocked, cand.FinishReason)
	}
	if cand.Content == nil {
		return "", nil
	}

	var b strings.Builder
	for _, part := range cand.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String(), nil
}

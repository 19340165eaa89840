// Package generator produces text completions from an LLM.
package generator

import (
	"context"
	"errors"
)

var ErrEmptyPrompt = errors.New("prompt is empty")

// Generator completes prompt, producing at most maxTokens output tokens (zero means the model default).
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

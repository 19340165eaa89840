package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"

	"lexiapi/internal/gemini"
)

// Gemini generates text with a Gemini model.
type Gemini struct {
	models gemini.ModelFactory
	model  string
}

func NewGemini(models gemini.ModelFactory, model string) *Gemini {
	return &Gemini{models: models, model: model}
}

func (g *Gemini) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}
	resp, err := g.models(g.model, maxTokens).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text, err := gemini.ResponseText(resp)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return strings.TrimSpace(text), nil
}

package extractor

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"

	"lexiapi/internal/gemini"
)

const extractionPrompt = "Extract the complete text of this document exactly as written. " +
	"Return only the document text without commentary or formatting."

const defaultMimeType = "application/pdf"

// Gemini sends the raw document to a Gemini model and returns the transcribed text.
type Gemini struct {
	models gemini.ModelFactory
	model  string
}

func NewGemini(models gemini.ModelFactory, model string) *Gemini {
	return &Gemini{models: models, model: model}
}

func (g *Gemini) Extract(ctx context.Context, content []byte, mimeType string) (string, error) {
	if len(content) == 0 {
		return "", ErrEmptyDocument
	}
	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = defaultMimeType
	}

	resp, err := g.models(g.model, 0).GenerateContent(ctx,
		genai.Blob{MIMEType: mimeType, Data: content},
		genai.Text(extractionPrompt),
	)
	if err != nil {
		return "", fmt.Errorf("gemini extract: %w", err)
	}
	text, err := gemini.ResponseText(resp)
	if err != nil {
		return "", fmt.Errorf("gemini extract: %w", err)
	}
	return text, nil
}

package generator

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// LangChain generates text through any langchaingo model.
type LangChain struct {
	llm llms.Model
}

func NewLangChain(llm llms.Model) *LangChain {
	return &LangChain{llm: llm}
}

// NewOllama connects to an Ollama server. httpClient may be nil.
func NewOllama(serverURL, model string, httpClient *http.Client) (*LangChain, error) {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	traced := *httpClient
	traced.Transport = otelhttp.NewTransport(httpClient.Transport)

	llm, err := ollama.New(
		ollama.WithModel(model),
		ollama.WithHTTPClient(&traced),
		ollama.WithServerURL(serverURL))
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}
	return NewLangChain(llm), nil
}

func (l *LangChain) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}
	var opts []llms.CallOption
	if maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(maxTokens))
	}
	out, err := llms.GenerateFromSinglePrompt(ctx, l.llm, prompt, opts...)
	if err != nil {
		return "", fmt.Errorf("llm generate: %w", err)
	}
	return strings.TrimSpace(out), nil
}

package extractor

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lexiapi/internal/extractor/mocks"
	"lexiapi/internal/gemini"
	"lexiapi/internal/logging"
	"lexiapi/internal/resilience"
)

func TestLocal_PlainTextKeptVerbatim(t *testing.T) {
	for name, in := range map[string]string{
		"surrounding whitespace": "  This lease begins on 1 May.\n",
		"leading blank lines":    "\n\n  Title\nbody",
		"whitespace only":        "   \n\t",
	} {
		t.Run(name, func(t *testing.T) {
			text, err := NewLocal().Extract(context.Background(), []byte(in), "text/plain")
			require.NoError(t, err)
			assert.Equal(t, in, text)
		})
	}
}

func TestLocal_ZeroBytes(t *testing.T) {
	_, err := NewLocal().Extract(context.Background(), nil, "text/plain")
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestLocal_Binary(t *testing.T) {
	_, err := NewLocal().Extract(context.Background(), []byte{0xff, 0xfe, 0x00, 0x81}, "image/png")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.ErrorContains(t, err, "image/png")
}

func TestLocal_MalformedPDF(t *testing.T) {
	_, err := NewLocal().Extract(context.Background(), []byte("%PDF-1.7\nnot really a pdf"), "application/pdf")
	assert.ErrorContains(t, err, "pdf")
}

func TestLocal_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLocal().Extract(ctx, []byte("text"), "text/plain")
	assert.ErrorIs(t, err, context.Canceled)
}

type fakeModel struct {
	name  string
	parts []genai.Part
	resp  *genai.GenerateContentResponse
	err   error
}

func (f *fakeModel) factory() gemini.ModelFactory {
	return func(name string, _ int) gemini.Model {
		f.name = name
		return f
	}
}

func (f *fakeModel) GenerateContent(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	f.parts = parts
	return f.resp, f.err
}

func textResponse(s string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []genai.Part{genai.Text(s)}}}},
	}
}

func TestGemini_Extract(t *testing.T) {
	fm := &fakeModel{resp: textResponse("  Clause 1. Payment terms.  ")}
	ext := NewGemini(fm.factory(), "gemini-1.5-flash")

	text, err := ext.Extract(context.Background(), []byte("%PDF-1.4"), "")
	require.NoError(t, err)
	assert.Equal(t, "  Clause 1. Payment terms.  ", text)
	assert.Equal(t, "gemini-1.5-flash", fm.name)

	require.Len(t, fm.parts, 2)
	blob, ok := fm.parts[0].(genai.Blob)
	require.True(t, ok)
	assert.Equal(t, "application/pdf", blob.MIMEType)
	assert.Equal(t, []byte("%PDF-1.4"), blob.Data)
}

func TestGemini_KeepsMimeHint(t *testing.T) {
	fm := &fakeModel{resp: textResponse("hello")}
	_, err := NewGemini(fm.factory(), "m").Extract(context.Background(), []byte("hello"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", fm.parts[0].(genai.Blob).MIMEType)
}

func TestGemini_Errors(t *testing.T) {
	fm := &fakeModel{err: errors.New("quota exceeded")}
	_, err := NewGemini(fm.factory(), "m").Extract(context.Background(), []byte("x"), "application/pdf")
	assert.ErrorContains(t, err, "quota exceeded")

	fm = &fakeModel{resp: &genai.GenerateContentResponse{}}
	_, err = NewGemini(fm.factory(), "m").Extract(context.Background(), []byte("x"), "application/pdf")
	assert.ErrorIs(t, err, gemini.ErrEmptyResponse)

	fm = &fakeModel{resp: textResponse("")}
	text, err := NewGemini(fm.factory(), "m").Extract(context.Background(), []byte("scan"), "image/png")
	require.NoError(t, err)
	assert.Empty(t, text)

	_, err = NewGemini(fm.factory(), "m").Extract(context.Background(), nil, "application/pdf")
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestWithGuard(t *testing.T) {
	guard, err := resilience.NewGuard(resilience.Config{}, logging.Discard(), prometheus.NewRegistry())
	require.NoError(t, err)

	next := new(mocks.MockExtractor)
	next.On("Extract", mock.Anything, []byte("doc"), "text/plain").Return("doc", nil).Once()
	next.On("Extract", mock.Anything, []byte("bad"), "text/plain").Return("", errors.New("boom")).Once()

	ext := WithGuard(next, guard)
	text, err := ext.Extract(context.Background(), []byte("doc"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "doc", text)

	_, err = ext.Extract(context.Background(), []byte("bad"), "text/plain")
	assert.ErrorContains(t, err, "boom")
	next.AssertExpectations(t)

	assert.Same(t, next, WithGuard(next, nil))
}


package extractor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

var pdfMagic = []byte("%PDF-")

// Local extracts text in-process: PDFs through ledongthuc/pdf, anything else as UTF-8 text.
type Local struct{}

func NewLocal() *Local {
	return &Local{}
}

func (l *Local) Extract(ctx context.Context, content []byte, mimeType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(content) == 0 {
		return "", ErrEmptyDocument
	}

	if bytes.HasPrefix(content, pdfMagic) {
		return pdfText(content)
	}
	if !utf8.Valid(content) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, mimeType)
	}
	return string(content), nil
}

func pdfText(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	var buf strings.Builder
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return buf.String(), nil
}

// Package extractor turns stored document bytes into plain text.
package extractor

import (
	"context"
	"errors"
)

var (
	ErrEmptyDocument     = errors.New("document is empty")
	ErrUnsupportedFormat = errors.New("unsupported document format")
)

// Extractor returns the full text of a document as extracted, whitespace
// included. A document without a text layer yields "". mimeType is a hint.
type Extractor interface {
	Extract(ctx context.Context, content []byte, mimeType string) (string, error)
}

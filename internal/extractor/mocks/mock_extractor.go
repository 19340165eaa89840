package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockExtractor is a testify mock for extractor.Extractor.
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, content []byte, mimeType string) (string, error) {
	args := m.Called(ctx, content, mimeType)
	return args.String(0), args.Error(1)
}

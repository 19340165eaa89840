package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockGenerator is a testify mock for generator.Generator.
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	args := m.Called(ctx, prompt, maxTokens)
	return args.String(0), args.Error(1)
}

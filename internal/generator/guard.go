package generator

import (
	"context"

	"lexiapi/internal/resilience"
)

const operation = "generate"

type guarded struct {
	next  Generator
	guard *resilience.Guard
}

// WithGuard runs every generation through guard. A nil guard returns next unchanged.
func WithGuard(next Generator, guard *resilience.Guard) Generator {
	if guard == nil {
		return next
	}
	return &guarded{next: next, guard: guard}
}

func (g *guarded) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return resilience.Do(ctx, g.guard, operation, func(ctx context.Context) (string, error) {
		return g.next.Generate(ctx, prompt, maxTokens)
	})
}

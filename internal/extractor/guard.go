package extractor

import (
	"context"

	"lexiapi/internal/resilience"
)

const operation = "extract"

type guarded struct {
	next  Extractor
	guard *resilience.Guard
}

// WithGuard runs every extraction through guard. A nil guard returns next unchanged.
func WithGuard(next Extractor, guard *resilience.Guard) Extractor {
	if guard == nil {
		return next
	}
	return &guarded{next: next, guard: guard}
}

func (g *guarded) Extract(ctx context.Context, content []byte, mimeType string) (string, error) {
	return resilience.Do(ctx, g.guard, operation, func(ctx context.Context) (string, error) {
		return g.next.Extract(ctx, content, mimeType)
	})
}

package repository

import (
	"context"

	"lexiapi/internal/model"
)

// DocumentRepository defines data access for document records using SQL queries only.
// Implementations hold no business logic.
type DocumentRepository interface {
	// Create inserts a new document record with summary and risks unset.
	// Returns ErrDuplicateID if a record with the same ID already exists.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID, or ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// UpdateAnalysis replaces summary and risks in a single statement, so readers
	// never observe one field updated without the other. Returns ErrNotFound if the
	// record does not exist.
	UpdateAnalysis(ctx context.Context, id, summary, risks string) error

	// ListAll returns every document record from a single snapshot.
	ListAll(ctx context.Context) ([]model.Document, error)
}

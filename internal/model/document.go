package model

import "time"

// Document is the persisted metadata for an uploaded file.
// Summary and Risks stay nil until the document has been analyzed.
// This is a pure domain model with no database-specific dependencies or tags.
type Document struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	Summary     *string   `json:"summary"`
	Risks       *string   `json:"risks"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Analyzed reports whether the document has a summary that questions can be asked against.
func (d *Document) Analyzed() bool {
	return d != nil && d.Summary != nil && *d.Summary != ""
}

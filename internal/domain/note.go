package domain

import (
	"fmt"
	"time"
)

// Note is one persisted journal note. Notes are immutable once created:
// there is no update operation, only create, list and delete.
type Note struct {
	ID        string
	Title     string
	Content   string
	Embedding []float32
	CreatedAt time.Time
}

// NewNote creates a new Note instance
func NewNote(id, title, content string, embedding []float32, createdAt time.Time) *Note {
	return &Note{
		ID:        id,
		Title:     title,
		Content:   content,
		Embedding: embedding,
		CreatedAt: createdAt,
	}
}

// ValidateNote validates a Note instance. The embedding may be empty only
// transiently, before the first embedding computation; a non-empty embedding
// must match the configured dimension.
func ValidateNote(n *Note, dimensions int) error {
	if n == nil {
		return fmt.Errorf("note cannot be nil")
	}

	if n.ID == "" {
		return fmt.Errorf("note ID is required")
	}

	if n.Content == "" {
		return ErrMissingContent
	}

	if len(n.Embedding) != 0 && dimensions > 0 && len(n.Embedding) != dimensions {
		return ErrWrongDimensions
	}

	return nil
}

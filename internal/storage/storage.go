// Package storage defines the persistence interface for documents.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/kotae/internal/models"
)

// ErrNotFound is returned by GetDocument for an unknown id.
var ErrNotFound = errors.New("document not found")

// Storage defines document persistence operations.
type Storage interface {
	// SaveDocument persists doc, assigning a fresh id when doc.ID is empty.
	// Saving an existing id fully replaces the prior document.
	SaveDocument(ctx context.Context, doc *models.Document) error
	// GetDocument returns the document for id, or ErrNotFound.
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	DeleteDocument(ctx context.Context, id string) error
	ListDocuments(ctx context.Context, offset, limit int) ([]*models.Document, error)
	CountDocuments(ctx context.Context) (int64, error)
	Close() error
}

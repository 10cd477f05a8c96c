// Package models defines core data structures for documents, ingestion, and answers.
package models

import "time"

// Document is the record of ingested text: full content plus the derived
// title and snippet used when assembling answer contexts.
type Document struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Snippet   string    `json:"snippet" db:"snippet"`
	Content   string    `json:"content" db:"content"`
	Source    string    `json:"source,omitempty" db:"source"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IngestInput is the input for ingesting raw text.
type IngestInput struct {
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`
}

// IngestResult reports where an ingested document landed.
type IngestResult struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
}

// Package vector provides vector storage and similarity search.
package vector

import (
	"context"
	"errors"
)

// ErrDimensionMismatch is returned when a vector's length disagrees with the
// dimension the index was created with (or established by its first upsert).
// The index is left unchanged.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// VectorIndex stores (id, vector, payload) records and answers top-k
// similarity queries.
type VectorIndex interface {
	// Upsert inserts the record for id, fully replacing any prior record
	// with the same id (vector and payload together, never a blend).
	Upsert(ctx context.Context, id string, vec []float32, payload map[string]string) error
	// Search returns up to k hits ordered by descending similarity to query.
	// Ties keep insertion order. An empty index yields an empty result, not
	// an error.
	Search(ctx context.Context, query []float32, k int) ([]*SearchHit, error)
	// Delete removes the record for id; absent ids are a no-op.
	Delete(ctx context.Context, id string) error
	Save(path string) error
	Load(path string) error
	Size() int
	Dimensions() int
	Close() error
}

// SearchHit is a single similarity search result. Payload is the metadata
// stored with the record at upsert time.
type SearchHit struct {
	ID      string
	Score   float64 // cosine similarity, [-1,1] (0 when either magnitude is zero)
	Payload map[string]string
}

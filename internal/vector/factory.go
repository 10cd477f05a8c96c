package vector

import "fmt"

// IndexType identifies a vector index implementation.
type IndexType string

const (
	// IndexTypeMemory is the in-memory brute-force index.
	IndexTypeMemory IndexType = "memory"
)

// NewVectorIndex creates a vector index of the given type. An empty type
// defaults to memory. dimensions may be 0 (established by first upsert).
func NewVectorIndex(indexType string, dimensions int) (VectorIndex, error) {
	switch IndexType(indexType) {
	case IndexTypeMemory, "":
		return NewMemoryIndex(dimensions)
	default:
		return nil, fmt.Errorf("unknown vector index type: %q", indexType)
	}
}

// Package embedding provides text embedding providers: a remote
// OpenAI-compatible client, a deterministic mock, and a fallback wrapper
// that degrades from the former to the latter.
package embedding

import "context"

// Embedder produces vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

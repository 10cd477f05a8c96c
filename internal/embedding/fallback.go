package embedding

import (
	"context"

	"go.uber.org/zap"
)

// FallbackEmbedder wraps a primary embedder and degrades to a deterministic
// mock embedding when the primary fails, so callers can treat Embed as
// always-succeeding. Every degradation is logged at Warn so the fallback is
// visible in operation rather than silently swallowed.
type FallbackEmbedder struct {
	primary Embedder
	mock    *MockEmbedder
	logger  *zap.Logger
}

// NewFallbackEmbedder wraps primary with a mock fallback of the same
// dimension. logger may be nil.
func NewFallbackEmbedder(primary Embedder, logger *zap.Logger) *FallbackEmbedder {
	return &FallbackEmbedder{
		primary: primary,
		mock:    NewMockEmbedder(primary.Dimensions()),
		logger:  logger,
	}
}

// Embed returns the primary embedding, or the deterministic mock embedding
// when the primary fails.
func (e *FallbackEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	emb, err := e.primary.Embed(ctx, text)
	if err == nil {
		return emb, nil
	}
	if e.logger != nil {
		e.logger.Warn("embedding provider failed, using deterministic fallback", zap.Error(err))
	}
	return e.mock.Embed(ctx, text)
}

// EmbedBatch calls Embed for each text.
func (e *FallbackEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}

// Dimensions returns the primary embedder's dimension.
func (e *FallbackEmbedder) Dimensions() int {
	return e.primary.Dimensions()
}

// Close closes the primary embedder.
func (e *FallbackEmbedder) Close() error {
	return e.primary.Close()
}

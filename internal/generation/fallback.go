package generation

import (
	"context"

	"go.uber.org/zap"
)

// FallbackGenerator wraps a primary generator and degrades to a templated
// mock answer when the primary fails, so callers can treat Generate as
// always-succeeding. Degradations are logged at Warn.
type FallbackGenerator struct {
	primary Generator
	mock    *MockGenerator
	logger  *zap.Logger
}

// NewFallbackGenerator wraps primary with a mock fallback. logger may be nil.
func NewFallbackGenerator(primary Generator, logger *zap.Logger) *FallbackGenerator {
	return &FallbackGenerator{
		primary: primary,
		mock:    NewMockGenerator(),
		logger:  logger,
	}
}

// Generate returns the primary answer, or the templated fallback answer when
// the primary fails.
func (g *FallbackGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	answer, err := g.primary.Generate(ctx, prompt)
	if err == nil {
		return answer, nil
	}
	if g.logger != nil {
		g.logger.Warn("generation provider failed, using templated fallback",
			zap.String("model", g.primary.ModelName()), zap.Error(err))
	}
	return g.mock.Generate(ctx, prompt)
}

// ModelName returns the primary model name.
func (g *FallbackGenerator) ModelName() string {
	return g.primary.ModelName()
}

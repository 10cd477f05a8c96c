// Package generation provides answer generation providers: a remote
// OpenAI-compatible chat client, a deterministic mock, and a fallback
// wrapper that degrades from the former to the latter.
package generation

import "context"

// Generator produces a natural-language answer from a composed prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	ModelName() string
}

package generation

import (
	"context"
	"strings"
)

// MockGenerator produces a deterministic templated answer from the prompt.
// Used in tests and as the degraded mode when a remote provider is
// unreachable: it echoes the first context line so answers remain grounded
// in retrieved text.
type MockGenerator struct{}

// NewMockGenerator returns a deterministic generator.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Generate returns a templated answer built from the prompt's first context
// block, or a fixed string when the prompt carries no context.
func (g *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	excerpt := firstContextLine(prompt)
	if excerpt == "" {
		return "I could not find relevant information in the ingested documents.", nil
	}
	return "Based on the retrieved context: " + excerpt, nil
}

// ModelName identifies the mock.
func (g *MockGenerator) ModelName() string {
	return "mock"
}

// firstContextLine returns the first non-empty line following a
// "Context 1" label in the prompt.
func firstContextLine(prompt string) string {
	lines := strings.Split(prompt, "\n")
	for i, line := range lines {
		if !strings.HasPrefix(line, "Context 1") {
			continue
		}
		for _, rest := range lines[i+1:] {
			rest = strings.TrimSpace(rest)
			if rest != "" {
				return rest
			}
		}
		break
	}
	return ""
}

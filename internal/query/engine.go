// Package query orchestrates question answering: embed the question,
// search the vector index, assemble contexts with per-hit degradation,
// and generate the answer.
package query

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/generation"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/storage"
	"github.com/hyperjump/kotae/internal/vector"
)

var (
	// ErrInvalidQuery rejects blank questions before any collaborator call.
	ErrInvalidQuery = errors.New("question is empty")
	// ErrQueryFailed marks an embedding or generation failure; the cause
	// is wrapped alongside it. Document store failures never produce it:
	// they degrade per context instead.
	ErrQueryFailed = errors.New("query failed")
)

// NoResultsAnswer is returned when the index holds nothing similar to the
// question. An empty index is a normal outcome, not an error.
const NoResultsAnswer = "No relevant documents found. Ingest some documents and ask again."

const missingContentPlaceholder = "(no content available)"

// retrievedContext is a per-hit context before trimming to the public
// answer shape.
type retrievedContext struct {
	text  string
	score float64
	title string
}

// Engine answers questions over the ingested corpus. It is a stateless
// orchestrator over injected collaborators.
type Engine struct {
	storage   storage.Storage
	embedder  embedding.Embedder
	index     vector.VectorIndex
	generator generation.Generator
	config    *config.QueryConfig
	logger    *zap.Logger // optional
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates a query engine with the given dependencies.
func NewEngine(
	store storage.Storage,
	embedder embedding.Embedder,
	index vector.VectorIndex,
	generator generation.Generator,
	cfg *config.QueryConfig,
	opts ...Option,
) *Engine {
	e := &Engine{
		storage:   store,
		embedder:  embedder,
		index:     index,
		generator: generator,
		config:    cfg,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Ask answers question from the k most similar documents. k <= 0 uses the
// configured default; k above the configured maximum is capped.
func (e *Engine) Ask(ctx context.Context, question string, k int) (*models.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrInvalidQuery
	}
	if k <= 0 {
		k = e.config.DefaultTopK
	}
	if e.config.MaxTopK > 0 && k > e.config.MaxTopK {
		k = e.config.MaxTopK
	}

	queryVec, err := e.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: embed question: %w", ErrQueryFailed, err)
	}
	hits, err := e.index.Search(ctx, queryVec, k)
	if err != nil {
		return nil, fmt.Errorf("%w: vector search: %w", ErrQueryFailed, err)
	}
	if len(hits) == 0 {
		return &models.Answer{Answer: NoResultsAnswer, Contexts: []models.AnswerContext{}}, nil
	}

	contexts := e.buildContexts(ctx, hits)
	prompt := ComposePrompt(question, contexts)
	answer, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: generate answer: %w", ErrQueryFailed, err)
	}
	if e.logger != nil {
		e.logger.Debug("question answered",
			zap.Int("hits", len(hits)),
			zap.Float64("top_score", hits[0].Score),
		)
	}

	out := make([]models.AnswerContext, len(contexts))
	for i, c := range contexts {
		out[i] = models.AnswerContext{Text: c.text, Score: c.score}
	}
	return &models.Answer{Answer: answer, Contexts: out}, nil
}

// buildContexts assembles one context per hit, preserving hit order. A
// document store failure for one hit degrades that context to the hit's
// own payload instead of failing the query.
func (e *Engine) buildContexts(ctx context.Context, hits []*vector.SearchHit) []retrievedContext {
	contexts := make([]retrievedContext, 0, len(hits))
	for _, hit := range hits {
		doc, err := e.storage.GetDocument(ctx, hit.ID)
		if err != nil {
			if e.logger != nil {
				e.logger.Warn("document lookup failed, using indexed payload",
					zap.String("id", hit.ID), zap.Error(err))
			}
			contexts = append(contexts, contextFromPayload(hit))
			continue
		}
		text := doc.Snippet
		if text == "" {
			if doc.Content != "" {
				limit := e.config.MaxContextChars
				if limit <= 0 {
					limit = 500
				}
				if len(doc.Content) > limit {
					text = doc.Content[:limit]
				} else {
					text = doc.Content
				}
			} else {
				text = missingContentPlaceholder
			}
		}
		contexts = append(contexts, retrievedContext{text: text, score: hit.Score, title: doc.Title})
	}
	return contexts
}

// contextFromPayload builds a degraded context from what was stored in the
// index at ingest time.
func contextFromPayload(hit *vector.SearchHit) retrievedContext {
	text := hit.Payload["snippet"]
	if text == "" {
		text = missingContentPlaceholder
	}
	return retrievedContext{text: text, score: hit.Score, title: hit.Payload["title"]}
}

// Package ingest orchestrates document ingestion: derive title and snippet,
// persist the document, embed the full text, and index the vector.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/storage"
	"github.com/hyperjump/kotae/internal/vector"
	"github.com/hyperjump/kotae/pkg/utils"
)

const (
	maxTitleLen   = 100
	maxSnippetLen = 200
	defaultTitle  = "Untitled"
)

var (
	// ErrEmptyContent rejects ingestion of text that is empty after
	// trimming, before any collaborator is called.
	ErrEmptyContent = errors.New("document content is empty")
	// ErrIngestFailed marks a collaborator failure during ingestion; the
	// cause is wrapped alongside it.
	ErrIngestFailed = errors.New("ingest failed")
)

// Pipeline ingests documents into storage and the vector index. It holds no
// state of its own; collaborators are injected.
type Pipeline struct {
	storage  storage.Storage
	embedder embedding.Embedder
	index    vector.VectorIndex
	logger   *zap.Logger // optional; when set, logs debug events
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// NewPipeline creates an ingest pipeline with the given dependencies.
func NewPipeline(store storage.Storage, embedder embedding.Embedder, index vector.VectorIndex, opts ...Option) *Pipeline {
	p := &Pipeline{storage: store, embedder: embedder, index: index}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ingest stores text as a document and indexes its embedding. The document
// is persisted before embedding so a vector never exists without a document
// of record; the reverse orphan (document without vector, after a failed
// embed or upsert) is accepted and not cleaned up. Pass id "" to let the
// store assign one.
func (p *Pipeline) Ingest(ctx context.Context, id, text, source string) (*models.IngestResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyContent
	}
	// The title is cut without a marker; only the snippet gets one.
	title := utils.ClipRunes(utils.FirstLine(text), maxTitleLen)
	if title == "" {
		title = defaultTitle
	}
	snippet := utils.Truncate(text, maxSnippetLen)

	doc := &models.Document{
		ID:      id,
		Title:   title,
		Snippet: snippet,
		Content: text,
		Source:  source,
	}
	if err := p.storage.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("%w: store document: %w", ErrIngestFailed, err)
	}

	// Embed the full text, not the snippet.
	vec, err := p.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: embed document %s: %w", ErrIngestFailed, doc.ID, err)
	}
	payload := map[string]string{
		"title":   title,
		"source":  source,
		"snippet": snippet,
	}
	if err := p.index.Upsert(ctx, doc.ID, vec, payload); err != nil {
		return nil, fmt.Errorf("%w: index document %s: %w", ErrIngestFailed, doc.ID, err)
	}
	if p.logger != nil {
		p.logger.Debug("document ingested",
			zap.String("id", doc.ID),
			zap.String("title", title),
			zap.String("source", source),
			zap.Int("content_len", len(text)),
		)
	}
	return &models.IngestResult{DocumentID: doc.ID, Title: title}, nil
}

// Remove deletes a document from the vector index and storage. Absent ids
// are a no-op.
func (p *Pipeline) Remove(ctx context.Context, id string) error {
	if err := p.index.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete from index: %w", err)
	}
	if err := p.storage.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if p.logger != nil {
		p.logger.Debug("document removed", zap.String("id", id))
	}
	return nil
}

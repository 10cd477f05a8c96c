package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/extract"
	"github.com/hyperjump/kotae/internal/fileid"
	"github.com/hyperjump/kotae/internal/models"
)

// FileIngestor ingests files from disk through a Pipeline, extracting text
// per format. Document ids are derived from the absolute path so re-ingest
// overwrites in place.
type FileIngestor struct {
	pipeline  *Pipeline
	extractor *extract.Extractor
	logger    *zap.Logger
}

// NewFileIngestor creates a file ingestor. extractor may be nil, in which
// case all files are treated as plain text. logger may be nil.
func NewFileIngestor(p *Pipeline, extractor *extract.Extractor, logger *zap.Logger) *FileIngestor {
	return &FileIngestor{pipeline: p, extractor: extractor, logger: logger}
}

// IngestFile extracts text from the file at path and ingests it. If
// allowedExts is non-empty, the file's extension must be in the list
// (case-insensitive, leading dot optional).
func (f *FileIngestor) IngestFile(ctx context.Context, path string, allowedExts []string) (*models.IngestResult, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(absPath))
	if len(allowedExts) > 0 && !extensionAllowed(ext, allowedExts) {
		return nil, fmt.Errorf("extension %q not in allowed list", ext)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("not a regular file: %s", absPath)
	}
	text, err := f.extractContent(absPath)
	if err != nil {
		return nil, fmt.Errorf("extract content: %w", err)
	}
	res, err := f.pipeline.Ingest(ctx, fileid.FileDocID(absPath), text, absPath)
	if err != nil {
		return nil, err
	}
	if f.logger != nil {
		f.logger.Debug("file ingested", zap.String("path", absPath), zap.String("doc_id", res.DocumentID))
	}
	return res, nil
}

// IngestDirectory walks dir recursively and ingests each regular file whose
// extension is in allowedExts (all files when empty). Returns the number of
// files ingested and the first error encountered, if any.
func (f *FileIngestor) IngestDirectory(ctx context.Context, dir string, allowedExts []string) (n int, err error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return 0, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return 0, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("not a directory: %s", absDir)
	}
	err = filepath.WalkDir(absDir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if len(allowedExts) > 0 && !extensionAllowed(ext, allowedExts) {
			return nil
		}
		// Resolve symlinks so only regular files are ingested.
		finfo, statErr := os.Stat(path)
		if statErr != nil || !finfo.Mode().IsRegular() {
			return nil
		}
		if _, ingestErr := f.IngestFile(ctx, path, allowedExts); ingestErr != nil {
			return ingestErr
		}
		n++
		return nil
	})
	return n, err
}

// RemoveFile deletes the document that was ingested from path.
func (f *FileIngestor) RemoveFile(ctx context.Context, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("absolute path: %w", err)
	}
	return f.pipeline.Remove(ctx, fileid.FileDocID(absPath))
}

func (f *FileIngestor) extractContent(path string) (string, error) {
	if f.extractor != nil {
		return f.extractor.Extract(path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

func extensionAllowed(ext string, allowed []string) bool {
	extNorm := strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, a := range allowed {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == extNorm {
			return true
		}
	}
	return false
}

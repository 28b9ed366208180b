package vector

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/finsight/newsrag/internal/embedding"
	"github.com/finsight/newsrag/internal/models"
)

// ErrNotInitialized is returned when a search is attempted against an absent index.
var ErrNotInitialized = errors.New("vector index not initialized")

// Store manages per-namespace headline indexes on durable storage. One index
// file per ticker namespace lives under the base directory.
type Store struct {
	baseDir  string
	embedder embedding.Embedder
	logger   *zap.Logger
}

// NewStore creates a store persisting indexes under baseDir.
func NewStore(baseDir string, embedder embedding.Embedder, logger *zap.Logger) *Store {
	return &Store{baseDir: baseDir, embedder: embedder, logger: logger}
}

// Path returns the index file path for a namespace.
func (s *Store) Path(namespace string) string {
	return filepath.Join(s.baseDir, models.NormalizeNamespace(namespace)+".idx")
}

// Load returns the persisted index for namespace, or nil when none exists.
// Only I/O failures of a present file produce an error.
func (s *Store) Load(namespace string) (*Index, error) {
	ix, err := LoadFile(s.Path(namespace))
	if err != nil {
		return nil, fmt.Errorf("load index for %q: %w", namespace, err)
	}
	if ix != nil {
		s.logger.Debug("loaded namespace index",
			zap.String("namespace", models.NormalizeNamespace(namespace)),
			zap.Int("documents", ix.Size()))
	}
	return ix, nil
}

// Save persists the full index state for namespace, atomically replacing any
// previous state.
func (s *Store) Save(ix *Index, namespace string) error {
	if ix == nil {
		return fmt.Errorf("cannot save nil index for %q", namespace)
	}
	if err := ix.SaveFile(s.Path(namespace)); err != nil {
		return fmt.Errorf("save index for %q: %w", namespace, err)
	}
	s.logger.Info("persisted namespace index",
		zap.String("namespace", models.NormalizeNamespace(namespace)),
		zap.Int("documents", ix.Size()))
	return nil
}

// Build embeds each document's content and constructs a fresh index.
// Documents are embedded in one batch call.
func (s *Store) Build(ctx context.Context, docs []models.Document) (*Index, error) {
	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Content
	}
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed documents: %w", err)
	}
	ix, err := NewIndex(s.embedder.Dimensions())
	if err != nil {
		return nil, err
	}
	if err := ix.Add(docs, vectors); err != nil {
		return nil, err
	}
	return ix, nil
}

// Search embeds query and returns up to k nearest documents, best first.
// Returns ErrNotInitialized when ix is nil.
func (s *Store) Search(ctx context.Context, ix *Index, query string, k int) ([]Match, error) {
	if ix == nil {
		return nil, ErrNotInitialized
	}
	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return ix.Search(ctx, queryVec, k)
}

// Package ingest converts fetched articles into indexed documents and merges
// them into the per-ticker vector index.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/finsight/newsrag/internal/models"
	"github.com/finsight/newsrag/internal/news"
	"github.com/finsight/newsrag/internal/storage"
	"github.com/finsight/newsrag/internal/vector"
)

// Result summarizes one ingestion pass.
type Result struct {
	RunID     string `json:"run_id"`
	Namespace string `json:"namespace"`
	Fetched   int    `json:"fetched"`
	Indexed   int    `json:"indexed"`
	IndexSize int    `json:"index_size"`
	Persisted bool   `json:"persisted"`
}

// Ingestor drives ingestion for ticker namespaces. Writes to a namespace are
// serialized through a per-namespace lock so two concurrent ingestions cannot
// race on load-merge-save.
type Ingestor struct {
	source  news.Source
	store   *vector.Store
	storage storage.Storage
	logger  *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewIngestor creates an ingestor. storage may be nil when run bookkeeping is
// not wanted (e.g. in one-shot CLI use without a database).
func NewIngestor(source news.Source, store *vector.Store, st storage.Storage, logger *zap.Logger) *Ingestor {
	return &Ingestor{
		source:  source,
		store:   store,
		storage: st,
		logger:  logger,
		locks:   make(map[string]*sync.Mutex),
	}
}

// namespaceLock returns the mutex serializing writers for a namespace.
func (in *Ingestor) namespaceLock(namespace string) *sync.Mutex {
	in.mu.Lock()
	defer in.mu.Unlock()
	lock, ok := in.locks[namespace]
	if !ok {
		lock = &sync.Mutex{}
		in.locks[namespace] = lock
	}
	return lock
}

// Ingest fetches up to maxResults articles for ticker, indexes those with
// non-empty titles, merges into any existing namespace index, and persists the
// combined index when persist is set. An ingestion yielding zero usable
// documents is a no-op and never touches an existing index.
func (in *Ingestor) Ingest(ctx context.Context, ticker string, maxResults int, persist bool) (*Result, error) {
	namespace := models.NormalizeNamespace(ticker)
	if namespace == "" {
		return nil, fmt.Errorf("ticker is required")
	}
	lock := in.namespaceLock(namespace)
	lock.Lock()
	defer lock.Unlock()

	res := &Result{RunID: uuid.New().String(), Namespace: namespace}
	log := in.logger.With(zap.String("run_id", res.RunID), zap.String("namespace", namespace))

	articles, err := in.source.FetchArticles(ctx, ticker, maxResults)
	if err != nil {
		return nil, fmt.Errorf("fetch articles for %q: %w", ticker, err)
	}
	res.Fetched = len(articles)

	docs := articlesToDocuments(namespace, articles)
	res.Indexed = len(docs)
	if len(docs) == 0 {
		log.Info("no headlines found, leaving index untouched", zap.Int("fetched", res.Fetched))
		return res, nil
	}

	fresh, err := in.store.Build(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("build index for %q: %w", ticker, err)
	}

	existing, err := in.store.Load(namespace)
	if err != nil {
		return nil, err
	}
	// A persisted index built under a different embedding dimension cannot be
	// extended; surfacing the mismatch here keeps the on-disk index intact.
	combined, err := vector.Merge(existing, fresh)
	if err != nil {
		return nil, fmt.Errorf("merge index for %q: %w", ticker, err)
	}
	res.IndexSize = combined.Size()

	if persist {
		if err := in.store.Save(combined, namespace); err != nil {
			return nil, err
		}
		res.Persisted = true
	}

	log.Info("ingestion complete",
		zap.Int("fetched", res.Fetched),
		zap.Int("indexed", res.Indexed),
		zap.Int("index_size", res.IndexSize),
		zap.Bool("persisted", res.Persisted))

	in.recordRun(ctx, res)
	return res, nil
}

// recordRun writes bookkeeping; failures are logged, never surfaced, since the
// index write already succeeded.
func (in *Ingestor) recordRun(ctx context.Context, res *Result) {
	if in.storage == nil {
		return
	}
	run := &models.IngestionRun{
		ID:        res.RunID,
		Namespace: res.Namespace,
		Fetched:   res.Fetched,
		Indexed:   res.Indexed,
		IndexSize: res.IndexSize,
		Persisted: res.Persisted,
		CreatedAt: time.Now(),
	}
	if err := in.storage.RecordRun(ctx, run); err != nil {
		in.logger.Warn("failed to record ingestion run", zap.String("run_id", res.RunID), zap.Error(err))
	}
}

// articlesToDocuments maps articles to indexable documents, dropping any whose
// title is empty after trimming. IDs are "{namespace}_{i}" where i counts only
// the kept articles in fetch order.
func articlesToDocuments(namespace string, articles []models.Article) []models.Document {
	docs := make([]models.Document, 0, len(articles))
	for _, a := range articles {
		title := strings.TrimSpace(a.Title)
		if title == "" {
			continue
		}
		docs = append(docs, models.Document{
			ID:          fmt.Sprintf("%s_%d", namespace, len(docs)),
			Content:     title,
			Description: a.Description,
			URL:         a.URL,
			PublishedAt: a.PublishedAt,
		})
	}
	return docs
}

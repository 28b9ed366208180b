// Package retriever orchestrates enrichment, vector search, and relevance
// filtering to produce the final ranked headline list.
package retriever

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/finsight/newsrag/internal/config"
	"github.com/finsight/newsrag/internal/enrich"
	"github.com/finsight/newsrag/internal/ingest"
	"github.com/finsight/newsrag/internal/models"
	"github.com/finsight/newsrag/internal/relevance"
	"github.com/finsight/newsrag/internal/resolve"
	"github.com/finsight/newsrag/internal/vector"
	"github.com/finsight/newsrag/pkg/utils"
)

// rejectPhrases is the retriever's hard gate on vague topics. It is wider than
// the enricher's rewrite list on purpose: the enricher can rewrite a vague
// query, but the retriever still demands that the caller supplied a real topic.
var rejectPhrases = map[string]bool{
	"news":         true,
	"company":      true,
	"company news": true,
	"latest":       true,
	"latest news":  true,
	"stock":        true,
	"stock news":   true,
	"updates":      true,
}

// Options control a single retrieval call.
type Options struct {
	MaxResults     int
	AutoIngest     bool
	JudgeRelevance bool
}

// Retriever serves filtered headline retrieval for ticker + topic queries.
type Retriever struct {
	enricher *enrich.Enricher
	resolver resolve.Resolver
	store    *vector.Store
	ingestor *ingest.Ingestor
	judge    *relevance.Judge
	logger   *zap.Logger

	mu  sync.RWMutex
	cfg config.RetrievalConfig
}

// New creates a retriever with the given collaborators and tunables.
func New(
	enricher *enrich.Enricher,
	resolver resolve.Resolver,
	store *vector.Store,
	ingestor *ingest.Ingestor,
	judge *relevance.Judge,
	cfg config.RetrievalConfig,
	logger *zap.Logger,
) *Retriever {
	return &Retriever{
		enricher: enricher,
		resolver: resolver,
		store:    store,
		ingestor: ingestor,
		judge:    judge,
		cfg:      cfg,
		logger:   logger,
	}
}

// UpdateConfig swaps the retrieval tunables; used by config hot-reload.
func (r *Retriever) UpdateConfig(cfg config.RetrievalConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg = cfg
}

func (r *Retriever) config() config.RetrievalConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg
}

// DefaultOptions returns the options implied by the current config.
func (r *Retriever) DefaultOptions() Options {
	cfg := r.config()
	return Options{
		MaxResults:     cfg.DefaultMaxResults,
		AutoIngest:     cfg.AutoIngestOrDefault(),
		JudgeRelevance: cfg.JudgeRelevanceOrDefault(),
	}
}

// FetchHeadlines returns ranked, filtered headlines for ticker and query. The
// result list is never empty: on any expected failure mode it holds a single
// sentinel entry with a code and message instead of headlines.
func (r *Retriever) FetchHeadlines(ctx context.Context, ticker, query string, opts Options) []models.HeadlineResult {
	cfg := r.config()
	if opts.MaxResults <= 0 {
		opts.MaxResults = cfg.DefaultMaxResults
	}
	if opts.MaxResults > cfg.MaxResults {
		opts.MaxResults = cfg.MaxResults
	}
	log := r.logger.With(zap.String("ticker", ticker), zap.String("query", utils.Truncate(query, 120)))

	// Hard gate: vague topics are rejected before any capability is touched.
	trimmed := strings.TrimSpace(query)
	if trimmed == "" || rejectPhrases[strings.ToLower(trimmed)] {
		log.Debug("rejected vague query")
		return models.SentinelResult(models.CodeVagueQuery,
			fmt.Sprintf("query %q is too vague; please provide a concrete topic (e.g. \"AI chip development\")", query))
	}

	keywords, rewritten := r.enricher.EnrichAndExtract(ctx, trimmed, ticker)
	primary := r.primaryKeywords(ctx, keywords, ticker)
	secondaryQuery := keywords.SecondaryQuery(rewritten)
	log.Debug("enriched query",
		zap.String("rewritten", rewritten),
		zap.Strings("primary", primary),
		zap.String("secondary_query", secondaryQuery))

	ix, errResult := r.loadIndex(ctx, ticker, opts.AutoIngest, cfg.IngestBatchSize, log)
	if errResult != nil {
		return errResult
	}

	k := cfg.OverFetchFactor * opts.MaxResults
	if k < cfg.OverFetchMin {
		k = cfg.OverFetchMin
	}
	matches, err := r.store.Search(ctx, ix, secondaryQuery, k)
	if err != nil {
		log.Error("vector search failed", zap.Error(err))
		return models.SentinelResult(models.CodeUpstreamError, fmt.Sprintf("vector search failed: %v", err))
	}

	results := r.filterMatches(ctx, matches, primary, trimmed, opts, log)
	if len(results) == 0 {
		return models.SentinelResult(models.CodeNoResults,
			fmt.Sprintf("no relevant headlines found for %q", query))
	}
	return results
}

// primaryKeywords applies the fallback rule: an empty extracted primary set is
// replaced with the resolved company name, or the raw ticker when resolution
// yields nothing. Filtering never proceeds with an empty primary constraint.
func (r *Retriever) primaryKeywords(ctx context.Context, keywords models.KeywordSet, ticker string) []string {
	if len(keywords.Primary) > 0 {
		return keywords.Primary
	}
	name, err := r.resolver.ResolveCompanyName(ctx, ticker)
	if err != nil || name == "" {
		return []string{ticker}
	}
	return []string{name}
}

// loadIndex loads the namespace index, lazily ingesting when allowed. Returns
// a sentinel result list when no index can be produced.
func (r *Retriever) loadIndex(ctx context.Context, ticker string, autoIngest bool, batchSize int, log *zap.Logger) (*vector.Index, []models.HeadlineResult) {
	namespace := models.NormalizeNamespace(ticker)
	ix, err := r.store.Load(namespace)
	if err != nil {
		log.Error("index load failed", zap.Error(err))
		return nil, models.SentinelResult(models.CodeUpstreamError, fmt.Sprintf("failed to load index: %v", err))
	}
	if ix == nil && autoIngest {
		log.Info("no index for namespace, ingesting", zap.Int("batch_size", batchSize))
		if _, err := r.ingestor.Ingest(ctx, ticker, batchSize, true); err != nil {
			log.Error("lazy ingestion failed", zap.Error(err))
			return nil, models.SentinelResult(models.CodeUpstreamError, fmt.Sprintf("ingestion failed: %v", err))
		}
		ix, err = r.store.Load(namespace)
		if err != nil {
			return nil, models.SentinelResult(models.CodeUpstreamError, fmt.Sprintf("failed to load index: %v", err))
		}
	}
	if ix == nil {
		return nil, models.SentinelResult(models.CodeNoIndex,
			fmt.Sprintf("no headline index for %q; run ingestion first", ticker))
	}
	return ix, nil
}

// filterMatches applies the hard keyword filter and the relevance judge in
// similarity order, stopping once MaxResults survivors are accumulated. The
// judge sees the original caller-supplied topic, not the rewritten query.
func (r *Retriever) filterMatches(ctx context.Context, matches []vector.Match, primary []string, topic string, opts Options, log *zap.Logger) []models.HeadlineResult {
	results := make([]models.HeadlineResult, 0, opts.MaxResults)
	for _, m := range matches {
		if len(results) >= opts.MaxResults {
			break
		}
		doc := m.Document
		if !relevance.ContainsAllKeywords(doc.SearchText(), primary) {
			log.Debug("dropped by keyword filter", zap.String("id", doc.ID))
			continue
		}
		if opts.JudgeRelevance {
			relevant, err := r.judge.IsRelevant(ctx, doc.Content, doc.Description, topic)
			if err != nil {
				// Per-candidate failures are absorbed: drop this one, keep going.
				log.Warn("relevance judge failed, dropping candidate",
					zap.String("id", doc.ID), zap.Error(err))
				continue
			}
			if !relevant {
				log.Debug("dropped by relevance judge", zap.String("id", doc.ID))
				continue
			}
		}
		description := doc.Description
		if description == "" {
			description = fmt.Sprintf("similarity: %.3f", m.Score)
		}
		results = append(results, models.HeadlineResult{
			Title:       doc.Content,
			Description: description,
			URL:         doc.URL,
			PublishedAt: doc.PublishedAt,
			Score:       m.Score,
		})
	}
	return results
}

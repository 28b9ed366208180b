// Package enrich rewrites vague topic queries and extracts keyword sets from
// them via the LLM capability.
package enrich

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/finsight/newsrag/internal/llm"
	"github.com/finsight/newsrag/internal/models"
	"github.com/finsight/newsrag/internal/resolve"
)

// vaguePhrases are queries the enricher rewrites to the company name. The
// retriever applies its own, slightly wider rejection list before enrichment
// ever runs; both layers are intentional.
var vaguePhrases = map[string]bool{
	"news":         true,
	"company":      true,
	"company news": true,
}

const fallbackQuery = "financial news"

const extractSystemPrompt = `You extract search keywords from a financial news topic query.

primary_keywords: named entities and compound noun phrases the text must be about.
secondary_keywords: supporting or contextual terms.

Output as JSON only, no other text:
{
  "primary_keywords": ["..."],
  "secondary_keywords": ["..."]
}`

// Enricher turns a vague or ticker-only query into a concrete one and extracts
// primary/secondary keyword sets from it.
type Enricher struct {
	completer llm.Completer
	resolver  resolve.Resolver
	logger    *zap.Logger
}

// NewEnricher creates an enricher.
func NewEnricher(completer llm.Completer, resolver resolve.Resolver, logger *zap.Logger) *Enricher {
	return &Enricher{completer: completer, resolver: resolver, logger: logger}
}

// IsVague reports whether the enricher considers query too generic to search with.
func IsVague(query string) bool {
	return query == "" || vaguePhrases[strings.ToLower(strings.TrimSpace(query))]
}

// Rewrite applies the vagueness, ticker-echo, and company-name enhancement
// rules and returns the concrete query. Resolution failures degrade to the
// original query rather than failing the caller.
func (e *Enricher) Rewrite(ctx context.Context, query, ticker string) string {
	query = strings.TrimSpace(query)

	name, err := e.resolver.ResolveCompanyName(ctx, ticker)
	if err != nil {
		e.logger.Warn("company name resolution failed, using query as-is",
			zap.String("ticker", ticker), zap.Error(err))
		name = ""
	}

	if IsVague(query) {
		if name != "" {
			return name
		}
		return fallbackQuery
	}
	if strings.EqualFold(query, ticker) && name != "" {
		return name
	}
	if name != "" && !strings.Contains(strings.ToLower(query), strings.ToLower(name)) {
		return name + " " + query
	}
	return query
}

// EnrichAndExtract rewrites query for ticker and extracts a keyword set from
// the rewritten form. Extraction failure never aborts retrieval: it degrades
// to an empty keyword set and the caller substitutes fallbacks.
func (e *Enricher) EnrichAndExtract(ctx context.Context, query, ticker string) (models.KeywordSet, string) {
	rewritten := e.Rewrite(ctx, query, ticker)

	resp, err := e.completer.Complete(ctx, extractSystemPrompt, rewritten)
	if err != nil {
		e.logger.Warn("keyword extraction call failed, degrading to empty keyword set",
			zap.String("query", rewritten), zap.Error(err))
		return models.KeywordSet{}, rewritten
	}

	var parsed struct {
		Primary   []string `json:"primary_keywords"`
		Secondary []string `json:"secondary_keywords"`
	}
	if err := json.Unmarshal([]byte(llm.CleanJSONResponse(resp)), &parsed); err != nil {
		e.logger.Warn("keyword extraction output unparsable, degrading to empty keyword set",
			zap.String("query", rewritten), zap.Error(err))
		return models.KeywordSet{}, rewritten
	}

	ks := models.KeywordSet{
		Primary:   models.CleanKeywords(parsed.Primary),
		Secondary: models.CleanKeywords(parsed.Secondary),
	}
	e.logger.Debug("extracted keywords",
		zap.String("query", rewritten),
		zap.Strings("primary", ks.Primary),
		zap.Strings("secondary", ks.Secondary))
	return ks, rewritten
}

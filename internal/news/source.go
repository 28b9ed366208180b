// Package news provides clients for external headline feeds.
package news

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/finsight/newsrag/internal/config"
	"github.com/finsight/newsrag/internal/models"
)

// Source fetches raw candidate articles for a ticker.
type Source interface {
	FetchArticles(ctx context.Context, ticker string, maxResults int) ([]models.Article, error)
	Name() string
}

// NewSource builds the configured news source. apiKey is the provider's key.
func NewSource(cfg *config.NewsConfig, apiKey string) (Source, error) {
	switch strings.ToLower(cfg.Provider) {
	case "newsapi", "":
		return NewNewsAPIClient(cfg.NewsAPIBase, apiKey, cfg.MaxTitleRunes), nil
	case "finnhub":
		return NewFinnhubClient(apiKey, cfg.LookbackDays, cfg.MaxTitleRunes), nil
	default:
		return nil, fmt.Errorf("unknown news provider: %s (supported: newsapi, finnhub)", cfg.Provider)
	}
}

// keepTitle reports whether a fetched title should be kept: non-empty after
// trimming and not longer than maxRunes (over-long titles are usually scraped
// page junk rather than headlines).
func keepTitle(title string, maxRunes int) bool {
	title = strings.TrimSpace(title)
	if title == "" {
		return false
	}
	return maxRunes <= 0 || utf8.RuneCountInString(title) <= maxRunes
}

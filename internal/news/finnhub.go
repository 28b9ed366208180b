package news

import (
	"context"
	"fmt"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"

	"github.com/finsight/newsrag/internal/models"
)

// FinnhubClient fetches per-ticker company news from Finnhub.
type FinnhubClient struct {
	client        *finnhub.DefaultApiService
	lookbackDays  int
	maxTitleRunes int
}

// NewFinnhubClient creates a Finnhub company-news client. lookbackDays bounds
// the date window of the query.
func NewFinnhubClient(apiKey string, lookbackDays, maxTitleRunes int) *FinnhubClient {
	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", apiKey)
	client := finnhub.NewAPIClient(cfg).DefaultApi
	if lookbackDays <= 0 {
		lookbackDays = 7
	}
	return &FinnhubClient{client: client, lookbackDays: lookbackDays, maxTitleRunes: maxTitleRunes}
}

// Name returns the provider identifier.
func (c *FinnhubClient) Name() string { return "Finnhub" }

// FetchArticles returns up to maxResults company news items for the ticker
// within the lookback window.
func (c *FinnhubClient) FetchArticles(ctx context.Context, ticker string, maxResults int) ([]models.Article, error) {
	now := time.Now()
	from := now.AddDate(0, 0, -c.lookbackDays)
	res, _, err := c.client.CompanyNews(ctx).
		Symbol(ticker).
		From(from.Format("2006-01-02")).
		To(now.Format("2006-01-02")).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("finnhub fetch: %w", err)
	}

	articles := make([]models.Article, 0, maxResults)
	for _, item := range res {
		var a models.Article
		if item.Headline != nil {
			a.Title = *item.Headline
		}
		if item.Summary != nil {
			a.Description = *item.Summary
		}
		if item.Url != nil {
			a.URL = *item.Url
		}
		if item.Datetime != nil {
			a.PublishedAt = time.Unix(*item.Datetime, 0).UTC().Format(time.RFC3339)
		}
		if !keepTitle(a.Title, c.maxTitleRunes) {
			continue
		}
		articles = append(articles, a)
		if len(articles) >= maxResults {
			break
		}
	}
	return articles, nil
}

package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/finsight/newsrag/internal/models"
)

// NewsAPIClient fetches articles from the NewsAPI "everything" endpoint.
type NewsAPIClient struct {
	baseURL       string
	apiKey        string
	maxTitleRunes int
	httpClient    *http.Client
}

// NewNewsAPIClient creates a NewsAPI client.
func NewNewsAPIClient(baseURL, apiKey string, maxTitleRunes int) *NewsAPIClient {
	return &NewsAPIClient{
		baseURL:       baseURL,
		apiKey:        apiKey,
		maxTitleRunes: maxTitleRunes,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Name returns the provider identifier.
func (c *NewsAPIClient) Name() string { return "NewsAPI" }

// FetchArticles returns up to maxResults recent English articles mentioning
// the ticker, newest first. The ticker is quoted so NewsAPI matches it as a
// phrase rather than as loose terms.
func (c *NewsAPIClient) FetchArticles(ctx context.Context, ticker string, maxResults int) ([]models.Article, error) {
	params := url.Values{}
	params.Set("q", `"`+ticker+`"`)
	params.Set("language", "en")
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", strconv.Itoa(maxResults))
	params.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("newsapi request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("newsapi fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("newsapi fetch: unexpected status %s", resp.Status)
	}

	var raw newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("newsapi decode: %w", err)
	}
	if raw.Status != "" && raw.Status != "ok" {
		return nil, fmt.Errorf("newsapi error: %s", raw.Message)
	}

	articles := make([]models.Article, 0, len(raw.Articles))
	for _, item := range raw.Articles {
		if !keepTitle(item.Title, c.maxTitleRunes) {
			continue
		}
		articles = append(articles, models.Article{
			Title:       item.Title,
			Description: item.Description,
			URL:         item.URL,
			PublishedAt: item.PublishedAt,
		})
		if len(articles) >= maxResults {
			break
		}
	}
	return articles, nil
}

type newsAPIResponse struct {
	Status   string           `json:"status"`
	Message  string           `json:"message"`
	Articles []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}

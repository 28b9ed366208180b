package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/finsight/newsrag/internal/config"
	"github.com/finsight/newsrag/internal/embedding"
	"github.com/finsight/newsrag/internal/enrich"
	"github.com/finsight/newsrag/internal/ingest"
	"github.com/finsight/newsrag/internal/llm"
	"github.com/finsight/newsrag/internal/models"
	"github.com/finsight/newsrag/internal/relevance"
	"github.com/finsight/newsrag/internal/retriever"
	"github.com/finsight/newsrag/internal/vector"
)

type staticResolver struct{ name string }

func (r *staticResolver) ResolveCompanyName(ctx context.Context, tickerOrName string) (string, error) {
	return r.name, nil
}

type fakeSource struct{ articles []models.Article }

func (s *fakeSource) FetchArticles(ctx context.Context, ticker string, maxResults int) ([]models.Article, error) {
	return s.articles, nil
}

func (s *fakeSource) Name() string { return "fake" }

func newTestServer(t *testing.T, articles []models.Article) *Server {
	t.Helper()
	store := vector.NewStore(t.TempDir(), embedding.NewMockEmbedder(32), zap.NewNop())
	resolver := &staticResolver{name: "Apple"}
	completer := llm.CompleterFunc(func(ctx context.Context, system, user string) (string, error) {
		return `{"primary_keywords":["AI chip"],"secondary_keywords":["semiconductor"]}`, nil
	})
	judgeCompleter := llm.CompleterFunc(func(ctx context.Context, system, user string) (string, error) {
		return "0.9", nil
	})

	enricher := enrich.NewEnricher(completer, resolver, zap.NewNop())
	ingestor := ingest.NewIngestor(&fakeSource{articles: articles}, store, nil, zap.NewNop())
	judge := relevance.NewJudge(judgeCompleter, relevance.NewCache(), 0, zap.NewNop())

	cfg := config.Config{}
	config.ApplyDefaults(&cfg)
	r := retriever.New(enricher, resolver, store, ingestor, judge, cfg.Retrieval, zap.NewNop())
	return NewServer(r, ingestor, nil, &cfg.Server, zap.NewNop())
}

func postJSON(t *testing.T, handler http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleHeadlines_Success(t *testing.T) {
	s := newTestServer(t, []models.Article{
		{Title: "Apple ships AI chip", Description: "chip news", URL: "https://x/1"},
	})
	rec := postJSON(t, s.router(), "/api/v1/headlines", headlinesRequest{
		Ticker: "AAPL", Query: "AI chip development",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Results []models.HeadlineResult `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Title != "Apple ships AI chip" {
		t.Errorf("results = %+v", resp.Results)
	}
}

func TestHandleHeadlines_VagueQuery(t *testing.T) {
	s := newTestServer(t, nil)
	rec := postJSON(t, s.router(), "/api/v1/headlines", headlinesRequest{Ticker: "AAPL", Query: "news"})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Results []models.HeadlineResult `json:"results"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if len(resp.Results) != 1 || resp.Results[0].Code != models.CodeVagueQuery {
		t.Errorf("results = %+v", resp.Results)
	}
}

func TestHandleHeadlines_MissingTicker(t *testing.T) {
	s := newTestServer(t, nil)
	rec := postJSON(t, s.router(), "/api/v1/headlines", headlinesRequest{Query: "AI chips"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestHandleIngest(t *testing.T) {
	s := newTestServer(t, []models.Article{
		{Title: "Apple ships AI chip"},
		{Title: ""},
	})
	rec := postJSON(t, s.router(), "/api/v1/ingest", ingestRequest{Ticker: "AAPL", MaxResults: 10})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var res ingest.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.Fetched != 2 || res.Indexed != 1 || !res.Persisted {
		t.Errorf("result = %+v", res)
	}
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

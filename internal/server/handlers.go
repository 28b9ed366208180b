package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/finsight/newsrag/internal/models"
)

type headlinesRequest struct {
	Ticker         string `json:"ticker"`
	Query          string `json:"query"`
	MaxResults     int    `json:"max_results,omitempty"`
	AutoIngest     *bool  `json:"auto_ingest,omitempty"`
	JudgeRelevance *bool  `json:"judge_relevance,omitempty"`
}

func (s *Server) handleHeadlines(w http.ResponseWriter, r *http.Request) {
	var req headlinesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Ticker) == "" {
		s.respondError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	opts := s.retriever.DefaultOptions()
	if req.MaxResults > 0 {
		opts.MaxResults = req.MaxResults
	}
	if req.AutoIngest != nil {
		opts.AutoIngest = *req.AutoIngest
	}
	if req.JudgeRelevance != nil {
		opts.JudgeRelevance = *req.JudgeRelevance
	}

	s.logger.Debug("headlines request",
		zap.String("ticker", req.Ticker), zap.String("query", req.Query),
		zap.Int("max_results", opts.MaxResults))
	results := s.retriever.FetchHeadlines(r.Context(), req.Ticker, req.Query, opts)

	// Expected failure modes keep the list shape; only the status code varies.
	status := http.StatusOK
	if len(results) == 1 && results[0].IsSentinel() {
		switch results[0].Code {
		case models.CodeVagueQuery:
			status = http.StatusBadRequest
		case models.CodeNoIndex:
			status = http.StatusNotFound
		case models.CodeUpstreamError:
			status = http.StatusBadGateway
		}
	}
	s.respondJSON(w, status, map[string]interface{}{"results": results})
}

type ingestRequest struct {
	Ticker     string `json:"ticker"`
	MaxResults int    `json:"max_results,omitempty"`
	Persist    *bool  `json:"persist,omitempty"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Ticker) == "" {
		s.respondError(w, http.StatusBadRequest, "ticker is required")
		return
	}
	if req.MaxResults <= 0 {
		req.MaxResults = 20
	}
	persist := true
	if req.Persist != nil {
		persist = *req.Persist
	}

	s.logger.Debug("ingest request", zap.String("ticker", req.Ticker), zap.Int("max_results", req.MaxResults))
	res, err := s.ingestor.Ingest(r.Context(), req.Ticker, req.MaxResults, persist)
	if err != nil {
		s.logger.Error("ingestion failed", zap.String("ticker", req.Ticker), zap.Error(err))
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := map[string]interface{}{"status": "ok"}
	if s.storage != nil {
		runs, err := s.storage.CountRuns(ctx)
		if err != nil {
			s.logger.Error("status: count runs failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		stats, err := s.storage.NamespaceStats(ctx)
		if err != nil {
			s.logger.Error("status: namespace stats failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp["ingestion_runs"] = runs
		resp["namespaces"] = stats
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

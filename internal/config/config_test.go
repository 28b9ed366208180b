package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: 0.0.0.0
  port: 9090
storage:
  database_path: ./data/ingestion.db
  vector_dir: ./data/indices
retrieval:
  over_fetch_factor: 3
  relevance_threshold: 0.6
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("expected debug true")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Retrieval.OverFetchFactor != 3 {
		t.Errorf("over_fetch_factor = %d", cfg.Retrieval.OverFetchFactor)
	}
	if cfg.Retrieval.RelevanceThreshold != 0.6 {
		t.Errorf("relevance_threshold = %v", cfg.Retrieval.RelevanceThreshold)
	}
	// "./" paths resolve relative to the config directory.
	if got := cfg.Storage.DatabasePath; got != filepath.Join(dir, "data/ingestion.db") {
		t.Errorf("database_path = %q", got)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	ApplyDefaults(&cfg)

	if cfg.Server.Port != 8080 {
		t.Errorf("default port = %d", cfg.Server.Port)
	}
	if cfg.Embedding.Model != "text-embedding-3-small" {
		t.Errorf("default embedding model = %q", cfg.Embedding.Model)
	}
	if cfg.Retrieval.OverFetchFactor != 2 || cfg.Retrieval.OverFetchMin != 10 {
		t.Errorf("over-fetch defaults = %d, %d", cfg.Retrieval.OverFetchFactor, cfg.Retrieval.OverFetchMin)
	}
	if cfg.Retrieval.RelevanceThreshold != 0.4 {
		t.Errorf("default relevance threshold = %v", cfg.Retrieval.RelevanceThreshold)
	}
	if !cfg.Retrieval.AutoIngestOrDefault() || !cfg.Retrieval.JudgeRelevanceOrDefault() {
		t.Error("auto_ingest and judge_relevance should default to true")
	}
	if cfg.LLM.JudgeModel != cfg.LLM.Model {
		t.Errorf("judge model should default to llm model, got %q", cfg.LLM.JudgeModel)
	}
}

func TestRetrievalConfig_Overrides(t *testing.T) {
	f := false
	rc := RetrievalConfig{AutoIngest: &f, JudgeRelevance: &f}
	if rc.AutoIngestOrDefault() || rc.JudgeRelevanceOrDefault() {
		t.Error("explicit false should win over defaults")
	}
}

// Package config provides configuration loading and structs for the newsrag service.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	News      NewsConfig      `yaml:"news"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the ingestion database and vector index files.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
	VectorDir    string `yaml:"vector_dir"`
}

// EmbeddingConfig holds embedding capability settings.
type EmbeddingConfig struct {
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	CacheSize  int    `yaml:"cache_size"`
}

// LLMConfig holds completion capability settings.
type LLMConfig struct {
	Model      string `yaml:"model"`
	JudgeModel string `yaml:"judge_model"`
}

// NewsConfig holds news source settings.
type NewsConfig struct {
	Provider      string `yaml:"provider"` // "newsapi" or "finnhub"
	NewsAPIBase   string `yaml:"newsapi_base"`
	LookbackDays  int    `yaml:"lookback_days"`
	MaxTitleRunes int    `yaml:"max_title_runes"`
}

// RetrievalConfig holds retrieval and filtering tunables. These are
// hot-reloadable via Watch.
type RetrievalConfig struct {
	DefaultMaxResults  int     `yaml:"default_max_results"`
	MaxResults         int     `yaml:"max_results"`
	OverFetchFactor    int     `yaml:"over_fetch_factor"`
	OverFetchMin       int     `yaml:"over_fetch_min"`
	RelevanceThreshold float64 `yaml:"relevance_threshold"`
	IngestBatchSize    int     `yaml:"ingest_batch_size"`
	AutoIngest         *bool   `yaml:"auto_ingest"`
	JudgeRelevance     *bool   `yaml:"judge_relevance"`
}

// AutoIngestOrDefault returns whether missing indexes are ingested lazily; defaults to true.
func (r *RetrievalConfig) AutoIngestOrDefault() bool {
	if r.AutoIngest != nil {
		return *r.AutoIngest
	}
	return true
}

// JudgeRelevanceOrDefault returns whether the LLM relevance judge runs; defaults to true.
func (r *RetrievalConfig) JudgeRelevanceOrDefault() bool {
	if r.JudgeRelevance != nil {
		return *r.JudgeRelevance
	}
	return true
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.VectorDir = expandPath(cfg.Storage.VectorDir, configDir)

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}

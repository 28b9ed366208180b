package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/newsrag/data/db/ingestion.db"
	}
	if cfg.Storage.VectorDir == "" {
		cfg.Storage.VectorDir = "/usr/local/var/newsrag/data/indices"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "text-embedding-3-small"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 1536
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-4o-mini"
	}
	if cfg.LLM.JudgeModel == "" {
		cfg.LLM.JudgeModel = cfg.LLM.Model
	}
	if cfg.News.Provider == "" {
		cfg.News.Provider = "newsapi"
	}
	if cfg.News.NewsAPIBase == "" {
		cfg.News.NewsAPIBase = "https://newsapi.org/v2/everything"
	}
	if cfg.News.LookbackDays == 0 {
		cfg.News.LookbackDays = 7
	}
	if cfg.News.MaxTitleRunes == 0 {
		cfg.News.MaxTitleRunes = 200
	}
	if cfg.Retrieval.DefaultMaxResults == 0 {
		cfg.Retrieval.DefaultMaxResults = 5
	}
	if cfg.Retrieval.MaxResults == 0 {
		cfg.Retrieval.MaxResults = 50
	}
	if cfg.Retrieval.OverFetchFactor == 0 {
		cfg.Retrieval.OverFetchFactor = 2
	}
	if cfg.Retrieval.OverFetchMin == 0 {
		cfg.Retrieval.OverFetchMin = 10
	}
	if cfg.Retrieval.RelevanceThreshold == 0 {
		cfg.Retrieval.RelevanceThreshold = 0.4
	}
	if cfg.Retrieval.IngestBatchSize == 0 {
		cfg.Retrieval.IngestBatchSize = 20
	}
}

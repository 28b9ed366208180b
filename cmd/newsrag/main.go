// Package main is the newsrag CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/finsight/newsrag/internal/config"
	"github.com/finsight/newsrag/internal/embedding"
	"github.com/finsight/newsrag/internal/enrich"
	"github.com/finsight/newsrag/internal/ingest"
	"github.com/finsight/newsrag/internal/llm"
	"github.com/finsight/newsrag/internal/news"
	"github.com/finsight/newsrag/internal/relevance"
	"github.com/finsight/newsrag/internal/resolve"
	"github.com/finsight/newsrag/internal/retriever"
	"github.com/finsight/newsrag/internal/server"
	"github.com/finsight/newsrag/internal/storage"
	"github.com/finsight/newsrag/internal/vector"
	"github.com/finsight/newsrag/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/newsrag/config.yaml"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "server":
		runServer()
	case "ingest":
		runIngest()
	case "headlines":
		runHeadlines()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("newsrag version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// loadConfig loads config from path. When path is the default, a config.yaml
// in the current directory takes precedence (for development). Returns the
// config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := cwd + "/config.yaml"
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// components holds the wired pipeline.
type components struct {
	Retriever *retriever.Retriever
	Ingestor  *ingest.Ingestor
	Judge     *relevance.Judge
	Storage   storage.Storage
	closeFns  []func() error
}

// Close releases held resources.
func (c *components) Close() {
	for _, fn := range c.closeFns {
		_ = fn()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, withStorage bool) (*components, error) {
	openaiKey := os.Getenv("OPENAI_API_KEY")
	if openaiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY in environment")
	}
	newsKey, err := newsAPIKey(&cfg.News)
	if err != nil {
		return nil, err
	}
	source, err := news.NewSource(&cfg.News, newsKey)
	if err != nil {
		return nil, err
	}

	embedder := embedding.NewOpenAIEmbedder(openaiKey, cfg.Embedding.Model,
		cfg.Embedding.Dimensions, cfg.Embedding.CacheSize)
	completer := llm.NewOpenAIClient(openaiKey, cfg.LLM.Model)
	judgeCompleter := llm.NewOpenAIClient(openaiKey, cfg.LLM.JudgeModel)

	c := &components{}
	var st storage.Storage
	if withStorage {
		sqlite, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
		if err != nil {
			return nil, err
		}
		st = sqlite
		c.closeFns = append(c.closeFns, sqlite.Close)
	}

	store := vector.NewStore(cfg.Storage.VectorDir, embedder, logger)
	resolver := resolve.NewLLMResolver(completer, logger)
	enricher := enrich.NewEnricher(completer, resolver, logger)
	judge := relevance.NewJudge(judgeCompleter, relevance.NewCache(),
		cfg.Retrieval.RelevanceThreshold, logger)
	ingestor := ingest.NewIngestor(source, store, st, logger)

	c.Retriever = retriever.New(enricher, resolver, store, ingestor, judge, cfg.Retrieval, logger)
	c.Ingestor = ingestor
	c.Judge = judge
	c.Storage = st
	c.closeFns = append(c.closeFns, embedder.Close)
	return c, nil
}

// newsAPIKey picks the provider's API key from the environment.
func newsAPIKey(cfg *config.NewsConfig) (string, error) {
	switch strings.ToLower(cfg.Provider) {
	case "finnhub":
		if key := os.Getenv("FINNHUB_API_KEY"); key != "" {
			return key, nil
		}
		return "", fmt.Errorf("missing FINNHUB_API_KEY in environment")
	default:
		if key := os.Getenv("NEWSAPI_KEY"); key != "" {
			return key, nil
		}
		return "", fmt.Errorf("missing NEWSAPI_KEY in environment")
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug || *debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger.Info("config loaded", zap.String("config_path", resolvedPath))

	c, err := initializeComponents(cfg, logger, true)
	if err != nil {
		logger.Fatal("failed to initialize components", zap.Error(err))
	}
	defer c.Close()

	// Hot-reload retrieval tunables on config edits.
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	watcher := config.NewWatcher(resolvedPath, func(newCfg *config.Config) {
		c.Retriever.UpdateConfig(newCfg.Retrieval)
		c.Judge.SetThreshold(newCfg.Retrieval.RelevanceThreshold)
	}, logger)
	if err := watcher.Start(watchCtx); err != nil {
		logger.Warn("config watch unavailable", zap.Error(err))
	}

	srv := server.NewServer(c.Retriever, c.Ingestor, c.Storage, &cfg.Server, logger)
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Stop(shutdownCtx)
	}()
	if err := srv.Start(); err != nil {
		logger.Info("server stopped", zap.Error(err))
	}
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	ticker := fs.String("ticker", "", "ticker symbol (required)")
	maxResults := fs.Int("max", 20, "maximum articles to fetch")
	persist := fs.Bool("persist", true, "persist the merged index")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	if *ticker == "" {
		fmt.Println("ingest: -ticker is required")
		fs.Usage()
		os.Exit(1)
	}
	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug || *debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	c, err := initializeComponents(cfg, logger, true)
	if err != nil {
		logger.Fatal("failed to initialize components", zap.Error(err))
	}
	defer c.Close()

	res, err := c.Ingestor.Ingest(context.Background(), *ticker, *maxResults, *persist)
	if err != nil {
		logger.Fatal("ingestion failed", zap.Error(err))
	}
	printJSON(res)
}

func runHeadlines() {
	fs := flag.NewFlagSet("headlines", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	ticker := fs.String("ticker", "", "ticker symbol (required)")
	query := fs.String("query", "", "topic query (required)")
	maxResults := fs.Int("max", 0, "maximum headlines to return (0 = config default)")
	noIngest := fs.Bool("no-ingest", false, "disable lazy ingestion when no index exists")
	noJudge := fs.Bool("no-judge", false, "disable the LLM relevance judge")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	if *ticker == "" || *query == "" {
		fmt.Println("headlines: -ticker and -query are required")
		fs.Usage()
		os.Exit(1)
	}
	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug || *debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	c, err := initializeComponents(cfg, logger, false)
	if err != nil {
		logger.Fatal("failed to initialize components", zap.Error(err))
	}
	defer c.Close()

	opts := c.Retriever.DefaultOptions()
	if *maxResults > 0 {
		opts.MaxResults = *maxResults
	}
	if *noIngest {
		opts.AutoIngest = false
	}
	if *noJudge {
		opts.JudgeRelevance = false
	}
	printJSON(c.Retriever.FetchHeadlines(context.Background(), *ticker, *query, opts))
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	st, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	ctx := context.Background()
	runs, err := st.CountRuns(ctx)
	if err != nil {
		fmt.Printf("Failed to count runs: %v\n", err)
		os.Exit(1)
	}
	stats, err := st.NamespaceStats(ctx)
	if err != nil {
		fmt.Printf("Failed to read namespace stats: %v\n", err)
		os.Exit(1)
	}
	printJSON(map[string]interface{}{"ingestion_runs": runs, "namespaces": stats})
}

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Failed to encode output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}

func printUsage() {
	fmt.Println(`newsrag - retrieval-augmented financial news filtering

Usage:
  newsrag server    [-config path] [-debug]
  newsrag ingest    -ticker SYM [-max N] [-persist] [-config path]
  newsrag headlines -ticker SYM -query "topic" [-max N] [-no-ingest] [-no-judge] [-config path]
  newsrag status    [-config path]
  newsrag version

Environment:
  OPENAI_API_KEY   completion + embedding capability (required)
  NEWSAPI_KEY      NewsAPI provider key
  FINNHUB_API_KEY  Finnhub provider key`)
}

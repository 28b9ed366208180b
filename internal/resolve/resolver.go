// Package resolve maps ticker symbols to company names via the LLM capability.
package resolve

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/finsight/newsrag/internal/llm"
)

// Resolver resolves a ticker symbol or partial company name to a company name.
// An empty result means resolution yielded nothing.
type Resolver interface {
	ResolveCompanyName(ctx context.Context, tickerOrName string) (string, error)
}

const resolveSystemPrompt = `You are a finance assistant. Given a company name or stock ticker symbol, return its corresponding company name only.

Examples:
AAPL -> Apple
TSLA -> Tesla
GOOGL -> Google
MSFT -> Microsoft

Respond with the company name only, no extra text.`

// LLMResolver implements Resolver with a completion call and a process-lifetime
// cache. Ticker-to-name mappings do not change within a run, so entries are
// never invalidated.
type LLMResolver struct {
	completer llm.Completer
	logger    *zap.Logger
	mu        sync.Mutex
	cache     map[string]string
}

// NewLLMResolver creates a resolver backed by completer.
func NewLLMResolver(completer llm.Completer, logger *zap.Logger) *LLMResolver {
	return &LLMResolver{
		completer: completer,
		logger:    logger,
		cache:     make(map[string]string),
	}
}

// ResolveCompanyName returns the company name for tickerOrName, or "" when the
// model produces nothing usable. Transport errors are returned so callers can
// decide how to degrade.
func (r *LLMResolver) ResolveCompanyName(ctx context.Context, tickerOrName string) (string, error) {
	key := strings.ToUpper(strings.TrimSpace(tickerOrName))
	if key == "" {
		return "", nil
	}

	r.mu.Lock()
	if name, ok := r.cache[key]; ok {
		r.mu.Unlock()
		return name, nil
	}
	r.mu.Unlock()

	resp, err := r.completer.Complete(ctx, resolveSystemPrompt, key)
	if err != nil {
		return "", err
	}
	name := strings.TrimSpace(resp)
	// A multi-line or empty answer means the model did not follow the contract.
	if name == "" || strings.ContainsAny(name, "\n\r") {
		r.logger.Warn("company name resolution produced unusable output",
			zap.String("input", key), zap.String("output", resp))
		name = ""
	}

	r.mu.Lock()
	r.cache[key] = name
	r.mu.Unlock()
	return name, nil
}

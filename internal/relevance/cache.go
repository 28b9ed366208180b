package relevance

import "sync"

type cacheKey struct {
	title       string
	description string
	topic       string
}

// Cache stores parsed relevance scores keyed by (title, description, topic)
// for the lifetime of the process. Entries never expire and unparsable
// responses are cached too, so a judged pair costs at most one LLM call per
// run. Storing the score rather than the verdict lets a threshold change
// apply to already-judged pairs.
type Cache struct {
	mu     sync.RWMutex
	scores map[cacheKey]float64
}

// NewCache creates an empty score cache.
func NewCache() *Cache {
	return &Cache{scores: make(map[cacheKey]float64)}
}

// Get returns the cached score for the key, if present.
func (c *Cache) Get(title, description, topic string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	score, ok := c.scores[cacheKey{title, description, topic}]
	return score, ok
}

// Set stores a score.
func (c *Cache) Set(title, description, topic string, score float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scores[cacheKey{title, description, topic}] = score
}

// Len returns the number of cached scores.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.scores)
}

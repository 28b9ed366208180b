package relevance

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/finsight/newsrag/internal/llm"
)

// DefaultThreshold is the minimum relevance score for a headline to pass the judge.
const DefaultThreshold = 0.4

// unparsableScore marks a response that yielded no usable score. It sits below
// any valid threshold, so the cached entry always fails closed.
const unparsableScore = -1

const judgeSystemPrompt = `You rate how relevant a news headline is to a topic.

Scoring rubric:
1.0 = the headline is directly about the topic
0.5 = the headline is related but the topic is not its focus
0.0 = the headline is unrelated to the topic

Respond with a single number between 0 and 1, no other text.`

var numberPattern = regexp.MustCompile(`[0-9]*\.?[0-9]+`)

// Judge is the LLM-backed relevance predicate with a process-lifetime score
// cache. Parse failures fail closed (not relevant) and are cached to avoid
// repeated failed calls for the same key. The threshold is compared against
// the cached score on every call, so SetThreshold takes effect for
// already-judged pairs too.
type Judge struct {
	completer llm.Completer
	cache     *Cache
	logger    *zap.Logger

	mu        sync.RWMutex
	threshold float64
}

// NewJudge creates a judge. threshold <= 0 uses DefaultThreshold.
func NewJudge(completer llm.Completer, cache *Cache, threshold float64, logger *zap.Logger) *Judge {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Judge{completer: completer, cache: cache, threshold: threshold, logger: logger}
}

// SetThreshold swaps the relevance threshold; used by config hot-reload.
// threshold <= 0 restores DefaultThreshold.
func (j *Judge) SetThreshold(threshold float64) {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	j.mu.Lock()
	j.threshold = threshold
	j.mu.Unlock()
}

// Threshold returns the current relevance threshold.
func (j *Judge) Threshold() float64 {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.threshold
}

// IsRelevant reports whether the headline is topically relevant. Scores are
// cached by (title, description, topic). Transport errors are returned without
// caching; callers drop the affected candidate only.
func (j *Judge) IsRelevant(ctx context.Context, title, description, topic string) (bool, error) {
	if score, ok := j.cache.Get(title, description, topic); ok {
		return score >= j.Threshold(), nil
	}

	user := fmt.Sprintf("Topic: %s\nHeadline: %s\nDescription: %s", topic, title, description)
	resp, err := j.completer.Complete(ctx, judgeSystemPrompt, user)
	if err != nil {
		return false, fmt.Errorf("relevance judge: %w", err)
	}

	score, ok := parseScore(resp)
	if !ok {
		score = unparsableScore
		j.logger.Warn("relevance score unparsable, treating as not relevant",
			zap.String("title", title), zap.String("response", resp))
	}
	j.cache.Set(title, description, topic, score)
	verdict := score >= j.Threshold()
	j.logger.Debug("judged relevance",
		zap.String("title", title), zap.String("topic", topic),
		zap.Float64("score", score), zap.Bool("relevant", verdict))
	return verdict, nil
}

// parseScore extracts a relevance score in [0,1] from a model response.
// Out-of-range values are rejected rather than clamped.
func parseScore(resp string) (float64, bool) {
	s := strings.TrimSpace(resp)
	score, err := strconv.ParseFloat(s, 64)
	if err != nil {
		match := numberPattern.FindString(s)
		if match == "" {
			return 0, false
		}
		score, err = strconv.ParseFloat(match, 64)
		if err != nil {
			return 0, false
		}
	}
	if score < 0 || score > 1 {
		return 0, false
	}
	return score, true
}

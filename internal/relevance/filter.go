// Package relevance provides the two-stage headline relevance filter: a
// deterministic keyword-containment check and a cached LLM relevance judge.
package relevance

import "strings"

// ContainsAllKeywords reports whether every keyword occurs as a
// case-insensitive substring of text. An empty keyword set trivially passes.
func ContainsAllKeywords(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if !strings.Contains(lower, strings.ToLower(kw)) {
			return false
		}
	}
	return true
}

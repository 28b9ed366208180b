package models

import "strings"

// KeywordSet holds the keywords extracted from a topic query. Primary keywords
// must all appear in a candidate's text for it to survive the hard filter;
// secondary keywords shape the vector search query only.
type KeywordSet struct {
	Primary   []string `json:"primary_keywords"`
	Secondary []string `json:"secondary_keywords"`
}

// SecondaryQuery joins the secondary keywords into a search query string,
// falling back to fallback when no secondary keywords were extracted.
func (k *KeywordSet) SecondaryQuery(fallback string) string {
	if len(k.Secondary) == 0 {
		return fallback
	}
	return strings.Join(k.Secondary, " ")
}

// CleanKeywords trims, deduplicates (case-insensitive), and drops empty entries
// while preserving first-seen order.
func CleanKeywords(keywords []string) []string {
	seen := make(map[string]bool, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		lower := strings.ToLower(kw)
		if seen[lower] {
			continue
		}
		seen[lower] = true
		out = append(out, kw)
	}
	return out
}

package models

// Failure codes carried by sentinel HeadlineResult entries. The retriever
// always returns a non-empty list; when it cannot produce real headlines the
// single element carries one of these codes plus a human-readable message.
const (
	CodeVagueQuery    = "vague_query"
	CodeNoIndex       = "no_index"
	CodeUpstreamError = "upstream_error"
	CodeNoResults     = "no_results"
)

// HeadlineResult is one entry in a retrieval response: either a filtered
// headline (non-empty Title) or a sentinel message (Code and Error set).
type HeadlineResult struct {
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	URL         string  `json:"url,omitempty"`
	PublishedAt string  `json:"published_at,omitempty"`
	Score       float64 `json:"score,omitempty"`
	Code        string  `json:"code,omitempty"`
	Error       string  `json:"error,omitempty"`
}

// IsSentinel reports whether the result is a message entry rather than a headline.
func (r *HeadlineResult) IsSentinel() bool {
	return r.Code != ""
}

// SentinelResult builds the single-element result list for a failure or
// zero-survivor outcome.
func SentinelResult(code, message string) []HeadlineResult {
	return []HeadlineResult{{Code: code, Error: message}}
}

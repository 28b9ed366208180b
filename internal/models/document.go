// Package models defines core data structures for articles, documents, and headline results.
package models

import "strings"

// Article is a raw candidate article as returned by a news source.
// Fields may be empty; articles are validated at ingestion time.
type Article struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at"`
}

// Document is an indexable headline document. Content holds the title text used
// for embedding and is never empty once the document is stored.
type Document struct {
	ID          string `json:"id"`
	Content     string `json:"content"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at"`
}

// SearchText returns the combined title and description text that the hard
// keyword filter matches against.
func (d *Document) SearchText() string {
	if d.Description == "" {
		return d.Content
	}
	return d.Content + " " + d.Description
}

// NormalizeNamespace lowercases a ticker symbol for use as an index namespace.
func NormalizeNamespace(ticker string) string {
	return strings.ToLower(strings.TrimSpace(ticker))
}

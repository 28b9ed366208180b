package models

import (
	"reflect"
	"testing"
)

func TestDocument_SearchText(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
		want string
	}{
		{"title and description", Document{Content: "Apple launches chip", Description: "M4 details"}, "Apple launches chip M4 details"},
		{"title only", Document{Content: "Apple launches chip"}, "Apple launches chip"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.doc.SearchText(); got != tt.want {
				t.Errorf("SearchText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeNamespace(t *testing.T) {
	if got := NormalizeNamespace("  AAPL "); got != "aapl" {
		t.Errorf("NormalizeNamespace = %q", got)
	}
}

func TestCleanKeywords(t *testing.T) {
	got := CleanKeywords([]string{" AI chip ", "", "ai chip", "Tesla"})
	want := []string{"AI chip", "Tesla"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CleanKeywords = %v, want %v", got, want)
	}
}

func TestSentinelResult(t *testing.T) {
	res := SentinelResult(CodeVagueQuery, "please provide a concrete topic")
	if len(res) != 1 {
		t.Fatalf("expected 1 element, got %d", len(res))
	}
	if !res[0].IsSentinel() {
		t.Error("expected sentinel result")
	}
	if res[0].Title != "" {
		t.Error("sentinel result must not carry a title")
	}
}

package relevance

import "testing"

func TestContainsAllKeywords(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		keywords []string
		want     bool
	}{
		{"all present", "Apple unveils new AI chip for Macs", []string{"apple", "AI chip"}, true},
		{"case-insensitive", "APPLE UNVEILS AI CHIP", []string{"Apple", "ai chip"}, true},
		{"one missing", "Apple unveils new AI chip", []string{"Apple", "Tesla"}, false},
		{"substring match", "Semiconductors rally", []string{"conduct"}, true},
		{"empty keyword set passes", "anything at all", nil, true},
		{"empty text fails non-empty set", "", []string{"Apple"}, false},
		{"empty text passes empty set", "", []string{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContainsAllKeywords(tt.text, tt.keywords); got != tt.want {
				t.Errorf("ContainsAllKeywords(%q, %v) = %v, want %v", tt.text, tt.keywords, got, tt.want)
			}
		})
	}
}

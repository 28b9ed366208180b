package vector

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/finsight/newsrag/internal/models"
)

func TestIndex_AddSearch(t *testing.T) {
	ix, err := NewIndex(3)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	docs := []models.Document{
		{ID: "aapl_0", Content: "a"},
		{ID: "aapl_1", Content: "b"},
		{ID: "aapl_2", Content: "c"},
	}
	vecs := [][]float32{
		{1, 0, 0},
		{0.9, 0.1, 0},
		{0, 1, 0},
	}
	if err := ix.Add(docs, vecs); err != nil {
		t.Fatal(err)
	}
	if ix.Size() != 3 {
		t.Errorf("Size = %d", ix.Size())
	}

	matches, err := ix.Search(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Document.ID != "aapl_0" {
		t.Errorf("top match = %s", matches[0].Document.ID)
	}
	if matches[0].Score < matches[1].Score {
		t.Error("matches must be ordered best first")
	}
}

func TestIndex_DimensionMismatch(t *testing.T) {
	ix, _ := NewIndex(3)
	err := ix.Add([]models.Document{{ID: "x", Content: "x"}}, [][]float32{{1, 0}})
	if err == nil {
		t.Error("expected dimension mismatch error")
	}
	if _, err := ix.Search(context.Background(), []float32{1}, 1); err == nil {
		t.Error("expected query dimension mismatch error")
	}
}

func TestIndex_SaveLoadRoundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aapl.idx")

	ix, _ := NewIndex(2)
	docs := []models.Document{
		{ID: "aapl_0", Content: "Apple ships AI chip", Description: "details", URL: "https://x/1", PublishedAt: "2025-06-01T00:00:00Z"},
		{ID: "aapl_1", Content: "Apple earnings beat"},
	}
	_ = ix.Add(docs, [][]float32{{1, 0}, {0, 1}})
	if err := ix.SaveFile(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded == nil || loaded.Size() != 2 {
		t.Fatalf("loaded = %v", loaded)
	}
	got := loaded.Documents()
	if got[0] != docs[0] || got[1] != docs[1] {
		t.Errorf("documents did not roundtrip: %+v", got)
	}
}

func TestLoadFile_Absent(t *testing.T) {
	ix, err := LoadFile(filepath.Join(t.TempDir(), "missing.idx"))
	if err != nil {
		t.Fatalf("absent index must not error: %v", err)
	}
	if ix != nil {
		t.Error("absent index must load as nil")
	}
}

func TestMerge_SetUnion(t *testing.T) {
	a, _ := NewIndex(2)
	_ = a.Add([]models.Document{{ID: "a1", Content: "a1"}, {ID: "a2", Content: "a2"}},
		[][]float32{{1, 0}, {0, 1}})
	b, _ := NewIndex(2)
	_ = b.Add([]models.Document{{ID: "b1", Content: "b1"}}, [][]float32{{0.5, 0.5}})

	ids := func(ix *Index) []string {
		var out []string
		for _, d := range ix.Documents() {
			out = append(out, d.ID)
		}
		sort.Strings(out)
		return out
	}

	ab, err := Merge(a, b)
	if err != nil {
		t.Fatal(err)
	}
	ba, err := Merge(b, a)
	if err != nil {
		t.Fatal(err)
	}
	if ab.Size() != 3 || ba.Size() != 3 {
		t.Fatalf("sizes = %d, %d", ab.Size(), ba.Size())
	}
	want := []string{"a1", "a2", "b1"}
	for i, id := range ids(ab) {
		if id != want[i] {
			t.Errorf("merge(a,b) ids = %v", ids(ab))
		}
	}
	for i, id := range ids(ba) {
		if id != want[i] {
			t.Errorf("merge(b,a) ids = %v", ids(ba))
		}
	}

	// Merging with nil returns the other side.
	if got, _ := Merge(nil, a); got != a {
		t.Error("merge with nil should return the non-nil index")
	}
	if got, _ := Merge(a, nil); got != a {
		t.Error("merge with nil should return the non-nil index")
	}

	// A broad search can return documents from both sides.
	matches, err := ab.Search(context.Background(), []float32{0.7, 0.7}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 3 {
		t.Errorf("expected all documents reachable, got %d", len(matches))
	}
}

func TestMerge_DimensionMismatch(t *testing.T) {
	a, _ := NewIndex(3)
	_ = a.Add([]models.Document{{ID: "a1", Content: "a1"}}, [][]float32{{1, 0, 0}})
	b, _ := NewIndex(2)
	_ = b.Add([]models.Document{{ID: "b1", Content: "b1"}}, [][]float32{{1, 0}})

	if _, err := Merge(a, b); err == nil {
		t.Error("merging indexes of different dimensions must fail")
	}
	if _, err := Merge(b, a); err == nil {
		t.Error("merging indexes of different dimensions must fail")
	}

	// A merge that succeeds keeps every vector searchable at full length.
	c, _ := NewIndex(3)
	_ = c.Add([]models.Document{{ID: "c1", Content: "c1"}}, [][]float32{{0, 1, 0}})
	ac, err := Merge(a, c)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ac.Search(context.Background(), []float32{1, 1, 1}, 2); err != nil {
		t.Fatalf("search over merged index: %v", err)
	}
}

func TestSaveFile_Atomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tsla.idx")

	ix, _ := NewIndex(2)
	_ = ix.Add([]models.Document{{ID: "tsla_0", Content: "t"}}, [][]float32{{1, 0}})
	if err := ix.SaveFile(path); err != nil {
		t.Fatal(err)
	}

	// No temp files left behind.
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected only the index file, found %d entries", len(entries))
	}
}

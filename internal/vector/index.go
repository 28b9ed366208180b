// Package vector provides the per-namespace headline vector index and its
// persistence and similarity search.
package vector

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/finsight/newsrag/internal/models"
)

// Index is an in-memory vector index over headline documents using brute-force
// inner product search. Headline sets are small (hundreds per ticker), so
// exhaustive search is fine.
type Index struct {
	dimensions int
	docs       []models.Document
	vectors    [][]float32
	mu         sync.RWMutex
}

// Match is a single similarity search hit.
type Match struct {
	Document models.Document
	Score    float64 // inner product; cosine similarity for normalized vectors
}

// NewIndex creates an empty index with the given dimension.
func NewIndex(dimensions int) (*Index, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	return &Index{dimensions: dimensions}, nil
}

// Add appends documents with their embeddings.
func (ix *Index) Add(docs []models.Document, vectors [][]float32) error {
	if len(docs) != len(vectors) {
		return fmt.Errorf("documents and vectors length mismatch")
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	for i, doc := range docs {
		if len(vectors[i]) != ix.dimensions {
			return fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(vectors[i]), ix.dimensions)
		}
		vec := make([]float32, ix.dimensions)
		copy(vec, vectors[i])
		ix.docs = append(ix.docs, doc)
		ix.vectors = append(ix.vectors, vec)
	}
	return nil
}

// Search returns the top-k documents by inner product, best first.
func (ix *Index) Search(ctx context.Context, query []float32, k int) ([]Match, error) {
	if len(query) != ix.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), ix.dimensions)
	}
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if k <= 0 || len(ix.docs) == 0 {
		return nil, nil
	}
	matches := make([]Match, len(ix.docs))
	for i, vec := range ix.vectors {
		var dot float64
		for j := 0; j < ix.dimensions; j++ {
			dot += float64(query[j] * vec[j])
		}
		matches[i] = Match{Document: ix.docs[i], Score: dot}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if k > len(matches) {
		k = len(matches)
	}
	return matches[:k], nil
}

// Size returns the number of documents in the index.
func (ix *Index) Size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.docs)
}

// Dimensions returns the embedding dimension of the index.
func (ix *Index) Dimensions() int {
	return ix.dimensions
}

// Documents returns a copy of the stored documents in insertion order.
func (ix *Index) Documents() []models.Document {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]models.Document, len(ix.docs))
	copy(out, ix.docs)
	return out
}

// Merge returns a new index holding the union of a's and b's documents.
// Duplicates by content are preserved; merge order does not affect membership.
// Either argument may be nil. Indexes of different dimensions cannot be merged:
// mixing them would leave vectors shorter than the index dimension and corrupt
// every later search.
func Merge(a, b *Index) (*Index, error) {
	if a == nil {
		return b, nil
	}
	if b == nil {
		return a, nil
	}
	if a.dimensions != b.dimensions {
		return nil, fmt.Errorf("cannot merge indexes of dimensions %d and %d", a.dimensions, b.dimensions)
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	b.mu.RLock()
	defer b.mu.RUnlock()
	merged := &Index{dimensions: a.dimensions}
	merged.docs = append(merged.docs, a.docs...)
	merged.docs = append(merged.docs, b.docs...)
	merged.vectors = append(merged.vectors, a.vectors...)
	merged.vectors = append(merged.vectors, b.vectors...)
	return merged, nil
}

// WriteTo serializes the index. Format: dimensions (4), n (4), then per
// document five length-prefixed strings (id, content, description, url,
// published_at) followed by dimensions*4 bytes of vector data.
func (ix *Index) WriteTo(w io.Writer) error {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if err := binary.Write(w, binary.LittleEndian, uint32(ix.dimensions)); err != nil {
		return fmt.Errorf("write dimensions: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(ix.docs))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	for i, doc := range ix.docs {
		for _, field := range []string{doc.ID, doc.Content, doc.Description, doc.URL, doc.PublishedAt} {
			if err := writeString(w, field); err != nil {
				return err
			}
		}
		if _, err := w.Write(float32SliceToBytes(ix.vectors[i])); err != nil {
			return fmt.Errorf("write vector: %w", err)
		}
	}
	return nil
}

// ReadIndex deserializes an index written by WriteTo.
func ReadIndex(r io.Reader) (*Index, error) {
	var dim, n uint32
	if err := binary.Read(r, binary.LittleEndian, &dim); err != nil {
		return nil, fmt.Errorf("read dimensions: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("read count: %w", err)
	}
	ix := &Index{dimensions: int(dim)}
	buf := make([]byte, dim*4)
	for i := uint32(0); i < n; i++ {
		var doc models.Document
		fields := []*string{&doc.ID, &doc.Content, &doc.Description, &doc.URL, &doc.PublishedAt}
		for _, field := range fields {
			s, err := readString(r)
			if err != nil {
				return nil, err
			}
			*field = s
		}
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("read vector: %w", err)
		}
		ix.docs = append(ix.docs, doc)
		ix.vectors = append(ix.vectors, bytesToFloat32Slice(buf))
	}
	return ix, nil
}

// SaveFile writes the index to path atomically: the bytes go to a temp file in
// the same directory which is then renamed over path, so a partially written
// index is never observable as loaded state.
func (ix *Index) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp index file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := ix.WriteTo(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp index file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace index file: %w", err)
	}
	return nil
}

// LoadFile reads an index from path. Returns nil, nil when the file does not exist.
func LoadFile(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()
	return ReadIndex(f)
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return fmt.Errorf("write string len: %w", err)
	}
	if _, err := w.Write([]byte(s)); err != nil {
		return fmt.Errorf("write string: %w", err)
	}
	return nil
}

func readString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", fmt.Errorf("read string len: %w", err)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("read string: %w", err)
	}
	return string(buf), nil
}

func float32SliceToBytes(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}

func bytesToFloat32Slice(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}

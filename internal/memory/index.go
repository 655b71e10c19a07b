package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// Entry is one stored precedent: the text it was built from, its id, caller
// metadata, and the embedding it is searched by. Entries are created once
// per completed decision cycle and never mutated.
type Entry struct {
	// Text is the remembered content
	Text string `json:"text"`

	// ID identifies the entry (usually the decision record id)
	ID string `json:"id"`

	// Metadata carries caller key/value tags, also usable as search filters
	Metadata map[string]string `json:"metadata,omitempty"`

	// Embedding is the vector the entry is indexed under
	Embedding []float64 `json:"embedding"`
}

// Hit is one search result: an entry and its distance from the query.
type Hit struct {
	Entry    Entry
	Distance float64
}

// Index is the vector backend contract: add entries, query nearest
// neighbors by embedding distance.
type Index interface {
	// Add stores an entry
	Add(ctx context.Context, entry Entry) error

	// Query returns up to k entries nearest to the vector, ascending by
	// distance, restricted to entries matching every filter key/value
	Query(ctx context.Context, vector []float64, k int, filter map[string]string) ([]Hit, error)

	// Count returns the number of stored entries
	Count(ctx context.Context) (int, error)

	// Clear removes all entries. This is the only bulk-deletion path.
	Clear(ctx context.Context) error
}

// DefaultMaxEntries caps the embedded index. The engine writes one entry per
// decision cycle, so this covers a long history before eviction matters.
const DefaultMaxEntries = 50_000

// EmbeddedIndex is a lightweight in-memory vector index using brute-force
// Euclidean distance. Suitable for a single-process engine; swap in a real
// vector database behind the Index interface for bigger deployments.
type EmbeddedIndex struct {
	mu         sync.RWMutex
	entries    map[string]Entry
	maxEntries int
}

// EmbeddedOption configures the embedded index.
type EmbeddedOption func(*EmbeddedIndex)

// WithMaxEntries sets the entry cap.
func WithMaxEntries(max int) EmbeddedOption {
	return func(i *EmbeddedIndex) { i.maxEntries = max }
}

// NewEmbeddedIndex creates an in-memory vector index.
func NewEmbeddedIndex(opts ...EmbeddedOption) *EmbeddedIndex {
	idx := &EmbeddedIndex{
		entries:    make(map[string]Entry),
		maxEntries: DefaultMaxEntries,
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Add implements Index.Add
func (i *EmbeddedIndex) Add(_ context.Context, entry Entry) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if _, exists := i.entries[entry.ID]; !exists && len(i.entries) >= i.maxEntries {
		return fmt.Errorf("embedded index capacity exceeded: %d entries", i.maxEntries)
	}

	i.entries[entry.ID] = entry
	return nil
}

// Query implements Index.Query
func (i *EmbeddedIndex) Query(_ context.Context, vector []float64, k int, filter map[string]string) ([]Hit, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	var hits []Hit
	for _, e := range i.entries {
		if len(e.Embedding) != len(vector) {
			continue
		}
		if !matchesFilter(e.Metadata, filter) {
			continue
		}
		hits = append(hits, Hit{Entry: e, Distance: euclidean(vector, e.Embedding)})
	}

	sort.Slice(hits, func(a, b int) bool {
		if hits[a].Distance != hits[b].Distance {
			return hits[a].Distance < hits[b].Distance
		}
		return hits[a].Entry.ID < hits[b].Entry.ID
	})

	if k > 0 && k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Count implements Index.Count
func (i *EmbeddedIndex) Count(_ context.Context) (int, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.entries), nil
}

// Clear implements Index.Clear
func (i *EmbeddedIndex) Clear(_ context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.entries = make(map[string]Entry)
	return nil
}

func matchesFilter(metadata, filter map[string]string) bool {
	for k, v := range filter {
		if metadata[k] != v {
			return false
		}
	}
	return true
}

func euclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

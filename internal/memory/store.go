// Package memory recalls precedents: past decisions judged similar to the
// current task via embedding distance. Recall is advisory: the engine logs
// what it finds but never lets a precedent change routing or skip provider
// calls.
package memory

import (
	"context"

	"github.com/arbiterhq/arbiter/internal/errors"
)

// Store pairs an embedder with a vector index.
type Store struct {
	embedder Embedder
	index    Index
}

// NewStore creates a memory store over the given embedder and index.
func NewStore(embedder Embedder, index Index) *Store {
	return &Store{embedder: embedder, index: index}
}

// NewDefaultStore creates a store with the local hashing embedder and the
// embedded in-memory index.
func NewDefaultStore() *Store {
	return NewStore(NewHashingEmbedder(0), NewEmbeddedIndex())
}

// Remember stores one precedent. Called once per completed decision cycle.
func (s *Store) Remember(ctx context.Context, text, id string, metadata map[string]string) error {
	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreMemory, "failed to embed memory text", err)
	}

	entry := Entry{
		Text:      text,
		ID:        id,
		Metadata:  metadata,
		Embedding: embedding,
	}

	if err := s.index.Add(ctx, entry); err != nil {
		return errors.Wrap(errors.ErrCodeStoreMemory, "failed to index memory entry", err)
	}
	return nil
}

// Recall returns up to k precedents ranked nearest to the query by
// embedding distance, optionally restricted by metadata filter.
func (s *Store) Recall(ctx context.Context, query string, k int, filter map[string]string) ([]Hit, error) {
	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreMemory, "failed to embed query", err)
	}
	return s.index.Query(ctx, embedding, k, filter)
}

// HasSeenSimilar reports whether a precedent within the similarity threshold
// exists, returning the nearest one either way. Similarity is 1/(1+distance),
// a monotonically decreasing transform of distance onto (0, 1].
func (s *Store) HasSeenSimilar(ctx context.Context, query string, threshold float64) (bool, *Hit, error) {
	hits, err := s.Recall(ctx, query, 1, nil)
	if err != nil {
		return false, nil, err
	}
	if len(hits) == 0 {
		return false, nil, nil
	}

	nearest := hits[0]
	return Similarity(nearest.Distance) >= threshold, &nearest, nil
}

// Count returns the number of stored precedents.
func (s *Store) Count(ctx context.Context) (int, error) {
	return s.index.Count(ctx)
}

// Clear removes every precedent. The only bulk-deletion path.
func (s *Store) Clear(ctx context.Context) error {
	return s.index.Clear(ctx)
}

// Similarity maps a distance onto (0, 1], larger meaning more similar.
func Similarity(distance float64) float64 {
	return 1.0 / (1.0 + distance)
}

package memory

import (
	"context"
	"encoding/binary"
	"math"
	"strings"

	"github.com/zeebo/blake3"
)

// Embedder turns text into a fixed-dimension vector. The store only needs
// relative distances, so any consistent embedding works; implementations
// backed by provider APIs satisfy the same interface.
type Embedder interface {
	// Embed computes the embedding for one text
	Embed(ctx context.Context, text string) ([]float64, error)

	// Dimensions is the length of every vector this embedder produces
	Dimensions() int
}

// DefaultDimensions is the hashing embedder's vector size.
const DefaultDimensions = 64

// HashingEmbedder is a deterministic local embedder: each token is hashed
// with blake3 into a signed bucket, and the resulting vector is
// L2-normalized. It needs no credentials and gives stable distances for
// precedent recall, which is advisory-only.
type HashingEmbedder struct {
	dims int
}

// NewHashingEmbedder creates a local embedder. dims ≤ 0 selects the default.
func NewHashingEmbedder(dims int) *HashingEmbedder {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &HashingEmbedder{dims: dims}
}

// Dimensions implements Embedder.Dimensions
func (e *HashingEmbedder) Dimensions() int {
	return e.dims
}

// Embed implements Embedder.Embed. It never fails.
func (e *HashingEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	vec := make([]float64, e.dims)

	for _, token := range tokenize(text) {
		sum := blake3.Sum256([]byte(token))
		bucket := int(binary.BigEndian.Uint64(sum[:8]) % uint64(e.dims))
		if sum[8]&1 == 0 {
			vec[bucket]++
		} else {
			vec[bucket]--
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}

	return vec, nil
}

// tokenize lowercases and splits on non-alphanumeric runes.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}

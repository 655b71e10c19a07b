// Package consensus reconciles disagreeing provider responses into a single
// answer. Responses are bucketed by normalized content; the weighted builder
// scores buckets by summed confidence, the majority builder by raw count.
package consensus

import (
	"strings"

	"github.com/arbiterhq/arbiter/internal/domain"
)

// DefaultMajorityThreshold is the fraction of responses a bucket needs to
// hold a majority.
const DefaultMajorityThreshold = 0.5

// Result is the winning answer of a consensus round.
type Result struct {
	// Content is the winning bucket's text in its original case
	Content string

	// Confidence is the winning bucket's total confidence
	Confidence float64

	// Votes is how many responses landed in the winning bucket
	Votes int
}

// WeightedConsensus buckets responses by exact-match normalized content
// (trimmed, lowercased), sums confidence per bucket, and returns the bucket
// with the highest total. Ties break deterministically toward the
// lexicographically smallest normalized key. Empty input yields ("", 0.0).
func WeightedConsensus(responses []domain.ModelResponse) Result {
	if len(responses) == 0 {
		return Result{}
	}

	type bucket struct {
		total    float64
		votes    int
		original string
	}

	buckets := make(map[string]*bucket)
	for _, r := range responses {
		key := normalizeKey(r.Content)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{original: strings.TrimSpace(r.Content)}
			buckets[key] = b
		}
		b.total += r.Confidence
		b.votes++
	}

	var winnerKey string
	var winner *bucket
	for key, b := range buckets {
		if winner == nil || b.total > winner.total || (b.total == winner.total && key < winnerKey) {
			winnerKey = key
			winner = b
		}
	}

	return Result{
		Content:    winner.original,
		Confidence: winner.total,
		Votes:      winner.votes,
	}
}

// MajorityVote buckets responses by normalized content and reports whether
// the largest bucket holds at least threshold of the total, along with that
// bucket's content. Empty input never holds a majority.
func MajorityVote(responses []domain.ModelResponse, threshold float64) (bool, Result) {
	if len(responses) == 0 {
		return false, Result{}
	}

	type bucket struct {
		total    float64
		votes    int
		original string
	}

	buckets := make(map[string]*bucket)
	for _, r := range responses {
		key := normalizeKey(r.Content)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{original: strings.TrimSpace(r.Content)}
			buckets[key] = b
		}
		b.total += r.Confidence
		b.votes++
	}

	var winnerKey string
	var winner *bucket
	for key, b := range buckets {
		if winner == nil || b.votes > winner.votes || (b.votes == winner.votes && key < winnerKey) {
			winnerKey = key
			winner = b
		}
	}

	result := Result{
		Content:    winner.original,
		Confidence: winner.total,
		Votes:      winner.votes,
	}

	return float64(winner.votes)/float64(len(responses)) >= threshold, result
}

// normalizeKey produces the bucketing key for a response: trimmed and
// lowercased, exact match otherwise.
func normalizeKey(content string) string {
	return strings.ToLower(strings.TrimSpace(content))
}

package provenance

import (
	"fmt"

	"github.com/arbiterhq/arbiter/internal/domain"
	"github.com/arbiterhq/arbiter/internal/errors"
)

// Stats aggregates the full log.
type Stats struct {
	// Total is the number of readable records
	Total int

	// Outcomes counts records per terminal outcome
	Outcomes map[domain.Outcome]int

	// SuccessRate is the fraction of cycles that produced a plan
	SuccessRate float64

	// AverageConfidence is the mean consensus confidence over planned cycles
	AverageConfidence float64

	// ProviderUsage counts responses per provider across all cycles
	ProviderUsage map[string]int
}

// Lookup returns the record with the given id.
func (l *Log) Lookup(id string) (*domain.DecisionRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.scan()
	if err != nil {
		return nil, err
	}

	for i := range records {
		if records[i].ID == id {
			return &records[i], nil
		}
	}

	return nil, errors.New(errors.ErrCodeStoreRead, fmt.Sprintf("no decision record with id %s", id))
}

// Recent returns the most recent n records, newest first. A non-positive
// n yields an empty slice.
func (l *Log) Recent(n int) ([]domain.DecisionRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.scan()
	if err != nil {
		return nil, err
	}

	if n < 0 {
		n = 0
	}
	if n > len(records) {
		n = len(records)
	}

	out := make([]domain.DecisionRecord, 0, n)
	for i := len(records) - 1; i >= len(records)-n; i-- {
		out = append(out, records[i])
	}
	return out, nil
}

// ComputeStats runs a full scan and aggregates outcome, confidence, and
// provider usage figures.
func (l *Log) ComputeStats() (*Stats, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.scan()
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		Outcomes:      make(map[domain.Outcome]int),
		ProviderUsage: make(map[string]int),
	}

	var planned int
	var confidenceSum float64
	for _, record := range records {
		stats.Total++
		stats.Outcomes[record.Outcome]++

		if record.Plan != nil {
			planned++
			confidenceSum += record.Plan.Metadata.Confidence
		}

		for _, response := range record.Responses {
			stats.ProviderUsage[response.Provider]++
		}
	}

	if stats.Total > 0 {
		stats.SuccessRate = float64(stats.Outcomes[domain.OutcomePlanReady]) / float64(stats.Total)
	}
	if planned > 0 {
		stats.AverageConfidence = confidenceSum / float64(planned)
	}

	return stats, nil
}

// Package uncertainty scores how much a set of provider responses disagree
// and decides whether a human must sign off. All functions are pure and
// total; they never fail.
package uncertainty

import "github.com/arbiterhq/arbiter/internal/domain"

// Default thresholds for escalation decisions.
const (
	DefaultDisagreementThreshold = 0.05
	DefaultConfidenceThreshold   = 0.7
)

// Evaluator applies disagreement and confidence thresholds to a response set.
type Evaluator struct {
	// DisagreementThreshold is the confidence variance above which the
	// decision escalates.
	DisagreementThreshold float64

	// ConfidenceThreshold is the mean confidence below which the decision
	// escalates.
	ConfidenceThreshold float64
}

// NewEvaluator returns an evaluator with the default thresholds.
func NewEvaluator() Evaluator {
	return Evaluator{
		DisagreementThreshold: DefaultDisagreementThreshold,
		ConfidenceThreshold:   DefaultConfidenceThreshold,
	}
}

// DisagreementScore is the population variance of response confidences.
// Fewer than two responses cannot disagree, so the score is 0.
func DisagreementScore(responses []domain.ModelResponse) float64 {
	if len(responses) < 2 {
		return 0.0
	}

	mean := MeanConfidence(responses)
	var sum float64
	for _, r := range responses {
		d := r.Confidence - mean
		sum += d * d
	}
	return sum / float64(len(responses))
}

// MeanConfidence is the arithmetic mean of response confidences, 0 if empty.
func MeanConfidence(responses []domain.ModelResponse) float64 {
	if len(responses) == 0 {
		return 0.0
	}

	var sum float64
	for _, r := range responses {
		sum += r.Confidence
	}
	return sum / float64(len(responses))
}

// ShouldEscalate reports whether the responses are too weak or too
// conflicting to act on automatically, and why. A safety veto coexisting
// with non-safety responses escalates regardless of the numeric signals.
func (e Evaluator) ShouldEscalate(responses []domain.ModelResponse) (bool, string) {
	if len(responses) == 0 {
		return true, "no responses"
	}

	if hasSafetyConflict(responses) {
		return true, "safety conflicts with other roles"
	}

	if score := DisagreementScore(responses); score > e.DisagreementThreshold {
		return true, "providers disagree beyond threshold"
	}

	if mean := MeanConfidence(responses); mean < e.ConfidenceThreshold {
		return true, "average confidence below threshold"
	}

	return false, ""
}

// hasSafetyConflict detects a safety block sentinel alongside at least one
// non-safety response.
func hasSafetyConflict(responses []domain.ModelResponse) bool {
	blocked := false
	others := false
	for _, r := range responses {
		if r.IsBlock() {
			blocked = true
		}
		if !r.Role.IsSafety() {
			others = true
		}
	}
	return blocked && others
}

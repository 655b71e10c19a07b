// Package normalize cleans raw provider output and assigns it a comparable
// confidence score. Every adapter routes its text through Normalize, so
// confidences mean the same thing regardless of which backing service
// produced them.
package normalize

import "strings"

// DefaultBaseConfidence is the starting score for a provider that supplies
// no calibration of its own.
const DefaultBaseConfidence = 0.85

// MaxConfidence caps the normalized score. No single response can claim
// certainty above this.
const MaxConfidence = 0.95

// shortResponseLength is the cleaned-text length below which confidence is
// discounted.
const shortResponseLength = 20

var uncertaintyMarkers = []string{"maybe", "might", "possibly", "unsure", "unclear"}

var decisiveMarkers = []string{"definitely", "clearly", "certainly", "confirmed"}

// Normalize trims text and derives a confidence from the base score:
// short answers and hedging language discount it, decisive language boosts
// it slightly, and the result is clamped to [0, MaxConfidence].
// Empty input yields ("", 0.0) regardless of the base confidence.
func Normalize(text string, baseConfidence float64) (string, float64) {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return "", 0.0
	}

	confidence := baseConfidence

	if len(cleaned) < shortResponseLength {
		confidence *= 0.8
	}

	lower := strings.ToLower(cleaned)

	if containsAny(lower, uncertaintyMarkers) {
		confidence *= 0.9
	}

	if containsAny(lower, decisiveMarkers) {
		confidence *= 1.05
	}

	if confidence > MaxConfidence {
		confidence = MaxConfidence
	}
	if confidence < 0 {
		confidence = 0
	}

	return cleaned, confidence
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

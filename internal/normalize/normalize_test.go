package normalize

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		base     float64
		wantText string
		wantConf float64
	}{
		{
			name:     "empty input is zero confidence",
			text:     "",
			base:     0.85,
			wantText: "",
			wantConf: 0.0,
		},
		{
			name:     "whitespace only is empty",
			text:     "   \n\t ",
			base:     0.99,
			wantText: "",
			wantConf: 0.0,
		},
		{
			name:     "plain long answer keeps base",
			text:     "Proceed with the launch as planned next week.",
			base:     0.85,
			wantText: "Proceed with the launch as planned next week.",
			wantConf: 0.85,
		},
		{
			name:     "short answer discounted",
			text:     "PROCEED",
			base:     0.85,
			wantText: "PROCEED",
			wantConf: 0.85 * 0.8,
		},
		{
			name:     "uncertainty marker discounted",
			text:     "This might work but the pricing is not validated.",
			base:     0.85,
			wantText: "This might work but the pricing is not validated.",
			wantConf: 0.85 * 0.9,
		},
		{
			name:     "decisive marker boosted",
			text:     "This is definitely the right price point for launch.",
			base:     0.85,
			wantText: "This is definitely the right price point for launch.",
			wantConf: 0.85 * 1.05,
		},
		{
			name:     "boost clamps at max",
			text:     "Definitely and certainly confirmed, proceed with this plan.",
			base:     0.94,
			wantText: "Definitely and certainly confirmed, proceed with this plan.",
			wantConf: MaxConfidence,
		},
		{
			name:     "short and uncertain stack",
			text:     "maybe, unsure",
			base:     1.0,
			wantText: "maybe, unsure",
			wantConf: 1.0 * 0.8 * 0.9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotText, gotConf := Normalize(tt.text, tt.base)
			if gotText != tt.wantText {
				t.Errorf("text = %q, want %q", gotText, tt.wantText)
			}
			if !almostEqual(gotConf, tt.wantConf) {
				t.Errorf("confidence = %v, want %v", gotConf, tt.wantConf)
			}
		})
	}
}

// Confidence never leaves [0, MaxConfidence] no matter the base.
func TestNormalize_ConfidenceBounds(t *testing.T) {
	texts := []string{
		"", "x", "definitely", "maybe definitely unclear confirmed",
		strings.Repeat("a confident and complete answer ", 5),
	}
	bases := []float64{0, 0.1, 0.5, 0.85, 1.0, 2.0}

	for _, text := range texts {
		for _, base := range bases {
			_, conf := Normalize(text, base)
			if conf < 0 || conf > MaxConfidence {
				t.Errorf("Normalize(%q, %v) confidence %v out of [0, %v]", text, base, conf, MaxConfidence)
			}
		}
	}
}

func TestNormalize_MarkersCaseInsensitive(t *testing.T) {
	_, withMarker := Normalize("MAYBE this works for the product line.", 0.85)
	_, without := Normalize("Sure this works for the product line ok.", 0.85)

	if withMarker >= without {
		t.Errorf("uppercase uncertainty marker not discounted: %v >= %v", withMarker, without)
	}
}

func almostEqual(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}

package provider

import (
	"context"
	"strings"
	"testing"

	"github.com/arbiterhq/arbiter/internal/decompose"
	"github.com/arbiterhq/arbiter/internal/domain"
)

func newCritic() *CriticAdapter {
	return NewCriticAdapter(Config{Name: "critic", Kind: KindCritic, Enabled: true})
}

func TestCriticAdapter_KeywordNarratives(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   string
	}{
		{"price keyword", "What price should the hoodie carry?", "pricing assumption"},
		{"design keyword", "Review the new design for the mug", "creative direction"},
		{"launch keyword", "Should we launch the poster next week?", "rollback"},
		{"no keyword falls back", "Evaluate the warehouse move", "falsifiable"},
	}

	critic := newCritic()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := critic.Call(context.Background(), tt.prompt)
			if err != nil {
				t.Fatalf("Call() error = %v", err)
			}
			if !strings.Contains(strings.ToLower(got.Text), tt.want) {
				t.Errorf("critique %q missing %q", got.Text, tt.want)
			}
		})
	}
}

func TestCriticAdapter_Deterministic(t *testing.T) {
	critic := newCritic()
	const prompt = "Set the price for the new shirt"

	first, err := critic.Call(context.Background(), prompt)
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}

	for i := 0; i < 10; i++ {
		got, err := critic.Call(context.Background(), prompt)
		if err != nil {
			t.Fatalf("Call() error = %v", err)
		}
		if got != first {
			t.Fatalf("critic is not deterministic: %+v != %+v", got, first)
		}
	}
}

func TestCriticAdapter_NoCredentialsNeeded(t *testing.T) {
	critic := newCritic()

	if err := critic.Health(context.Background()); err != nil {
		t.Errorf("Health() = %v, critic must be available offline", err)
	}

	got, err := critic.Call(context.Background(), "anything at all")
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if got.Confidence <= 0 || got.Confidence > 0.95 {
		t.Errorf("confidence %v outside (0, 0.95]", got.Confidence)
	}
}

func TestCriticAdapter_MatchesActionNotInstructions(t *testing.T) {
	// The safety prompt boilerplate enumerates risk categories, including
	// "pricing risk". Only the action after the marker may drive the
	// critique, otherwise every safety subtask reads as a pricing question.
	critic := newCritic()

	subtasks := decompose.Decompose("Brief the warehouse team on the seasonal move", nil)
	var safetyPrompt string
	for _, st := range subtasks {
		if st.Role == domain.RoleSafety {
			safetyPrompt = st.Prompt
		}
	}
	if safetyPrompt == "" {
		t.Fatal("no safety subtask produced")
	}

	got, err := critic.Call(context.Background(), safetyPrompt)
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if strings.Contains(strings.ToLower(got.Text), "pricing assumption") {
		t.Errorf("instruction boilerplate triggered the pricing critique: %q", got.Text)
	}
	if !strings.Contains(strings.ToLower(got.Text), "falsifiable") {
		t.Errorf("expected the default critique, got %q", got.Text)
	}

	// An action that genuinely concerns price still triggers it.
	priced, err := critic.Call(context.Background(), decompose.Decompose("Drop the hoodie price to $29", nil)[1].Prompt)
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if !strings.Contains(strings.ToLower(priced.Text), "pricing assumption") {
		t.Errorf("price action did not trigger the pricing critique: %q", priced.Text)
	}
}

func TestCriticAdapter_PriceBeatsLaunch(t *testing.T) {
	// A prompt with both triggers picks the more specific pricing critique.
	critic := newCritic()
	got, err := critic.Call(context.Background(), "Launch the hoodie at a $40 price point")
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if !strings.Contains(strings.ToLower(got.Text), "pricing") {
		t.Errorf("expected pricing critique, got %q", got.Text)
	}
}

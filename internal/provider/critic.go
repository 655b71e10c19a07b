package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/arbiterhq/arbiter/internal/decompose"
	"github.com/arbiterhq/arbiter/internal/normalize"
)

// CriticAdapter is the adversarial reviewer. It needs no credentials: given
// no external backing it deterministically synthesizes a critique by keyword
// matching against the prompt. This offline mode is a permanent capability
// of the engine, not a placeholder. It guarantees a skeptical voice in
// every cycle even when every remote provider is down.
type CriticAdapter struct {
	cfg Config
}

// critiques maps prompt keywords to canned risk narratives. First match in
// order wins, so more specific concerns sit before general ones.
var critiques = []struct {
	keywords  []string
	narrative string
}{
	{
		keywords:  []string{"price", "pricing", "cost", "$"},
		narrative: "Challenge the pricing assumption: comparable products undercut this position, and there is no evidence the margin survives a promotion cycle. Validate against at least three competitor prices before committing.",
	},
	{
		keywords:  []string{"design", "copy", "headline", "artwork"},
		narrative: "The creative direction is untested. Brand and trademark review has not cleared the phrasing or artwork, and a near-miss with an existing mark is the most expensive mistake available here.",
	},
	{
		keywords:  []string{"launch", "publish", "release", "ship"},
		narrative: "Launch readiness is unproven: no rollback path is stated, support has not been briefed, and the announcement precedes the inventory confirmation. Sequence those before going live.",
	},
}

const defaultCritique = "The proposal lacks falsifiable success criteria. State what failure would look like and how it will be detected before asking for automatic execution."

// NewCriticAdapter creates the offline adversarial reviewer.
func NewCriticAdapter(cfg Config) *CriticAdapter {
	return &CriticAdapter{cfg: cfg}
}

// Name implements Adapter.Name
func (a *CriticAdapter) Name() string {
	return a.cfg.Name
}

// Call implements Adapter.Call. It never fails and never blocks on I/O.
func (a *CriticAdapter) Call(_ context.Context, prompt string) (Response, error) {
	lower := strings.ToLower(actionText(prompt))

	narrative := defaultCritique
	matched := "none"
	for _, c := range critiques {
		if containsAnyKeyword(lower, c.keywords) {
			narrative = c.narrative
			matched = c.keywords[0]
			break
		}
	}

	text, confidence := normalize.Normalize(narrative, a.cfg.baseConfidence())
	return Response{
		Text:       text,
		Confidence: confidence,
		Reasoning:  fmt.Sprintf("offline critique, keyword trigger: %s", matched),
	}, nil
}

// Health implements Adapter.Health. The critic is always available.
func (a *CriticAdapter) Health(_ context.Context) error {
	return nil
}

// actionText returns the portion of the prompt after the action marker, or
// the whole prompt when no marker is present. Keyword matching must only see
// the action itself: the reviewer instructions around it name risk categories
// ("pricing risk") that would otherwise trigger on every prompt.
func actionText(prompt string) string {
	if i := strings.LastIndex(prompt, decompose.ActionMarker); i >= 0 {
		return strings.TrimSpace(prompt[i+len(decompose.ActionMarker):])
	}
	return prompt
}

func containsAnyKeyword(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

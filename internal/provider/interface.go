package provider

import "context"

// Adapter is the capability every text-generation provider implements.
// Variants cover HTTP APIs and the offline red-team critic.
type Adapter interface {
	// Name is the provider identifier used in routing and provenance.
	Name() string

	// Call sends a prompt and returns the normalized response. The
	// confidence in the response always comes from the shared response
	// normalizer, so scores are comparable across providers.
	//
	// Failure policy: outages, auth problems, and empty responses are
	// returned as PROVIDER-coded errors. The engine catches them, logs
	// them, and continues the cycle with one fewer response; adapters
	// never signal errors through "ERROR:"-prefixed text.
	Call(ctx context.Context, prompt string) (Response, error)

	// Health checks whether the provider is reachable and ready.
	Health(ctx context.Context) error
}

// Response is one provider answer before it is tagged with a role.
type Response struct {
	// Text is the normalized response text
	Text string

	// Confidence is the normalized score in [0, 0.95]
	Confidence float64

	// Reasoning optionally carries provider-side rationale
	Reasoning string
}

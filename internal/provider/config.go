package provider

import (
	"fmt"
	"os"

	"github.com/arbiterhq/arbiter/internal/normalize"
)

// Kind is the adapter implementation backing a provider entry.
type Kind string

const (
	// KindOpenAI is an OpenAI-style chat-completions API
	KindOpenAI Kind = "openai"

	// KindAnthropic is an Anthropic-style messages API
	KindAnthropic Kind = "anthropic"

	// KindCritic is the offline adversarial reviewer
	KindCritic Kind = "critic"
)

// Config describes one provider entry in arbiter.yaml.
type Config struct {
	// Name is the provider identifier referenced by the routing table
	Name string `yaml:"name"`

	// Kind selects the adapter implementation
	Kind Kind `yaml:"kind"`

	// Enabled controls whether this provider is registered
	Enabled bool `yaml:"enabled"`

	// APIKeyEnv names the environment variable holding the API key
	APIKeyEnv string `yaml:"api_key_env,omitempty"`

	// BaseURL overrides the provider endpoint (useful for proxies and tests)
	BaseURL string `yaml:"base_url,omitempty"`

	// Model is the backing model name
	Model string `yaml:"model,omitempty"`

	// MaxTokens caps response length, 0 for the adapter default
	MaxTokens int `yaml:"max_tokens,omitempty"`

	// BaseConfidence seeds the response normalizer for this provider
	BaseConfidence float64 `yaml:"base_confidence,omitempty"`
}

// baseConfidence returns the configured base confidence or the normalizer
// default.
func (c Config) baseConfidence() float64 {
	if c.BaseConfidence > 0 {
		return c.BaseConfidence
	}
	return normalize.DefaultBaseConfidence
}

// apiKey resolves the provider API key from the configured environment
// variable. Empty is legal; adapters that need a key fail at call time with
// an auth error, and the critic runs offline without one.
func (c Config) apiKey() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.APIKeyEnv)
}

// NewFromConfig creates the adapter a config entry describes.
func NewFromConfig(cfg Config) (Adapter, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("provider name is required")
	}

	switch cfg.Kind {
	case KindOpenAI:
		return NewOpenAIAdapter(cfg), nil
	case KindAnthropic:
		return NewAnthropicAdapter(cfg), nil
	case KindCritic:
		return NewCriticAdapter(cfg), nil
	default:
		return nil, fmt.Errorf("unknown provider kind: %s", cfg.Kind)
	}
}

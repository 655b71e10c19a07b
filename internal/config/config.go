// Package config loads and validates arbiter.yaml, the single configuration
// file covering providers, routing, thresholds, approval policy, storage,
// and logging.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/arbiterhq/arbiter/internal/domain"
	arberrors "github.com/arbiterhq/arbiter/internal/errors"
	"github.com/arbiterhq/arbiter/internal/provider"
	"github.com/arbiterhq/arbiter/internal/route"
	"github.com/arbiterhq/arbiter/internal/uncertainty"
)

// DefaultFileName is the config file looked up in the working directory.
const DefaultFileName = "arbiter.yaml"

// Config is the complete arbiter.yaml configuration.
type Config struct {
	Providers       []provider.Config `yaml:"providers"`
	Routing         RoutingConfig     `yaml:"routing"`
	Thresholds      ThresholdConfig   `yaml:"thresholds,omitempty"`
	RequireApproval bool              `yaml:"require_approval,omitempty"`
	Storage         StorageConfig     `yaml:"storage,omitempty"`
	Logging         LoggingConfig     `yaml:"logging,omitempty"`
}

// RoutingConfig names the creative and conservative providers and allows
// per-role overrides.
type RoutingConfig struct {
	// Creative answers analysis, copy, and pricing subtasks
	Creative string `yaml:"creative"`

	// Conservative answers safety subtasks; keep it distinct from Creative
	Conservative string `yaml:"conservative"`

	// Overrides maps a role to a specific provider, replacing the default
	Overrides map[string]string `yaml:"overrides,omitempty"`
}

// ThresholdConfig tunes when a decision escalates. Zero values fall back to
// the evaluator defaults.
type ThresholdConfig struct {
	// Disagreement is the confidence variance above which to escalate
	Disagreement float64 `yaml:"disagreement,omitempty"`

	// Confidence is the mean confidence below which to escalate
	Confidence float64 `yaml:"confidence,omitempty"`
}

// StorageConfig locates the on-disk provenance log.
type StorageConfig struct {
	// ProvenancePath is the NDJSON decision log file
	ProvenancePath string `yaml:"provenance_path,omitempty"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// Default returns a working configuration backed entirely by the offline
// critic, so a fresh install can run decisions without credentials.
func Default() *Config {
	return &Config{
		Providers: []provider.Config{
			{
				Name:      "openai",
				Kind:      provider.KindOpenAI,
				Enabled:   false,
				APIKeyEnv: "OPENAI_API_KEY",
				Model:     "gpt-4o",
			},
			{
				Name:      "anthropic",
				Kind:      provider.KindAnthropic,
				Enabled:   false,
				APIKeyEnv: "ANTHROPIC_API_KEY",
				Model:     "claude-sonnet-4-5",
			},
			{
				Name:    "critic",
				Kind:    provider.KindCritic,
				Enabled: true,
			},
		},
		Routing: RoutingConfig{
			Creative:     "critic",
			Conservative: "critic",
		},
		Storage: StorageConfig{
			ProvenancePath: defaultProvenancePath(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads, expands, and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, arberrors.NewConfigNotFoundError(path)
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Expand environment variables in the config
	configStr := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(configStr), &cfg); err != nil {
		return nil, arberrors.NewConfigInvalidError(err.Error())
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes a configuration to a YAML file.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if len(c.Providers) == 0 {
		return arberrors.NewConfigInvalidError("no providers configured")
	}

	names := make(map[string]bool, len(c.Providers))
	hasEnabled := false
	for i, p := range c.Providers {
		if p.Name == "" {
			return arberrors.NewConfigInvalidError(fmt.Sprintf("provider %d: name is required", i))
		}
		if names[p.Name] {
			return arberrors.NewConfigInvalidError(fmt.Sprintf("duplicate provider name: %s", p.Name))
		}
		names[p.Name] = true

		switch p.Kind {
		case provider.KindOpenAI, provider.KindAnthropic, provider.KindCritic:
		default:
			return arberrors.NewConfigInvalidError(fmt.Sprintf("provider %s: unknown kind %q", p.Name, p.Kind))
		}
		if p.Enabled {
			hasEnabled = true
		}
	}
	if !hasEnabled {
		return arberrors.NewConfigInvalidError("at least one provider must be enabled")
	}

	if c.Routing.Creative == "" || c.Routing.Conservative == "" {
		return arberrors.NewConfigInvalidError("routing requires both creative and conservative providers")
	}
	for _, name := range []string{c.Routing.Creative, c.Routing.Conservative} {
		if !names[name] {
			return arberrors.NewConfigInvalidError(fmt.Sprintf("routing references unknown provider: %s", name))
		}
	}
	for role, name := range c.Routing.Overrides {
		if _, err := domain.NewRole(role); err != nil {
			return arberrors.NewConfigInvalidError(fmt.Sprintf("routing override: %v", err))
		}
		if name != route.NoProvider && !names[name] {
			return arberrors.NewConfigInvalidError(fmt.Sprintf("routing override for %s references unknown provider: %s", role, name))
		}
	}

	if c.Thresholds.Disagreement < 0 {
		return arberrors.NewConfigInvalidError("thresholds.disagreement must be non-negative")
	}
	if c.Thresholds.Confidence < 0 || c.Thresholds.Confidence > 1 {
		return arberrors.NewConfigInvalidError("thresholds.confidence must be in [0, 1]")
	}

	return nil
}

// Router builds the routing table this configuration describes.
func (c *Config) Router() *route.Router {
	base := route.Default(c.Routing.Creative, c.Routing.Conservative)
	if len(c.Routing.Overrides) == 0 {
		return base
	}

	table := base.Table()
	for role, name := range c.Routing.Overrides {
		table[domain.Role(role)] = name
	}
	return route.New(table, c.Routing.Creative)
}

// Evaluator builds an uncertainty evaluator with the configured thresholds,
// falling back to the defaults for zero values.
func (c *Config) Evaluator() uncertainty.Evaluator {
	e := uncertainty.NewEvaluator()
	if c.Thresholds.Disagreement > 0 {
		e.DisagreementThreshold = c.Thresholds.Disagreement
	}
	if c.Thresholds.Confidence > 0 {
		e.ConfidenceThreshold = c.Thresholds.Confidence
	}
	return e
}

// ProvenancePath returns the configured decision log path or the default.
func (c *Config) ProvenancePath() string {
	if c.Storage.ProvenancePath != "" {
		return c.Storage.ProvenancePath
	}
	return defaultProvenancePath()
}

// DefaultPath returns where the config file is expected: arbiter.yaml in the
// working directory, falling back to ~/.arbiter/arbiter.yaml.
func DefaultPath() string {
	if _, err := os.Stat(DefaultFileName); err == nil {
		return DefaultFileName
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultFileName
	}
	return filepath.Join(home, ".arbiter", DefaultFileName)
}

func defaultProvenancePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "arbiter-decisions.ndjson"
	}
	return filepath.Join(home, ".arbiter", "decisions.ndjson")
}

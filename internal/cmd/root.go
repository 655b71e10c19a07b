package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/arbiterhq/arbiter/internal/config"
	"github.com/arbiterhq/arbiter/internal/log"
	"github.com/arbiterhq/arbiter/internal/provenance"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "arbiter",
	Short: "Multi-provider decision synthesis",
	Long: `arbiter decomposes a task into role-tagged subtasks, fans them out to
independent AI providers, scores how much the responses disagree, and builds
a confidence-weighted consensus. Safety reviews can veto a task outright and
uncertain decisions escalate to an approval gate. Every cycle is written to
an append-only, hash-chained decision log.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with the given context
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default is ./arbiter.yaml, then $HOME/.arbiter/arbiter.yaml)")
}

// loadConfig resolves and loads the effective configuration file.
func loadConfig() (*config.Config, error) {
	path := cfgPath
	if path == "" {
		path = config.DefaultPath()
	}
	return config.Load(path)
}

// newLogger builds the structured logger the config describes.
func newLogger(cfg *config.Config) *log.Logger {
	return log.New(log.Config{
		Level:  log.ParseLevel(cfg.Logging.Level),
		Format: log.ParseFormat(cfg.Logging.Format),
		Output: os.Stderr,
	})
}

// openJournal opens the decision log at the configured path.
func openJournal(cfg *config.Config) (*provenance.Log, error) {
	return provenance.Open(cfg.ProvenancePath())
}

package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/arbiterhq/arbiter/internal/config"
	"github.com/arbiterhq/arbiter/internal/provider"
)

var (
	initForce bool
	initYes   bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an arbiter.yaml configuration",
	Long: `Create an arbiter.yaml configuration interactively.

The generated default works fully offline: the adversarial critic provider
needs no credentials. Enable OpenAI or Anthropic once you have API keys.

Examples:
  # Guided setup
  arbiter init

  # Accept all defaults (non-interactive)
  arbiter init --yes

  # Overwrite an existing configuration
  arbiter init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing configuration file")
	initCmd.Flags().BoolVarP(&initYes, "yes", "y", false, "accept all defaults without prompting")

	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path := cfgPath
	if path == "" {
		path = config.DefaultFileName
	}

	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists; pass --force to overwrite", path)
	}

	cfg := config.Default()
	if !initYes {
		if err := promptForConfig(cfg); err != nil {
			return err
		}
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg, path); err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n", path)
	fmt.Println("Run 'arbiter providers' to check provider health, then 'arbiter decide \"<task>\"'.")
	return nil
}

// promptForConfig fills in the parts of the config the user usually wants
// to change on a fresh install.
func promptForConfig(cfg *config.Config) error {
	var enabled []string
	for _, p := range cfg.Providers {
		if p.Enabled {
			enabled = append(enabled, p.Name)
		}
	}

	options := make([]huh.Option[string], len(cfg.Providers))
	names := make([]string, len(cfg.Providers))
	for i, p := range cfg.Providers {
		label := p.Name
		if p.Kind == provider.KindCritic {
			label += " (offline, no credentials needed)"
		} else if p.APIKeyEnv != "" {
			label += fmt.Sprintf(" (needs %s)", p.APIKeyEnv)
		}
		options[i] = huh.NewOption(label, p.Name)
		names[i] = p.Name
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Which providers should be enabled?").
				Options(options...).
				Value(&enabled),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Creative provider (analysis, copy, pricing)").
				Options(stringOptions(names)...).
				Value(&cfg.Routing.Creative),
			huh.NewSelect[string]().
				Title("Conservative provider (safety review)").
				Description("Keep this distinct from the creative provider when you can.").
				Options(stringOptions(names)...).
				Value(&cfg.Routing.Conservative),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Require approval for every decision?").
				Description("When off, only uncertain or conflicting decisions escalate.").
				Value(&cfg.RequireApproval),
		),
	)

	if err := form.Run(); err != nil {
		return fmt.Errorf("configuration prompt failed: %w", err)
	}

	enabledSet := make(map[string]bool, len(enabled))
	for _, name := range enabled {
		enabledSet[name] = true
	}
	for i := range cfg.Providers {
		cfg.Providers[i].Enabled = enabledSet[cfg.Providers[i].Name]
	}
	return nil
}

func stringOptions(values []string) []huh.Option[string] {
	options := make([]huh.Option[string], len(values))
	for i, value := range values {
		options[i] = huh.NewOption(value, value)
	}
	return options
}

package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/arbiterhq/arbiter/internal/provider"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List configured providers and check their health",
	RunE:  runProviders,
}

func init() {
	rootCmd.AddCommand(providersCmd)
}

func runProviders(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	registry := provider.NewRegistry()
	if err := registry.LoadFromConfig(cfg.Providers); err != nil {
		return err
	}

	healthy := lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Render("healthy")
	unhealthy := lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render("unreachable")

	for _, name := range registry.List() {
		adapter, err := registry.Get(name)
		if err != nil {
			return err
		}

		status := healthy
		var detail string
		if err := adapter.Health(cmd.Context()); err != nil {
			status = unhealthy
			detail = "  " + err.Error()
		}
		fmt.Printf("%-15s %s%s\n", name, status, detail)
	}

	fmt.Printf("\nRouting: creative=%s conservative=%s\n", cfg.Routing.Creative, cfg.Routing.Conservative)
	for role, name := range cfg.Routing.Overrides {
		fmt.Printf("  override: %s -> %s\n", role, name)
	}
	return nil
}

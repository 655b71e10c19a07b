package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the decision log",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	journal, err := openJournal(cfg)
	if err != nil {
		return err
	}

	stats, err := journal.ComputeStats()
	if err != nil {
		return err
	}

	fmt.Printf("Decisions:          %d\n", stats.Total)
	fmt.Printf("Outcomes:           %s\n", outcomeCounts(stats.Outcomes))
	fmt.Printf("Success rate:       %.1f%%\n", stats.SuccessRate*100)
	fmt.Printf("Average confidence: %.4f\n", stats.AverageConfidence)

	if len(stats.ProviderUsage) > 0 {
		fmt.Println("\nProvider usage:")
		providers := make([]string, 0, len(stats.ProviderUsage))
		for name := range stats.ProviderUsage {
			providers = append(providers, name)
		}
		sort.Strings(providers)
		for _, name := range providers {
			fmt.Printf("  %-15s %d responses\n", name, stats.ProviderUsage[name])
		}
	}
	return nil
}

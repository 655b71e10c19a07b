package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arbiterhq/arbiter/internal/domain"
)

var (
	historyCount int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent decisions",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyCount, "count", "n", 10, "number of decisions to show")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output records as JSON")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	journal, err := openJournal(cfg)
	if err != nil {
		return err
	}

	records, err := journal.Recent(historyCount)
	if err != nil {
		return err
	}

	if historyJSON {
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal records: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if len(records) == 0 {
		fmt.Println("No decisions recorded yet. Run 'arbiter decide' first.")
		return nil
	}

	for _, record := range records {
		fmt.Printf("%s  %s  %-10s  %s\n",
			record.ID,
			record.Timestamp.Format("2006-01-02 15:04:05"),
			record.Outcome,
			truncateTask(record.Task, 60),
		)
	}
	return nil
}

// truncateTask shortens a task to max runes for one-line display. Cutting
// on runes keeps multi-byte content valid.
func truncateTask(task string, max int) string {
	runes := []rune(task)
	if len(runes) <= max {
		return task
	}
	return string(runes[:max-3]) + "..."
}

// outcomeCounts formats an outcome histogram for display.
func outcomeCounts(counts map[domain.Outcome]int) string {
	return fmt.Sprintf("plan_ready=%d blocked=%d rejected=%d",
		counts[domain.OutcomePlanReady],
		counts[domain.OutcomeBlocked],
		counts[domain.OutcomeRejected],
	)
}

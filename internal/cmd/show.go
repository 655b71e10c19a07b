package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show <record-id>",
	Short: "Show one recorded decision in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "output the record as JSON")

	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	journal, err := openJournal(cfg)
	if err != nil {
		return err
	}

	record, err := journal.Lookup(args[0])
	if err != nil {
		return err
	}

	if showJSON {
		data, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("ID:        %s\n", record.ID)
	fmt.Printf("Timestamp: %s\n", record.Timestamp.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("Task:      %s\n", record.Task)
	fmt.Printf("Outcome:   %s\n", record.Outcome)
	if reason := record.Metadata["reason"]; reason != "" {
		fmt.Printf("Reason:    %s\n", reason)
	}

	if len(record.Responses) > 0 {
		fmt.Println("\nResponses:")
		for _, resp := range record.Responses {
			fmt.Printf("  [%s/%s %.2f] %s\n", resp.Provider, resp.Role, resp.Confidence, resp.Content)
		}
	}

	if record.Plan != nil {
		fmt.Println("\nPlan:")
		fmt.Printf("  Consensus:  %s\n", record.Plan.Metadata.Consensus)
		fmt.Printf("  Confidence: %.4f\n", record.Plan.Metadata.Confidence)
		fmt.Printf("  Risk:       %s\n", record.Plan.RiskLevel)
		for _, action := range record.Plan.Actions {
			fmt.Printf("  Action:     %s %v\n", action.Kind, action.Params)
		}
	}

	if len(record.Metadata) > 0 {
		fmt.Println("\nMetadata:")
		for key, value := range record.Metadata {
			fmt.Printf("  %s: %s\n", key, value)
		}
	}
	return nil
}

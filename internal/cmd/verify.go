package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the decision log hash chain",
	Long: `Walk the decision log and recompute every record hash, checking that
each record links to its predecessor. A failure means the log was edited
after the fact.`,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	journal, err := openJournal(cfg)
	if err != nil {
		return err
	}

	if err := journal.Verify(); err != nil {
		fmt.Println(lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true).Render("❌ Log integrity check failed"))
		return err
	}

	fmt.Println(lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true).Render("✅ Log integrity verified"))
	fmt.Printf("Path: %s\n", journal.Path())
	return nil
}

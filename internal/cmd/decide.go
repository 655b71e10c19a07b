package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/arbiterhq/arbiter/internal/approval"
	"github.com/arbiterhq/arbiter/internal/config"
	"github.com/arbiterhq/arbiter/internal/domain"
	"github.com/arbiterhq/arbiter/internal/engine"
	"github.com/arbiterhq/arbiter/internal/log"
	"github.com/arbiterhq/arbiter/internal/provider"
)

var (
	decideAutoApprove bool
	decideTimeout     time.Duration
	decideJSON        bool
	decideContext     []string
)

var decideCmd = &cobra.Command{
	Use:   "decide <task>",
	Short: "Run one decision cycle for a task",
	Long: `Run one full decision cycle: decompose the task, query the routed
providers, score uncertainty, and build a consensus plan.

Exit codes: 0 plan ready, 3 blocked by safety review, 4 rejected at the
approval gate.

Examples:
  # Interactive approval when the decision escalates
  arbiter decide "Launch the fall campaign with a $49 intro price"

  # Pre-approve escalations (CI, scripting)
  arbiter decide --auto-approve "Update the product description"

  # Bound the human approval step
  arbiter decide --approve-timeout 2m "Discount the premium tier"`,
	Args: cobra.ExactArgs(1),
	RunE: runDecide,
}

func init() {
	decideCmd.Flags().BoolVar(&decideAutoApprove, "auto-approve", false, "approve escalated decisions without prompting")
	decideCmd.Flags().DurationVar(&decideTimeout, "approve-timeout", 0, "reject escalated decisions not approved within this duration")
	decideCmd.Flags().BoolVar(&decideJSON, "json", false, "output the decision as JSON")
	decideCmd.Flags().StringArrayVar(&decideContext, "context", nil, "task context as key=value (repeatable)")

	rootCmd.AddCommand(decideCmd)
}

func runDecide(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	taskContext, err := parseContext(decideContext)
	if err != nil {
		return err
	}

	eng, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	decision, err := eng.Decide(cmd.Context(), args[0], taskContext)
	if err != nil {
		return err
	}

	if decideJSON {
		if err := printDecisionJSON(decision); err != nil {
			return err
		}
	} else {
		printDecision(args[0], decision)
	}

	// Terminal outcomes other than a ready plan map to distinct exit codes.
	switch decision.Outcome {
	case domain.OutcomeBlocked:
		return fmt.Errorf("decision blocked: %s", decision.Reason)
	case domain.OutcomeRejected:
		return fmt.Errorf("decision rejected: %s", decision.Reason)
	}
	return nil
}

// buildEngine wires the full decision pipeline from config and flags.
func buildEngine(cfg *config.Config) (*engine.Engine, error) {
	logger := newLogger(cfg)
	log.SetDefaultLogger(logger)

	registry := provider.NewRegistry()
	if err := registry.LoadFromConfig(cfg.Providers); err != nil {
		return nil, err
	}

	journal, err := openJournal(cfg)
	if err != nil {
		return nil, err
	}

	return engine.New(registry, cfg.Router(), selectGate(), journal,
		engine.WithEvaluator(cfg.Evaluator()),
		engine.WithRequireApproval(cfg.RequireApproval),
		engine.WithLogger(logger),
	)
}

// parseContext turns repeated key=value flags into a context map.
func parseContext(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	ctx := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid --context %q: expected key=value", pair)
		}
		ctx[key] = value
	}
	return ctx, nil
}

// selectGate picks the approval gate the flags describe.
func selectGate() approval.Gate {
	if decideAutoApprove {
		return approval.NewAutoGate(true)
	}
	var gate approval.Gate = approval.NewInteractiveGate()
	if decideTimeout > 0 {
		gate = approval.NewTimeoutGate(gate, decideTimeout)
	}
	return gate
}

func printDecisionJSON(decision *engine.Decision) error {
	out := struct {
		Outcome        domain.Outcome         `json:"outcome"`
		Reason         string                 `json:"reason,omitempty"`
		Plan           *domain.ExecutionPlan  `json:"plan,omitempty"`
		Responses      []domain.ModelResponse `json:"responses"`
		Disagreement   float64                `json:"disagreement"`
		MeanConfidence float64                `json:"mean_confidence"`
		RecordID       string                 `json:"record_id,omitempty"`
		Degraded       []string               `json:"degraded,omitempty"`
	}{
		Outcome:        decision.Outcome,
		Reason:         decision.Reason,
		Plan:           decision.Plan,
		Responses:      decision.Responses,
		Disagreement:   decision.Disagreement,
		MeanConfidence: decision.MeanConfidence,
		RecordID:       decision.RecordID,
		Degraded:       decision.Degraded,
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal decision: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func printDecision(task string, decision *engine.Decision) {
	fmt.Println(outcomeBadge(decision.Outcome))
	fmt.Printf("Task: %s\n", task)
	if decision.Reason != "" {
		fmt.Printf("Reason: %s\n", decision.Reason)
	}
	fmt.Printf("Responses: %d  Disagreement: %.4f  Mean confidence: %.4f\n",
		len(decision.Responses), decision.Disagreement, decision.MeanConfidence)

	if decision.Plan != nil {
		fmt.Println()
		fmt.Printf("Consensus: %s\n", decision.Plan.Metadata.Consensus)
		fmt.Printf("Confidence: %.4f  Risk: %s\n", decision.Plan.Metadata.Confidence, decision.Plan.RiskLevel)
	}

	if decision.RecordID != "" {
		fmt.Printf("\nRecord: %s\n", decision.RecordID)
	}
	for _, degraded := range decision.Degraded {
		fmt.Println(lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Render("⚠ " + degraded))
	}
}

// outcomeBadge renders a colored one-line outcome header.
func outcomeBadge(outcome domain.Outcome) string {
	switch outcome {
	case domain.OutcomePlanReady:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true).Render("✅ Plan ready")
	case domain.OutcomeBlocked:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true).Render("🛑 Blocked by safety review")
	case domain.OutcomeRejected:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true).Render("❌ Rejected at the approval gate")
	default:
		return string(outcome)
	}
}

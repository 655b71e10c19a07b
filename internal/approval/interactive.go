package approval

import (
	"context"
	"fmt"
	"sort"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/arbiterhq/arbiter/internal/domain"
)

// InteractiveGate prompts a human reviewer in the terminal with a summary
// of the escalated decision and a y/n choice.
type InteractiveGate struct{}

// NewInteractiveGate creates a terminal approval gate.
func NewInteractiveGate() *InteractiveGate {
	return &InteractiveGate{}
}

// Approve implements Gate.Approve
func (g *InteractiveGate) Approve(ctx context.Context, req Request) (bool, error) {
	model := gateModel{req: req}
	program := tea.NewProgram(model, tea.WithContext(ctx))

	finalModel, err := program.Run()
	if err != nil {
		return false, fmt.Errorf("run approval UI: %w", err)
	}

	return finalModel.(gateModel).approved, nil
}

// gateModel is the bubbletea model for the approval gate
type gateModel struct {
	req      Request
	approved bool
	quitting bool
}

func (m gateModel) Init() tea.Cmd {
	return nil
}

func (m gateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "y", "Y":
			m.approved = true
			m.quitting = true
			return m, tea.Quit
		case "n", "N", "q", "ctrl+c":
			m.approved = false
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m gateModel) View() string {
	if m.quitting {
		if m.approved {
			return lipgloss.NewStyle().
				Foreground(lipgloss.Color("2")).
				Render("✅ Approved. Continuing with the decision...\n")
		}
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")).
			Render("❌ Rejected. Decision will not proceed.\n")
	}

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("86")).
		Bold(true)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8"))

	var s string

	s += titleStyle.Render("⚠️  Decision Escalated for Review") + "\n\n"

	s += fmt.Sprintf("Task: %s\n", headerStyle.Render(m.req.Task))
	s += fmt.Sprintf("Reason: %s\n\n", lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Render(m.req.Reason))

	s += labelStyle.Render("Uncertainty:") + "\n"
	s += fmt.Sprintf("  Disagreement:    %s\n", renderScore(m.req.Disagreement, m.req.Disagreement > 0.05))
	s += fmt.Sprintf("  Mean Confidence: %s\n\n", renderScore(m.req.MeanConfidence, m.req.MeanConfidence < 0.7))

	// Per-role breakdown
	byRole := countByRole(m.req.Responses)
	if len(byRole) > 0 {
		s += labelStyle.Render("Responses by Role:") + "\n"
		roles := make([]string, 0, len(byRole))
		for role := range byRole {
			roles = append(roles, role)
		}
		sort.Strings(roles)
		for _, role := range roles {
			s += fmt.Sprintf("  %-10s %d\n", role+":", byRole[role])
		}
		s += "\n"
	}

	// Show first 5 responses
	s += labelStyle.Render("Response Preview (first 5):") + "\n"
	for i, resp := range m.req.Responses {
		if i >= 5 {
			break
		}
		confStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(confidenceColor(resp.Confidence)))
		s += fmt.Sprintf("  %d. [%s %s] %s\n",
			i+1,
			resp.Role,
			confStyle.Render(fmt.Sprintf("%.2f", resp.Confidence)),
			truncate(resp.Content, 60))
	}
	if len(m.req.Responses) > 5 {
		s += fmt.Sprintf("  ... and %d more responses\n", len(m.req.Responses)-5)
	}

	s += "\n"
	s += titleStyle.Render("Approve this decision?") + " "
	s += lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Render("(y)") + " / "
	s += lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render("(n)")
	s += ": "

	return s
}

// countByRole counts responses per role tag
func countByRole(responses []domain.ModelResponse) map[string]int {
	counts := make(map[string]int)
	for _, resp := range responses {
		counts[resp.Role.String()]++
	}
	return counts
}

// confidenceColor returns the ANSI color code for a confidence value
func confidenceColor(confidence float64) string {
	switch {
	case confidence >= 0.8:
		return "2" // Green
	case confidence >= 0.5:
		return "3" // Yellow
	default:
		return "1" // Red
	}
}

// renderScore formats a score, highlighting it when it breached a threshold
func renderScore(value float64, breached bool) string {
	style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	if breached {
		style = style.Foreground(lipgloss.Color("1"))
	}
	return style.Render(fmt.Sprintf("%.4f", value))
}

// truncate shortens s to max runes. Cutting on runes keeps multi-byte
// content valid in the terminal.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

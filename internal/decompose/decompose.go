// Package decompose turns a proposed business action into role-tagged
// subtasks. Decomposition is pure, total, and order-stable: every task yields
// an analysis and a safety subtask, and pricing/copy subtasks are appended
// when the task text asks for them.
package decompose

import (
	"fmt"
	"strings"

	"github.com/arbiterhq/arbiter/internal/domain"
)

// ActionMarker introduces the action under review in every prompt this
// package builds. Providers that inspect prompt text (the offline critic)
// use it to separate the action from the reviewer instructions, which may
// themselves name risk categories.
const ActionMarker = "Action:"

var pricingKeywords = []string{"price", "pricing", "cost", "$"}

var copyKeywords = []string{"copy", "description", "headline", "title"}

// safetyChecks enumerates what the safety provider must review. The prompt
// instructs the provider to prefix its verdict with a PROCEED/BLOCK sentinel
// so the engine can detect a veto without parsing prose.
var safetyChecks = []string{
	"policy compliance",
	"intellectual property and trademark risk",
	"pricing risk",
	"reputational risk",
}

// Decompose splits a task into ordered subtasks: analysis, safety, then
// optional pricing and copy subtasks keyed off the task text. Ordering is
// stable but has no semantic effect downstream.
func Decompose(task string, context map[string]string) []domain.SubTask {
	subtasks := []domain.SubTask{
		{
			Role:    domain.RoleAnalysis,
			Prompt:  analysisPrompt(task),
			Context: context,
		},
		{
			Role:    domain.RoleSafety,
			Prompt:  safetyPrompt(task),
			Context: context,
		},
	}

	lower := strings.ToLower(task)

	if containsAny(lower, pricingKeywords) {
		subtasks = append(subtasks, domain.SubTask{
			Role:    domain.RolePricing,
			Prompt:  pricingPrompt(task),
			Context: context,
		})
	}

	if containsAny(lower, copyKeywords) {
		subtasks = append(subtasks, domain.SubTask{
			Role:    domain.RoleCopy,
			Prompt:  copyPrompt(task),
			Context: context,
		})
	}

	return subtasks
}

func analysisPrompt(task string) string {
	return fmt.Sprintf(
		"Analyze the following proposed business action and state whether it should proceed, including the key factors behind your judgement.\n\n%s %s",
		ActionMarker, task,
	)
}

func safetyPrompt(task string) string {
	return fmt.Sprintf(
		"Review the following proposed business action for: %s. Begin your answer with %s if the action is safe to take, or %s followed by the reason if it must not be taken.\n\n%s %s",
		strings.Join(safetyChecks, ", "),
		domain.ProceedSentinel,
		domain.BlockSentinel,
		ActionMarker, task,
	)
}

func pricingPrompt(task string) string {
	return fmt.Sprintf(
		"Recommend a price position for the following action, with the reasoning behind the number.\n\n%s %s",
		ActionMarker, task,
	)
}

func copyPrompt(task string) string {
	return fmt.Sprintf(
		"Write the customer-facing copy requested by the following action. Keep it short and on brand.\n\n%s %s",
		ActionMarker, task,
	)
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

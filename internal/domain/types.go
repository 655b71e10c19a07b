package domain

import (
	"strings"
	"time"
)

// BlockSentinel is the prefix a safety provider uses to veto a task.
// ProceedSentinel is its positive counterpart.
const (
	BlockSentinel   = "BLOCK"
	ProceedSentinel = "PROCEED"
)

// SubTask is a single role-tagged unit of work produced by decomposition.
// It is an immutable value: created once by the decomposer, consumed once
// by the router and its provider.
type SubTask struct {
	// Role determines which provider answers this subtask
	Role Role `json:"role"`

	// Prompt is the full text sent to the provider
	Prompt string `json:"prompt"`

	// Context carries optional caller-supplied key/value hints
	Context map[string]string `json:"context,omitempty"`
}

// ModelResponse is one provider's answer to one subtask.
// Confidence is always produced by the response normalizer so that scores
// are comparable across providers.
type ModelResponse struct {
	// Provider is the id of the provider that produced this response
	Provider string `json:"provider"`

	// Role is the subtask role this response answers
	Role Role `json:"role"`

	// Content is the normalized response text
	Content string `json:"content"`

	// Confidence is the normalized score in [0, 1]
	Confidence float64 `json:"confidence"`

	// Reasoning optionally explains how the provider arrived at the answer
	Reasoning string `json:"reasoning,omitempty"`
}

// IsBlock reports whether this is a safety response carrying a block sentinel.
func (r ModelResponse) IsBlock() bool {
	return r.Role.IsSafety() && strings.HasPrefix(strings.ToUpper(strings.TrimSpace(r.Content)), BlockSentinel)
}

// RiskLevel classifies how risky an execution plan is considered.
type RiskLevel string

// Valid risk levels
const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Action is an opaque downstream step. The engine never executes actions;
// it only hands them to the downstream collaborator.
type Action struct {
	// Kind identifies the downstream action type (publish, notify, ...)
	Kind string `json:"kind"`

	// Params carries action parameters the collaborator understands
	Params map[string]string `json:"params,omitempty"`
}

// PlanMetadata summarizes the consensus an execution plan was built from.
type PlanMetadata struct {
	// Task is the original task text
	Task string `json:"task"`

	// Consensus is the winning response text
	Consensus string `json:"consensus"`

	// Confidence is the winning bucket's summed confidence
	Confidence float64 `json:"confidence"`

	// ModelCount is how many responses contributed to the cycle
	ModelCount int `json:"model_count"`
}

// ExecutionPlan is the successful output of a decision cycle. It is produced
// at most once per cycle, and only when no safety block occurred and any
// required approval was granted.
type ExecutionPlan struct {
	// Actions are opaque downstream steps owned by the collaborator
	Actions []Action `json:"actions"`

	// Metadata carries the consensus summary
	Metadata PlanMetadata `json:"metadata"`

	// RiskLevel is derived from the consensus confidence
	RiskLevel RiskLevel `json:"risk_level"`
}

// Outcome is the terminal state of a decision cycle.
// Exactly one of these results from every cycle.
type Outcome string

// Terminal outcomes
const (
	// OutcomeBlocked means a safety provider vetoed the task
	OutcomeBlocked Outcome = "blocked"

	// OutcomeRejected means the approval gate declined an escalated decision
	OutcomeRejected Outcome = "rejected"

	// OutcomePlanReady means consensus produced an execution plan
	OutcomePlanReady Outcome = "plan_ready"
)

// DecisionRecord is one append-only provenance entry describing a complete
// decision cycle. Records are never mutated after being written; corrections
// are new entries.
type DecisionRecord struct {
	// ID uniquely identifies the record (UUID, immutable once persisted)
	ID string `json:"id"`

	// Timestamp is when the cycle completed
	Timestamp time.Time `json:"timestamp"`

	// Task is the original task text
	Task string `json:"task"`

	// Responses are all provider responses collected during the cycle
	Responses []ModelResponse `json:"responses"`

	// Plan is the execution plan, present only on the successful path
	Plan *ExecutionPlan `json:"plan,omitempty"`

	// Outcome is the terminal state of the cycle
	Outcome Outcome `json:"outcome"`

	// Metadata carries cycle statistics and advisory notes
	Metadata map[string]string `json:"metadata,omitempty"`

	// PrevHash links this record to the previous one in the log
	PrevHash string `json:"prev_hash,omitempty"`

	// Hash is the blake3 digest over this record's canonical form
	Hash string `json:"hash,omitempty"`
}

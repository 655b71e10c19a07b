// Package engine orchestrates a full decision cycle: decompose, fan out to
// providers, score uncertainty, gate escalations, build consensus, and
// record the cycle in the provenance log. Every cycle ends in exactly one
// terminal outcome: blocked, rejected, or plan ready.
package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arbiterhq/arbiter/internal/approval"
	"github.com/arbiterhq/arbiter/internal/consensus"
	"github.com/arbiterhq/arbiter/internal/decompose"
	"github.com/arbiterhq/arbiter/internal/domain"
	arberrors "github.com/arbiterhq/arbiter/internal/errors"
	"github.com/arbiterhq/arbiter/internal/log"
	"github.com/arbiterhq/arbiter/internal/memory"
	"github.com/arbiterhq/arbiter/internal/provenance"
	"github.com/arbiterhq/arbiter/internal/provider"
	"github.com/arbiterhq/arbiter/internal/route"
	"github.com/arbiterhq/arbiter/internal/uncertainty"
)

// precedentThreshold is the similarity above which a past decision is
// surfaced as an advisory precedent. Precedents never change routing.
const precedentThreshold = 0.8

// Decision is the caller-facing result of one cycle. It is always returned
// when the cycle ran to a terminal state, even if storage degraded.
type Decision struct {
	// Outcome is the terminal state of the cycle
	Outcome domain.Outcome

	// Plan is present only when Outcome is plan_ready
	Plan *domain.ExecutionPlan

	// Reason explains a blocked or rejected outcome
	Reason string

	// Responses are all provider responses collected during the cycle
	Responses []domain.ModelResponse

	// Disagreement is the confidence variance across responses
	Disagreement float64

	// MeanConfidence is the average response confidence
	MeanConfidence float64

	// RecordID is the provenance record id, empty if the append degraded
	RecordID string

	// Degraded lists non-fatal failures swallowed during the cycle
	Degraded []string
}

// Engine runs decision cycles. All collaborators are injected; the zero
// value is not usable.
type Engine struct {
	registry  *provider.Registry
	router    *route.Router
	evaluator uncertainty.Evaluator
	gate      approval.Gate
	memory    *memory.Store
	journal   *provenance.Log
	notifier  Notifier
	logger    *log.Logger

	// requireApproval forces the gate even when uncertainty is clean
	requireApproval bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithEvaluator overrides the default uncertainty thresholds.
func WithEvaluator(e uncertainty.Evaluator) Option {
	return func(eng *Engine) { eng.evaluator = e }
}

// WithMemory sets the precedent store.
func WithMemory(s *memory.Store) Option {
	return func(eng *Engine) { eng.memory = s }
}

// WithNotifier sets the block notifier.
func WithNotifier(n Notifier) Option {
	return func(eng *Engine) { eng.notifier = n }
}

// WithLogger sets the structured logger.
func WithLogger(l *log.Logger) Option {
	return func(eng *Engine) { eng.logger = l }
}

// WithRequireApproval forces every decision through the approval gate.
func WithRequireApproval(require bool) Option {
	return func(eng *Engine) { eng.requireApproval = require }
}

// New creates an engine. Registry, router, gate, and journal are required;
// everything else has a working default.
func New(registry *provider.Registry, router *route.Router, gate approval.Gate, journal *provenance.Log, opts ...Option) (*Engine, error) {
	if registry == nil {
		return nil, fmt.Errorf("engine: registry is required")
	}
	if router == nil {
		return nil, fmt.Errorf("engine: router is required")
	}
	if gate == nil {
		return nil, fmt.Errorf("engine: approval gate is required")
	}
	if journal == nil {
		return nil, fmt.Errorf("engine: provenance log is required")
	}

	eng := &Engine{
		registry:  registry,
		router:    router,
		evaluator: uncertainty.NewEvaluator(),
		gate:      gate,
		memory:    memory.NewDefaultStore(),
		journal:   journal,
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(eng)
	}
	if eng.notifier == nil {
		eng.notifier = NewLogNotifier(eng.logger)
	}
	return eng, nil
}

// Decide runs one full decision cycle for the given task.
func (e *Engine) Decide(ctx context.Context, task string, taskContext map[string]string) (*Decision, error) {
	if strings.TrimSpace(task) == "" {
		return nil, arberrors.NewDecisionEmptyTaskError()
	}

	decision := &Decision{}
	metadata := make(map[string]string)

	e.recallPrecedent(ctx, task, metadata, decision)

	subtasks := decompose.Decompose(task, taskContext)
	e.logger.Info("task decomposed",
		"task", task,
		"subtasks", len(subtasks),
	)

	responses := e.collect(ctx, subtasks, decision)
	decision.Responses = responses
	decision.Disagreement = uncertainty.DisagreementScore(responses)
	decision.MeanConfidence = uncertainty.MeanConfidence(responses)
	metadata["disagreement"] = formatScore(decision.Disagreement)
	metadata["mean_confidence"] = formatScore(decision.MeanConfidence)

	// Safety veto is checked before anything else; a single block ends
	// the cycle.
	if reason, blocked := blockReason(responses); blocked {
		decision.Outcome = domain.OutcomeBlocked
		decision.Reason = reason
		e.notifier.NotifyBlocked(ctx, task, reason)
		e.finalize(ctx, task, metadata, decision)
		return decision, nil
	}

	escalate, reason := e.evaluator.ShouldEscalate(responses)
	if !escalate && e.requireApproval {
		escalate = true
		reason = "approval required by policy"
	}

	if escalate {
		metadata["escalation_reason"] = reason
		approved, err := e.gate.Approve(ctx, approval.Request{
			Task:           task,
			Reason:         reason,
			Responses:      responses,
			Disagreement:   decision.Disagreement,
			MeanConfidence: decision.MeanConfidence,
		})
		if err != nil || !approved {
			if err != nil {
				e.logger.WithError(err).Warn("approval gate failed, treating as rejection")
				decision.Degraded = append(decision.Degraded, "approval gate error: "+err.Error())
			}
			decision.Outcome = domain.OutcomeRejected
			decision.Reason = reason
			e.finalize(ctx, task, metadata, decision)
			return decision, nil
		}
		metadata["approved"] = "true"
	}

	result := consensus.WeightedConsensus(responses)
	plan := buildPlan(task, result, len(responses))
	decision.Outcome = domain.OutcomePlanReady
	decision.Plan = plan

	e.finalize(ctx, task, metadata, decision)
	return decision, nil
}

// collect fans subtasks out to their routed providers and gathers whatever
// came back. Provider failures are logged and skipped; the cycle continues
// with fewer responses.
func (e *Engine) collect(ctx context.Context, subtasks []domain.SubTask, decision *Decision) []domain.ModelResponse {
	results := make([]*domain.ModelResponse, len(subtasks))
	failures := make([]string, len(subtasks))

	var wg sync.WaitGroup
	for i, subtask := range subtasks {
		name := e.router.Resolve(subtask.Role)
		if name == route.NoProvider {
			continue
		}

		wg.Add(1)
		go func(i int, subtask domain.SubTask, name string) {
			defer wg.Done()

			adapter, err := e.registry.Get(name)
			if err != nil {
				failures[i] = fmt.Sprintf("provider %s: %v", name, err)
				return
			}

			resp, err := adapter.Call(ctx, subtask.Prompt)
			if err != nil {
				failures[i] = fmt.Sprintf("provider %s (%s): %v", name, subtask.Role, err)
				return
			}

			results[i] = &domain.ModelResponse{
				Provider:   name,
				Role:       subtask.Role,
				Content:    resp.Text,
				Confidence: resp.Confidence,
				Reasoning:  resp.Reasoning,
			}
		}(i, subtask, name)
	}
	wg.Wait()

	responses := make([]domain.ModelResponse, 0, len(subtasks))
	for i, result := range results {
		if failures[i] != "" {
			e.logger.Warn("provider call skipped", "failure", failures[i])
			decision.Degraded = append(decision.Degraded, failures[i])
			continue
		}
		if result != nil {
			responses = append(responses, *result)
		}
	}
	return responses
}

// recallPrecedent surfaces the nearest past decision as advisory context.
// Failures and misses are non-events.
func (e *Engine) recallPrecedent(ctx context.Context, task string, metadata map[string]string, decision *Decision) {
	seen, hit, err := e.memory.HasSeenSimilar(ctx, task, precedentThreshold)
	if err != nil {
		e.logger.WithError(err).Warn("precedent lookup failed")
		decision.Degraded = append(decision.Degraded, "precedent lookup: "+err.Error())
		return
	}
	if seen && hit != nil {
		metadata["precedent_id"] = hit.Entry.ID
		metadata["precedent_similarity"] = formatScore(memory.Similarity(hit.Distance))
		e.logger.Info("similar past decision found",
			"precedent_id", hit.Entry.ID,
			"similarity", memory.Similarity(hit.Distance),
		)
	}
}

// finalize appends the cycle record and stores the task as a future
// precedent. Storage failures degrade the decision, never fail it.
func (e *Engine) finalize(ctx context.Context, task string, metadata map[string]string, decision *Decision) {
	if decision.Reason != "" {
		metadata["reason"] = decision.Reason
	}
	record := &domain.DecisionRecord{
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC(),
		Task:      task,
		Responses: decision.Responses,
		Plan:      decision.Plan,
		Outcome:   decision.Outcome,
		Metadata:  metadata,
	}

	if err := e.journal.Append(record); err != nil {
		e.logger.WithError(err).Error("provenance append failed")
		decision.Degraded = append(decision.Degraded, "provenance append: "+err.Error())
	} else {
		decision.RecordID = record.ID
	}

	if err := e.memory.Remember(ctx, task, record.ID, map[string]string{
		"outcome": string(decision.Outcome),
	}); err != nil {
		e.logger.WithError(err).Warn("precedent store failed")
		decision.Degraded = append(decision.Degraded, "precedent store: "+err.Error())
	}
}

// blockReason returns the first safety veto found, if any.
func blockReason(responses []domain.ModelResponse) (string, bool) {
	for _, resp := range responses {
		if resp.IsBlock() {
			return strings.TrimSpace(resp.Content), true
		}
	}
	return "", false
}

// buildPlan turns a consensus result into an execution plan. Actions are
// owned by the downstream collaborator; the engine emits a single opaque
// proceed step carrying the consensus.
func buildPlan(task string, result consensus.Result, modelCount int) *domain.ExecutionPlan {
	return &domain.ExecutionPlan{
		Actions: []domain.Action{
			{
				Kind: "proceed",
				Params: map[string]string{
					"summary": result.Content,
				},
			},
		},
		Metadata: domain.PlanMetadata{
			Task:       task,
			Consensus:  result.Content,
			Confidence: result.Confidence,
			ModelCount: modelCount,
		},
		RiskLevel: riskLevel(result.Confidence, modelCount),
	}
}

// riskLevel classifies a plan by how much weighted agreement backs it,
// relative to the number of responses that could have contributed.
func riskLevel(confidence float64, modelCount int) domain.RiskLevel {
	if modelCount == 0 {
		return domain.RiskHigh
	}
	share := confidence / float64(modelCount)
	switch {
	case share >= 0.8:
		return domain.RiskLow
	case share >= 0.5:
		return domain.RiskMedium
	default:
		return domain.RiskHigh
	}
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

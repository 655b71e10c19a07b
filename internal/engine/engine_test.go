package engine

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arbiterhq/arbiter/internal/approval"
	"github.com/arbiterhq/arbiter/internal/domain"
	arberrors "github.com/arbiterhq/arbiter/internal/errors"
	"github.com/arbiterhq/arbiter/internal/log"
	"github.com/arbiterhq/arbiter/internal/provenance"
	"github.com/arbiterhq/arbiter/internal/provider"
	"github.com/arbiterhq/arbiter/internal/route"
)

// stubAdapter returns a fixed response or error for every call.
type stubAdapter struct {
	name       string
	text       string
	confidence float64
	err        error
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) Call(_ context.Context, _ string) (provider.Response, error) {
	if s.err != nil {
		return provider.Response{}, s.err
	}
	return provider.Response{Text: s.text, Confidence: s.confidence}, nil
}

func (s *stubAdapter) Health(_ context.Context) error { return nil }

// captureNotifier records the last block notification.
type captureNotifier struct {
	task   string
	reason string
	called bool
}

func (n *captureNotifier) NotifyBlocked(_ context.Context, task, reason string) {
	n.called = true
	n.task = task
	n.reason = reason
}

func quietLogger() *log.Logger {
	return log.New(log.Config{Level: log.LevelError, Format: log.FormatJSON, Output: io.Discard})
}

func newTestEngine(t *testing.T, creative, conservative provider.Adapter, gate approval.Gate, opts ...Option) (*Engine, *provenance.Log) {
	t.Helper()

	registry := provider.NewRegistry()
	for _, adapter := range []provider.Adapter{creative, conservative} {
		if err := registry.Register(adapter); err != nil {
			t.Fatalf("Register() error = %v", err)
		}
	}

	journal, err := provenance.Open(filepath.Join(t.TempDir(), "decisions.ndjson"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	router := route.Default(creative.Name(), conservative.Name())
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	eng, err := New(registry, router, gate, journal, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return eng, journal
}

func TestDecide_CleanConsensusProducesPlan(t *testing.T) {
	creative := &stubAdapter{name: "creative", text: "Launch looks viable", confidence: 0.9}
	conservative := &stubAdapter{name: "conservative", text: "PROCEED: no policy concerns", confidence: 0.85}
	eng, journal := newTestEngine(t, creative, conservative, approval.NewAutoGate(false))

	decision, err := eng.Decide(context.Background(), "launch the fall campaign", nil)
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}

	if decision.Outcome != domain.OutcomePlanReady {
		t.Fatalf("Outcome = %v, want plan_ready (reason: %q)", decision.Outcome, decision.Reason)
	}
	if decision.Plan == nil {
		t.Fatal("Plan = nil on successful path")
	}
	if decision.Plan.Metadata.ModelCount != 2 {
		t.Errorf("ModelCount = %d, want 2", decision.Plan.Metadata.ModelCount)
	}
	if len(decision.Degraded) != 0 {
		t.Errorf("Degraded = %v, want none", decision.Degraded)
	}

	record, err := journal.Lookup(decision.RecordID)
	if err != nil {
		t.Fatalf("Lookup(%q) error = %v", decision.RecordID, err)
	}
	if record.Outcome != domain.OutcomePlanReady {
		t.Errorf("recorded outcome = %v, want plan_ready", record.Outcome)
	}
	if len(record.Responses) != 2 {
		t.Errorf("recorded responses = %d, want 2", len(record.Responses))
	}
}

func TestDecide_SafetyBlockIsTerminal(t *testing.T) {
	creative := &stubAdapter{name: "creative", text: "Great artwork direction", confidence: 0.9}
	conservative := &stubAdapter{name: "conservative", text: "BLOCK: trademark risk detected", confidence: 0.9}
	notifier := &captureNotifier{}
	eng, journal := newTestEngine(t, creative, conservative, approval.NewAutoGate(true), WithNotifier(notifier))

	decision, err := eng.Decide(context.Background(), "publish the poster design", nil)
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}

	if decision.Outcome != domain.OutcomeBlocked {
		t.Fatalf("Outcome = %v, want blocked", decision.Outcome)
	}
	if decision.Plan != nil {
		t.Error("Plan != nil on blocked path")
	}
	if !strings.Contains(decision.Reason, "trademark risk") {
		t.Errorf("Reason = %q, want the block narrative", decision.Reason)
	}
	if !notifier.called {
		t.Error("notifier not called on block")
	}
	if notifier.reason != decision.Reason {
		t.Errorf("notified reason = %q, want %q", notifier.reason, decision.Reason)
	}

	record, err := journal.Lookup(decision.RecordID)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if record.Outcome != domain.OutcomeBlocked {
		t.Errorf("recorded outcome = %v, want blocked", record.Outcome)
	}
}

func TestDecide_LowConfidenceEscalates(t *testing.T) {
	creative := &stubAdapter{name: "creative", text: "Might work, unsure about margins", confidence: 0.6}
	conservative := &stubAdapter{name: "conservative", text: "PROCEED: marginal", confidence: 0.65}

	t.Run("gate rejects", func(t *testing.T) {
		eng, _ := newTestEngine(t, creative, conservative, approval.NewAutoGate(false))

		decision, err := eng.Decide(context.Background(), "discount the premium tier", nil)
		if err != nil {
			t.Fatalf("Decide() error = %v", err)
		}
		if decision.Outcome != domain.OutcomeRejected {
			t.Fatalf("Outcome = %v, want rejected", decision.Outcome)
		}
		if decision.Reason == "" {
			t.Error("Reason empty on rejection")
		}
	})

	t.Run("gate approves", func(t *testing.T) {
		eng, _ := newTestEngine(t, creative, conservative, approval.NewAutoGate(true))

		decision, err := eng.Decide(context.Background(), "discount the premium tier", nil)
		if err != nil {
			t.Fatalf("Decide() error = %v", err)
		}
		if decision.Outcome != domain.OutcomePlanReady {
			t.Fatalf("Outcome = %v, want plan_ready after approval", decision.Outcome)
		}
		if decision.Plan == nil {
			t.Fatal("Plan = nil after approved escalation")
		}
	})
}

func TestDecide_RequireApprovalForcesGate(t *testing.T) {
	creative := &stubAdapter{name: "creative", text: "Confirmed viable", confidence: 0.92}
	conservative := &stubAdapter{name: "conservative", text: "PROCEED: clean", confidence: 0.9}
	eng, _ := newTestEngine(t, creative, conservative, approval.NewAutoGate(false), WithRequireApproval(true))

	decision, err := eng.Decide(context.Background(), "launch the fall campaign", nil)
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if decision.Outcome != domain.OutcomeRejected {
		t.Fatalf("Outcome = %v, want rejected when policy forces the gate", decision.Outcome)
	}
	if decision.Reason != "approval required by policy" {
		t.Errorf("Reason = %q", decision.Reason)
	}
}

func TestDecide_ProviderFailureDegradesCycle(t *testing.T) {
	creative := &stubAdapter{name: "creative", err: arberrors.NewProviderAPIError("creative", errors.New("connection refused"))}
	conservative := &stubAdapter{name: "conservative", text: "PROCEED: nothing concerning", confidence: 0.9}
	eng, _ := newTestEngine(t, creative, conservative, approval.NewAutoGate(true))

	decision, err := eng.Decide(context.Background(), "launch the fall campaign", nil)
	if err != nil {
		t.Fatalf("Decide() error = %v, provider outage must not abort the cycle", err)
	}

	if len(decision.Responses) != 1 {
		t.Fatalf("Responses = %d, want 1 survivor", len(decision.Responses))
	}
	if len(decision.Degraded) == 0 {
		t.Fatal("Degraded empty, want the skipped provider noted")
	}
	if !strings.Contains(decision.Degraded[0], "creative") {
		t.Errorf("Degraded[0] = %q, want the failed provider named", decision.Degraded[0])
	}
}

func TestDecide_AllProvidersDownForcesEscalation(t *testing.T) {
	outage := errors.New("connection refused")
	creative := &stubAdapter{name: "creative", err: arberrors.NewProviderAPIError("creative", outage)}
	conservative := &stubAdapter{name: "conservative", err: arberrors.NewProviderAPIError("conservative", outage)}
	eng, _ := newTestEngine(t, creative, conservative, approval.NewAutoGate(false))

	decision, err := eng.Decide(context.Background(), "launch the fall campaign", nil)
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if decision.Outcome != domain.OutcomeRejected {
		t.Fatalf("Outcome = %v, want rejected via forced escalation", decision.Outcome)
	}
	if !strings.Contains(decision.Reason, "no responses") {
		t.Errorf("Reason = %q, want the no-responses escalation", decision.Reason)
	}
}

func TestDecide_EmptyTaskRejected(t *testing.T) {
	creative := &stubAdapter{name: "creative", text: "ok", confidence: 0.9}
	conservative := &stubAdapter{name: "conservative", text: "PROCEED", confidence: 0.9}
	eng, _ := newTestEngine(t, creative, conservative, approval.NewAutoGate(true))

	_, err := eng.Decide(context.Background(), "   ", nil)
	if err == nil {
		t.Fatal("Decide() error = nil for empty task")
	}
}

func TestDecide_PrecedentIsAdvisoryOnly(t *testing.T) {
	creative := &stubAdapter{name: "creative", text: "Launch looks viable", confidence: 0.9}
	conservative := &stubAdapter{name: "conservative", text: "PROCEED: no policy concerns", confidence: 0.85}
	eng, journal := newTestEngine(t, creative, conservative, approval.NewAutoGate(true))

	first, err := eng.Decide(context.Background(), "launch the fall campaign", nil)
	if err != nil {
		t.Fatalf("first Decide() error = %v", err)
	}

	second, err := eng.Decide(context.Background(), "launch the fall campaign", nil)
	if err != nil {
		t.Fatalf("second Decide() error = %v", err)
	}
	if second.Outcome != first.Outcome {
		t.Errorf("precedent changed the outcome: %v vs %v", second.Outcome, first.Outcome)
	}

	record, err := journal.Lookup(second.RecordID)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if record.Metadata["precedent_id"] != first.RecordID {
		t.Errorf("precedent_id = %q, want %q", record.Metadata["precedent_id"], first.RecordID)
	}
}

func TestRiskLevel(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		modelCount int
		want       domain.RiskLevel
	}{
		{name: "strong agreement", confidence: 1.75, modelCount: 2, want: domain.RiskLow},
		{name: "moderate agreement", confidence: 1.2, modelCount: 2, want: domain.RiskMedium},
		{name: "weak agreement", confidence: 0.8, modelCount: 2, want: domain.RiskHigh},
		{name: "no responses", confidence: 0, modelCount: 0, want: domain.RiskHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := riskLevel(tt.confidence, tt.modelCount); got != tt.want {
				t.Errorf("riskLevel(%v, %d) = %v, want %v", tt.confidence, tt.modelCount, got, tt.want)
			}
		})
	}
}

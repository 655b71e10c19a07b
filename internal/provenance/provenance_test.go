package provenance

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/arbiterhq/arbiter/internal/domain"
	"github.com/google/uuid"
)

func testLog(t *testing.T) *Log {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "decisions.ndjson"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return l
}

func record(task string, outcome domain.Outcome) *domain.DecisionRecord {
	return &domain.DecisionRecord{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Task:      task,
		Outcome:   outcome,
		Responses: []domain.ModelResponse{
			{Provider: "openai", Role: domain.RoleAnalysis, Content: "ok", Confidence: 0.8},
			{Provider: "anthropic", Role: domain.RoleSafety, Content: "PROCEED", Confidence: 0.9},
		},
	}
}

func TestLog_AppendLookupRoundTrip(t *testing.T) {
	l := testLog(t)

	rec := record("launch the hoodie", domain.OutcomePlanReady)
	if err := l.Append(rec); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got, err := l.Lookup(rec.ID)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if got.Task != rec.Task {
		t.Errorf("task = %q, want %q", got.Task, rec.Task)
	}
	if got.Outcome != rec.Outcome {
		t.Errorf("outcome = %q, want %q", got.Outcome, rec.Outcome)
	}
	if len(got.Responses) != 2 {
		t.Errorf("responses = %d, want 2", len(got.Responses))
	}
}

func TestLog_RecentNewestFirst(t *testing.T) {
	l := testLog(t)

	first := record("first", domain.OutcomeBlocked)
	second := record("second", domain.OutcomePlanReady)
	third := record("third", domain.OutcomeRejected)
	for _, r := range []*domain.DecisionRecord{first, second, third} {
		if err := l.Append(r); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	recent, err := l.Recent(2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("got %d records, want 2", len(recent))
	}
	if recent[0].Task != "third" || recent[1].Task != "second" {
		t.Errorf("order wrong: %s, %s", recent[0].Task, recent[1].Task)
	}
}

func TestLog_RecentNonPositiveCount(t *testing.T) {
	l := testLog(t)
	if err := l.Append(record("only", domain.OutcomePlanReady)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	// The CLI passes -n straight through, so negative counts must not panic.
	for _, n := range []int{-1, 0} {
		recent, err := l.Recent(n)
		if err != nil {
			t.Fatalf("Recent(%d) error = %v", n, err)
		}
		if len(recent) != 0 {
			t.Errorf("Recent(%d) = %d records, want 0", n, len(recent))
		}
	}
}

func TestLog_CorruptLineSkipped(t *testing.T) {
	l := testLog(t)

	rec := record("good record", domain.OutcomePlanReady)
	if err := l.Append(rec); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	f, err := os.OpenFile(l.Path(), os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.WriteString("{not valid json\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	f.Close()

	second := record("after corruption", domain.OutcomeBlocked)
	if err := l.Append(second); err != nil {
		t.Fatalf("Append() after corruption error = %v", err)
	}

	stats, err := l.ComputeStats()
	if err != nil {
		t.Fatalf("ComputeStats() error = %v", err)
	}
	if stats.Total != 2 {
		t.Errorf("total = %d, want 2 readable records", stats.Total)
	}
}

func TestLog_Stats(t *testing.T) {
	l := testLog(t)

	planned := record("a", domain.OutcomePlanReady)
	planned.Plan = &domain.ExecutionPlan{
		Metadata: domain.PlanMetadata{Task: "a", Consensus: "go", Confidence: 1.5, ModelCount: 2},
	}
	blocked := record("b", domain.OutcomeBlocked)

	if err := l.Append(planned); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := l.Append(blocked); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	stats, err := l.ComputeStats()
	if err != nil {
		t.Fatalf("ComputeStats() error = %v", err)
	}
	if stats.Total != 2 {
		t.Errorf("total = %d, want 2", stats.Total)
	}
	if stats.SuccessRate != 0.5 {
		t.Errorf("success rate = %v, want 0.5", stats.SuccessRate)
	}
	if stats.AverageConfidence != 1.5 {
		t.Errorf("average confidence = %v, want 1.5", stats.AverageConfidence)
	}
	if stats.ProviderUsage["openai"] != 2 || stats.ProviderUsage["anthropic"] != 2 {
		t.Errorf("provider usage = %v", stats.ProviderUsage)
	}
}

func TestLog_VerifyDetectsTampering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decisions.ndjson")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	for _, task := range []string{"one", "two", "three"} {
		if err := l.Append(record(task, domain.OutcomePlanReady)); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	if err := l.Verify(); err != nil {
		t.Fatalf("Verify() on intact log = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	// Flip a byte inside an existing record value.
	tampered := append([]byte{}, data...)
	for i, b := range tampered {
		if b == 'o' { // flip the first task text character it finds
			tampered[i] = '0'
			break
		}
	}
	if err := os.WriteFile(path, tampered, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("Open() after tamper = %v", err)
	}
	if err := reopened.Verify(); err == nil {
		t.Error("Verify() should detect a modified record")
	}
}

func TestLog_ChainContinuesAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decisions.ndjson")

	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := l.Append(record("one", domain.OutcomePlanReady)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	if err := reopened.Append(record("two", domain.OutcomePlanReady)); err != nil {
		t.Fatalf("Append() after reopen error = %v", err)
	}

	if err := reopened.Verify(); err != nil {
		t.Errorf("Verify() across reopen = %v", err)
	}
}

func TestLog_ConcurrentAppendsDoNotInterleave(t *testing.T) {
	l := testLog(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.Append(record("concurrent", domain.OutcomePlanReady))
		}()
	}
	wg.Wait()

	stats, err := l.ComputeStats()
	if err != nil {
		t.Fatalf("ComputeStats() error = %v", err)
	}
	if stats.Total != 20 {
		t.Errorf("total = %d, want 20 intact records", stats.Total)
	}
	if err := l.Verify(); err != nil {
		t.Errorf("Verify() after concurrent appends = %v", err)
	}
}

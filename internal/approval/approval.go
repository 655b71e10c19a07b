// Package approval is the human-or-policy yes/no boundary. Interactive
// implementations prompt a person; automated implementations return a
// pre-set answer. Both satisfy the same Gate interface.
package approval

import (
	"context"
	"time"

	"github.com/arbiterhq/arbiter/internal/domain"
)

// Request carries everything an approver needs: the task, every response
// collected, and the uncertainty statistics that triggered escalation.
type Request struct {
	// Task is the original task text
	Task string

	// Reason explains why the decision escalated
	Reason string

	// Responses are all provider responses from the cycle
	Responses []domain.ModelResponse

	// Disagreement is the confidence variance across responses
	Disagreement float64

	// MeanConfidence is the average response confidence
	MeanConfidence float64
}

// Gate decides whether an escalated decision may proceed.
type Gate interface {
	// Approve blocks until a decision is available. The boolean is the
	// verdict; an error means no verdict could be obtained and the engine
	// treats the decision as rejected.
	Approve(ctx context.Context, req Request) (bool, error)
}

// AutoGate returns a pre-configured verdict without consulting anyone.
// Used for policies that pre-approve (or pre-reject) escalations.
type AutoGate struct {
	decision bool
}

// NewAutoGate creates a gate that always answers with the given verdict.
func NewAutoGate(decision bool) *AutoGate {
	return &AutoGate{decision: decision}
}

// Approve implements Gate.Approve
func (g *AutoGate) Approve(_ context.Context, _ Request) (bool, error) {
	return g.decision, nil
}

// TimeoutGate bounds how long an inner gate may take. A human approval step
// with no deadline can stall a cycle forever; wrapping the interactive gate
// here converts a stall into a rejection with a clear reason.
type TimeoutGate struct {
	inner   Gate
	timeout time.Duration
}

// NewTimeoutGate wraps a gate with a deadline.
func NewTimeoutGate(inner Gate, timeout time.Duration) *TimeoutGate {
	return &TimeoutGate{inner: inner, timeout: timeout}
}

// Approve implements Gate.Approve. On expiry the verdict is a rejection,
// not an error: a timed-out approval is a normal terminal outcome.
func (g *TimeoutGate) Approve(ctx context.Context, req Request) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	type verdict struct {
		approved bool
		err      error
	}
	ch := make(chan verdict, 1)

	go func() {
		approved, err := g.inner.Approve(ctx, req)
		ch <- verdict{approved: approved, err: err}
	}()

	select {
	case v := <-ch:
		return v.approved, v.err
	case <-ctx.Done():
		return false, nil
	}
}

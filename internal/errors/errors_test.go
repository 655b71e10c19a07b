package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestArbiterError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ArbiterError
		want []string
	}{
		{
			name: "code and message",
			err:  New(ErrCodeProviderAuth, "authentication failed"),
			want: []string{"[PROVIDER-003]", "authentication failed"},
		},
		{
			name: "includes cause",
			err:  Wrap(ErrCodeStoreAppend, "failed to append", stderrors.New("disk full")),
			want: []string{"[STORE-001]", "failed to append", "disk full"},
		},
		{
			name: "includes suggestions",
			err:  New(ErrCodeConfigInvalid, "bad config").WithSuggestion("run arbiter init"),
			want: []string{"Suggestions:", "run arbiter init"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, want := range tt.want {
				if !strings.Contains(msg, want) {
					t.Errorf("Error() = %q, missing %q", msg, want)
				}
			}
		})
	}
}

func TestArbiterError_Unwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(ErrCodeProviderAPI, "call failed", cause)

	if !stderrors.Is(err, cause) {
		t.Error("errors.Is() should find the wrapped cause")
	}

	var ae *ArbiterError
	if !stderrors.As(err, &ae) {
		t.Error("errors.As() should match ArbiterError")
	}
}

func TestIsProviderError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"provider auth", NewProviderAuthError("openai"), true},
		{"provider api", NewProviderAPIError("anthropic", stderrors.New("timeout")), true},
		{"provider empty", NewProviderEmptyError("critic"), true},
		{"store error", NewStoreAppendError("provenance", stderrors.New("disk")), false},
		{"plain error", stderrors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsProviderError(tt.err); got != tt.want {
				t.Errorf("IsProviderError() = %v, want %v", got, tt.want)
			}
		})
	}
}

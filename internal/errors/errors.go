package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Config errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigNotFound ErrorCode = "CONFIG-001"
	ErrCodeConfigInvalid  ErrorCode = "CONFIG-002"
	ErrCodeConfigParse    ErrorCode = "CONFIG-003"

	// Provider errors (PROVIDER-001 to PROVIDER-099)
	ErrCodeProviderNotFound    ErrorCode = "PROVIDER-001"
	ErrCodeProviderConfig      ErrorCode = "PROVIDER-002"
	ErrCodeProviderAuth        ErrorCode = "PROVIDER-003"
	ErrCodeProviderAPI         ErrorCode = "PROVIDER-004"
	ErrCodeProviderEmpty       ErrorCode = "PROVIDER-005"
	ErrCodeProviderUnavailable ErrorCode = "PROVIDER-006"

	// Decision errors (DECISION-001 to DECISION-099)
	ErrCodeDecisionNoTask    ErrorCode = "DECISION-001"
	ErrCodeDecisionGate      ErrorCode = "DECISION-002"
	ErrCodeDecisionCancelled ErrorCode = "DECISION-003"

	// Storage errors (STORE-001 to STORE-099)
	ErrCodeStoreAppend  ErrorCode = "STORE-001"
	ErrCodeStoreRead    ErrorCode = "STORE-002"
	ErrCodeStoreCorrupt ErrorCode = "STORE-003"
	ErrCodeStoreMemory  ErrorCode = "STORE-004"
)

// ArbiterError represents an enhanced error with code, suggestions, and documentation
type ArbiterError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	Cause       error
}

// Error implements the error interface
func (e *ArbiterError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *ArbiterError) Unwrap() error {
	return e.Cause
}

// New creates a new ArbiterError
func New(code ErrorCode, message string) *ArbiterError {
	return &ArbiterError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new ArbiterError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *ArbiterError {
	return &ArbiterError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *ArbiterError) WithSuggestion(suggestion string) *ArbiterError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *ArbiterError) WithSuggestions(suggestions ...string) *ArbiterError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// IsProviderError reports whether err is a recoverable provider outage.
// The engine catches these, logs them, and continues the cycle with one
// fewer response; any other error is treated as a genuine fault.
func IsProviderError(err error) bool {
	ae, ok := err.(*ArbiterError)
	if !ok {
		return false
	}
	return strings.HasPrefix(string(ae.Code), "PROVIDER-")
}

// Common error constructors for frequently used errors

// NewProviderAuthError creates a provider authentication error
func NewProviderAuthError(provider string) *ArbiterError {
	return New(ErrCodeProviderAuth, fmt.Sprintf("authentication failed for provider: %s", provider)).
		WithSuggestion(fmt.Sprintf("Set the %s API key in the provider config or environment", strings.ToUpper(provider))).
		WithSuggestion("Run 'arbiter providers' to check provider health")
}

// NewProviderAPIError creates a provider API failure error
func NewProviderAPIError(provider string, cause error) *ArbiterError {
	return Wrap(ErrCodeProviderAPI, fmt.Sprintf("provider %s call failed", provider), cause).
		WithSuggestion("The cycle continues without this provider's response").
		WithSuggestion("Run 'arbiter providers' to check provider health")
}

// NewProviderEmptyError creates an empty-response error
func NewProviderEmptyError(provider string) *ArbiterError {
	return New(ErrCodeProviderEmpty, fmt.Sprintf("provider %s returned an empty response", provider))
}

// NewProviderNotFoundError creates a missing-provider error
func NewProviderNotFoundError(name string) *ArbiterError {
	return New(ErrCodeProviderNotFound, fmt.Sprintf("provider not found: %s", name)).
		WithSuggestion("Check the routing table in arbiter.yaml").
		WithSuggestion("Run 'arbiter providers' to list registered providers")
}

// NewConfigNotFoundError creates a config file not found error
func NewConfigNotFoundError(path string) *ArbiterError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithSuggestion("Run 'arbiter init' to create a configuration").
		WithSuggestion("Pass --config to point at an existing file")
}

// NewConfigInvalidError creates a config validation error
func NewConfigInvalidError(details string) *ArbiterError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", details)).
		WithSuggestion("Run 'arbiter init' to regenerate a valid configuration")
}

// NewDecisionEmptyTaskError creates an empty-task error
func NewDecisionEmptyTaskError() *ArbiterError {
	return New(ErrCodeDecisionNoTask, "task text is empty").
		WithSuggestion("Pass a non-empty task, e.g. arbiter decide \"launch the fall campaign\"")
}

// NewStoreAppendError creates a provenance/memory write error
func NewStoreAppendError(store string, cause error) *ArbiterError {
	return Wrap(ErrCodeStoreAppend, fmt.Sprintf("failed to append to %s", store), cause).
		WithSuggestion("Check the storage path and permissions").
		WithSuggestion("The decision itself is unaffected; only the audit side effect was lost")
}

package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/arbiterhq/arbiter/internal/errors"
	"github.com/arbiterhq/arbiter/internal/normalize"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com/v1"
	anthropicVersion        = "2023-06-01"
)

// AnthropicAdapter implements the Adapter interface for Anthropic-style
// messages APIs. The default routing policy sends safety subtasks here,
// keeping the risk-averse reviewer separate from the creative providers.
type AnthropicAdapter struct {
	cfg    Config
	client *http.Client
}

// Anthropic API request/response structures
type anthropicRequest struct {
	Model     string             `json:"model"`
	Messages  []anthropicMessage `json:"messages"`
	MaxTokens int                `json:"max_tokens"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	ID      string             `json:"id"`
	Model   string             `json:"model"`
	Content []anthropicContent `json:"content"`
	Error   *anthropicError    `json:"error,omitempty"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewAnthropicAdapter creates an adapter for an Anthropic-style endpoint.
func NewAnthropicAdapter(cfg Config) *AnthropicAdapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultAnthropicBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "claude-sonnet-4-5"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024 // the messages API requires max_tokens
	}

	return &AnthropicAdapter{
		cfg:    cfg,
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

// Name implements Adapter.Name
func (a *AnthropicAdapter) Name() string {
	return a.cfg.Name
}

// Call implements Adapter.Call
func (a *AnthropicAdapter) Call(ctx context.Context, prompt string) (Response, error) {
	apiKey := a.cfg.apiKey()
	if apiKey == "" {
		return Response{}, errors.NewProviderAuthError(a.cfg.Name)
	}

	reqBody, err := json.Marshal(&anthropicRequest{
		Model:     a.cfg.Model,
		Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
		MaxTokens: a.cfg.MaxTokens,
	})
	if err != nil {
		return Response{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+"/messages", bytes.NewReader(reqBody))
	if err != nil {
		return Response{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	httpResp, err := a.client.Do(httpReq)
	if err != nil {
		return Response{}, errors.NewProviderAPIError(a.cfg.Name, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return Response{}, errors.NewProviderAPIError(a.cfg.Name, err)
	}

	if httpResp.StatusCode == http.StatusUnauthorized {
		return Response{}, errors.NewProviderAuthError(a.cfg.Name)
	}
	if httpResp.StatusCode != http.StatusOK {
		var errResp anthropicResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != nil {
			return Response{}, errors.NewProviderAPIError(a.cfg.Name, fmt.Errorf("%s", errResp.Error.Message))
		}
		return Response{}, errors.NewProviderAPIError(a.cfg.Name, fmt.Errorf("http error %d", httpResp.StatusCode))
	}

	var resp anthropicResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return Response{}, errors.NewProviderAPIError(a.cfg.Name, fmt.Errorf("unmarshal response: %w", err))
	}

	if len(resp.Content) == 0 {
		return Response{}, errors.NewProviderEmptyError(a.cfg.Name)
	}

	text, confidence := normalize.Normalize(resp.Content[0].Text, a.cfg.baseConfidence())
	if text == "" {
		return Response{}, errors.NewProviderEmptyError(a.cfg.Name)
	}

	return Response{Text: text, Confidence: confidence}, nil
}

// Health implements Adapter.Health
func (a *AnthropicAdapter) Health(ctx context.Context) error {
	apiKey := a.cfg.apiKey()
	if apiKey == "" {
		return errors.NewProviderAuthError(a.cfg.Name)
	}

	reqBody, err := json.Marshal(&anthropicRequest{
		Model:     a.cfg.Model,
		Messages:  []anthropicMessage{{Role: "user", Content: "ping"}},
		MaxTokens: 1,
	})
	if err != nil {
		return fmt.Errorf("marshal health check: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+"/messages", bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("create health check request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return errors.NewProviderAPIError(a.cfg.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.NewProviderAPIError(a.cfg.Name, fmt.Errorf("health check returned status %d", resp.StatusCode))
	}

	return nil
}

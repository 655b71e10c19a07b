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

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIAdapter implements the Adapter interface for OpenAI-style
// chat-completions APIs.
type OpenAIAdapter struct {
	cfg    Config
	client *http.Client
}

// OpenAI API request/response structures
type openAIRequest struct {
	Model     string          `json:"model"`
	Messages  []openAIMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	ID      string         `json:"id"`
	Model   string         `json:"model"`
	Choices []openAIChoice `json:"choices"`
	Error   *openAIError   `json:"error,omitempty"`
}

type openAIChoice struct {
	Index        int           `json:"index"`
	Message      openAIMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type openAIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// NewOpenAIAdapter creates an adapter for an OpenAI-style endpoint.
func NewOpenAIAdapter(cfg Config) *OpenAIAdapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOpenAIBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	return &OpenAIAdapter{
		cfg:    cfg,
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

// Name implements Adapter.Name
func (a *OpenAIAdapter) Name() string {
	return a.cfg.Name
}

// Call implements Adapter.Call
func (a *OpenAIAdapter) Call(ctx context.Context, prompt string) (Response, error) {
	apiKey := a.cfg.apiKey()
	if apiKey == "" {
		return Response{}, errors.NewProviderAuthError(a.cfg.Name)
	}

	reqBody, err := json.Marshal(&openAIRequest{
		Model:     a.cfg.Model,
		Messages:  []openAIMessage{{Role: "user", Content: prompt}},
		MaxTokens: a.cfg.MaxTokens,
	})
	if err != nil {
		return Response{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return Response{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

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
		var errResp openAIResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != nil {
			return Response{}, errors.NewProviderAPIError(a.cfg.Name, fmt.Errorf("%s", errResp.Error.Message))
		}
		return Response{}, errors.NewProviderAPIError(a.cfg.Name, fmt.Errorf("http error %d", httpResp.StatusCode))
	}

	var resp openAIResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return Response{}, errors.NewProviderAPIError(a.cfg.Name, fmt.Errorf("unmarshal response: %w", err))
	}

	if len(resp.Choices) == 0 {
		return Response{}, errors.NewProviderEmptyError(a.cfg.Name)
	}

	text, confidence := normalize.Normalize(resp.Choices[0].Message.Content, a.cfg.baseConfidence())
	if text == "" {
		return Response{}, errors.NewProviderEmptyError(a.cfg.Name)
	}

	return Response{Text: text, Confidence: confidence}, nil
}

// Health implements Adapter.Health
func (a *OpenAIAdapter) Health(ctx context.Context) error {
	if a.cfg.apiKey() == "" {
		return errors.NewProviderAuthError(a.cfg.Name)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.BaseURL+"/models", nil)
	if err != nil {
		return fmt.Errorf("create health check request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+a.cfg.apiKey())

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

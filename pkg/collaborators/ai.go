package collaborators

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/flowd-sh/flowd/pkg/protocol"
)

// HTTPAIProvider calls a completion endpoint. The handle arrives configured
// per tenant; API key resolution happens upstream.
type HTTPAIProvider struct {
	client  *http.Client
	logger  *slog.Logger
	baseURL string
	apiKey  string
}

func NewHTTPAIProvider(logger *slog.Logger, baseURL, apiKey string) *HTTPAIProvider {
	return &HTTPAIProvider{
		client:  &http.Client{Timeout: defaultHTTPTimeout},
		logger:  logger,
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

type completionPayload struct {
	Model     string `json:"model"`
	Prompt    string `json:"prompt"`
	MaxTokens int    `json:"max_tokens"`
}

type completionResult struct {
	Text string `json:"text"`
}

func (p *HTTPAIProvider) Complete(ctx context.Context, req protocol.CompletionRequest) (string, error) {
	payload, err := json.Marshal(completionPayload{
		Model:     req.Model,
		Prompt:    req.Prompt,
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal completion payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build completion request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("completion call failed: %w", err)
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			p.logger.ErrorContext(ctx, "failed to close completion response body", "error", closeErr)
		}
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("completion endpoint answered with status %d", resp.StatusCode)
	}

	var result completionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}

	return result.Text, nil
}

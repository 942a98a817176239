// Package collaborators provides the production implementations of the
// external services node executors call into.
package collaborators

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/flowd-sh/flowd/pkg/protocol"
)

const defaultHTTPTimeout = 30 * time.Second

// HTTPWebhookClient posts JSON payloads to workflow-configured URLs.
type HTTPWebhookClient struct {
	client *http.Client
	logger *slog.Logger
}

func NewHTTPWebhookClient(logger *slog.Logger) *HTTPWebhookClient {
	return &HTTPWebhookClient{
		client: &http.Client{Timeout: defaultHTTPTimeout},
		logger: logger,
	}
}

// Post sends the body as JSON and returns the parsed response. Any HTTP
// status is a valid response; only transport failures are errors, so
// workflows can branch on status_code.
func (c *HTTPWebhookClient) Post(ctx context.Context, url string, body map[string]any, headers map[string]string) (*protocol.WebhookResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhook call to %s failed: %w", url, err)
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.ErrorContext(ctx, "failed to close webhook response body", "error", closeErr)
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read webhook response: %w", err)
	}

	return &protocol.WebhookResponse{
		StatusCode: resp.StatusCode,
		Body:       parseResponseBody(raw),
	}, nil
}

// parseResponseBody decodes JSON object responses; anything else is exposed
// verbatim under "raw".
func parseResponseBody(raw []byte) map[string]any {
	if len(raw) == 0 {
		return map[string]any{}
	}

	var parsed map[string]any
	if err := json.Unmarshal(raw, &parsed); err == nil {
		return parsed
	}

	return map[string]any{"raw": string(raw)}
}

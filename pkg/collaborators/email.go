package collaborators

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// RelayEmailSender delivers mail through an HTTP relay service.
type RelayEmailSender struct {
	client   *http.Client
	logger   *slog.Logger
	relayURL string
	apiKey   string
	from     string
}

func NewRelayEmailSender(logger *slog.Logger, relayURL, apiKey, from string) *RelayEmailSender {
	return &RelayEmailSender{
		client:   &http.Client{Timeout: defaultHTTPTimeout},
		logger:   logger,
		relayURL: relayURL,
		apiKey:   apiKey,
		from:     from,
	}
}

func (s *RelayEmailSender) Send(ctx context.Context, to, subject, body string) error {
	payload, err := json.Marshal(map[string]string{
		"from":    s.from,
		"to":      to,
		"subject": subject,
		"body":    body,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.relayURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build email request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("email relay call failed: %w", err)
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			s.logger.ErrorContext(ctx, "failed to close email relay response body", "error", closeErr)
		}
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("email relay rejected message with status %d", resp.StatusCode)
	}

	s.logger.InfoContext(ctx, "Email sent", "to", to, "subject", subject)

	return nil
}

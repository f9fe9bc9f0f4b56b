package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/veridano/threat-sentinel/internal/types"
)

// WebhookSink posts an alert batch as JSON to an external endpoint
// (chat bridge, paging gateway, SOAR intake). Transient failures are
// retried a few times with exponential backoff inside the dispatch
// deadline; the batch is never requeued after the final attempt.
type WebhookSink struct {
	url        string
	token      string
	httpClient *http.Client
	log        *logrus.Logger

	maxAttempts int
	baseBackoff time.Duration
}

// WebhookConfig for the webhook sink.
type WebhookConfig struct {
	URL     string
	Token   string // optional bearer token
	Timeout time.Duration
}

// NewWebhookSink creates a webhook sink.
func NewWebhookSink(cfg WebhookConfig, log *logrus.Logger) *WebhookSink {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &WebhookSink{
		url:         cfg.URL,
		token:       cfg.Token,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		log:         log,
		maxAttempts: 3,
		baseBackoff: 500 * time.Millisecond,
	}
}

// Dispatch posts the batch, retrying on failure until the attempts or
// the context run out.
func (s *WebhookSink) Dispatch(ctx context.Context, alerts []types.Alert) error {
	if s.url == "" {
		return fmt.Errorf("webhook sink not configured")
	}

	payload, err := json.Marshal(map[string]interface{}{
		"alert_count": len(alerts),
		"alerts":      alerts,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal alert batch: %w", err)
	}

	backoff := s.baseBackoff
	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		lastErr = s.post(ctx, payload)
		if lastErr == nil {
			return nil
		}
		s.log.WithFields(logrus.Fields{
			"attempt": attempt,
			"backoff": backoff.String(),
		}).WithError(lastErr).Warn("Webhook dispatch failed")

		if attempt == s.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("webhook dispatch cancelled: %w", ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return fmt.Errorf("webhook dispatch failed after %d attempts: %w", s.maxAttempts, lastErr)
}

func (s *WebhookSink) post(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.token))
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return nil
}

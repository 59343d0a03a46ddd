// Package whatsapp relays messages to the WhatsApp Business webhook.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// ErrNotConfigured is returned by Send when no webhook URL is set.
var ErrNotConfigured = errors.New("whatsapp: webhook not configured")

type Message struct {
	To       string            `json:"to"`
	Text     string            `json:"text,omitempty"`
	Template string            `json:"template,omitempty"`
	Params   map[string]string `json:"params,omitempty"`
}

// StatusError is a non-2xx webhook answer.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d: %s", e.Code, e.Body)
}

type Client struct {
	webhookURL string
	token      string
	httpClient *http.Client
	maxElapsed time.Duration
	logger     *zap.Logger
}

func NewClient(webhookURL, token string, timeout, maxElapsed time.Duration, logger *zap.Logger) *Client {
	return &Client{
		webhookURL: webhookURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		maxElapsed: maxElapsed,
		logger:     logger,
	}
}

func (c *Client) Enabled() bool {
	return c.webhookURL != ""
}

// Send posts msg to the webhook. Transport errors and 5xx answers are retried
// with exponential backoff; 4xx answers fail immediately.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if !c.Enabled() {
		return ErrNotConfigured
	}
	if msg.To == "" || (msg.Text == "" && msg.Template == "") {
		return fmt.Errorf("whatsapp: message needs a recipient and a text or template")
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxElapsedTime = c.maxElapsed

	return backoff.RetryNotify(
		func() error { return c.post(ctx, body) },
		backoff.WithContext(policy, ctx),
		func(err error, next time.Duration) {
			c.logger.Warn("WhatsApp relay failed, retrying...",
				zap.Error(err),
				zap.Duration("next_attempt_in", next))
		},
	)
}

func (c *Client) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	statusErr := &StatusError{Code: resp.StatusCode, Body: string(snippet)}
	if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
		return backoff.Permanent(statusErr)
	}
	return statusErr
}

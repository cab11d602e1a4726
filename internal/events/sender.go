package events

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	standardwebhooks "github.com/standard-webhooks/standard-webhooks/libraries/go"

	"github.com/retrolist/games-service/internal/models"
)

// defaultSendTimeout bounds a single delivery so one unreachable recipient
// cannot stall dispatch.
const defaultSendTimeout = 15 * time.Second

// Payload is the JSON body delivered to webhook recipients.
type Payload struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Sender delivers a single payload to a single webhook registration.
type Sender interface {
	Send(ctx context.Context, webhook models.Webhook, payloadJSON []byte, messageID string) error
}

// HTTPSender implements Sender with signed JSON POSTs.
type HTTPSender struct {
	httpClient *http.Client
}

// NewHTTPSender creates a sender whose client uses the given timeout
// (defaultSendTimeout when non-positive) and does not follow redirects.
// Deliveries are one-shot: a failure is a failure, never retried here.
func NewHTTPSender(timeout time.Duration) *HTTPSender {
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}

	return &HTTPSender{
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Send signs and POSTs the pre-marshaled payload to the registration's
// recipient URL. messageID is stable per event across all recipients, for
// consumer idempotency. Non-2xx responses count as delivery failures.
func (s *HTTPSender) Send(ctx context.Context, webhook models.Webhook, payloadJSON []byte, messageID string) error {
	wh, err := standardwebhooks.NewWebhook(webhook.SigningKey)
	if err != nil {
		return fmt.Errorf("create webhook signer: %w", err)
	}

	timestamp := time.Now()

	signature, err := wh.Sign(messageID, timestamp, payloadJSON)
	if err != nil {
		return fmt.Errorf("sign webhook: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhook.RecipientURL, bytes.NewReader(payloadJSON))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(standardwebhooks.HeaderWebhookID, messageID)
	req.Header.Set(standardwebhooks.HeaderWebhookSignature, signature)
	req.Header.Set(standardwebhooks.HeaderWebhookTimestamp, strconv.FormatInt(timestamp.Unix(), 10))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Warn("Failed to close webhook response body", "webhook_id", webhook.ID, "error", closeErr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned non-2xx status: %d", resp.StatusCode)
	}

	return nil
}

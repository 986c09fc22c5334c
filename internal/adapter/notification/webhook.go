package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/api-sage/mini-bank-ledger/internal/logger"
)

// WebhookGateway hands messages to an external mailer endpoint as JSON.
// The short client timeout keeps phase 1 fail-fast: a slow mailer must not
// stall the coordinator.
type WebhookGateway struct {
	url    string
	client *http.Client
}

func NewWebhookGateway(url string) *WebhookGateway {
	return &WebhookGateway{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

type webhookMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (g *WebhookGateway) Deliver(ctx context.Context, address, subject, body string) error {
	payload, err := json.Marshal(webhookMessage{To: address, Subject: subject, Body: body})
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		logger.Error("notification gateway delivery failed", err, logger.Fields{
			"address": address,
		})
		return fmt.Errorf("deliver notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("mailer endpoint returned status %d", resp.StatusCode)
		logger.Error("notification gateway delivery rejected", err, logger.Fields{
			"address": address,
		})
		return err
	}

	return nil
}

package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WebhookPayload is the body accepted by an Apprise API /notify endpoint.
type WebhookPayload struct {
	URLs   []string `json:"urls"`
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Type   string   `json:"type"`
	Format string   `json:"format"`
}

type WebhookNotifier struct {
	WebhookURL string
	TargetURLs []string
	Client     *http.Client
}

func NewWebhookNotifier(webhookURL string, targetURLs []string) *WebhookNotifier {
	return &WebhookNotifier{
		WebhookURL: webhookURL,
		TargetURLs: targetURLs,
		Client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (w *WebhookNotifier) SendNotification(ctx context.Context, subject, message string) error {
	payload := WebhookPayload{
		URLs:   w.TargetURLs,
		Title:  subject,
		Body:   message,
		Type:   "info",
		Format: "text",
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.WebhookURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := w.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook request failed with status code: %d", resp.StatusCode)
	}
	return nil
}

var _ Notifier = (*WebhookNotifier)(nil)

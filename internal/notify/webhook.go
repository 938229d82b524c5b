package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	httpclient "github.com/cenniki/pricelist-service/internal/http"
)

// WebhookNotifier POSTs the notification as JSON
type WebhookNotifier struct {
	url    string
	token  string
	client *httpclient.Client
}

// NewWebhookNotifier creates a WebhookNotifier. token, when set, is sent as a bearer token.
func NewWebhookNotifier(url, token string, client *httpclient.Client) *WebhookNotifier {
	if client == nil {
		client = httpclient.NewClientDefault()
	}
	return &WebhookNotifier{url: url, token: token, client: client}
}

func (w *WebhookNotifier) Notify(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	header := http.Header{}
	if w.token != "" {
		header.Set("Authorization", "Bearer "+w.token)
	}

	resp, err := w.client.PostJSON(ctx, w.url, payload, header)
	if err != nil {
		return fmt.Errorf("webhook notification failed: %w", err)
	}
	resp.Body.Close()
	return nil
}

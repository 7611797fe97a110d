package notification

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

// WebhookForwarder mirrors each stored notification to an external HTTP sink
// when one is configured. Delivery is best effort; failures are logged and
// never retried.
type WebhookForwarder struct {
	client *resty.Client
	url    string
	logger *slog.Logger
}

// NewWebhookForwarder returns nil when no URL is configured, which disables
// forwarding entirely.
func NewWebhookForwarder(url string, timeout time.Duration, logger *slog.Logger) *WebhookForwarder {
	if url == "" {
		return nil
	}
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0)
	return &WebhookForwarder{client: client, url: url, logger: logger}
}

func (w *WebhookForwarder) Forward(ctx context.Context, n *Notification) {
	resp, err := w.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(n).
		Post(w.url)
	if err != nil {
		w.logger.Warn("notification webhook delivery failed", "notification_id", n.ID, "error", err)
		return
	}
	if resp.IsError() {
		w.logger.Warn("notification webhook rejected",
			"notification_id", n.ID, "status", resp.StatusCode())
	}
}

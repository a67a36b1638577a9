package notification

import (
	"context"
	"fmt"
	"time"

	xhttp "WatchPull/pkg/http"
)

// WebhookNotifier posts text messages to a chat-bot webhook.
type WebhookNotifier struct {
	url    string
	client *xhttp.Client
}

type webhookPayload struct {
	MsgType string `json:"msg_type"`
	Content struct {
		Text string `json:"text"`
	} `json:"content"`
}

type webhookResp struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// NewWebhook creates a webhook notifier.
func NewWebhook(url string, timeout time.Duration) *WebhookNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookNotifier{
		url:    url,
		client: xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

func (n *WebhookNotifier) Send(ctx context.Context, text string) error {
	var p webhookPayload
	p.MsgType = "text"
	p.Content.Text = text

	var r webhookResp
	err := n.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     n.url,
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    p,
	}, &r)
	if err != nil {
		return fmt.Errorf("webhook send: %w", err)
	}
	if r.Code != 0 {
		return fmt.Errorf("webhook rejected: code=%d msg=%s", r.Code, r.Msg)
	}
	return nil
}

func (n *WebhookNotifier) Close() error { return nil }

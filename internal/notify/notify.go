// Package notify delivers alerts raised by the console, such as low-balance
// warnings, to the desktop and to chat webhooks.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gen2brain/beeep"
)

// Notification is one alert to deliver.
type Notification struct {
	Title string
	Body  string
}

// Notifier delivers notifications to one destination.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// Desktop shows notifications through the OS notification center.
type Desktop struct{}

// Send implements Notifier.
func (Desktop) Send(_ context.Context, n Notification) error {
	if err := beeep.Notify(n.Title, n.Body, ""); err != nil {
		return fmt.Errorf("desktop notification: %w", err)
	}
	return nil
}

// Webhook formats understood by Send.
const (
	FormatSlack   = "slack"
	FormatDiscord = "discord"
	FormatGeneric = "generic"
)

// Webhook posts notifications to a chat webhook URL.
type Webhook struct {
	URL        string
	Format     string
	HTTPClient *http.Client
}

// NewWebhook creates a webhook notifier. An unrecognized format falls back
// to the generic JSON shape.
func NewWebhook(url, format string) *Webhook {
	return &Webhook{
		URL:        url,
		Format:     format,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Send implements Notifier.
func (w *Webhook) Send(ctx context.Context, n Notification) error {
	var payload interface{}
	switch w.Format {
	case FormatSlack:
		payload = map[string]string{"text": n.Title + "\n" + n.Body}
	case FormatDiscord:
		payload = map[string]string{"content": "**" + n.Title + "**\n" + n.Body}
	default:
		payload = map[string]string{"title": n.Title, "body": n.Body}
	}

	buf, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// Multi fans a notification out to several destinations and reports every
// failure, not just the first.
type Multi []Notifier

// Send implements Notifier.
func (m Multi) Send(ctx context.Context, n Notification) error {
	var errs []error
	for _, notifier := range m {
		if err := notifier.Send(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

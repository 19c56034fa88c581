package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cuemby/coordinator/pkg/types"
)

// WebhookPublisher POSTs each Event as JSON to a configured URL. It is the
// external Publisher used when the coordinator is asked to mirror its
// journal to an outside system (spec §4.6's "optionally forwarded
// externally").
type WebhookPublisher struct {
	URL    string
	Client *http.Client
}

// NewWebhookPublisher builds a WebhookPublisher with a bounded client
// timeout; callers needing a different timeout can replace Client directly.
func NewWebhookPublisher(url string) *WebhookPublisher {
	return &WebhookPublisher{
		URL:    url,
		Client: &http.Client{Timeout: 5 * time.Second},
	}
}

// Publish implements Publisher.
func (w *WebhookPublisher) Publish(ctx context.Context, ev *types.Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("events: marshal event %s: %w", ev.ID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("events: build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.Client.Do(req)
	if err != nil {
		return fmt.Errorf("events: webhook post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("events: webhook %s returned %d", w.URL, resp.StatusCode)
	}
	return nil
}

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Event is the payload posted when a report has been generated.
type Event struct {
	Type              string    `json:"type"`
	ReportID          string    `json:"report_id"`
	LeadEmail         string    `json:"lead_email"`
	LeadName          string    `json:"lead_name,omitempty"`
	LeadType          string    `json:"lead_type"`
	Tier              string    `json:"tier"`
	DelegationPercent int       `json:"delegation_percent"`
	Valid             bool      `json:"valid"`
	Timestamp         time.Time `json:"timestamp"`
}

// EventReportGenerated is the Type of every Event emitted today.
const EventReportGenerated = "report.generated"

// Notifier delivers an Event somewhere.
type Notifier interface {
	Notify(ctx context.Context, e Event) error
}

// Webhook posts events as JSON to a fixed URL.
type Webhook struct {
	url    string
	client *http.Client
}

// NewWebhook creates a Webhook for url.
func NewWebhook(url string, timeout time.Duration) *Webhook {
	if timeout <= 0 {
		timeout = DefaultTaskTimeout
	}
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: timeout, Transport: http.DefaultTransport.(*http.Transport).Clone()},
	}
}

// Notify implements Notifier. Any non-2xx response is an error.
func (w *Webhook) Notify(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Delegate-Event", e.Type)

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook delivery failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// Close releases idle connections.
func (w *Webhook) Close() {
	w.client.CloseIdleConnections()
}

// Dispatch schedules n.Notify(e) on s.
func Dispatch(s *Supervisor, n Notifier, e Event) bool {
	if n == nil {
		return false
	}
	return s.Go("notify:"+e.Type, func(ctx context.Context) error {
		return n.Notify(ctx, e)
	})
}

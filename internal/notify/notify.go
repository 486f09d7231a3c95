// Package notify posts scan completion events to a webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hakim/zoneshah/internal/models"
)

// DefaultTimeout bounds a single webhook delivery
const DefaultTimeout = 10 * time.Second

// Webhook configures where to send completion notifications.
type Webhook struct {
	URL    string // if empty, no notifications
	Client *http.Client
}

// completionPayload is the JSON body posted to the webhook endpoint.
type completionPayload struct {
	Source            string   `json:"source"`
	ScanID            string   `json:"scan_id"`
	Status            string   `json:"status"`
	DomainsScanned    int      `json:"domains_scanned"`
	VulnerableCount   int      `json:"vulnerable_count"`
	VulnerableDomains []string `json:"vulnerable_domains"`
	Interrupted       bool     `json:"interrupted"`
	ElapsedSeconds    float64  `json:"elapsed_seconds"`
}

// SendCompletion posts a JSON payload describing record to the webhook URL.
// Returns nil if URL is empty (no-op). Callers should treat errors as warnings.
func (w *Webhook) SendCompletion(ctx context.Context, record *models.ScanRecord) error {
	if w == nil || w.URL == "" {
		return nil
	}

	vulnerable := []string{}
	for _, r := range record.Summary.Vulnerable() {
		vulnerable = append(vulnerable, r.Domain)
	}

	payload := completionPayload{
		Source:            record.Source,
		ScanID:            record.ID,
		Status:            string(record.Status),
		DomainsScanned:    len(record.Summary.Results),
		VulnerableCount:   len(vulnerable),
		VulnerableDomains: vulnerable,
		Interrupted:       record.Summary.Interrupted,
		ElapsedSeconds:    record.Summary.Elapsed.Seconds(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("notify: marshaling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := w.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: posting to %s: %w", w.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notify: webhook returned non-2xx status %d", resp.StatusCode)
	}

	return nil
}

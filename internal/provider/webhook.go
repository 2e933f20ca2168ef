package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ricirt/aqi-bulletin/internal/domain"
)

// WebhookSurface delivers bulletin view models by POSTing them as JSON.
// The URL is injected from config so tests can point to a local server.
type WebhookSurface struct {
	url        string
	httpClient *http.Client
}

func NewWebhookSurface(url string, timeout time.Duration) *WebhookSurface {
	return &WebhookSurface{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Deliver posts the bulletin and expects 202 Accepted with a JSON body
// carrying the surface's job id.
//
// Header values are percent-encoded since zone labels and file names carry
// accented characters. The idempotency key lets the surface drop a redelivery
// of the same zone and date.
func (p *WebhookSurface) Deliver(ctx context.Context, b *domain.Bulletin) (*DeliverResponse, error) {
	body, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("marshal bulletin: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", url.PathEscape(b.Zone+"|"+b.Date))
	req.Header.Set("X-Print-Filename", url.PathEscape(b.PrintFilename))

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("unexpected print surface status: %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}

	var out DeliverResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &out, nil
}

// compile-time check that WebhookSurface implements PrintSurface
var _ PrintSurface = (*WebhookSurface)(nil)

package provider

import (
	"context"

	"github.com/ricirt/aqi-bulletin/internal/domain"
)

// DeliverResponse maps the rendering surface's 202 Accepted response body.
type DeliverResponse struct {
	JobID  string `json:"jobId"`
	Status string `json:"status"`
}

// PrintSurface abstracts the external printable-rendering surface that owns
// layout and pagination. Mocking this interface in tests gives full control
// over its behaviour without making real HTTP calls.
type PrintSurface interface {
	Deliver(ctx context.Context, b *domain.Bulletin) (*DeliverResponse, error)
}

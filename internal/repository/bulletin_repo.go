package repository

import (
	"context"

	"github.com/ricirt/aqi-bulletin/internal/domain"
)

// BulletinRepository defines all persistence operations for daily summaries.
// A summary is keyed by (zone, date); publishing the same key again replaces it.
// The pgx implementation is in pg_bulletin_repo.go.
// Tests use a hand-written mock (mock_bulletin_repo.go).
type BulletinRepository interface {
	// Upsert stores s and reports whether it was newly created. A replace
	// overwrites every field including published_at.
	Upsert(ctx context.Context, s *domain.DailySummary) (bool, error)
	GetByDate(ctx context.Context, zone, date string) (*domain.DailySummary, error)
	Latest(ctx context.Context, zone string) (*domain.DailySummary, error)
	LatestPerZone(ctx context.Context) ([]*domain.DailySummary, error)
	List(ctx context.Context, filter domain.BulletinFilter) ([]*domain.DailySummary, int, error)
}

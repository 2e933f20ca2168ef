package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ricirt/aqi-bulletin/internal/domain"
	"github.com/ricirt/aqi-bulletin/internal/queue"
	"github.com/ricirt/aqi-bulletin/internal/repository"
	"github.com/ricirt/aqi-bulletin/internal/service"
)

type fakeDispatcher struct {
	submitted []*domain.Bulletin
	err       error
}

func (f *fakeDispatcher) Submit(b *domain.Bulletin) error {
	if f.err != nil {
		return f.err
	}
	f.submitted = append(f.submitted, b)
	return nil
}

type fixture struct {
	svc      *service.BulletinService
	repo     *repository.MockBulletinRepository
	toasts   *queue.ToastQueue
	dispatch *fakeDispatcher
	stored   []bool
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:     repository.NewMockBulletinRepository(),
		toasts:   queue.New(time.Hour, zap.NewNop()),
		dispatch: &fakeDispatcher{},
	}
	t.Cleanup(f.toasts.Close)
	f.svc = service.NewBulletinService(
		f.repo, nil, f.toasts, f.dispatch,
		func(created bool) { f.stored = append(f.stored, created) },
		zap.NewNop(),
	)
	return f
}

func summary(date string, aqi int) *domain.DailySummary {
	return &domain.DailySummary{
		Date:       date,
		CityMaxAQI: aqi,
		Stations:   []domain.Station{{Name: "Lafiabougou", AQI: aqi}},
	}
}

func TestBulletinService_Publish(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, created, err := f.svc.Publish(ctx, summary("19/10/2026", 87))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Fatal("expected created=true for a new summary")
	}
	if b.Zone != domain.DefaultZone || b.Category != domain.CategoryModerate {
		t.Fatalf("unexpected bulletin %+v", b)
	}
	if len(f.dispatch.submitted) != 1 {
		t.Fatalf("expected 1 dispatched bulletin, got %d", len(f.dispatch.submitted))
	}

	toasts := f.toasts.Toasts()
	if len(toasts) != 1 || toasts[0].Variant != domain.VariantDefault || toasts[0].Title != "Bulletin publié" {
		t.Fatalf("unexpected toasts %+v", toasts)
	}

	stored, err := f.repo.GetByDate(ctx, domain.DefaultZone, "19/10/2026")
	if err != nil {
		t.Fatalf("expected stored summary, got %v", err)
	}
	if stored.PublishedAt.IsZero() {
		t.Fatal("expected published_at to be set")
	}
}

func TestBulletinService_Publish_Replaces(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, _ = f.svc.Publish(ctx, summary("19/10/2026", 87))
	b, created, err := f.svc.Publish(ctx, summary("19/10/2026", 160))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Fatal("expected created=false when replacing a summary")
	}
	if b.Category != domain.CategoryUnhealthy {
		t.Fatalf("expected replaced values, got %s", b.Category)
	}
	if len(f.stored) != 2 || !f.stored[0] || f.stored[1] {
		t.Fatalf("unexpected stored hook calls %v", f.stored)
	}
	stored, err := f.repo.GetByDate(ctx, domain.DefaultZone, "19/10/2026")
	if err != nil {
		t.Fatalf("GetByDate: %v", err)
	}
	if !stored.PublishedAt.Equal(b.PublishedAt) {
		t.Fatalf("stored published_at %v differs from returned %v", stored.PublishedAt, b.PublishedAt)
	}
	latest, err := f.svc.Latest(ctx, "")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if !latest.PublishedAt.Equal(b.PublishedAt) || latest.CityMaxAQI != 160 {
		t.Fatalf("latest bulletin %+v does not match the republished one", latest)
	}
}

func TestBulletinService_Publish_Invalid(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.svc.Publish(context.Background(), summary("", 87))
	if err != domain.ErrInvalidBulletin {
		t.Fatalf("expected ErrInvalidBulletin, got %v", err)
	}

	toasts := f.toasts.Toasts()
	if len(toasts) != 1 || toasts[0].Variant != domain.VariantDestructive {
		t.Fatalf("expected one destructive toast, got %+v", toasts)
	}
	if len(f.dispatch.submitted) != 0 {
		t.Fatal("expected nothing to be dispatched")
	}
}

func TestBulletinService_Publish_RepositoryError(t *testing.T) {
	f := newFixture(t)
	f.repo.UpsertErr = errors.New("connection refused")

	_, _, err := f.svc.Publish(context.Background(), summary("19/10/2026", 87))
	if err == nil || !errors.Is(err, f.repo.UpsertErr) {
		t.Fatalf("expected wrapped repository error, got %v", err)
	}
	if toasts := f.toasts.Toasts(); len(toasts) != 1 || toasts[0].Variant != domain.VariantDestructive {
		t.Fatalf("expected one destructive toast, got %+v", toasts)
	}
}

func TestBulletinService_Publish_DispatchFull(t *testing.T) {
	f := newFixture(t)
	f.dispatch.err = domain.ErrDispatchFull

	if _, _, err := f.svc.Publish(context.Background(), summary("19/10/2026", 87)); err != nil {
		t.Fatalf("expected publishing to succeed, got %v", err)
	}

	toasts := f.toasts.Toasts()
	if len(toasts) != 2 {
		t.Fatalf("expected a deferred-print toast and a published toast, got %d", len(toasts))
	}
	if toasts[0].Variant != domain.VariantDestructive || toasts[1].Variant != domain.VariantDefault {
		t.Fatalf("unexpected toast order %+v", toasts)
	}
}

func TestBulletinService_GetAndView(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _, _ = f.svc.Publish(ctx, summary("19/10/2026", 305))

	b, err := f.svc.Get(ctx, "", "19/10/2026")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Category != domain.CategoryHazardous {
		t.Fatalf("expected hazardous, got %s", b.Category)
	}

	v, err := f.svc.View(ctx, domain.DefaultZone, "19/10/2026")
	if err != nil || v.Bulletin == nil {
		t.Fatalf("expected a bulletin view, got %+v err=%v", v, err)
	}

	if _, err := f.svc.Get(ctx, "", "20/10/2026"); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBulletinService_LatestPerZone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	kati := summary("19/10/2026", 40)
	kati.Zone = "KATI"
	kati.PublishedAt = time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC)
	older := summary("18/10/2026", 90)
	older.PublishedAt = time.Date(2026, 10, 18, 7, 0, 0, 0, time.UTC)
	newer := summary("19/10/2026", 120)
	newer.PublishedAt = time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC)

	for _, s := range []*domain.DailySummary{kati, older, newer} {
		if _, _, err := f.svc.Publish(ctx, s); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}

	latest, err := f.svc.LatestPerZone(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(latest) != 2 {
		t.Fatalf("expected 2 zones, got %d", len(latest))
	}
	for _, b := range latest {
		if b.Date != "19/10/2026" {
			t.Fatalf("expected the newest bulletin per zone, got %s for %s", b.Date, b.Zone)
		}
	}

	b, err := f.svc.Latest(ctx, "")
	if err != nil || b.CityMaxAQI != 120 {
		t.Fatalf("expected latest default-zone bulletin with AQI 120, got %+v err=%v", b, err)
	}
}

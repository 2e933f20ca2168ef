package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ricirt/aqi-bulletin/internal/domain"
	"github.com/ricirt/aqi-bulletin/internal/repository"
)

// Notifier is the toast surface the service reports to.
// *queue.ToastQueue satisfies it.
type Notifier interface {
	Enqueue(req domain.ToastRequest) string
}

// Dispatcher hands a bulletin to the printable-rendering surface
// asynchronously. *worker.Dispatcher satisfies it.
type Dispatcher interface {
	Submit(b *domain.Bulletin) error
}

// BulletinService coordinates the repository, the toast queue and the
// dispatch pipeline. HTTP handlers and workers depend on this service, not on
// each other.
type BulletinService struct {
	repo     repository.BulletinRepository
	advisor  domain.Advisor
	toasts   Notifier
	dispatch Dispatcher
	onStored func(created bool)
	logger   *zap.Logger
	now      func() time.Time
}

// NewBulletinService wires the service. dispatch and onStored may be nil.
func NewBulletinService(
	repo repository.BulletinRepository,
	advisor domain.Advisor,
	toasts Notifier,
	dispatch Dispatcher,
	onStored func(created bool),
	logger *zap.Logger,
) *BulletinService {
	if advisor == nil {
		advisor = domain.StaticAdvisor{}
	}
	if onStored == nil {
		onStored = func(bool) {}
	}
	return &BulletinService{
		repo:     repo,
		advisor:  advisor,
		toasts:   toasts,
		dispatch: dispatch,
		onStored: onStored,
		logger:   logger,
		now:      time.Now,
	}
}

// Publish validates and stores a daily summary, then forwards the derived
// bulletin for printing. The outcome is always surfaced as a toast: invalid
// or unsaved summaries raise a destructive one.
//
// created is false when a summary for the same zone and date was replaced.
func (s *BulletinService) Publish(ctx context.Context, summary *domain.DailySummary) (*domain.Bulletin, bool, error) {
	if err := summary.Validate(); err != nil {
		s.toasts.Enqueue(domain.ToastRequest{
			Title:       "Bulletin rejeté",
			Description: domain.FallbackNotice,
			Variant:     domain.VariantDestructive,
		})
		return nil, false, err
	}

	summary.Zone = summary.ZoneOrDefault()
	if summary.PublishedAt.IsZero() {
		summary.PublishedAt = s.now().UTC()
	}

	created, err := s.repo.Upsert(ctx, summary)
	if err != nil {
		s.toasts.Enqueue(domain.ToastRequest{
			Title:       "Échec de l'enregistrement du bulletin",
			Description: fmt.Sprintf("%s, %s", summary.Zone, summary.Date),
			Variant:     domain.VariantDestructive,
		})
		return nil, false, fmt.Errorf("persist bulletin: %w", err)
	}
	s.onStored(created)

	b, err := domain.BuildBulletin(summary, s.advisor)
	if err != nil {
		return nil, created, err
	}

	s.submit(b)

	s.toasts.Enqueue(domain.ToastRequest{
		Title:       "Bulletin publié",
		Description: fmt.Sprintf("%s, %s : AQI %d (%s)", b.Zone, b.Date, b.CityMaxAQI, b.Label),
	})

	s.logger.Info("bulletin published",
		zap.String("zone", b.Zone),
		zap.String("date", b.Date),
		zap.Int("city_max_aqi", b.CityMaxAQI),
		zap.Bool("created", created),
	)
	return b, created, nil
}

// Get returns the bulletin for a zone and date. An empty zone selects the
// default zone.
func (s *BulletinService) Get(ctx context.Context, zone, date string) (*domain.Bulletin, error) {
	summary, err := s.repo.GetByDate(ctx, zoneOrDefault(zone), date)
	if err != nil {
		return nil, err
	}
	return domain.BuildBulletin(summary, s.advisor)
}

// View is like Get but substitutes the fallback notice when the stored
// summary cannot be rendered. Only a missing summary is reported as an error.
func (s *BulletinService) View(ctx context.Context, zone, date string) (domain.BulletinView, error) {
	summary, err := s.repo.GetByDate(ctx, zoneOrDefault(zone), date)
	if err != nil {
		return domain.BulletinView{}, err
	}
	return domain.View(summary, s.advisor), nil
}

// Latest returns the most recently published bulletin of a zone.
func (s *BulletinService) Latest(ctx context.Context, zone string) (*domain.Bulletin, error) {
	summary, err := s.repo.Latest(ctx, zoneOrDefault(zone))
	if err != nil {
		return nil, err
	}
	return domain.BuildBulletin(summary, s.advisor)
}

// LatestPerZone returns the newest bulletin of every zone.
func (s *BulletinService) LatestPerZone(ctx context.Context) ([]*domain.Bulletin, error) {
	summaries, err := s.repo.LatestPerZone(ctx)
	if err != nil {
		return nil, fmt.Errorf("latest per zone: %w", err)
	}
	result := make([]*domain.Bulletin, 0, len(summaries))
	for _, summary := range summaries {
		b, err := domain.BuildBulletin(summary, s.advisor)
		if err != nil {
			s.logger.Warn("skipping unrenderable bulletin",
				zap.String("zone", summary.Zone), zap.String("date", summary.Date), zap.Error(err))
			continue
		}
		result = append(result, b)
	}
	return result, nil
}

func (s *BulletinService) List(ctx context.Context, filter domain.BulletinFilter) ([]*domain.DailySummary, int, error) {
	return s.repo.List(ctx, filter)
}

// ---- private helpers ----

// submit forwards b to the dispatcher. A full dispatch buffer is not a
// publishing failure: the bulletin is stored and can be fetched by the
// rendering surface on demand.
func (s *BulletinService) submit(b *domain.Bulletin) {
	if s.dispatch == nil {
		return
	}
	if err := s.dispatch.Submit(b); err != nil {
		s.logger.Warn("bulletin not forwarded for printing",
			zap.String("zone", b.Zone), zap.String("date", b.Date), zap.Error(err))
		if errors.Is(err, domain.ErrDispatchFull) {
			s.toasts.Enqueue(domain.ToastRequest{
				Title:       "Impression différée",
				Description: fmt.Sprintf("%s, %s", b.Zone, b.Date),
				Variant:     domain.VariantDestructive,
			})
		}
	}
}

func zoneOrDefault(zone string) string {
	if zone == "" {
		return domain.DefaultZone
	}
	return zone
}

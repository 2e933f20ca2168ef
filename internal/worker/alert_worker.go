package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ricirt/aqi-bulletin/internal/domain"
	"github.com/ricirt/aqi-bulletin/internal/service"
)

// BulletinSource is the read side the alert worker polls.
// *service.BulletinService satisfies it.
type BulletinSource interface {
	LatestPerZone(ctx context.Context) ([]*domain.Bulletin, error)
}

// AlertWorker polls the newest bulletin of every zone and raises a
// destructive toast when its city AQI reaches the threshold.
//
// Each (zone, date) pair alerts at most once while it stays the newest
// bulletin of its zone.
type AlertWorker struct {
	source    BulletinSource
	toasts    service.Notifier
	threshold int
	interval  time.Duration
	onAlert   func(domain.Category)
	logger    *zap.Logger

	raised map[string]bool
}

func NewAlertWorker(
	source BulletinSource,
	toasts service.Notifier,
	threshold int,
	interval time.Duration,
	onAlert func(domain.Category),
	logger *zap.Logger,
) *AlertWorker {
	if onAlert == nil {
		onAlert = func(domain.Category) {}
	}
	return &AlertWorker{
		source: source, toasts: toasts,
		threshold: threshold, interval: interval,
		onAlert: onAlert, logger: logger,
		raised: make(map[string]bool),
	}
}

// Run ticks every interval and raises alerts for bulletins over the threshold.
// Stops cleanly when ctx is cancelled.
func (aw *AlertWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(aw.interval)
	defer ticker.Stop()

	aw.logger.Info("alert worker started",
		zap.Duration("interval", aw.interval), zap.Int("threshold", aw.threshold))

	aw.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			aw.logger.Info("alert worker stopping")
			return
		case <-ticker.C:
			aw.poll(ctx)
		}
	}
}

func (aw *AlertWorker) poll(ctx context.Context) {
	bulletins, err := aw.source.LatestPerZone(ctx)
	if err != nil {
		aw.logger.Error("alert poll error", zap.Error(err))
		return
	}

	current := make(map[string]bool, len(bulletins))
	raised := 0
	for _, b := range bulletins {
		k := b.Zone + "|" + b.Date
		current[k] = true
		if b.CityMaxAQI < aw.threshold || aw.raised[k] {
			continue
		}

		aw.toasts.Enqueue(domain.ToastRequest{
			Title:       fmt.Sprintf("Alerte qualité de l'air : %s", b.Label),
			Description: fmt.Sprintf("%s, %s : AQI %d. %s", b.Zone, b.Date, b.CityMaxAQI, b.Advice.General),
			Variant:     domain.VariantDestructive,
		})
		aw.onAlert(b.Category)
		aw.raised[k] = true
		raised++
	}

	// forget pairs that are no longer the newest bulletin of their zone
	for k := range aw.raised {
		if !current[k] {
			delete(aw.raised, k)
		}
	}

	if raised > 0 {
		aw.logger.Info("raised air quality alerts", zap.Int("count", raised))
	}
}

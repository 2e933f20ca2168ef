package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ricirt/aqi-bulletin/internal/domain"
	"github.com/ricirt/aqi-bulletin/internal/provider"
	"github.com/ricirt/aqi-bulletin/internal/ratelimiter"
	"github.com/ricirt/aqi-bulletin/internal/service"
)

// Worker is a single goroutine that pulls bulletins from the dispatch buffer,
// applies the per-zone rate limit, delivers to the print surface and retries
// with backoff on failure.
type Worker struct {
	id      int
	jobs    <-chan *domain.Bulletin
	surface provider.PrintSurface
	limiter *ratelimiter.KeyedLimiters[string]
	toasts  service.Notifier
	backoff []time.Duration
	logger  *zap.Logger

	onDelivered func(latency time.Duration)
	onFailed    func()
}

// NewWorker constructs a worker. onDelivered and onFailed are optional (nil = no-op).
func NewWorker(
	id int,
	jobs <-chan *domain.Bulletin,
	surface provider.PrintSurface,
	limiter *ratelimiter.KeyedLimiters[string],
	toasts service.Notifier,
	backoff []time.Duration,
	logger *zap.Logger,
	onDelivered func(time.Duration),
	onFailed func(),
) *Worker {
	if onDelivered == nil {
		onDelivered = func(time.Duration) {}
	}
	if onFailed == nil {
		onFailed = func() {}
	}
	return &Worker{
		id: id, jobs: jobs, surface: surface, limiter: limiter, toasts: toasts,
		backoff: backoff, logger: logger,
		onDelivered: onDelivered, onFailed: onFailed,
	}
}

// Run blocks until ctx is cancelled, delivering one bulletin per iteration.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("dispatch worker started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("dispatch worker stopping")
			return
		case b := <-w.jobs:
			w.process(ctx, b)
		}
	}
}

func (w *Worker) process(ctx context.Context, b *domain.Bulletin) {
	start := time.Now()
	log := w.logger.With(
		zap.String("zone", b.Zone),
		zap.String("date", b.Date),
	)

	// attempt 0 is the first delivery; attempt N waits backoff[N-1] first.
	var lastErr error
	for attempt := 0; attempt <= len(w.backoff); attempt++ {
		if attempt > 0 && !sleep(ctx, w.backoff[attempt-1]) {
			return
		}

		if err := w.limiter.Wait(ctx, b.Zone); err != nil {
			// ctx cancelled while waiting: worker is shutting down.
			return
		}

		resp, err := w.surface.Deliver(ctx, b)
		if err == nil {
			elapsed := time.Since(start)
			w.onDelivered(elapsed)
			log.Info("bulletin delivered for printing",
				zap.String("job_id", resp.JobID),
				zap.Int("attempt", attempt),
				zap.Duration("latency", elapsed),
			)
			return
		}
		if ctx.Err() != nil {
			return
		}

		lastErr = err
		log.Warn("print surface delivery failed", zap.Error(err), zap.Int("attempt", attempt))
	}

	w.onFailed()
	log.Error("bulletin delivery abandoned", zap.Error(lastErr))
	w.toasts.Enqueue(domain.ToastRequest{
		Title:       "Impression impossible",
		Description: fmt.Sprintf("%s, %s", b.Zone, b.Date),
		Variant:     domain.VariantDestructive,
	})
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

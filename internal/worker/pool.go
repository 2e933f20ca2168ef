package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ricirt/aqi-bulletin/internal/config"
	"github.com/ricirt/aqi-bulletin/internal/domain"
	"github.com/ricirt/aqi-bulletin/internal/provider"
	"github.com/ricirt/aqi-bulletin/internal/ratelimiter"
	"github.com/ricirt/aqi-bulletin/internal/service"
)

// MetricHooks carries the metric callback functions injected by main.
// Using a struct keeps the constructor signature clean.
type MetricHooks struct {
	OnDelivered func(latency time.Duration)
	OnFailed    func()
}

// Dispatcher owns the buffered hand-off between publishing and the
// printable-rendering surface, and the pool of workers draining it.
type Dispatcher struct {
	jobs    chan *domain.Bulletin
	workers []*Worker
	wg      sync.WaitGroup
	logger  *zap.Logger
}

// NewDispatcher creates cfg.DispatchWorkers identical workers sharing one
// buffer of cfg.DispatchBuffer bulletins.
func NewDispatcher(
	cfg *config.Config,
	surface provider.PrintSurface,
	limiter *ratelimiter.KeyedLimiters[string],
	toasts service.Notifier,
	logger *zap.Logger,
	hooks MetricHooks,
) *Dispatcher {
	size := cfg.DispatchBuffer
	if size <= 0 {
		size = 1
	}
	n := cfg.DispatchWorkers
	if n <= 0 {
		n = 1
	}

	d := &Dispatcher{
		jobs:    make(chan *domain.Bulletin, size),
		workers: make([]*Worker, n),
		logger:  logger,
	}
	for i := range d.workers {
		d.workers[i] = NewWorker(
			i, d.jobs, surface, limiter, toasts,
			cfg.DispatchBackoff,
			logger.With(zap.Int("worker_id", i)),
			hooks.OnDelivered,
			hooks.OnFailed,
		)
	}
	return d
}

// Submit queues b for delivery without blocking. If the buffer is full
// ErrDispatchFull is returned immediately rather than stalling the publisher.
func (d *Dispatcher) Submit(b *domain.Bulletin) error {
	select {
	case d.jobs <- b:
		return nil
	default:
		return domain.ErrDispatchFull
	}
}

// Pending is the number of bulletins waiting for a worker.
func (d *Dispatcher) Pending() int {
	return len(d.jobs)
}

// Start launches all workers as goroutines.
// Cancelling ctx triggers a graceful shutdown of the entire pool.
func (d *Dispatcher) Start(ctx context.Context) {
	for _, w := range d.workers {
		d.wg.Add(1)
		go func(w *Worker) {
			defer d.wg.Done()
			w.Run(ctx)
		}(w)
	}
}

// Wait blocks until every worker has returned after ctx is cancelled.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
	if n := len(d.jobs); n > 0 {
		d.logger.Warn("bulletins left undelivered at shutdown", zap.Int("count", n))
	}
}

// compile-time check that Dispatcher implements service.Dispatcher
var _ service.Dispatcher = (*Dispatcher)(nil)

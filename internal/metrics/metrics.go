package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ricirt/aqi-bulletin/internal/domain"
	"github.com/ricirt/aqi-bulletin/internal/queue"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	ToastsEnqueued    *prometheus.CounterVec
	ToastsRemoved     *prometheus.CounterVec
	ToastLifetime     *prometheus.HistogramVec
	ToastsActive      prometheus.Gauge
	BulletinsStored   *prometheus.CounterVec
	DispatchDelivered prometheus.Counter
	DispatchFailed    prometheus.Counter
	DispatchLatency   prometheus.Histogram
	AlertsRaised      *prometheus.CounterVec
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ToastsEnqueued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "toasts_enqueued_total",
			Help: "Total number of toasts added to the queue.",
		}, []string{"variant"}),

		ToastsRemoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "toasts_removed_total",
			Help: "Total number of toasts removed from the queue, by reason.",
		}, []string{"reason"}),

		ToastLifetime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "toast_lifetime_seconds",
			Help:    "Time a toast spent in the active set.",
			Buckets: []float64{.1, .5, 1, 2, 3, 5, 10, 30},
		}, []string{"reason"}),

		ToastsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "toasts_active",
			Help: "Current number of active toasts.",
		}),

		BulletinsStored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bulletins_stored_total",
			Help: "Daily summaries stored, split by created or replaced.",
		}, []string{"outcome"}),

		DispatchDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bulletin_dispatch_delivered_total",
			Help: "Bulletins accepted by the printable-rendering surface.",
		}),

		DispatchFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bulletin_dispatch_failed_total",
			Help: "Bulletins that could not be delivered after all retries.",
		}),

		DispatchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bulletin_dispatch_seconds",
			Help:    "Latency from dequeue to print surface acknowledgement.",
			Buckets: prometheus.DefBuckets,
		}),

		AlertsRaised: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aqi_alerts_raised_total",
			Help: "Alert toasts raised for bulletins above the threshold.",
		}, []string{"category"}),
	}

	reg.MustRegister(
		m.ToastsEnqueued,
		m.ToastsRemoved,
		m.ToastLifetime,
		m.ToastsActive,
		m.BulletinsStored,
		m.DispatchDelivered,
		m.DispatchFailed,
		m.DispatchLatency,
		m.AlertsRaised,
	)

	return m
}

// QueueHooks returns the callbacks expected by queue.WithHooks.
func (m *Metrics) QueueHooks() queue.Hooks {
	return queue.Hooks{
		OnEnqueued: func(v domain.Variant) {
			m.ToastsEnqueued.WithLabelValues(string(v)).Inc()
		},
		OnRemoved: func(reason domain.RemovalReason, lifetime time.Duration) {
			m.ToastsRemoved.WithLabelValues(string(reason)).Inc()
			m.ToastLifetime.WithLabelValues(string(reason)).Observe(lifetime.Seconds())
		},
		OnDepth: func(active int) {
			m.ToastsActive.Set(float64(active))
		},
	}
}

// DispatchHooks returns the metric callback functions expected by
// worker.MetricHooks. Centralises the prometheus calls so the worker stays
// import-free.
func (m *Metrics) DispatchHooks() (
	onDelivered func(latency time.Duration),
	onFailed func(),
) {
	onDelivered = func(latency time.Duration) {
		m.DispatchDelivered.Inc()
		m.DispatchLatency.Observe(latency.Seconds())
	}
	onFailed = func() {
		m.DispatchFailed.Inc()
	}
	return
}

// OnStored records the outcome of a bulletin upsert.
func (m *Metrics) OnStored(created bool) {
	outcome := "replaced"
	if created {
		outcome = "created"
	}
	m.BulletinsStored.WithLabelValues(outcome).Inc()
}

// OnAlert records an alert toast for category c.
func (m *Metrics) OnAlert(c domain.Category) {
	m.AlertsRaised.WithLabelValues(string(c)).Inc()
}

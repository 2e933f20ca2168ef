package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/ricirt/aqi-bulletin/internal/domain"
	"github.com/ricirt/aqi-bulletin/internal/metrics"
	"github.com/ricirt/aqi-bulletin/internal/queue"
)

func TestQueueHooks_TrackToastLifecycle(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	q := queue.New(time.Hour, zap.NewNop(), queue.WithHooks(m.QueueHooks()))

	id := q.Enqueue(domain.ToastRequest{Variant: domain.VariantDestructive})
	q.Enqueue(domain.ToastRequest{})

	if got := testutil.ToFloat64(m.ToastsActive); got != 2 {
		t.Fatalf("expected 2 active toasts, got %v", got)
	}
	if got := testutil.ToFloat64(m.ToastsEnqueued.WithLabelValues("destructive")); got != 1 {
		t.Fatalf("expected 1 destructive toast, got %v", got)
	}

	q.Dismiss(id)
	q.Close()

	if got := testutil.ToFloat64(m.ToastsRemoved.WithLabelValues("dismissed")); got != 1 {
		t.Fatalf("expected 1 dismissed toast, got %v", got)
	}
	if got := testutil.ToFloat64(m.ToastsRemoved.WithLabelValues("closed")); got != 1 {
		t.Fatalf("expected 1 closed toast, got %v", got)
	}
	if got := testutil.ToFloat64(m.ToastsActive); got != 0 {
		t.Fatalf("expected 0 active toasts, got %v", got)
	}
}

func TestDispatchHooks(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	onDelivered, onFailed := m.DispatchHooks()

	onDelivered(120 * time.Millisecond)
	onFailed()
	onFailed()

	if got := testutil.ToFloat64(m.DispatchDelivered); got != 1 {
		t.Fatalf("expected 1 delivered, got %v", got)
	}
	if got := testutil.ToFloat64(m.DispatchFailed); got != 2 {
		t.Fatalf("expected 2 failed, got %v", got)
	}
}

func TestOnStored(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	m.OnStored(true)
	m.OnStored(false)
	m.OnStored(false)

	if got := testutil.ToFloat64(m.BulletinsStored.WithLabelValues("replaced")); got != 2 {
		t.Fatalf("expected 2 replaced, got %v", got)
	}
}

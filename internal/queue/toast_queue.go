package queue

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ricirt/aqi-bulletin/internal/domain"
)

// DefaultDuration is how long a toast stays visible unless configured otherwise.
const DefaultDuration = 3 * time.Second

// Hooks carries the metric callbacks injected by main.
// Any of them may be nil.
type Hooks struct {
	OnEnqueued func(variant domain.Variant)
	OnRemoved  func(reason domain.RemovalReason, lifetime time.Duration)
	OnDepth    func(active int)
}

// Option customises a ToastQueue.
type Option func(*ToastQueue)

func WithScheduler(s Scheduler) Option { return func(q *ToastQueue) { q.sched = s } }

func WithClock(now func() time.Time) Option { return func(q *ToastQueue) { q.now = now } }

func WithIDGenerator(gen func() string) Option { return func(q *ToastQueue) { q.newID = gen } }

func WithHooks(h Hooks) Option { return func(q *ToastQueue) { q.hooks = h } }

type entry struct {
	toast domain.Toast
	timer Timer
}

// ToastQueue holds the active toasts in insertion order and removes each one
// after a fixed duration.
//
// The queue is unbounded: a burst of Enqueue calls keeps that many timers
// pending. Callers that face untrusted input throttle before enqueueing.
//
// Every mutation happens under mu, so timer callbacks, HTTP handlers and
// workers observe one serial history. Subscribers are told about each change
// with latest-wins delivery: a slow reader skips intermediate sets but never
// blocks the queue.
type ToastQueue struct {
	mu      sync.Mutex
	entries []entry
	subs    map[int]chan []domain.Toast
	nextSub int
	closed  bool

	duration time.Duration
	sched    Scheduler
	now      func() time.Time
	newID    func() string
	hooks    Hooks
	logger   *zap.Logger
}

// New returns an empty queue whose entries expire after duration.
// A non-positive duration selects DefaultDuration.
func New(duration time.Duration, logger *zap.Logger, opts ...Option) *ToastQueue {
	if duration <= 0 {
		duration = DefaultDuration
	}
	q := &ToastQueue{
		subs:     make(map[int]chan []domain.Toast),
		duration: duration,
		sched:    wallScheduler{},
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
		logger:   logger,
	}
	for _, opt := range opts {
		opt(q)
	}
	if q.logger == nil {
		q.logger = zap.NewNop()
	}
	return q
}

// Duration is the lifetime given to every toast.
func (q *ToastQueue) Duration() time.Duration { return q.duration }

// Enqueue appends a toast and schedules its removal. It never fails: missing
// or unknown fields are defaulted. The returned id identifies the toast for
// Dismiss. After Close, an id is still returned but nothing is stored.
func (q *ToastQueue) Enqueue(req domain.ToastRequest) string {
	req = req.Normalize()

	q.mu.Lock()
	defer q.mu.Unlock()

	id := q.newID()
	for q.indexOf(id) >= 0 {
		id = q.newID()
	}

	if q.closed {
		q.logger.Debug("toast dropped: queue closed", zap.String("id", id))
		return id
	}

	now := q.now().UTC()
	t := domain.Toast{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Variant:     req.Variant,
		CreatedAt:   now,
		ExpiresAt:   now.Add(q.duration),
	}
	timer := q.sched.AfterFunc(q.duration, func() { q.remove(id, domain.RemovedExpired) })
	q.entries = append(q.entries, entry{toast: t, timer: timer})

	q.logger.Debug("toast enqueued",
		zap.String("id", id),
		zap.String("variant", string(t.Variant)),
		zap.Int("active", len(q.entries)),
	)
	if q.hooks.OnEnqueued != nil {
		q.hooks.OnEnqueued(t.Variant)
	}
	q.changed()
	return id
}

// Dismiss removes a toast before it expires and cancels its timer.
// It reports whether the toast was still active.
func (q *ToastQueue) Dismiss(id string) bool {
	return q.remove(id, domain.RemovedDismissed)
}

// Toasts returns a snapshot of the active toasts, oldest first.
func (q *ToastQueue) Toasts() []domain.Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.snapshot()
}

// Len is the number of active toasts.
func (q *ToastQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Subscribe returns a channel that receives the current set immediately and
// again after every change. The channel is closed by cancel or by Close.
func (q *ToastQueue) Subscribe() (<-chan []domain.Toast, func()) {
	ch := make(chan []domain.Toast, 1)

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		close(ch)
		return ch, func() {}
	}

	key := q.nextSub
	q.nextSub++
	q.subs[key] = ch
	ch <- q.snapshot()

	cancel := func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		if sub, ok := q.subs[key]; ok {
			delete(q.subs, key)
			close(sub)
		}
	}
	return ch, cancel
}

// Close stops every pending timer, drops the active toasts and closes all
// subscriber channels. It is safe to call more than once.
func (q *ToastQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true

	now := q.now()
	for _, e := range q.entries {
		e.timer.Stop()
		if q.hooks.OnRemoved != nil {
			q.hooks.OnRemoved(domain.RemovedClosed, now.Sub(e.toast.CreatedAt))
		}
	}
	pending := len(q.entries)
	q.entries = nil
	if q.hooks.OnDepth != nil {
		q.hooks.OnDepth(0)
	}

	for key, ch := range q.subs {
		close(ch)
		delete(q.subs, key)
	}

	q.logger.Info("toast queue closed", zap.Int("cancelled_timers", pending))
}

// remove is idempotent: an id that is no longer active is ignored.
func (q *ToastQueue) remove(id string, reason domain.RemovalReason) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	i := q.indexOf(id)
	if i < 0 {
		return false
	}
	e := q.entries[i]
	if reason != domain.RemovedExpired {
		e.timer.Stop()
	}
	q.entries = append(q.entries[:i], q.entries[i+1:]...)

	q.logger.Debug("toast removed",
		zap.String("id", id),
		zap.String("reason", string(reason)),
		zap.Int("active", len(q.entries)),
	)
	if q.hooks.OnRemoved != nil {
		q.hooks.OnRemoved(reason, q.now().Sub(e.toast.CreatedAt))
	}
	q.changed()
	return true
}

func (q *ToastQueue) indexOf(id string) int {
	for i, e := range q.entries {
		if e.toast.ID == id {
			return i
		}
	}
	return -1
}

func (q *ToastQueue) snapshot() []domain.Toast {
	out := make([]domain.Toast, len(q.entries))
	for i, e := range q.entries {
		out[i] = e.toast
	}
	return out
}

// changed must be called with mu held. Each subscriber channel has a single
// slot and q is its only writer, so draining a stale set always makes room.
func (q *ToastQueue) changed() {
	if q.hooks.OnDepth != nil {
		q.hooks.OnDepth(len(q.entries))
	}
	if len(q.subs) == 0 {
		return
	}
	set := q.snapshot()
	for _, ch := range q.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- set:
		default:
		}
	}
}

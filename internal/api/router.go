package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ricirt/aqi-bulletin/internal/api/handler"
	apimw "github.com/ricirt/aqi-bulletin/internal/api/middleware"
	"github.com/ricirt/aqi-bulletin/internal/domain"
	"github.com/ricirt/aqi-bulletin/internal/ratelimiter"
	"github.com/ricirt/aqi-bulletin/internal/service"
)

// Deps collects what the HTTP surface needs. DB and PendingDispatch may be nil.
type Deps struct {
	Bulletins       *service.BulletinService
	Toasts          handler.ToastQueue
	ToastLimiter    *ratelimiter.KeyedLimiters[domain.Variant]
	PendingDispatch handler.Counter
	DB              handler.Pinger
	Registry        prometheus.Gatherer
	Logger          *zap.Logger
}

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the HTTP surface area.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	// --- global middleware (applied to every route) ---
	r.Use(chimw.Recoverer)            // recover panics, return 500
	r.Use(chimw.RealIP)               // trust X-Forwarded-For / X-Real-IP
	r.Use(chimw.RequestSize(1 << 20)) // 1 MB max request body
	r.Use(apimw.CorrelationID)        // X-Correlation-ID inject / echo
	r.Use(apimw.RequestLogger(d.Logger))

	// --- handler instances ---
	th := handler.NewToastHandler(d.Toasts, d.ToastLimiter, d.Logger)
	bh := handler.NewBulletinHandler(d.Bulletins, d.Logger)
	mh := handler.NewMetricsHandler(d.Toasts.Len, d.PendingDispatch)
	hh := handler.NewHealthHandler(d.DB)

	// --- routes ---
	r.Get("/health", hh.Health)
	r.Get("/ready", hh.Ready)

	// Raw Prometheus scrape endpoint
	r.Handle("/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		// Toasts. /ws must be registered before /{id}.
		r.Get("/toasts/ws", th.Stream)
		r.Post("/toasts", th.Create)
		r.Get("/toasts", th.List)
		r.Delete("/toasts/{id}", th.Dismiss)

		// Bulletins. Dates contain slashes, so they travel as query parameters.
		r.Put("/bulletins", bh.Publish)
		r.Get("/bulletins", bh.List)
		r.Get("/bulletins/latest", bh.Latest)
		r.Get("/bulletins/view", bh.View)

		// JSON metrics snapshot
		r.Get("/metrics", mh.GetMetrics)
	})

	return r
}

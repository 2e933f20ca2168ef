package handler

import (
	"net/http"
)

// Counter reports a current depth. *queue.ToastQueue (Len) and
// *worker.Dispatcher (Pending) are adapted to it in the router.
type Counter func() int

// MetricsHandler serves a human-readable JSON snapshot.
// Raw Prometheus metrics (counters, histograms) are available at /metrics
// via promhttp.Handler and are separate from this endpoint.
type MetricsHandler struct {
	activeToasts    Counter
	pendingDispatch Counter
}

// NewMetricsHandler accepts a nil pendingDispatch when dispatch is disabled.
func NewMetricsHandler(activeToasts, pendingDispatch Counter) *MetricsHandler {
	return &MetricsHandler{activeToasts: activeToasts, pendingDispatch: pendingDispatch}
}

// GetMetrics handles GET /api/v1/metrics
//
// @Summary  Real-time depth snapshot
// @Tags     metrics
// @Produce  json
// @Success  200  {object}  map[string]any
// @Router   /api/v1/metrics [get]
func (h *MetricsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"active_toasts": h.activeToasts(),
	}
	if h.pendingDispatch != nil {
		body["pending_dispatch"] = h.pendingDispatch()
	}
	respondJSON(w, http.StatusOK, body)
}

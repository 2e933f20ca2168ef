package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	apimw "github.com/ricirt/aqi-bulletin/internal/api/middleware"
	"github.com/ricirt/aqi-bulletin/internal/domain"
	"github.com/ricirt/aqi-bulletin/internal/ratelimiter"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

// ToastQueue is the queue surface the handler needs.
// *queue.ToastQueue satisfies it.
type ToastQueue interface {
	Enqueue(req domain.ToastRequest) string
	Dismiss(id string) bool
	Toasts() []domain.Toast
	Len() int
	Subscribe() (<-chan []domain.Toast, func())
	Duration() time.Duration
}

// ToastSet is the frame pushed to live subscribers.
type ToastSet struct {
	Toasts []domain.Toast `json:"toasts"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // the bulletin page may be served from a different origin
	},
}

// ToastHandler exposes the toast queue over HTTP and WebSocket.
type ToastHandler struct {
	q       ToastQueue
	limiter *ratelimiter.KeyedLimiters[domain.Variant]
	logger  *zap.Logger
}

func NewToastHandler(q ToastQueue, limiter *ratelimiter.KeyedLimiters[domain.Variant], logger *zap.Logger) *ToastHandler {
	return &ToastHandler{q: q, limiter: limiter, logger: logger}
}

// Create handles POST /api/v1/toasts
//
// Every field is optional and an empty body is accepted. Fields of the wrong
// type are ignored and unknown variants are treated as "default"; only a body
// that is not a JSON object is rejected.
//
// @Summary  Enqueue a toast
// @Tags     toasts
// @Accept   json
// @Produce  json
// @Param    body  body      domain.ToastRequest  false  "Toast fields"
// @Success  201   {object}  map[string]any
// @Failure  429   {object}  map[string]string
// @Router   /api/v1/toasts [post]
func (h *ToastHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.ToastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "body must be a JSON object")
		return
	}
	req = req.Normalize()

	if !h.limiter.Allow(req.Variant) {
		h.logger.Warn("toast rejected by rate limiter",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.String("variant", string(req.Variant)),
		)
		mapError(w, domain.ErrRateLimited)
		return
	}

	id := h.q.Enqueue(req)
	respondJSON(w, http.StatusCreated, map[string]any{
		"id":          id,
		"variant":     req.Variant,
		"duration_ms": h.q.Duration().Milliseconds(),
	})
}

// List handles GET /api/v1/toasts
//
// @Summary  Current set of active toasts, oldest first
// @Tags     toasts
// @Produce  json
// @Success  200  {object}  map[string]any
// @Router   /api/v1/toasts [get]
func (h *ToastHandler) List(w http.ResponseWriter, r *http.Request) {
	toasts := h.q.Toasts()
	respondJSON(w, http.StatusOK, map[string]any{
		"data":  toasts,
		"total": len(toasts),
	})
}

// Dismiss handles DELETE /api/v1/toasts/{id}
//
// @Summary  Remove a toast before it expires
// @Tags     toasts
// @Param    id   path  string  true  "Toast ID"
// @Success  204
// @Failure  404  {object}  map[string]string
// @Router   /api/v1/toasts/{id} [delete]
func (h *ToastHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	if !h.q.Dismiss(chi.URLParam(r, "id")) {
		mapError(w, domain.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stream handles GET /api/v1/toasts/ws
//
// The connection receives the current set on connect and a new ToastSet
// frame after every change. Client frames are read only to detect closure.
func (h *ToastHandler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error response.
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	log := h.logger.With(zap.String("correlation_id", apimw.GetCorrelationID(r.Context())))
	log.Debug("toast stream opened")

	sets, cancel := h.q.Subscribe()
	defer cancel()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			log.Debug("toast stream closed by client")
			return
		case <-r.Context().Done():
			return
		case set, ok := <-sets:
			if !ok {
				// queue torn down
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
					time.Now().Add(wsWriteWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(ToastSet{Toasts: set}); err != nil {
				log.Debug("toast stream write failed", zap.Error(err))
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}

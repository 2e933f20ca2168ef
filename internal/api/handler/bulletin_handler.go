package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	apimw "github.com/ricirt/aqi-bulletin/internal/api/middleware"
	"github.com/ricirt/aqi-bulletin/internal/domain"
	"github.com/ricirt/aqi-bulletin/internal/service"
)

// BulletinHandler handles daily summary intake and bulletin reads.
type BulletinHandler struct {
	svc    *service.BulletinService
	logger *zap.Logger
}

func NewBulletinHandler(svc *service.BulletinService, logger *zap.Logger) *BulletinHandler {
	return &BulletinHandler{svc: svc, logger: logger}
}

// Publish handles PUT /api/v1/bulletins
//
// @Summary  Store a daily summary and publish its bulletin
// @Tags     bulletins
// @Accept   json
// @Produce  json
// @Param    body  body      domain.DailySummary  true  "Daily summary"
// @Success  201   {object}  domain.Bulletin
// @Success  200   {object}  domain.Bulletin      "Replaced an existing summary"
// @Failure  422   {object}  map[string]string
// @Router   /api/v1/bulletins [put]
func (h *BulletinHandler) Publish(w http.ResponseWriter, r *http.Request) {
	var summary domain.DailySummary
	if err := json.NewDecoder(r.Body).Decode(&summary); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	b, created, err := h.svc.Publish(r.Context(), &summary)
	if err != nil {
		h.logger.Warn("publish bulletin failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondJSON(w, status, b)
}

// View handles GET /api/v1/bulletins/view?date=&zone=
//
// A stored summary that cannot be rendered yields the fallback notice with
// 200, so the rendering surface always has something to display.
//
// @Summary  Bulletin view model for printing
// @Tags     bulletins
// @Produce  json
// @Param    date  query     string  true   "Bulletin date as published"
// @Param    zone  query     string  false  "Zone label (default ZONE DE BAMAKO)"
// @Success  200   {object}  domain.BulletinView
// @Failure  404   {object}  map[string]string
// @Router   /api/v1/bulletins/view [get]
func (h *BulletinHandler) View(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	date := q.Get("date")
	if date == "" {
		respondJSON(w, http.StatusOK, domain.BulletinView{Notice: domain.FallbackNotice})
		return
	}

	v, err := h.svc.View(r.Context(), q.Get("zone"), date)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, v)
}

// Latest handles GET /api/v1/bulletins/latest?zone=
//
// @Summary  Most recent bulletin of a zone
// @Tags     bulletins
// @Produce  json
// @Param    zone  query     string  false  "Zone label (default ZONE DE BAMAKO)"
// @Success  200   {object}  domain.Bulletin
// @Failure  404   {object}  map[string]string
// @Router   /api/v1/bulletins/latest [get]
func (h *BulletinHandler) Latest(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.Latest(r.Context(), r.URL.Query().Get("zone"))
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, b)
}

// List handles GET /api/v1/bulletins
//
// @Summary  List stored daily summaries, newest first
// @Tags     bulletins
// @Produce  json
// @Param    zone   query     string  false  "Filter by zone"
// @Param    page   query     int     false  "Page number (default 1)"
// @Param    limit  query     int     false  "Items per page (default 20, max 100)"
// @Success  200    {object}  map[string]any
// @Router   /api/v1/bulletins [get]
func (h *BulletinHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := parseBulletinFilter(r)
	summaries, total, err := h.svc.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list bulletins failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list bulletins")
		return
	}
	if summaries == nil {
		summaries = []*domain.DailySummary{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"data":  summaries,
		"total": total,
		"page":  filter.Page,
		"limit": filter.Limit,
	})
}

func parseBulletinFilter(r *http.Request) domain.BulletinFilter {
	q := r.URL.Query()
	filter := domain.BulletinFilter{Page: 1, Limit: 20}

	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		filter.Page = p
	}
	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 && l <= 100 {
		filter.Limit = l
	}
	if z := q.Get("zone"); z != "" {
		filter.Zone = &z
	}
	return filter
}

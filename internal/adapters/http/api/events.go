package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/okian/eventmatch/internal/domain/model"
	"github.com/okian/eventmatch/pkg/logger"
)

// eventsResponse lists catalog events.
type eventsResponse struct {
	Events []model.Event `json:"events"`
}

// EventLister is the slice of Dependencies the events handlers use.
type EventLister interface {
	Events(ctx context.Context) ([]model.Event, error)
	PopularEvents(ctx context.Context, limit int) ([]model.Recommendation, error)
}

// EventsHandler handles catalog requests.
type EventsHandler struct {
	deps   EventLister
	logger logger.Logger
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps EventLister, l logger.Logger) *EventsHandler {
	return &EventsHandler{deps: deps, logger: l}
}

// HandleList handles GET /events requests.
func (h *EventsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_events"
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	events, err := h.deps.Events(r.Context())
	if err != nil {
		fail(r.Context(), w, h.logger, Wrap(op, err), notInitMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, eventsResponse{Events: events})
}

// HandlePopular handles GET /popular-events?limit=N requests.
func (h *EventsHandler) HandlePopular(w http.ResponseWriter, r *http.Request) {
	const op = "api.popular_events"
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	ctx := r.Context()

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxRecommendLimit {
			fail(ctx, w, h.logger, NewKind(op, ErrBadRequest), msgLimitRange)
			return
		}
		limit = n
	}

	recs, err := h.deps.PopularEvents(ctx, limit)
	if err != nil {
		fail(ctx, w, h.logger, Wrap(op, err), notInitMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, recommendResponse{Recommendations: recs})
}

func notInitMessage(err error) string {
	if errors.Is(err, model.ErrNotInitialized) {
		return msgEngineNotInit
	}
	return ""
}

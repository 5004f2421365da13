package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/okian/eventmatch/internal/domain/model"
	"github.com/okian/eventmatch/pkg/logger"
)

// recommendRequest mirrors the OpenAPI schema for POST /recommend-events.
type recommendRequest struct {
	Skills           []string `json:"skills" validate:"required,min=1,dive,notblank"`
	UserID           string   `json:"user_id" validate:"omitempty,max=128"`
	Limit            int      `json:"limit" validate:"omitempty,reclimit"`
	AttendedEventIDs []string `json:"attended_event_ids" validate:"omitempty,max=500,dive,notblank"`
}

// recommendResponse wraps ranked events.
type recommendResponse struct {
	Recommendations []model.Recommendation `json:"recommendations"`
}

// Recommender is the slice of Dependencies the recommend handler uses.
type Recommender interface {
	Recommend(ctx context.Context, q model.RecommendQuery) ([]model.Recommendation, error)
}

// RecommendHandler handles recommendation requests.
type RecommendHandler struct {
	deps            Recommender
	validate        *validator.Validate
	logger          logger.Logger
	maxRequestBytes int64
}

// NewRecommendHandler creates a new recommend handler.
func NewRecommendHandler(deps Recommender, v *validator.Validate, l logger.Logger, maxRequestBytes int64) *RecommendHandler {
	return &RecommendHandler{deps: deps, validate: v, logger: l, maxRequestBytes: maxRequestBytes}
}

// HandleRecommend handles POST /recommend-events requests.
func (h *RecommendHandler) HandleRecommend(w http.ResponseWriter, r *http.Request) {
	const op = "api.recommend_events"
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	ctx := r.Context()

	var req recommendRequest
	if err := decodeJSON(w, r, h.maxRequestBytes, &req); err != nil {
		if errors.Is(err, ErrPayloadTooLarge) {
			fail(ctx, w, h.logger, WrapKind(op, ErrPayloadTooLarge, err), msgPayloadTooLarge)
			return
		}
		fail(ctx, w, h.logger, WrapKind(op, ErrBadRequest, err), msgInvalidJSON)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		fail(ctx, w, h.logger, WrapKind(op, ErrBadRequest, err), validationMessage(err))
		return
	}

	recs, err := h.deps.Recommend(ctx, model.RecommendQuery{
		UserID:           req.UserID,
		Skills:           req.Skills,
		AttendedEventIDs: req.AttendedEventIDs,
		Limit:            req.Limit,
	})
	if err != nil {
		msg := ""
		switch {
		case errors.Is(err, model.ErrNotInitialized):
			msg = msgEngineNotInit
		case errors.Is(err, model.ErrInvalidInput):
			msg = msgSkillsRequired
		}
		fail(ctx, w, h.logger, Wrap(op, err), msg)
		return
	}
	writeJSON(w, http.StatusOK, recommendResponse{Recommendations: recs})
}

func validationMessage(err error) string {
	field := invalidField(err)
	switch {
	case strings.HasPrefix(field, "Skills"):
		return msgSkillsRequired
	case field == "Limit":
		return msgLimitRange
	case field == "UserID":
		return "user_id is too long"
	case strings.HasPrefix(field, "AttendedEventIDs"):
		return "attended_event_ids must be non-blank ids"
	default:
		return ErrBadRequest.Error()
	}
}

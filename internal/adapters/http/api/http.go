// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/okian/eventmatch/internal/domain/model"
	"github.com/okian/eventmatch/pkg/logger"
)

// Default request limits.
const (
	defaultMaxRequestBytes = 1 << 20
	defaultMaxUploadBytes  = 10 << 20
	maxRecommendLimit      = 50
)

// Messages returned to clients for well-known failures.
const (
	msgResumeRequired    = "Resume text is required"
	msgResumeFile        = "Resume file is required"
	msgSkillsRequired    = "User skills are required"
	msgParserNotInit     = "Resume parser not initialized"
	msgEngineNotInit     = "Recommendation engine not initialized"
	msgInvalidJSON       = "Request body must be valid JSON"
	msgPayloadTooLarge   = "Request body too large"
	msgUnsupportedFormat = "Unsupported resume file type"
)

var msgLimitRange = fmt.Sprintf("limit must be between 1 and %d", maxRecommendLimit) //nolint:gochecknoglobals // derived message

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ParseResume(ctx context.Context, text string) (model.ParsedResume, error)
	ParseDocument(ctx context.Context, contentType, filename string, data []byte) (model.ParsedResume, error)
	Recommend(ctx context.Context, q model.RecommendQuery) ([]model.Recommendation, error)
	Events(ctx context.Context) ([]model.Event, error)
	PopularEvents(ctx context.Context, limit int) ([]model.Recommendation, error)
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithLogger sets the logger handlers report failures to.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxRequestBytes caps JSON request bodies.
func WithMaxRequestBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxRequestBytes = n
		}
	}
}

// WithMaxUploadBytes caps multipart résumé uploads.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	logger          logger.Logger
	maxRequestBytes int64
	maxUploadBytes  int64

	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	extractHandler   *ExtractHandler
	recommendHandler *RecommendHandler
	eventsHandler    *EventsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		maxRequestBytes: defaultMaxRequestBytes,
		maxUploadBytes:  defaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("api")
	}

	v := newValidator()
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.extractHandler = NewExtractHandler(deps, v, s.logger, s.maxRequestBytes, s.maxUploadBytes)
	s.recommendHandler = NewRecommendHandler(deps, v, s.logger, s.maxRequestBytes)
	s.eventsHandler = NewEventsHandler(deps, s.logger)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	route := func(path, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(path, RequestID(MetricsMiddleware(h, endpoint)))
	}

	route("/health", "health", s.healthHandler.HandleHealth)
	route("/metrics", "metrics", s.healthHandler.HandleMetrics)
	route("/stats", "stats", s.statsHandler.HandleStats)
	route("/extract-skills", "extract_skills", s.extractHandler.HandleExtract)
	route("/extract-skills/upload", "extract_skills_upload", s.extractHandler.HandleUpload)
	route("/recommend-events", "recommend_events", s.recommendHandler.HandleRecommend)
	route("/events", "events", s.eventsHandler.HandleList)
	route("/popular-events", "popular_events", s.eventsHandler.HandlePopular)
}

// errorResponse mirrors the OpenAPI error schema.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

// classify maps an error kind to an HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, "method_not_allowed"
	case errors.Is(err, ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, "payload_too_large"
	case errors.Is(err, model.ErrUnsupportedMedia):
		return http.StatusUnsupportedMediaType, "unsupported_media_type"
	case errors.Is(err, ErrBadRequest), errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, model.ErrNotInitialized):
		return http.StatusInternalServerError, "not_initialized"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// fail logs err and writes the classified error response. An empty msg
// exposes the error text.
func fail(ctx context.Context, w http.ResponseWriter, log logger.Logger, err error, msg string) {
	status, code := classify(err)
	if msg == "" {
		msg = err.Error()
	}
	fields := []logger.Field{
		logger.String("requestID", RequestIDFrom(ctx)),
		logger.Int("status", status),
		logger.Error(err),
	}
	if status >= http.StatusInternalServerError {
		log.Error(ctx, "request failed", fields...)
	} else {
		log.Debug(ctx, "request rejected", fields...)
	}
	writeError(w, status, code, msg)
}

// allowMethod writes a 405 with an Allow header unless r uses method.
func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed.Error())
	return false
}

// decodeJSON reads a size-limited JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, dst any) error {
	if r.ContentLength > limit {
		return ErrPayloadTooLarge
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return ErrPayloadTooLarge
		}
		return err
	}
	return nil
}

// customValidations are the tags registered on every request validator.
var customValidations = map[string]validator.Func{ //nolint:gochecknoglobals // fixed table
	"notblank": func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	},
	"reclimit": func(fl validator.FieldLevel) bool {
		n := fl.Field().Int()
		return n >= 1 && n <= maxRecommendLimit
	},
}

// newValidator builds the request validator. Registration only fails on a
// malformed tag table, so a failure panics.
func newValidator() *validator.Validate {
	v := validator.New()
	if err := registerValidations(v, customValidations); err != nil {
		panic(err)
	}
	return v
}

func registerValidations(v *validator.Validate, table map[string]validator.Func) error {
	for tag, fn := range table {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %q validation: %w", tag, err)
		}
	}
	return nil
}

// invalidField reports the struct field of the first validation failure.
func invalidField(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].StructField()
	}
	return ""
}

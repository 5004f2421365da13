package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/okian/eventmatch/internal/domain/model"
	"github.com/okian/eventmatch/pkg/logger"
)

// uploadField is the multipart field carrying the résumé file.
const uploadField = "resume"

// extractRequest mirrors the OpenAPI schema for POST /extract-skills.
type extractRequest struct {
	ResumeText string `json:"resume_text" validate:"notblank"`
}

// ResumeParser is the slice of Dependencies the extract handlers use.
type ResumeParser interface {
	ParseResume(ctx context.Context, text string) (model.ParsedResume, error)
	ParseDocument(ctx context.Context, contentType, filename string, data []byte) (model.ParsedResume, error)
}

// ExtractHandler handles résumé extraction requests.
type ExtractHandler struct {
	deps            ResumeParser
	validate        *validator.Validate
	logger          logger.Logger
	maxRequestBytes int64
	maxUploadBytes  int64
}

// NewExtractHandler creates a new extract handler.
func NewExtractHandler(deps ResumeParser, v *validator.Validate, l logger.Logger, maxRequestBytes, maxUploadBytes int64) *ExtractHandler {
	return &ExtractHandler{
		deps:            deps,
		validate:        v,
		logger:          l,
		maxRequestBytes: maxRequestBytes,
		maxUploadBytes:  maxUploadBytes,
	}
}

// HandleExtract handles POST /extract-skills requests.
func (h *ExtractHandler) HandleExtract(w http.ResponseWriter, r *http.Request) {
	const op = "api.extract_skills"
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	ctx := r.Context()

	var req extractRequest
	if err := decodeJSON(w, r, h.maxRequestBytes, &req); err != nil {
		h.decodeFailed(w, r, op, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		fail(ctx, w, h.logger, WrapKind(op, ErrBadRequest, err), msgResumeRequired)
		return
	}

	parsed, err := h.deps.ParseResume(ctx, req.ResumeText)
	if err != nil {
		h.parseFailed(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, parsed)
}

// HandleUpload handles POST /extract-skills/upload requests.
func (h *ExtractHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	const op = "api.extract_skills_upload"
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	ctx := r.Context()

	if r.ContentLength > h.maxUploadBytes {
		fail(ctx, w, h.logger, NewKind(op, ErrPayloadTooLarge), msgPayloadTooLarge)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	file, header, err := r.FormFile(uploadField)
	if err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.As(err, &tooBig):
			fail(ctx, w, h.logger, WrapKind(op, ErrPayloadTooLarge, err), msgPayloadTooLarge)
		default:
			fail(ctx, w, h.logger, WrapKind(op, ErrBadRequest, err), msgResumeFile)
		}
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		fail(ctx, w, h.logger, WrapKind(op, ErrBadRequest, err), msgResumeFile)
		return
	}

	parsed, err := h.deps.ParseDocument(ctx, header.Header.Get("Content-Type"), header.Filename, data)
	if err != nil {
		h.parseFailed(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, parsed)
}

func (h *ExtractHandler) decodeFailed(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, ErrPayloadTooLarge) {
		fail(r.Context(), w, h.logger, WrapKind(op, ErrPayloadTooLarge, err), msgPayloadTooLarge)
		return
	}
	fail(r.Context(), w, h.logger, WrapKind(op, ErrBadRequest, err), msgInvalidJSON)
}

func (h *ExtractHandler) parseFailed(w http.ResponseWriter, r *http.Request, op string, err error) {
	msg := ""
	switch {
	case errors.Is(err, model.ErrNotInitialized):
		msg = msgParserNotInit
	case errors.Is(err, model.ErrUnsupportedMedia):
		msg = msgUnsupportedFormat
	case errors.Is(err, model.ErrInvalidInput):
		msg = err.Error()
	}
	fail(r.Context(), w, h.logger, Wrap(op, err), msg)
}

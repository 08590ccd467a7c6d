package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/clintrovert/taskfeatures/internal/export"
	"github.com/clintrovert/taskfeatures/internal/features"
	"github.com/clintrovert/taskfeatures/internal/pipeline"
	"github.com/clintrovert/taskfeatures/internal/store"
	"github.com/clintrovert/taskfeatures/internal/temporal/workflows"
	"github.com/clintrovert/taskfeatures/pkg/types"
)

// FeatureRunner runs an extraction synchronously
type FeatureRunner interface {
	Run(ctx context.Context, orgs []string) ([]types.Feature, error)
}

// ExtractionStarter manages asynchronous extractions
type ExtractionStarter interface {
	StartExtraction(ctx context.Context, orgs []string) (string, error)
	ExtractionResult(ctx context.Context, workflowID string) (*workflows.ExtractionResult, error)
	CancelExtraction(ctx context.Context, workflowID string) error
}

// Handler handles REST API requests
type Handler struct {
	runner  FeatureRunner
	starter ExtractionStarter
	logger  *zap.Logger
}

// NewHandler creates a new REST handler. starter may be nil, in which case
// the extraction routes are not registered.
func NewHandler(runner FeatureRunner, starter ExtractionStarter, logger *zap.Logger) *Handler {
	return &Handler{
		runner:  runner,
		starter: starter,
		logger:  logger,
	}
}

// StartExtractionRequest represents a request to start an extraction
type StartExtractionRequest struct {
	Organizations []string `json:"organizations"`
}

// StartExtractionResponse represents the response from starting an extraction
type StartExtractionResponse struct {
	WorkflowID string `json:"workflow_id"`
	Status     string `json:"status"`
}

// ExtractionResponse represents a finished extraction
type ExtractionResponse struct {
	WorkflowID string          `json:"workflow_id"`
	Status     string          `json:"status"`
	Projects   int             `json:"projects"`
	Fetched    int             `json:"fetched"`
	Excluded   int             `json:"excluded"`
	Features   []types.Feature `json:"features"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// GetFeatures handles GET /features
func (h *Handler) GetFeatures(w http.ResponseWriter, r *http.Request) {
	format := export.FormatJSON
	if raw := r.URL.Query().Get("format"); raw != "" {
		parsed, err := export.ParseFormat(raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, err)
			return
		}
		format = parsed
	}

	out, err := h.runner.Run(r.Context(), r.URL.Query()["org"])
	if err != nil {
		h.logger.Error("failed to extract features", zap.Error(err))
		h.writeError(w, statusFor(err), err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, out, format); err != nil {
		h.logger.Error("failed to encode features", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	_, _ = w.Write(buf.Bytes())
}

// StartExtraction handles POST /extractions
func (h *Handler) StartExtraction(w http.ResponseWriter, r *http.Request) {
	var req StartExtractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	workflowID, err := h.starter.StartExtraction(r.Context(), req.Organizations)
	if err != nil {
		h.logger.Error("failed to start extraction", zap.Error(err))
		h.writeError(w, statusFor(err), err)
		return
	}

	h.writeJSON(w, http.StatusAccepted, StartExtractionResponse{
		WorkflowID: workflowID,
		Status:     "started",
	})
}

// GetExtraction handles GET /extractions/{id}, blocking until the workflow finishes
func (h *Handler) GetExtraction(w http.ResponseWriter, r *http.Request) {
	workflowID := chi.URLParam(r, "id")

	result, err := h.starter.ExtractionResult(r.Context(), workflowID)
	if err != nil {
		h.logger.Error("failed to get extraction", zap.String("workflow_id", workflowID), zap.Error(err))
		h.writeError(w, statusFor(err), err)
		return
	}

	resp := ExtractionResponse{WorkflowID: workflowID, Status: "completed", Features: []types.Feature{}}
	if result != nil {
		resp.Projects = result.Projects
		resp.Fetched = result.Fetched
		resp.Excluded = result.Excluded
		if result.Features != nil {
			resp.Features = result.Features
		}
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// CancelExtraction handles DELETE /extractions/{id}
func (h *Handler) CancelExtraction(w http.ResponseWriter, r *http.Request) {
	workflowID := chi.URLParam(r, "id")

	if err := h.starter.CancelExtraction(r.Context(), workflowID); err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RegisterRoutes registers REST API routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/features", h.GetFeatures)
	if h.starter == nil {
		return
	}
	r.Post("/extractions", h.StartExtraction)
	r.Get("/extractions/{id}", h.GetExtraction)
	r.Delete("/extractions/{id}", h.CancelExtraction)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("failed to write response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrNoOrganizations):
		return http.StatusBadRequest
	case errors.Is(err, features.ErrMalformedTask):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

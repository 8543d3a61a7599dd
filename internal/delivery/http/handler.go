package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/internal/models"
	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/internal/policy"
	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/internal/service"
	pkgErrors "github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/pkg/errors"
	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/pkg/logger"
)

type HTTPHandler struct {
	lifecycleService service.LifecycleService
	logger           logger.Logger
	validator        *validator.Validate
}

func NewHTTPHandler(lifecycleService service.LifecycleService, logger logger.Logger) *HTTPHandler {
	return &HTTPHandler{
		lifecycleService: lifecycleService,
		logger:           logger,
		validator:        validator.New(),
	}
}

// HealthCheck handles health check requests
func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "healthy",
		"service": "session-lifecycle-service",
		"version": "1.0.0",
	}
	h.respondJSON(w, http.StatusOK, response)
}

// GetSessionStatus returns the effective phase, countdown and join gate of
// one session.
func (h *HTTPHandler) GetSessionStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	if sessionID == "" {
		h.respondError(w, http.StatusBadRequest, "Session ID is required", nil)
		return
	}

	response, err := h.lifecycleService.GetStatus(r.Context(), sessionID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			h.respondError(w, http.StatusNotFound, "Session not found", err)
		case errors.Is(err, service.ErrChannelUnavailable):
			h.respondError(w, http.StatusServiceUnavailable, "Booking backend unavailable, try again", err)
		default:
			h.logger.Errorf(r.Context(), "delivery.http.HTTPHandler.GetSessionStatus: %v", err)
			h.respondError(w, http.StatusInternalServerError, "Failed to get session status", err)
		}
		return
	}

	h.respondJSON(w, http.StatusOK, response)
}

// JoinSession admits a participant into the session room when the join
// window is open.
func (h *HTTPHandler) JoinSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	if sessionID == "" {
		h.respondError(w, http.StatusBadRequest, "Session ID is required", nil)
		return
	}

	var req service.JoinSessionInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req.SessionID = sessionID

	if err := h.validator.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	response, err := h.lifecycleService.JoinSession(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			h.respondError(w, http.StatusNotFound, "Session not found", err)
		case errors.Is(err, service.ErrSessionTerminal):
			h.respondError(w, http.StatusGone, "Session has already ended", err)
		case errors.Is(err, service.ErrJoinNotAllowed):
			h.respondError(w, http.StatusForbidden, "Join window is not open yet", err)
		case errors.Is(err, service.ErrChannelUnavailable):
			h.respondError(w, http.StatusServiceUnavailable, "Realtime channel unavailable, try again", err)
		default:
			h.logger.Errorf(r.Context(), "delivery.http.HTTPHandler.JoinSession: %v", err)
			h.respondError(w, http.StatusInternalServerError, "Failed to join session", err)
		}
		return
	}

	h.respondJSON(w, http.StatusOK, response)
}

// RequestCancellation evaluates the notice-period policy and forwards the
// cancellation to the booking backend.
func (h *HTTPHandler) RequestCancellation(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	if sessionID == "" {
		h.respondError(w, http.StatusBadRequest, "Session ID is required", nil)
		return
	}

	var req service.RequestCancellationInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req.SessionID = sessionID

	if err := h.validator.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	response, err := h.lifecycleService.RequestCancellation(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			h.respondError(w, http.StatusNotFound, "Session not found", err)
		case errors.Is(err, service.ErrScheduleMissing):
			h.respondError(w, http.StatusConflict, "Session has no resolvable schedule", err)
		case errors.Is(err, service.ErrEvidenceRequired):
			h.respondError(w, http.StatusUnprocessableEntity, "This reason requires an evidence document", err)
		case errors.Is(err, models.ErrEvidenceTooLarge):
			h.respondError(w, http.StatusRequestEntityTooLarge, "Evidence document exceeds the 2MB limit", err)
		case errors.Is(err, models.ErrEvidenceUnsupportedType):
			h.respondError(w, http.StatusUnsupportedMediaType, "Evidence must be a PDF, DOCX, PNG or JPEG document", err)
		case errors.Is(err, models.ErrEvidenceIncomplete):
			h.respondError(w, http.StatusBadRequest, "Evidence document is missing required fields", err)
		case errors.Is(err, service.ErrChannelUnavailable):
			h.respondError(w, http.StatusServiceUnavailable, "Booking backend unavailable, try again", err)
		default:
			h.respondPolicyError(w, r, sessionID, err)
		}
		return
	}

	h.respondJSON(w, http.StatusCreated, response)
}

// WatchSession registers the session for live phase tracking.
func (h *HTTPHandler) WatchSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	if sessionID == "" {
		h.respondError(w, http.StatusBadRequest, "Session ID is required", nil)
		return
	}

	if err := h.lifecycleService.Watch(r.Context(), sessionID); err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			h.respondError(w, http.StatusNotFound, "Session not found", err)
		case errors.Is(err, service.ErrChannelUnavailable):
			h.respondError(w, http.StatusServiceUnavailable, "Booking backend unavailable, try again", err)
		default:
			h.logger.Errorf(r.Context(), "delivery.http.HTTPHandler.WatchSession: %v", err)
			h.respondError(w, http.StatusInternalServerError, "Failed to watch session", err)
		}
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"watching":   true,
	})
}

// UnwatchSession stops live phase tracking for the session.
func (h *HTTPHandler) UnwatchSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	if sessionID == "" {
		h.respondError(w, http.StatusBadRequest, "Session ID is required", nil)
		return
	}

	h.lifecycleService.Unwatch(sessionID)

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"watching":   false,
	})
}

func (h *HTTPHandler) respondPolicyError(w http.ResponseWriter, r *http.Request, sessionID string, err error) {
	switch {
	case errors.Is(err, policy.ErrMissingSchedule):
		h.respondError(w, http.StatusConflict, "Session has no resolvable schedule", err)
	case errors.Is(err, policy.ErrUnknownReason):
		h.respondError(w, http.StatusUnprocessableEntity, "Unknown cancellation reason code", err)
	case errors.Is(err, policy.ErrReasonRequired):
		h.respondError(w, http.StatusUnprocessableEntity, "A cancellation reason is required inside the notice period", err)
	default:
		h.logger.Errorf(r.Context(), "delivery.http.HTTPHandler.RequestCancellation: session %s: %v", sessionID, err)
		h.respondError(w, http.StatusInternalServerError, "Failed to request cancellation", err)
	}
}

// Helper functions

func (h *HTTPHandler) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Errorf(context.Background(), "delivery.http.HTTPHandler.respondJSON: %v", err)
	}
}

func (h *HTTPHandler) respondError(w http.ResponseWriter, statusCode int, message string, err error) {
	response := map[string]interface{}{
		"error": message,
		"code":  statusCode,
	}

	// Clients branch on the stable business code, not on the message.
	if bc := pkgErrors.CodeOf(err); bc != "" {
		response["error_code"] = bc
	}

	if err != nil {
		h.logger.Debugf(context.Background(), "delivery.http.HTTPHandler.respondError: %s: %v", message, err)
	}

	h.respondJSON(w, statusCode, response)
}

package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/set-night/tasksplit/internal/domain"
	"github.com/set-night/tasksplit/internal/middleware"
)

const maxRequestBodySize = 64 << 10

type errorResponse struct {
	Error string `json:"error"`
}

// readJSON decodes the request body into T. On failure it writes a 400 with
// badRequestMsg, or 413 when the body is too large.
func readJSON[T any](w http.ResponseWriter, r *http.Request, badRequestMsg string) (T, bool) {
	var v T
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		} else {
			writeError(w, http.StatusBadRequest, badRequestMsg)
		}
		return v, false
	}
	return v, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeDomainError maps service errors to responses. persistMsg is used for
// storage failures so each route can name what it failed to do.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error, persistMsg string) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "Invalid request")
	case errors.Is(err, domain.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "Session not found")
	case errors.Is(err, domain.ErrStepNotFound):
		writeError(w, http.StatusNotFound, "Step not found")
	case errors.Is(err, domain.ErrBreakdownExists):
		writeError(w, http.StatusConflict, "Breakdown already generated for this session")
	case errors.Is(err, domain.ErrUpstreamTimeout):
		writeError(w, http.StatusBadGateway, "AI service timed out")
	case errors.Is(err, domain.ErrUpstreamEmpty):
		writeError(w, http.StatusBadGateway, "No response from AI")
	case errors.Is(err, domain.ErrUpstream):
		writeError(w, http.StatusBadGateway, "AI service error")
	case errors.Is(err, domain.ErrMalformedBreakdown):
		writeError(w, http.StatusBadGateway, "AI returned an invalid breakdown")
	case errors.Is(err, domain.ErrPersistence):
		writeError(w, http.StatusInternalServerError, persistMsg)
	default:
		slog.Error("unhandled error",
			"error", err,
			"path", r.URL.Path,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

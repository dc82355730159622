package handler

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/set-night/tasksplit/internal/domain"
	"github.com/set-night/tasksplit/internal/middleware"
)

type breakdownRequest struct {
	SessionID string `json:"sessionId"`
	Prompt    string `json:"prompt"`
}

type breakdownResponse struct {
	Success       bool              `json:"success"`
	Breakdown     *domain.Breakdown `json:"breakdown"`
	SkippedRounds []int             `json:"skippedRounds,omitempty"`
}

// Breakdown handles POST /api/breakdown
func (h *Handler) Breakdown(w http.ResponseWriter, r *http.Request) {
	const badRequest = "sessionId and prompt are required"
	user := middleware.GetUser(r.Context())

	req, ok := readJSON[breakdownRequest](w, r, badRequest)
	if !ok {
		return
	}
	if strings.TrimSpace(req.SessionID) == "" || strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, badRequest)
		return
	}

	// An id that is not a UUID cannot name any session.
	sessionID, err := uuid.Parse(strings.TrimSpace(req.SessionID))
	if err != nil {
		writeDomainError(w, r, domain.ErrSessionNotFound, "")
		return
	}

	res, err := h.breakdowns.Generate(r.Context(), user.ID, sessionID, req.Prompt)
	if err != nil {
		writeDomainError(w, r, err, "Failed to save breakdown")
		return
	}

	writeJSON(w, http.StatusOK, breakdownResponse{
		Success:       true,
		Breakdown:     res.Breakdown,
		SkippedRounds: res.Report.SkippedRounds,
	})
}

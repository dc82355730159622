package handler

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/set-night/tasksplit/internal/domain"
	"github.com/set-night/tasksplit/internal/middleware"
)

type toggleStepRequest struct {
	StepID      string `json:"stepId"`
	IsCompleted *bool  `json:"isCompleted"`
}

// ToggleStep handles PATCH /api/steps
func (h *Handler) ToggleStep(w http.ResponseWriter, r *http.Request) {
	const badRequest = "stepId and isCompleted are required"
	user := middleware.GetUser(r.Context())

	req, ok := readJSON[toggleStepRequest](w, r, badRequest)
	if !ok {
		return
	}
	if strings.TrimSpace(req.StepID) == "" || req.IsCompleted == nil {
		writeError(w, http.StatusBadRequest, badRequest)
		return
	}

	stepID, err := uuid.Parse(strings.TrimSpace(req.StepID))
	if err != nil {
		writeDomainError(w, r, domain.ErrStepNotFound, "")
		return
	}

	if err := h.sessions.SetStepCompleted(r.Context(), user.ID, stepID, *req.IsCompleted); err != nil {
		writeDomainError(w, r, err, "Failed to update step")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

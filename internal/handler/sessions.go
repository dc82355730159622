package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/set-night/tasksplit/internal/domain"
	"github.com/set-night/tasksplit/internal/middleware"
)

type createSessionRequest struct {
	Prompt string `json:"prompt"`
}

type sessionSummaryResponse struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Prompt     string    `json:"prompt"`
	CreatedAt  time.Time `json:"createdAt"`
	RoundCount int       `json:"roundCount"`
}

type stepResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	OrderIndex  int       `json:"orderIndex"`
	IsCompleted bool      `json:"isCompleted"`
}

type roundResponse struct {
	ID         uuid.UUID      `json:"id"`
	Name       string         `json:"name"`
	OrderIndex int            `json:"orderIndex"`
	Steps      []stepResponse `json:"steps"`
}

type sessionDetailResponse struct {
	ID             uuid.UUID       `json:"id"`
	Title          string          `json:"title"`
	Prompt         string          `json:"prompt"`
	CreatedAt      time.Time       `json:"createdAt"`
	CompletedSteps int             `json:"completedSteps"`
	TotalSteps     int             `json:"totalSteps"`
	Rounds         []roundResponse `json:"rounds"`
}

// CreateSession handles POST /api/sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	req, ok := readJSON[createSessionRequest](w, r, "Prompt is required")
	if !ok {
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "Prompt is required")
		return
	}

	sess, err := h.sessions.Create(r.Context(), user.ID, req.Prompt)
	if err != nil {
		writeDomainError(w, r, err, "Failed to create session")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"sessionId": sess.ID})
}

// ListSessions handles GET /api/sessions
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	sessions, err := h.sessions.List(r.Context(), user.ID, limit, offset)
	if err != nil {
		writeDomainError(w, r, err, "Failed to load sessions")
		return
	}

	out := make([]sessionSummaryResponse, len(sessions))
	for i, s := range sessions {
		out[i] = sessionSummaryResponse{
			ID:         s.ID,
			Title:      s.Title,
			Prompt:     s.Prompt,
			CreatedAt:  s.CreatedAt,
			RoundCount: s.RoundCount,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": out})
}

// GetSession handles GET /api/sessions/{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, domain.ErrSessionNotFound, "")
		return
	}

	sess, err := h.sessions.Get(r.Context(), user.ID, id)
	if err != nil {
		writeDomainError(w, r, err, "Failed to load session")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"session": toSessionDetail(sess)})
}

func toSessionDetail(s *domain.SessionWithRounds) sessionDetailResponse {
	done, total := s.Progress()
	out := sessionDetailResponse{
		ID:             s.ID,
		Title:          s.Title,
		Prompt:         s.Prompt,
		CreatedAt:      s.CreatedAt,
		CompletedSteps: done,
		TotalSteps:     total,
		Rounds:         make([]roundResponse, len(s.Rounds)),
	}
	for i, rd := range s.Rounds {
		steps := make([]stepResponse, len(rd.Steps))
		for j, st := range rd.Steps {
			steps[j] = stepResponse{
				ID:          st.ID,
				Title:       st.Title,
				OrderIndex:  st.OrderIndex,
				IsCompleted: st.IsCompleted,
			}
		}
		out.Rounds[i] = roundResponse{
			ID:         rd.ID,
			Name:       rd.Name,
			OrderIndex: rd.OrderIndex,
			Steps:      steps,
		}
	}
	return out
}

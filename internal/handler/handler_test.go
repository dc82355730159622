package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/set-night/tasksplit/internal/domain"
	"github.com/set-night/tasksplit/internal/ratelimit"
	"github.com/set-night/tasksplit/internal/service"
)

const testToken = "ts_test-token"

var testUser = &domain.User{ID: uuid.MustParse("0b7f6e1a-1111-4222-8333-444455556666"), Email: "ada@example.com"}

type mockSessions struct {
	mock.Mock
}

func (m *mockSessions) Create(ctx context.Context, userID uuid.UUID, prompt string) (*domain.Session, error) {
	args := m.Called(ctx, userID, prompt)
	s, _ := args.Get(0).(*domain.Session)
	return s, args.Error(1)
}

func (m *mockSessions) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.SessionSummary, error) {
	args := m.Called(ctx, userID, limit, offset)
	s, _ := args.Get(0).([]domain.SessionSummary)
	return s, args.Error(1)
}

func (m *mockSessions) Get(ctx context.Context, userID, sessionID uuid.UUID) (*domain.SessionWithRounds, error) {
	args := m.Called(ctx, userID, sessionID)
	s, _ := args.Get(0).(*domain.SessionWithRounds)
	return s, args.Error(1)
}

func (m *mockSessions) SetStepCompleted(ctx context.Context, userID, stepID uuid.UUID, completed bool) error {
	return m.Called(ctx, userID, stepID, completed).Error(0)
}

type mockBreakdowns struct {
	mock.Mock
}

func (m *mockBreakdowns) Generate(ctx context.Context, userID, sessionID uuid.UUID, prompt string) (*service.BreakdownResult, error) {
	args := m.Called(ctx, userID, sessionID, prompt)
	r, _ := args.Get(0).(*service.BreakdownResult)
	return r, args.Error(1)
}

type tokenResolver struct{}

func (tokenResolver) ResolveUser(_ context.Context, token string) (*domain.User, error) {
	if token == testToken {
		return testUser, nil
	}
	return nil, domain.ErrUnauthorized
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type testServer struct {
	sessions   *mockSessions
	breakdowns *mockBreakdowns
	router     http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{sessions: &mockSessions{}, breakdowns: &mockBreakdowns{}}
	ts.router = NewRouter(Deps{
		Sessions:      ts.sessions,
		Breakdowns:    ts.breakdowns,
		Users:         tokenResolver{},
		DB:            pinger{},
		Limiter:       ratelimit.NewMemoryLimiter(),
		BreakdownRule: ratelimit.Rule{Max: 5, Window: 60 * time.Second},
		SessionRule:   ratelimit.Rule{Max: 10, Window: 60 * time.Second},
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return ts
}

func (ts *testServer) do(method, path, body string, authed bool) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func TestCreateSession_Unauthenticated(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/sessions", `{"prompt":"build a blog"}`, false)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
	ts.sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateSession(t *testing.T) {
	ts := newTestServer(t)
	id := uuid.New()
	ts.sessions.On("Create", mock.Anything, testUser.ID, "Plan a birthday party").
		Return(&domain.Session{ID: id, UserID: testUser.ID}, nil).Once()

	rec := ts.do(http.MethodPost, "/api/sessions", `{"prompt":"Plan a birthday party"}`, true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"sessionId":"`+id.String()+`"}`, rec.Body.String())
	ts.sessions.AssertExpectations(t)
}

func TestCreateSession_BadInput(t *testing.T) {
	for _, body := range []string{`{}`, `{"prompt":"  "}`, `{"prompt":42}`, `not json`} {
		ts := newTestServer(t)
		rec := ts.do(http.MethodPost, "/api/sessions", body, true)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.JSONEq(t, `{"error":"Prompt is required"}`, rec.Body.String(), body)
	}
}

func TestCreateSession_StoreFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.sessions.On("Create", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: conn reset", domain.ErrPersistence))

	rec := ts.do(http.MethodPost, "/api/sessions", `{"prompt":"x"}`, true)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to create session"}`, rec.Body.String())
}

func TestCreateSession_ServiceRejectsInput(t *testing.T) {
	ts := newTestServer(t)
	ts.sessions.On("Create", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: prompt is blank", domain.ErrInvalidInput))

	rec := ts.do(http.MethodPost, "/api/sessions", `{"prompt":"x"}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid request"}`, rec.Body.String())
}

func TestBreakdown_Success(t *testing.T) {
	ts := newTestServer(t)
	sessionID := uuid.New()
	b := &domain.Breakdown{
		Title:  "Birthday Party Plan",
		Rounds: []domain.BreakdownRound{{Name: "Planning", Steps: []string{"Pick date", "Book venue"}}},
	}
	ts.breakdowns.On("Generate", mock.Anything, testUser.ID, sessionID, "Plan a birthday party").
		Return(&service.BreakdownResult{Breakdown: b, Report: domain.WriteReport{RoundsWritten: 1, StepsWritten: 2}}, nil)

	rec := ts.do(http.MethodPost, "/api/breakdown",
		`{"sessionId":"`+sessionID.String()+`","prompt":"Plan a birthday party"}`, true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"breakdown":{"title":"Birthday Party Plan",
		"rounds":[{"name":"Planning","steps":["Pick date","Book venue"]}]}}`, rec.Body.String())
}

func TestBreakdown_RateLimited(t *testing.T) {
	ts := newTestServer(t)
	ts.breakdowns.On("Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, domain.ErrBreakdownExists)
	body := `{"sessionId":"` + uuid.NewString() + `","prompt":"x"}`

	for i := 0; i < 5; i++ {
		rec := ts.do(http.MethodPost, "/api/breakdown", body, true)
		require.Equal(t, http.StatusConflict, rec.Code, "request %d", i+1)
	}

	rec := ts.do(http.MethodPost, "/api/breakdown", body, true)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	retry, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, retry, 1)
	assert.LessOrEqual(t, retry, 60)
	assert.JSONEq(t, fmt.Sprintf(`{"error":"Too many requests. Try again in %ds."}`, retry), rec.Body.String())
	ts.breakdowns.AssertNumberOfCalls(t, "Generate", 5)
}

func TestBreakdown_ValidationAndErrors(t *testing.T) {
	sessionID := uuid.New()
	valid := `{"sessionId":"` + sessionID.String() + `","prompt":"x"}`

	tests := []struct {
		name       string
		body       string
		genErr     error
		wantStatus int
		wantError  string
	}{
		{"missing prompt", `{"sessionId":"` + sessionID.String() + `"}`, nil, 400, "sessionId and prompt are required"},
		{"missing session", `{"prompt":"x"}`, nil, 400, "sessionId and prompt are required"},
		{"blank prompt", `{"sessionId":"` + sessionID.String() + `","prompt":" "}`, nil, 400, "sessionId and prompt are required"},
		{"malformed id", `{"sessionId":"abc","prompt":"x"}`, nil, 404, "Session not found"},
		{"not found", valid, domain.ErrSessionNotFound, 404, "Session not found"},
		{"upstream error", valid, fmt.Errorf("openrouter status 500: %w", domain.ErrUpstream), 502, "AI service error"},
		{"upstream timeout", valid, fmt.Errorf("x: %w", domain.ErrUpstreamTimeout), 502, "AI service timed out"},
		{"empty response", valid, domain.ErrUpstreamEmpty, 502, "No response from AI"},
		{"invalid breakdown", valid, fmt.Errorf("%w: bad json", domain.ErrMalformedBreakdown), 502, "AI returned an invalid breakdown"},
		{"invalid input", valid, fmt.Errorf("%w: prompt is blank", domain.ErrInvalidInput), 400, "Invalid request"},
		{"already generated", valid, domain.ErrBreakdownExists, 409, "Breakdown already generated for this session"},
		{"save failure", valid, fmt.Errorf("%w: tx", domain.ErrPersistence), 500, "Failed to save breakdown"},
		{"unknown", valid, errors.New("surprise"), 500, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			if tt.genErr != nil {
				ts.breakdowns.On("Generate", mock.Anything, testUser.ID, sessionID, "x").Return(nil, tt.genErr)
			}

			rec := ts.do(http.MethodPost, "/api/breakdown", tt.body, true)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, `{"error":"`+tt.wantError+`"}`, rec.Body.String())
			if tt.genErr == nil {
				ts.breakdowns.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestToggleStep(t *testing.T) {
	stepID := uuid.New()

	tests := []struct {
		name       string
		body       string
		storeErr   error
		expectCall bool
		wantStatus int
		wantBody   string
	}{
		{"completed", `{"stepId":"` + stepID.String() + `","isCompleted":true}`, nil, true, 200, `{"success":true}`},
		{"foreign or absent", `{"stepId":"` + stepID.String() + `","isCompleted":true}`, domain.ErrStepNotFound, true, 404, `{"error":"Step not found"}`},
		{"missing flag", `{"stepId":"` + stepID.String() + `"}`, nil, false, 400, `{"error":"stepId and isCompleted are required"}`},
		{"flag not bool", `{"stepId":"` + stepID.String() + `","isCompleted":"yes"}`, nil, false, 400, `{"error":"stepId and isCompleted are required"}`},
		{"blank id", `{"stepId":"","isCompleted":false}`, nil, false, 400, `{"error":"stepId and isCompleted are required"}`},
		{"malformed id", `{"stepId":"nope","isCompleted":false}`, nil, false, 404, `{"error":"Step not found"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			if tt.expectCall {
				ts.sessions.On("SetStepCompleted", mock.Anything, testUser.ID, stepID, true).Return(tt.storeErr).Once()
			}

			rec := ts.do(http.MethodPatch, "/api/steps", tt.body, true)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			ts.sessions.AssertExpectations(t)
		})
	}
}

func TestToggleStep_Unauthenticated(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(http.MethodPatch, "/api/steps", `{"stepId":"x","isCompleted":true}`, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListSessions(t *testing.T) {
	ts := newTestServer(t)
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	id := uuid.New()
	ts.sessions.On("List", mock.Anything, testUser.ID, 5, 10).Return([]domain.SessionSummary{
		{ID: id, Title: "Blog", Prompt: "build a blog", CreatedAt: created, RoundCount: 3},
	}, nil)

	rec := ts.do(http.MethodGet, "/api/sessions?limit=5&offset=10", "", true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"sessions":[{"id":"`+id.String()+`","title":"Blog","prompt":"build a blog",
		"createdAt":"2026-03-01T10:00:00Z","roundCount":3}]}`, rec.Body.String())
}

func TestGetSession(t *testing.T) {
	ts := newTestServer(t)
	sid, rid, stid := uuid.New(), uuid.New(), uuid.New()
	ts.sessions.On("Get", mock.Anything, testUser.ID, sid).Return(&domain.SessionWithRounds{
		Session: domain.Session{ID: sid, Title: "Blog", Prompt: "p", CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		Rounds: []domain.RoundWithSteps{{
			Round: domain.Round{ID: rid, SessionID: sid, Name: "Setup", OrderIndex: 0},
			Steps: []domain.Step{{ID: stid, RoundID: rid, Title: "Buy domain", OrderIndex: 0, IsCompleted: true}},
		}},
	}, nil)

	rec := ts.do(http.MethodGet, "/api/sessions/"+sid.String(), "", true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"session":{"id":"`+sid.String()+`","title":"Blog","prompt":"p","createdAt":"2026-03-01T00:00:00Z",
		"completedSteps":1,"totalSteps":1,
		"rounds":[{"id":"`+rid.String()+`","name":"Setup","orderIndex":0,
			"steps":[{"id":"`+stid.String()+`","title":"Buy domain","orderIndex":0,"isCompleted":true}]}]}}`, rec.Body.String())
}

func TestGetSession_NotFound(t *testing.T) {
	ts := newTestServer(t)
	missing := uuid.New()
	ts.sessions.On("Get", mock.Anything, testUser.ID, missing).Return(nil, domain.ErrSessionNotFound)

	for _, path := range []string{"/api/sessions/" + missing.String(), "/api/sessions/not-a-uuid"} {
		rec := ts.do(http.MethodGet, path, "", true)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.JSONEq(t, `{"error":"Session not found"}`, rec.Body.String())
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(http.MethodGet, "/health", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	down := NewRouter(Deps{DB: pinger{err: errors.New("refused")}, Users: tokenResolver{}, Limiter: ratelimit.NewMemoryLimiter()})
	rec = httptest.NewRecorder()
	down.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/set-night/tasksplit/internal/config"
	"github.com/set-night/tasksplit/internal/domain"
)

func newTestOpenRouter(url string, timeout time.Duration) *OpenRouterService {
	return NewOpenRouterService(OpenRouterOptions{
		APIKey:      "sk-or-test",
		BaseURL:     url,
		Model:       config.DefaultModel,
		Temperature: 0.7,
		Timeout:     timeout,
		AppURL:      "https://tasksplit.example",
		AppName:     "TaskSplit",
	})
}

func TestOpenRouter_CompleteJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-or-test", r.Header.Get("Authorization"))
		assert.Equal(t, "https://tasksplit.example", r.Header.Get("HTTP-Referer"))
		assert.Equal(t, "TaskSplit", r.Header.Get("X-Title"))

		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, config.DefaultModel, req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)
		assert.Equal(t, "Plan a birthday party", req.Messages[1].Content)
		require.NotNil(t, req.Temperature)
		assert.Equal(t, 0.7, *req.Temperature)
		require.NotNil(t, req.ResponseFormat)
		assert.Equal(t, "json_object", req.ResponseFormat.Type)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"google/gemini-2.0-flash-001","choices":[{"message":{"content":"{\"title\":\"x\"}"}}],
			"usage":{"prompt_tokens":11,"completion_tokens":7,"total_cost":0.000123}}`))
	}))
	defer srv.Close()

	c, err := newTestOpenRouter(srv.URL, time.Second).CompleteJSON(context.Background(), "sys", "Plan a birthday party")
	require.NoError(t, err)
	assert.Equal(t, `{"title":"x"}`, c.Content)
	assert.Equal(t, config.ProviderOpenRouter, c.Provider)
	assert.Equal(t, 11, c.PromptTokens)
	assert.Equal(t, 7, c.CompletionTokens)
	assert.Equal(t, "0.000123", c.Cost.String())
}

func TestOpenRouter_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    error
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
			},
			want: domain.ErrUpstream,
		},
		{
			name: "rate limited upstream",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
			want: domain.ErrUpstream,
		},
		{
			name: "garbage body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("<html>"))
			},
			want: domain.ErrUpstream,
		},
		{
			name: "no choices",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"choices":[]}`))
			},
			want: domain.ErrUpstreamEmpty,
		},
		{
			name: "blank content",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  "}}]}`))
			},
			want: domain.ErrUpstreamEmpty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := newTestOpenRouter(srv.URL, time.Second).CompleteJSON(context.Background(), "sys", "user")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestOpenRouter_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := newTestOpenRouter(srv.URL, 50*time.Millisecond).CompleteJSON(context.Background(), "sys", "user")
	assert.ErrorIs(t, err, domain.ErrUpstreamTimeout)
}

func TestOpenRouter_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := newTestOpenRouter(srv.URL, 10*time.Second).CompleteJSON(ctx, "sys", "user")
	assert.ErrorIs(t, err, domain.ErrUpstreamTimeout)
}

func TestOpenRouter_ModelsCached(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/models", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[
			{"id":"google/gemini-2.0-flash-001","name":"Gemini Flash","pricing":{"prompt":"0.0000001","completion":"0.0000004"},"context_length":1000000},
			{"id":"meta/free","name":"Free","pricing":{"prompt":"0","completion":"0"},"context_length":8000,"top_provider":{"context_length":4000}}]}`))
	}))
	defer srv.Close()

	or := newTestOpenRouter(srv.URL, time.Second)
	ctx := context.Background()

	models, err := or.ListModels(ctx)
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.InDelta(t, 0.1, models[0].PromptPrice, 1e-9)
	assert.InDelta(t, 0.4, models[0].CompletionPrice, 1e-9)
	assert.True(t, models[1].IsFree())
	assert.Equal(t, 4000, models[1].ContextLength)

	ok, err := or.HasModel(ctx, config.DefaultModel)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = or.HasModel(ctx, "openai/unknown")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.EqualValues(t, 1, hits.Load())
}

func TestModelsCache_Expires(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewModelsCache(time.Hour)
	c.now = func() time.Time { return now }

	assert.Nil(t, c.Get())
	c.Set([]domain.AIModel{{ID: "m"}})
	assert.Len(t, c.Get(), 1)

	now = now.Add(61 * time.Minute)
	assert.Nil(t, c.Get())
}

func TestNewOpenRouterService_Model(t *testing.T) {
	assert.Equal(t, config.DefaultModel, NewOpenRouterService(OpenRouterOptions{}).Model())
	assert.Equal(t, "anthropic/claude-3.5-haiku",
		NewOpenRouterService(OpenRouterOptions{Model: "anthropic/claude-3.5-haiku"}).Model())
}

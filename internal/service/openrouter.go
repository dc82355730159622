package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/set-night/tasksplit/internal/config"
	"github.com/set-night/tasksplit/internal/domain"
	"github.com/shopspring/decimal"
)

const maxLoggedBody = 512

type OpenRouterOptions struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
	AppURL      string
	AppName     string
}

type OpenRouterService struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	appURL      string
	appName     string
	httpClient  *http.Client
	cache       *ModelsCache
}

func NewOpenRouterService(opts OpenRouterOptions) *OpenRouterService {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://openrouter.ai/api/v1"
	}
	if opts.Model == "" {
		opts.Model = config.DefaultModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = config.RequestTimeout
	}
	return &OpenRouterService{
		apiKey:      opts.APIKey,
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		model:       opts.Model,
		temperature: opts.Temperature,
		appURL:      opts.AppURL,
		appName:     opts.AppName,
		httpClient:  &http.Client{Timeout: opts.Timeout},
		cache:       NewModelsCache(config.ModelCacheDuration),
	}
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ResponseFormat struct {
	Type string `json:"type"`
}

type ChatRequest struct {
	Model          string          `json:"model"`
	Messages       []ChatMessage   `json:"messages"`
	Temperature    *float64        `json:"temperature,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

type ChatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int             `json:"prompt_tokens"`
		CompletionTokens int             `json:"completion_tokens"`
		TotalCost        decimal.Decimal `json:"total_cost"`
	} `json:"usage"`
}

func (s *OpenRouterService) Model() string {
	return s.model
}

func (s *OpenRouterService) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (*Completion, error) {
	temperature := s.temperature
	chatReq := ChatRequest{
		Model: s.model,
		Messages: []ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature:    &temperature,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	}

	chatResp, err := s.Chat(ctx, chatReq)
	if err != nil {
		return nil, err
	}

	if len(chatResp.Choices) == 0 || strings.TrimSpace(chatResp.Choices[0].Message.Content) == "" {
		return nil, domain.ErrUpstreamEmpty
	}

	model := chatResp.Model
	if model == "" {
		model = s.model
	}
	return &Completion{
		Content:          chatResp.Choices[0].Message.Content,
		Provider:         config.ProviderOpenRouter,
		Model:            model,
		PromptTokens:     chatResp.Usage.PromptTokens,
		CompletionTokens: chatResp.Usage.CompletionTokens,
		Cost:             chatResp.Usage.TotalCost,
	}, nil
}

func (s *OpenRouterService) Chat(ctx context.Context, chatReq ChatRequest) (*ChatResponse, error) {
	payload, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	s.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, upstreamError(ctx, "chat request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, upstreamError(ctx, "read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Warn("openrouter returned error status",
			"status", resp.StatusCode,
			"model", chatReq.Model,
			"body", truncate(string(body), maxLoggedBody),
		)
		return nil, fmt.Errorf("openrouter status %d: %w", resp.StatusCode, domain.ErrUpstream)
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("parse response: %w: %v", domain.ErrUpstream, err)
	}

	return &chatResp, nil
}

func (s *OpenRouterService) ListModels(ctx context.Context) ([]domain.AIModel, error) {
	if cached := s.cache.Get(); cached != nil {
		return cached, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	s.setHeaders(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, upstreamError(ctx, "fetch models", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch models status %d: %w", resp.StatusCode, domain.ErrUpstream)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var result struct {
		Data []struct {
			ID      string `json:"id"`
			Name    string `json:"name"`
			Pricing struct {
				Prompt     string `json:"prompt"`
				Completion string `json:"completion"`
			} `json:"pricing"`
			ContextLength int `json:"context_length"`
			TopProvider   struct {
				ContextLength int `json:"context_length"`
			} `json:"top_provider"`
		} `json:"data"`
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse models: %w", err)
	}

	models := make([]domain.AIModel, 0, len(result.Data))
	for _, m := range result.Data {
		// Prices from OpenRouter are per token, convert to per 1M tokens
		promptPrice := perMillion(m.Pricing.Prompt)
		completionPrice := perMillion(m.Pricing.Completion)

		ctxLen := m.ContextLength
		if m.TopProvider.ContextLength > 0 {
			ctxLen = m.TopProvider.ContextLength
		}

		models = append(models, domain.AIModel{
			ID:              m.ID,
			Name:            m.Name,
			PromptPrice:     promptPrice,
			CompletionPrice: completionPrice,
			ContextLength:   ctxLen,
		})
	}

	s.cache.Set(models)
	return models, nil
}

// HasModel reports whether OpenRouter currently offers modelID.
func (s *OpenRouterService) HasModel(ctx context.Context, modelID string) (bool, error) {
	models, err := s.ListModels(ctx)
	if err != nil {
		return false, err
	}
	for _, m := range models {
		if m.ID == modelID {
			return true, nil
		}
	}
	return false, nil
}

func (s *OpenRouterService) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	if s.appURL != "" {
		req.Header.Set("HTTP-Referer", s.appURL)
	}
	if s.appName != "" {
		req.Header.Set("X-Title", s.appName)
	}
}

func perMillion(price string) float64 {
	d, err := decimal.NewFromString(price)
	if err != nil {
		return 0
	}
	f, _ := d.Mul(decimal.NewFromInt(1_000_000)).Float64()
	return f
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

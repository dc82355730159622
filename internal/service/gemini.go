package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/set-night/tasksplit/internal/config"
	"github.com/set-night/tasksplit/internal/domain"
	"google.golang.org/genai"
)

type GeminiOptions struct {
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
	// BaseURL overrides the Gemini API endpoint.
	BaseURL string
}

// GeminiService calls Gemini directly through the genai SDK.
type GeminiService struct {
	client      *genai.Client
	model       string
	temperature float32
	timeout     time.Duration
}

func NewGeminiService(ctx context.Context, opts GeminiOptions) (*GeminiService, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if opts.Model == "" {
		opts.Model = config.DefaultGeminiModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = config.RequestTimeout
	}

	cc := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiService{
		client:      client,
		model:       opts.Model,
		temperature: float32(opts.Temperature),
		timeout:     opts.Timeout,
	}, nil
}

func (s *GeminiService) Model() string {
	return s.model
}

func (s *GeminiService) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (*Completion, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	temperature := s.temperature
	resp, err := s.client.Models.GenerateContent(ctx,
		s.model,
		genai.Text(userPrompt),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
			Temperature:       &temperature,
			ResponseMIMEType:  "application/json",
		},
	)
	if err != nil {
		return nil, upstreamError(ctx, "gemini generate", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrUpstreamEmpty
	}

	c := &Completion{
		Content:  text,
		Provider: config.ProviderGemini,
		Model:    s.model,
	}
	if resp.ModelVersion != "" {
		c.Model = resp.ModelVersion
	}
	if u := resp.UsageMetadata; u != nil {
		c.PromptTokens = int(u.PromptTokenCount)
		c.CompletionTokens = int(u.CandidatesTokenCount)
	}
	return c, nil
}

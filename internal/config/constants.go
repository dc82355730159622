package config

import "time"

const (
	// AI request timeout
	RequestTimeout = 30 * time.Second

	// Budget for persisting a breakdown once the model has answered
	SaveTimeout = 10 * time.Second

	// Model cache duration
	ModelCacheDuration = 1 * time.Hour

	// Default AI models
	DefaultModel       = "google/gemini-2.0-flash-001"
	DefaultGeminiModel = "gemini-2.0-flash"

	// Default temperature
	DefaultTemperature = 0.7

	// Rate limits (per window)
	BreakdownRequestsPerWindow = 5
	SessionRequestsPerWindow   = 10
	RateLimitWindow            = 60 * time.Second

	// Expired rate limit entries are swept at this interval
	RateLimitSweepInterval = 5 * time.Minute

	// Breakdown shape
	MaxTitleLen      = 60
	MinRounds        = 2
	MaxRounds        = 4
	MinStepsPerRound = 3
	MaxStepsPerRound = 8

	// Sessions per page
	SessionsPerPage    = 20
	MaxSessionsPerPage = 100

	// HTTP server
	ReadTimeout     = 15 * time.Second
	WriteTimeout    = 60 * time.Second
	IdleTimeout     = 120 * time.Second
	ShutdownTimeout = 10 * time.Second
)

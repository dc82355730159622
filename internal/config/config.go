package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"

	RateLimitMemory   = "memory"
	RateLimitPostgres = "postgres"

	PolicyCoerce = "coerce"
	PolicyStrict = "strict"

	WriteAtomic     = "atomic"
	WriteBestEffort = "best_effort"
)

// Config is loaded from defaults, then an optional YAML file named by
// TASKSPLIT_CONFIG_PATH, then environment variables.
type Config struct {
	// Core
	DatabaseURL string `env:"DATABASE_URL" yaml:"database_url"`
	DBMaxConns  int32  `env:"DB_MAX_CONNS" yaml:"db_max_conns"`
	DBMinConns  int32  `env:"DB_MIN_CONNS" yaml:"db_min_conns"`
	Port        int    `env:"PORT" yaml:"port"`
	LogLevel    string `env:"LOG_LEVEL" yaml:"log_level"`

	// Model provider
	LLMProvider    string        `env:"LLM_PROVIDER" yaml:"llm_provider"`
	LLMModel       string        `env:"LLM_MODEL" yaml:"llm_model"`
	LLMTemperature float64       `env:"LLM_TEMPERATURE" yaml:"llm_temperature"`
	LLMTimeout     time.Duration `env:"LLM_TIMEOUT" yaml:"llm_timeout"`
	OpenRouterKey  string        `env:"OPENROUTER_API_KEY" yaml:"openrouter_api_key"`
	OpenRouterURL  string        `env:"OPENROUTER_BASE_URL" yaml:"openrouter_base_url"`
	GeminiKey      string        `env:"GEMINI_API_KEY" yaml:"gemini_api_key"`
	AppURL         string        `env:"APP_URL" yaml:"app_url"`
	AppName        string        `env:"APP_NAME" yaml:"app_name"`

	// Rate limiting
	RateLimitBackend    string        `env:"RATE_LIMIT_BACKEND" yaml:"rate_limit_backend"`
	BreakdownRateLimit  int           `env:"BREAKDOWN_RATE_LIMIT" yaml:"breakdown_rate_limit"`
	BreakdownRateWindow time.Duration `env:"BREAKDOWN_RATE_WINDOW" yaml:"breakdown_rate_window"`
	SessionRateLimit    int           `env:"SESSION_RATE_LIMIT" yaml:"session_rate_limit"`
	SessionRateWindow   time.Duration `env:"SESSION_RATE_WINDOW" yaml:"session_rate_window"`

	// Breakdown handling
	BreakdownPolicy    string `env:"BREAKDOWN_POLICY" yaml:"breakdown_policy"`
	BreakdownWriteMode string `env:"BREAKDOWN_WRITE_MODE" yaml:"breakdown_write_mode"`

	// Telegram ops logging
	TelegramBotToken  string `env:"TELEGRAM_BOT_TOKEN" yaml:"telegram_bot_token"`
	LogTelegramChatID int64  `env:"LOG_TELEGRAM_CHAT_ID" yaml:"log_telegram_chat_id"`
	LogTopicError     int    `env:"LOG_TOPIC_ERROR" yaml:"log_topic_error"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		DBMaxConns:          20,
		DBMinConns:          5,
		Port:                3000,
		LogLevel:            "info",
		LLMProvider:         ProviderOpenRouter,
		LLMTemperature:      DefaultTemperature,
		LLMTimeout:          RequestTimeout,
		OpenRouterURL:       "https://openrouter.ai/api/v1",
		AppURL:              "http://localhost:3000",
		AppName:             "TaskSplit",
		RateLimitBackend:    RateLimitMemory,
		BreakdownRateLimit:  BreakdownRequestsPerWindow,
		BreakdownRateWindow: RateLimitWindow,
		SessionRateLimit:    SessionRequestsPerWindow,
		SessionRateWindow:   RateLimitWindow,
		BreakdownPolicy:     PolicyCoerce,
		BreakdownWriteMode:  WriteAtomic,
	}
}

func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("TASKSPLIT_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.LLMModel == "" {
		cfg.LLMModel = defaultModel(cfg.LLMProvider)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}
	if c.DBMinConns > c.DBMaxConns {
		errs = append(errs, fmt.Errorf("DB_MIN_CONNS (%d) must not exceed DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns))
	}
	switch c.LLMProvider {
	case ProviderOpenRouter, ProviderGemini:
	default:
		errs = append(errs, fmt.Errorf("LLM_PROVIDER must be %q or %q, got %q", ProviderOpenRouter, ProviderGemini, c.LLMProvider))
	}
	if c.LLMTimeout <= 0 {
		errs = append(errs, fmt.Errorf("LLM_TIMEOUT must be positive, got %s", c.LLMTimeout))
	}
	switch c.RateLimitBackend {
	case RateLimitMemory, RateLimitPostgres:
	default:
		errs = append(errs, fmt.Errorf("RATE_LIMIT_BACKEND must be %q or %q, got %q", RateLimitMemory, RateLimitPostgres, c.RateLimitBackend))
	}
	if c.BreakdownRateLimit < 1 || c.SessionRateLimit < 1 {
		errs = append(errs, errors.New("BREAKDOWN_RATE_LIMIT and SESSION_RATE_LIMIT must be at least 1"))
	}
	if c.BreakdownRateWindow < time.Second || c.SessionRateWindow < time.Second {
		errs = append(errs, errors.New("rate limit windows must be at least 1s"))
	}
	switch c.BreakdownPolicy {
	case PolicyCoerce, PolicyStrict:
	default:
		errs = append(errs, fmt.Errorf("BREAKDOWN_POLICY must be %q or %q, got %q", PolicyCoerce, PolicyStrict, c.BreakdownPolicy))
	}
	switch c.BreakdownWriteMode {
	case WriteAtomic, WriteBestEffort:
	default:
		errs = append(errs, fmt.Errorf("BREAKDOWN_WRITE_MODE must be %q or %q, got %q", WriteAtomic, WriteBestEffort, c.BreakdownWriteMode))
	}
	return errors.Join(errs...)
}

// ValidateLLM checks that credentials for the selected provider are present.
// Only commands that call the model need it.
func (c *Config) ValidateLLM() error {
	switch c.LLMProvider {
	case ProviderOpenRouter:
		if c.OpenRouterKey == "" {
			return errors.New("OPENROUTER_API_KEY is required when LLM_PROVIDER=openrouter")
		}
	case ProviderGemini:
		if c.GeminiKey == "" {
			return errors.New("GEMINI_API_KEY is required when LLM_PROVIDER=gemini")
		}
	}
	return nil
}

// TelegramEnabled reports whether ops notifications should be sent.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.LogTelegramChatID != 0
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func defaultModel(provider string) string {
	if provider == ProviderGemini {
		return DefaultGeminiModel
	}
	return DefaultModel
}

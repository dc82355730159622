package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/set-night/tasksplit/internal/config"
	"github.com/set-night/tasksplit/internal/handler"
	"github.com/set-night/tasksplit/internal/ratelimit"
	"github.com/set-night/tasksplit/internal/repository"
	"github.com/set-night/tasksplit/internal/repository/sqlc"
	"github.com/set-night/tasksplit/internal/service"
	"github.com/set-night/tasksplit/internal/telegram"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateLLM(); err != nil {
			return fmt.Errorf("config validation: %w", err)
		}
		return serve()
	},
}

func serve() error {
	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL, repository.PoolOptions{
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	// Run migrations
	src, err := migrationsFS()
	if err != nil {
		return err
	}
	if err := repository.RunMigrations(cfg.DatabaseURL, src); err != nil {
		return err
	}

	queries := sqlc.New(pool)
	store := repository.NewStore(pool, queries)

	// Rate limiting
	var limiter interface {
		ratelimit.Limiter
		ratelimit.Sweeper
	}
	if cfg.RateLimitBackend == config.RateLimitPostgres {
		limiter = ratelimit.NewPostgresLimiter(queries)
	} else {
		limiter = ratelimit.NewMemoryLimiter()
	}
	go ratelimit.RunSweeper(ctx, limiter, config.RateLimitSweepInterval, logger)

	// Model provider
	llm, err := newCompleter(ctx)
	if err != nil {
		return err
	}

	// Ops notifications
	var tgLogger *telegram.TelegramLogger
	if cfg.TelegramEnabled() {
		b, err := telegram.NewBot(cfg.TelegramBotToken)
		if err != nil {
			return err
		}
		tgLogger = telegram.NewTelegramLogger(b, cfg.LogTelegramChatID, cfg.LogTopicError)
	}

	// Initialize services
	userService := service.NewUserService(store)
	sessionService := service.NewSessionService(store)
	breakdownService := service.NewBreakdownService(store, llm, tgLogger, service.BreakdownOptions{
		Policy:      cfg.BreakdownPolicy,
		WriteMode:   cfg.BreakdownWriteMode,
		Timeout:     cfg.LLMTimeout,
		SaveTimeout: config.SaveTimeout,
	})

	router := handler.NewRouter(handler.Deps{
		Sessions:      sessionService,
		Breakdowns:    breakdownService,
		Users:         userService,
		DB:            store,
		Limiter:       limiter,
		BreakdownRule: ratelimit.Rule{Max: cfg.BreakdownRateLimit, Window: cfg.BreakdownRateWindow},
		SessionRule:   ratelimit.Rule{Max: cfg.SessionRateLimit, Window: cfg.SessionRateWindow},
		Logger:        logger,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			"port", cfg.Port,
			"provider", cfg.LLMProvider,
			"model", cfg.LLMModel,
			"rate_limit_backend", cfg.RateLimitBackend,
			"breakdown_policy", cfg.BreakdownPolicy,
			"write_mode", cfg.BreakdownWriteMode,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func newCompleter(ctx context.Context) (service.Completer, error) {
	if cfg.LLMProvider == config.ProviderGemini {
		gm, err := service.NewGeminiService(ctx, service.GeminiOptions{
			APIKey:      cfg.GeminiKey,
			Model:       cfg.LLMModel,
			Temperature: cfg.LLMTemperature,
			Timeout:     cfg.LLMTimeout,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("llm client ready", "provider", config.ProviderGemini, "model", gm.Model())
		return gm, nil
	}

	or := service.NewOpenRouterService(service.OpenRouterOptions{
		APIKey:      cfg.OpenRouterKey,
		BaseURL:     cfg.OpenRouterURL,
		Model:       cfg.LLMModel,
		Temperature: cfg.LLMTemperature,
		Timeout:     cfg.LLMTimeout,
		AppURL:      cfg.AppURL,
		AppName:     cfg.AppName,
	})

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	ok, err := or.HasModel(checkCtx, or.Model())
	switch {
	case err != nil:
		logger.Warn("could not verify model availability", "model", or.Model(), "error", err)
	case !ok:
		logger.Warn("configured model is not offered by openrouter", "model", or.Model())
	}
	logger.Info("llm client ready", "provider", config.ProviderOpenRouter, "model", or.Model())
	return or, nil
}

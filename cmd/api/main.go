package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/clinicdesk/appointment-ai/internal/api/router"
	"github.com/clinicdesk/appointment-ai/internal/booking"
	appconfig "github.com/clinicdesk/appointment-ai/internal/config"
	"github.com/clinicdesk/appointment-ai/internal/conversation"
	"github.com/clinicdesk/appointment-ai/internal/nlu"
	"github.com/clinicdesk/appointment-ai/internal/observability/metrics"
	"github.com/clinicdesk/appointment-ai/internal/slots"
	"github.com/clinicdesk/appointment-ai/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting appointment-ai API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create pgx pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	slotStore := slots.NewStore(pool)
	if cfg.SeedOnBoot {
		if err := slotStore.Initialize(ctx); err != nil {
			logger.Error("failed to initialize slot inventory", "error", err)
			os.Exit(1)
		}
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer func() { _ = redisClient.Close() }()

	llmClient, err := conversation.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
	if err != nil {
		logger.Error("failed to create gemini client", "error", err)
		os.Exit(1)
	}
	defer func() { _ = llmClient.Close() }()

	registry := prometheus.NewRegistry()
	conversationMetrics := metrics.NewConversationMetrics(registry)

	coordinator := booking.NewCoordinator(slotStore, logger, conversationMetrics)
	sessionStore := conversation.NewRedisSessionStore(redisClient, cfg.SessionTTL, nil)
	engine := conversation.NewEngine(
		slotStore,
		sessionStore,
		llmClient,
		nlu.HeuristicMatcher{},
		coordinator,
		logger,
		conversationMetrics,
		conversation.EngineConfig{
			QueryLimit:  cfg.SlotQueryLimit,
			ModelID:     cfg.GeminiModelID,
			Temperature: float32(cfg.LLMTemperature),
			MaxTokens:   int32(cfg.LLMMaxTokens),
			LLMTimeout:  cfg.LLMTimeout,
		},
	)

	conversationHandler := conversation.NewHandler(engine, logger)

	r := router.New(&router.Config{
		Logger:              logger,
		ConversationHandler: conversationHandler,
		MetricsHandler:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/devtrail/idea-engine/internal/analysis"
	"github.com/devtrail/idea-engine/internal/api"
	"github.com/devtrail/idea-engine/internal/cache"
	"github.com/devtrail/idea-engine/internal/config"
	"github.com/devtrail/idea-engine/internal/llm"
	"github.com/devtrail/idea-engine/internal/projects"
	"github.com/devtrail/idea-engine/internal/prompts"
	"github.com/devtrail/idea-engine/internal/services"
	"github.com/devtrail/idea-engine/internal/storage"
	"github.com/devtrail/idea-engine/internal/tokens"
	"github.com/devtrail/idea-engine/internal/website"
)

func main() {
	// Load configuration first so logging honors LOG_LEVEL
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	level := parseLogLevel(cfg.LogLevel)
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	slog.Info("starting idea-engine",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"model", cfg.LLM.Model,
	)

	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	registry := services.NewRegistry()

	// Optional persistence: analysis history endpoints answer 503 when
	// no database is configured.
	var repo storage.Repository
	if cfg.Database.Enabled() {
		slog.Info("running database migrations", "dir", cfg.Database.MigrationsDir)
		if err := storage.MigrateFromDSN(initCtx, cfg.Database.DSN, cfg.Database.MigrationsDir); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}

		pg, err := storage.NewPostgresRepository(initCtx, storage.PostgresConfig{
			DSN:          cfg.Database.DSN,
			MaxOpenConns: int32(cfg.Database.MaxOpenConns),
			MaxIdleConns: int32(cfg.Database.MaxIdleConns),
		})
		if err != nil {
			slog.Error("failed to create database repository", "error", err)
			os.Exit(1)
		}
		repo = pg
		slog.Info("database connected")

		postgresProvider, err := services.NewPostgresProvider(cfg.Database.DSN)
		if err != nil {
			slog.Error("failed to create postgres provider", "error", err)
			os.Exit(1)
		}
		registry.Register("postgres", postgresProvider)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cache: redis when configured, bounded in-memory otherwise
	var analysisCache cache.Store
	if cfg.Redis.Enabled() {
		redisCache, err := cache.NewRedis(initCtx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, cfg.Cache.TTL)
		if err != nil {
			slog.Error("failed to connect to redis", "address", cfg.Redis.Address, "error", err)
			os.Exit(1)
		}
		analysisCache = redisCache
		registry.Register("redis", services.NewRedisProvider(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB))
		slog.Info("redis cache connected", "address", cfg.Redis.Address)
	} else {
		memory := cache.NewMemory(cfg.Cache.TTL, cfg.Cache.Capacity)
		memory.StartSweeper(ctx, 5*time.Minute)
		analysisCache = memory
		slog.Info("using in-memory cache", "ttl", cfg.Cache.TTL, "capacity", cfg.Cache.Capacity)
	}

	// Prompt templates: builtins plus optional YAML overrides
	promptStore, err := prompts.NewStore()
	if err != nil {
		slog.Error("failed to initialize prompt store", "error", err)
		os.Exit(1)
	}
	if err := promptStore.LoadFromDir(cfg.Prompts.Dir); err != nil {
		slog.Warn("failed to load prompt overrides", "dir", cfg.Prompts.Dir, "error", err)
	}

	// Model client and orchestrators
	completer, err := llm.NewClient(llm.Config{
		APIKey:    cfg.LLM.APIKey,
		BaseURL:   cfg.LLM.BaseURL,
		Model:     cfg.LLM.Model,
		MaxTokens: cfg.LLM.MaxTokens,
	})
	if err != nil {
		slog.Error("failed to create model client", "error", err)
		os.Exit(1)
	}

	extractor := website.NewExtractor(cfg.Website)
	analyzer := analysis.NewService(completer, promptStore, extractor)
	generator := projects.NewGenerator(completer, promptStore)
	estimator := tokens.NewEstimator(cfg.Tokens.HighUsageThreshold)

	// HTTP server
	server := api.NewServer(cfg.Server, analyzer, generator, estimator, analysisCache, repo, registry)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.LLM.Timeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down gracefully...")

	// Cancel context to stop background workers
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	if err := analysisCache.Close(); err != nil {
		slog.Error("cache close error", "error", err)
	}
	if repo != nil {
		if err := repo.Close(); err != nil {
			slog.Error("repository close error", "error", err)
		}
	}
	for name, err := range registry.CloseAll() {
		slog.Error("provider close error", "provider", name, "error", err)
	}

	slog.Info("idea-engine stopped")
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Package main is the entry point for the Gradehub Telegram bot.
//
// The bot walks students through entering their internal marks, computes
// the internals score and the external marks still needed to pass, keeps
// a per-student record in PostgreSQL, forecasts attendance, and searches
// YouTube for study topics.
//
// The layout follows Clean Architecture:
//   - Domain: grading rules and entities, no external dependencies
//   - Application: commands, queries and the marks dialogue engine
//   - Infrastructure: PostgreSQL, Redis, Telegram and YouTube clients
//   - Interface: Telegram command handlers and routing
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/gradehub/gradehub-bot/config"
	"github.com/gradehub/gradehub-bot/internal/application/command"
	"github.com/gradehub/gradehub-bot/internal/application/dialogue"
	"github.com/gradehub/gradehub-bot/internal/application/query"
	"github.com/gradehub/gradehub-bot/internal/infrastructure/external/youtube"
	"github.com/gradehub/gradehub-bot/internal/infrastructure/persistence/postgres"
	"github.com/gradehub/gradehub-bot/internal/infrastructure/persistence/redis"
	"github.com/gradehub/gradehub-bot/internal/interface/telegram"
	"github.com/gradehub/gradehub-bot/internal/interface/telegram/handler"
	"github.com/gradehub/gradehub-bot/internal/interface/telegram/presenter"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────

	// .env is a development convenience; in production the variables come
	// from the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting gradehub bot",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
		"debug", cfg.App.Debug,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. DATABASE (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database")
	dbCfg := postgres.DefaultConfig()
	dbCfg.URL = cfg.Database.URL
	dbCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
	dbCfg.MinConns = int32(cfg.Database.MaxIdleConns)
	dbCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	dbCfg.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime

	dbConn, err := postgres.NewConnection(ctx, dbCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection")
		dbConn.Close()
	}()

	log.Info("running database migrations")
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. REDIS (optional search cache)
	// ─────────────────────────────────────────────────────────────────────────
	var searchCache handler.SearchResultCache
	if cfg.Redis.Enabled {
		log.Info("connecting to redis")
		redisCache, err := redis.NewCacheFromURL(ctx, cfg.Redis.URL)
		if err != nil {
			// /yt falls back to direct API calls without the cache.
			log.Warn("failed to connect to redis, search caching disabled", "error", err)
		} else {
			defer redisCache.Close()
			searchCache = redis.NewSearchCache(redisCache, cfg.Redis.SearchTTL)
			log.Info("redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. EXTERNAL CLIENTS
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.YouTube.APIKey == "" {
		log.Warn("YOUTUBE_API_KEY is not set, /yt will report no results")
	}

	ytConfig := youtube.DefaultClientConfig(cfg.YouTube.APIKey)
	ytConfig.BaseURL = cfg.YouTube.BaseURL
	ytConfig.Timeout = cfg.YouTube.RequestTimeout
	ytConfig.Logger = log
	ytClient := youtube.NewClient(ytConfig)

	// ─────────────────────────────────────────────────────────────────────────
	// 6. APPLICATION LAYER
	// ─────────────────────────────────────────────────────────────────────────
	studentRepo := postgres.NewStudentRepository(dbConn)

	saveCmd := command.NewSaveRecordHandler(studentRepo)
	resetCmd := command.NewResetStudentHandler(studentRepo)
	statsQuery := query.NewGetStatsHandler(studentRepo, cfg.Grading.PassingPercent)

	sessionStore := dialogue.NewStore()
	marksEngine := dialogue.NewEngine(sessionStore, saveCmd, cfg.Grading.PassingPercent, log)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. TELEGRAM BOT
	// ─────────────────────────────────────────────────────────────────────────
	botConfig := telegram.DefaultBotConfig(cfg.Telegram.Token)
	botConfig.PollingTimeout = cfg.Telegram.PollingTimeout
	botConfig.MaxConcurrentUpdates = cfg.Telegram.MaxConcurrentUpdates
	botConfig.Debug = cfg.App.Debug
	botConfig.Logger = log
	botConfig.RateLimit.RequestsPerMinute = cfg.Telegram.UserRateLimit
	botConfig.RateLimit.BurstSize = cfg.Telegram.UserRateLimitBurst
	botConfig.GracefulShutdownTimeout = cfg.App.ShutdownTimeout

	botDeps := telegram.BotDependencies{
		Start:  handler.NewStartHandler(),
		Marks:  handler.NewMarksHandler(marksEngine),
		Stats:  handler.NewStatsHandler(statsQuery, presenter.NewStatsPresenter(cfg.Grading.PassingPercent)),
		Reset:  handler.NewResetHandler(resetCmd),
		Future: handler.NewFutureHandler(cfg.Grading.AttendanceTarget),
		Search: handler.NewSearchHandler(ytClient, searchCache, log),
	}

	bot, err := telegram.NewBot(botConfig, botDeps)
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. RUN AND SHUT DOWN GRACEFULLY
	// ─────────────────────────────────────────────────────────────────────────
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting telegram bot polling")
		if err := bot.Start(ctx); err != nil {
			errCh <- fmt.Errorf("telegram bot error: %w", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		log.Error("service error", "error", err)
		return err
	case <-ctx.Done():
	}

	log.Info("starting graceful shutdown", "timeout", cfg.App.ShutdownTimeout.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := bot.Stop(shutdownCtx); err != nil {
		log.Error("failed to stop bot gracefully", "error", err)
		return err
	}

	log.Info("shutdown completed")
	return nil
}

// setupLogger builds the structured logger from observability settings.
func setupLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Observability.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if cfg.App.Debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if cfg.Observability.LogFormat == "text" || cfg.IsDevelopment() {
		h = slog.NewTextHandler(os.Stdout, opts)
	} else {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}

	log := slog.New(h)
	slog.SetDefault(log)

	return log
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"unipick/backend/internal/cache"
	"unipick/backend/internal/config"
	"unipick/backend/internal/openai"
	"unipick/backend/internal/repository"
	"unipick/backend/internal/server"
	"unipick/backend/internal/telegram"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err) // Should not happen in development
	}
	defer func() {
		_ = logger.Sync() // Flushes buffer, if any
	}()

	// Load configuration
	cfgPath := "configs/config.yml"
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Database connection
	db, err := repository.NewPostgresDB(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	repository.MigrateDB(db, logger)

	// Redis cache (optional)
	statsCache, err := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Warn("Failed to connect to Redis, continuing without cache", zap.Error(err))
		statsCache = nil
	}

	// Moderation classifier
	classifier := openai.NewClient(openai.Config{
		APIKey:    cfg.Moderation.OpenAIAPIKey,
		ModelName: cfg.Moderation.Model,
		Timeout:   time.Duration(cfg.Moderation.TimeoutSeconds) * time.Second,
	}, logger)

	// Telegram notifier (optional)
	profileRepo := repository.NewProfileRepository(db, logger)
	notifier, err := telegram.NewNotifier(cfg.Telegram.Enabled, cfg.Telegram.BotToken, profileRepo, logger)
	if err != nil {
		logger.Warn("Failed to initialize Telegram notifier, continuing without it", zap.Error(err))
		notifier = nil
	}

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Initialize and run the server
	srv := server.NewServer(db, cfg, logger, classifier, notifier, statsCache)
	go srv.Run(cfg.Server.Port)

	<-ctx.Done()
	logger.Info("Application stopped.")
}

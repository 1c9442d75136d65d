package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"cardgenius/internal/amqp"
	"cardgenius/internal/calendar"
	gcal "cardgenius/internal/calendar/google"
	memcal "cardgenius/internal/calendar/memory"
	"cardgenius/internal/config"
	applog "cardgenius/internal/log"
	"cardgenius/internal/scheduler"
	"cardgenius/internal/storage"
)

func main() {
	// Load .env for local development; ignore errors in production.
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	slog.SetDefault(logger.Logger)

	logger.Info("Starting cardgenius-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	var calWriter calendar.Writer
	switch cfg.CalendarBackend {
	case "sheets":
		client, err := gcal.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets calendar", "error", err)
			os.Exit(1)
		}
		calWriter = client
		logger.Info("Content calendar backed by Google Sheets",
			"spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	default:
		calWriter = memcal.New()
		logger.Info("Content calendar backed by memory")
	}

	// The broker is optional: without it the worker still publishes,
	// it just skips the notifications.
	var notifier scheduler.Notifier
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("AMQP unavailable, post notifications disabled", "error", err)
	} else {
		defer amqpClient.Close()
		notifier = amqpClient
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if amqpClient != nil {
		go func() {
			err := amqpClient.ConsumePostPublished(ctx, func(msg *amqp.PostPublishedMessage) error {
				logger.Info("Post published notification received",
					applog.FieldPostID, msg.PostID,
					applog.FieldCardSlug, msg.CardSlug,
					applog.FieldPlatform, msg.Platform,
					"published_at", msg.PublishedAt)
				return nil
			})
			if err != nil && err != context.Canceled {
				logger.Error("Notification consumption failed", "error", err)
			}
		}()
	}

	processorCfg := scheduler.Config{
		PollInterval: cfg.PublishInterval,
		BatchSize:    cfg.PublishBatchSize,
		MaxRetries:   scheduler.DefaultConfig().MaxRetries,
	}
	processor := scheduler.NewProcessor(repo, scheduler.LogPublisher{}, notifier, calWriter, processorCfg)
	if err := processor.Start(ctx); err != nil {
		logger.Error("Failed to start post processor", "error", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Shutdown signal received", "signal", sig.String())

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	if err := processor.Stop(stopCtx); err != nil {
		logger.Error("Post processor stop error", "error", err)
	}
	cancel()

	logger.Info("Worker stopped gracefully")
}

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"cardgenius/internal/catalog"
	"cardgenius/internal/config"
	"cardgenius/internal/genius"
	apphttp "cardgenius/internal/http"
	"cardgenius/internal/llm"
	applog "cardgenius/internal/log"
	"cardgenius/internal/secrets"
	"cardgenius/internal/storage"
)

func main() {
	// Load .env for local development; ignore errors in production.
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	slog.SetDefault(logger.Logger)

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

	var keyStore secrets.Store
	if cfg.SecretsStoreURL != "" {
		keyStore = secrets.NewHTTPStore(cfg.SecretsStoreURL, cfg.SecretsStoreToken)
	}
	keys := secrets.New(keyStore, logger,
		secrets.WithTTL(cfg.SecretTTL),
		secrets.WithEnvOverride(llm.SecretName, cfg.OpenAIKeyOverride))

	cards := catalog.NewClient(cfg.CatalogAPIURL, logger)
	scorer := genius.NewClient(cfg.GeniusAPIURL, logger)
	assistant := llm.NewClient(cfg.LLMBaseURL, cfg.LLMModel, keys, logger)

	srv := apphttp.NewServer(":"+cfg.Port, cards, scorer, assistant, repo, logger)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting cardgenius server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}

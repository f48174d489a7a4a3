package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/ryanbastic/puzzlebox/internal/api"
	"github.com/ryanbastic/puzzlebox/internal/app"
	"github.com/ryanbastic/puzzlebox/internal/config"
	"github.com/ryanbastic/puzzlebox/internal/player"
	"github.com/ryanbastic/puzzlebox/internal/storage"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}
	cfg := config.Load()
	logger := app.NewLogger(cfg)

	if cfg.AdminPassword == "" {
		logger.Error("ADMIN_PASSWORD is not set")
		os.Exit(1)
	}
	if cfg.PublicBlobBaseURL == config.PlaceholderBlobBaseURL {
		logger.Warn("PUBLIC_BLOB_BASE_URL not set; upload URLs use a placeholder domain", "base_url", cfg.PublicBlobBaseURL)
	}

	ctx := context.Background()

	backends, err := app.Open(ctx, cfg, logger, true)
	if err != nil {
		logger.Error("failed to open backends", "error", err)
		os.Exit(1)
	}
	defer backends.Close()

	if err := backends.RegisterMetrics(prometheus.DefaultRegisterer); err != nil {
		logger.Error("failed to register metrics", "error", err)
		os.Exit(1)
	}

	handler := api.NewGameServer(logger, api.GameDeps{
		Catalog:        storage.NewPostgresStore(backends.Pool, cfg.QueryTimeout),
		Players:        player.NewRedisRegistry(backends.Redis),
		Admin:          player.NewRedisAdminCredentials(backends.Redis, cfg.AdminPassword),
		Blobs:          backends.Blobs,
		BlobBaseURL:    cfg.PublicBlobBaseURL,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Backends:       backends.Pingers(),
	})

	if err := app.Run(ctx, logger, cfg.Port, handler); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

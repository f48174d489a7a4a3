package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/ryanbastic/puzzlebox/internal/api"
	"github.com/ryanbastic/puzzlebox/internal/app"
	"github.com/ryanbastic/puzzlebox/internal/config"
	"github.com/ryanbastic/puzzlebox/internal/storage"
	"github.com/ryanbastic/puzzlebox/web"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}
	cfg := config.Load()
	logger := app.NewLogger(cfg)

	ctx := context.Background()

	// The asset manager keeps no state in Redis.
	backends, err := app.Open(ctx, cfg, logger, false)
	if err != nil {
		logger.Error("failed to open backends", "error", err)
		os.Exit(1)
	}
	defer backends.Close()

	if err := backends.RegisterMetrics(prometheus.DefaultRegisterer); err != nil {
		logger.Error("failed to register metrics", "error", err)
		os.Exit(1)
	}

	handler := api.NewAssetServer(logger, api.AssetDeps{
		Gallery:        storage.NewPostgresGalleryStore(backends.Pool, cfg.QueryTimeout),
		Blobs:          backends.Blobs,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Backends:       backends.Pingers(),
		Dist:           web.Dist(),
	})

	if err := app.Run(ctx, logger, cfg.Port, handler); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

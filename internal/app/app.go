// Package app wires configuration to the Postgres pool, Redis client, and
// blob store shared by both binaries, and runs the HTTP server until a
// shutdown signal arrives.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/ryanbastic/puzzlebox/internal/api"
	"github.com/ryanbastic/puzzlebox/internal/blob"
	"github.com/ryanbastic/puzzlebox/internal/config"
	"github.com/ryanbastic/puzzlebox/internal/metrics"
	"github.com/ryanbastic/puzzlebox/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// Backends holds the external stores. Redis and Breaker may be nil.
type Backends struct {
	Pool    *pgxpool.Pool
	Redis   *redis.Client
	Blobs   blob.Store
	Breaker *blob.Breaker
}

// NewLogger returns the JSON logger used by both binaries.
func NewLogger(cfg config.Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
}

// Open connects to Postgres (running migrations), optionally Redis, and the
// configured blob backend. The caller must Close the result.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger, withRedis bool) (*Backends, error) {
	b := &Backends{}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	b.Pool = pool
	if err := pool.Ping(ctx); err != nil {
		b.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info("connected to database")

	if err := storage.RunMigrations(ctx, pool); err != nil {
		b.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("migrations complete")

	if withRedis {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		b.Redis = redis.NewClient(opts)
		if err := b.Redis.Ping(ctx).Err(); err != nil {
			b.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		logger.Info("connected to redis", "addr", opts.Addr, "db", opts.DB)
	}

	store, err := OpenBlobStore(ctx, cfg)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.Blobs = store
	if br, ok := store.(*blob.Breaker); ok {
		b.Breaker = br
	}
	logger.Info("blob store ready", "backend", cfg.BlobBackend, "breaker", b.Breaker != nil)

	return b, nil
}

// OpenBlobStore builds the backend named by BLOB_BACKEND, wrapped in a
// circuit breaker unless BLOB_BREAKER_MAX_FAILURES is zero.
func OpenBlobStore(ctx context.Context, cfg config.Config) (blob.Store, error) {
	var store blob.Store
	switch cfg.BlobBackend {
	case "fs":
		store = blob.NewFSStore(cfg.BlobDir)
	case "s3":
		client, err := blob.NewS3Client(ctx, blob.S3Options{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
		store = blob.NewS3Store(client, cfg.S3Bucket)
	default:
		return nil, fmt.Errorf("unknown BLOB_BACKEND %q", cfg.BlobBackend)
	}

	if cfg.BreakerMaxFailures > 0 {
		store = blob.NewBreaker(store, cfg.BreakerMaxFailures, cfg.BreakerReset)
	}
	return store, nil
}

// Pingers returns the readiness checks for the connected backends.
func (b *Backends) Pingers() map[string]api.Pinger {
	pingers := map[string]api.Pinger{}
	if b.Pool != nil {
		pingers["postgres"] = b.Pool
	}
	if b.Redis != nil {
		rdb := b.Redis
		pingers["redis"] = api.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}
	return pingers
}

// RegisterMetrics registers the pool collector and, when present, the
// breaker state gauge.
func (b *Backends) RegisterMetrics(reg prometheus.Registerer) error {
	if err := reg.Register(metrics.NewPoolCollector(b.Pool, b.Redis)); err != nil {
		return fmt.Errorf("register pool collector: %w", err)
	}
	if b.Breaker != nil {
		br := b.Breaker
		gauge := metrics.NewBreakerGauge(func() float64 { return float64(br.State()) })
		if err := reg.Register(gauge); err != nil {
			return fmt.Errorf("register breaker gauge: %w", err)
		}
	}
	return nil
}

func (b *Backends) Close() {
	if b.Redis != nil {
		b.Redis.Close()
	}
	if b.Pool != nil {
		b.Pool.Close()
	}
}

// Run serves handler on port until ctx is done or SIGINT/SIGTERM arrives,
// then drains in-flight requests.
func Run(ctx context.Context, logger *slog.Logger, port string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", "port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP shutdown: %w", err)
	}
	return nil
}

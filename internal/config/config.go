package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// PlaceholderBlobBaseURL is the public URL prefix used for uploaded SVGs when
// PUBLIC_BLOB_BASE_URL is not configured. It does not resolve to a real bucket.
const PlaceholderBlobBaseURL = "https://your-account.r2.dev/puzzles"

type Config struct {
	DatabaseURL string
	RedisURL    string
	Port        string
	LogLevel    string

	AdminPassword string
	QueryTimeout  time.Duration

	// Blob storage
	BlobBackend        string
	BlobDir            string
	S3Bucket           string
	S3Endpoint         string
	S3Region           string
	S3AccessKeyID      string
	S3SecretAccessKey  string
	PublicBlobBaseURL  string
	MaxUploadBytes     int64
	BreakerMaxFailures int
	BreakerReset       time.Duration
}

func Load() Config {
	return Config{
		DatabaseURL:        getEnvRequired("DATABASE_URL"),
		RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379/0"),
		Port:               getEnv("PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		AdminPassword:      os.Getenv("ADMIN_PASSWORD"),
		QueryTimeout:       getEnvDuration("QUERY_TIMEOUT", 5*time.Second),
		BlobBackend:        getEnv("BLOB_BACKEND", "s3"),
		BlobDir:            getEnv("BLOB_DIR", "./data/blobs"),
		S3Bucket:           getEnv("S3_BUCKET", "puzzles"),
		S3Endpoint:         os.Getenv("S3_ENDPOINT"),
		S3Region:           getEnv("S3_REGION", "auto"),
		S3AccessKeyID:      os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretAccessKey:  os.Getenv("S3_SECRET_ACCESS_KEY"),
		PublicBlobBaseURL:  getEnv("PUBLIC_BLOB_BASE_URL", PlaceholderBlobBaseURL),
		MaxUploadBytes:     int64(getEnvInt("MAX_UPLOAD_BYTES", 32<<20)),
		BreakerMaxFailures: getEnvInt("BLOB_BREAKER_MAX_FAILURES", 5),
		BreakerReset:       getEnvDuration("BLOB_BREAKER_RESET", 30*time.Second),
	}
}

// SlogLevel maps LogLevel onto a slog.Level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
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

func getEnvRequired(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic("required environment variable " + key + " is not set")
	}
	return v
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "error", err)
			return fallback
		}
		return n
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "error", err)
			return fallback
		}
		return d
	}
	return fallback
}

package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"feasibility/internal/config"
	"feasibility/internal/infrastructure"
)

// ErrCacheMiss is returned by Get when the key is absent or expired
var ErrCacheMiss = errors.New("cache miss")

// Store is a byte-oriented key/value store with per-entry expiry
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
	Close() error
}

// Key builds the storage key of one analysis
func Key(prefix, projectID, mode string) string {
	parts := make([]string, 0, 4)
	if prefix != "" {
		parts = append(parts, prefix)
	}
	parts = append(parts, "analysis", projectID, mode)
	return strings.Join(parts, ":")
}

// New creates the store selected by cfg.Backend
func New(cfg config.CacheConfig, logger *slog.Logger) (Store, error) {
	logger = infrastructure.WithComponent(logger, "cache")

	switch cfg.Backend {
	case config.CacheBackendMemory, "":
		logger.Info("using in-memory result cache",
			slog.Duration("ttl", cfg.TTL),
			slog.Duration("cleanup_interval", cfg.CleanupInterval))
		return NewMemoryStore(cfg.TTL, cfg.CleanupInterval), nil
	case config.CacheBackendRedis:
		logger.Info("using redis result cache",
			slog.String("addr", cfg.RedisAddr),
			slog.Int("db", cfg.RedisDB),
			slog.Duration("ttl", cfg.TTL))
		return NewRedisStore(RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.TTL,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", cfg.Backend)
	}
}

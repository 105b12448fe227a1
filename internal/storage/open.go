package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/listingdesk/internal/config"
)

// Purger is implemented by backends that need explicit expiry sweeps.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Open builds the backend selected by cfg.Backend.
func Open(ctx context.Context, cfg config.StorageConfig) (SnapshotStore, error) {
	opts := Options{TTL: cfg.SnapshotTTL}

	switch strings.ToLower(cfg.Backend) {
	case "", "memory":
		return NewMemoryStore(opts), nil
	case "redis":
		s, err := NewRedisStore(ctx, RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, opts)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "postgres":
		s, err := NewPostgresStore(ctx, cfg.DatabaseURL, cfg.MaxConns, opts)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig addresses the redis server.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore keeps snapshots in redis using native key expiry.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects and pings the server.
func NewRedisStore(ctx context.Context, cfg RedisConfig, opts Options) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return NewRedisStoreFromClient(client, opts), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client, opts Options) *RedisStore {
	return &RedisStore{client: client, ttl: opts.TTL}
}

func (r *RedisStore) Save(ctx context.Context, sessionID string, kind Kind, payload string) error {
	if err := r.client.Set(ctx, Key(sessionID, kind), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis save %s: %w", kind, err)
	}
	return nil
}

func (r *RedisStore) Load(ctx context.Context, sessionID string, kind Kind) (string, error) {
	v, err := r.client.Get(ctx, Key(sessionID, kind)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis load %s: %w", kind, err)
	}
	return v, nil
}

func (r *RedisStore) Delete(ctx context.Context, sessionID string) error {
	keys := make([]string, 0, len(Kinds))
	for _, k := range Kinds {
		keys = append(keys, Key(sessionID, k))
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/listingdesk/internal/schema"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps snapshots in the session_snapshots table.
type PostgresStore struct {
	pool *pgxpool.Pool
	opts Options
}

// NewPostgresStore opens a pool, pings it and creates the table if needed.
func NewPostgresStore(ctx context.Context, databaseURL string, maxConns int, opts Options) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		poolConfig.MaxConns = int32(maxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &PostgresStore{pool: pool, opts: opts}
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// EnsureSchema creates the snapshot table and its expiry index.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema.SnapshotDDL); err != nil {
		return fmt.Errorf("create %s: %w", schema.SnapshotTable, err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, sessionID string, kind Kind, payload string) error {
	expires := s.opts.now().Add(s.ttl())
	_, err := s.pool.Exec(ctx, `
		INSERT INTO session_snapshots (key, payload, updated_at, expires_at)
		VALUES ($1, $2, now(), $3)
		ON CONFLICT (key) DO UPDATE
		SET payload = EXCLUDED.payload, updated_at = now(), expires_at = EXCLUDED.expires_at`,
		Key(sessionID, kind), payload, expires)
	if err != nil {
		return fmt.Errorf("postgres save %s: %w", kind, err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, sessionID string, kind Kind) (string, error) {
	var payload string
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM session_snapshots WHERE key = $1 AND expires_at > $2`,
		Key(sessionID, kind), s.opts.now()).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("postgres load %s: %w", kind, err)
	}
	return payload, nil
}

func (s *PostgresStore) Delete(ctx context.Context, sessionID string) error {
	keys := make([]string, 0, len(Kinds))
	for _, k := range Kinds {
		keys = append(keys, Key(sessionID, k))
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM session_snapshots WHERE key = ANY($1)`, keys); err != nil {
		return fmt.Errorf("postgres delete: %w", err)
	}
	return nil
}

// PurgeExpired removes rows past their expiry and returns how many went.
func (s *PostgresStore) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM session_snapshots WHERE expires_at <= $1`, s.opts.now())
	if err != nil {
		return 0, fmt.Errorf("postgres purge: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) ttl() time.Duration {
	if s.opts.TTL > 0 {
		return s.opts.TTL
	}
	return 24 * time.Hour
}

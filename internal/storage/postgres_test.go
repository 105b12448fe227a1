package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/listingdesk/internal/config"
)

// newTestPostgres connects to LISTINGDESK_TEST_DATABASE_URL and skips when
// it is unset.
func newTestPostgres(t *testing.T, now *time.Time) *PostgresStore {
	t.Helper()
	url := os.Getenv("LISTINGDESK_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("LISTINGDESK_TEST_DATABASE_URL not set")
	}

	s, err := NewPostgresStore(context.Background(), url, 2, Options{
		TTL: time.Minute,
		Now: func() time.Time { return *now },
	})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPostgresStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	s := newTestPostgres(t, &now)
	id := uuid.NewString()
	t.Cleanup(func() { s.Delete(ctx, id) })

	_, err := s.Load(ctx, id, KindOrders)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Save(ctx, id, KindOrders, `[{"id":"1"}]`))
	require.NoError(t, s.Save(ctx, id, KindOrders, `[{"id":"2"}]`))

	got, err := s.Load(ctx, id, KindOrders)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"2"}]`, got)

	require.NoError(t, s.Delete(ctx, id))
	_, err = s.Load(ctx, id, KindOrders)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresStore_ExpiryAndPurge(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	s := newTestPostgres(t, &now)
	id := uuid.NewString()
	t.Cleanup(func() { s.Delete(ctx, id) })

	require.NoError(t, s.Save(ctx, id, KindOrders, "x"))
	require.NoError(t, s.Save(ctx, id, KindFinancial, "y"))

	now = now.Add(2 * time.Minute)
	_, err := s.Load(ctx, id, KindOrders)
	assert.ErrorIs(t, err, ErrNotFound)

	purged, err := s.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, purged, int64(2))

	purged, err = s.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, purged)
}

func TestOpen_PostgresBadURL(t *testing.T) {
	_, err := Open(context.Background(), config.StorageConfig{Backend: "postgres", DatabaseURL: "://nope"})
	assert.Error(t, err)
}

func configForRedis(addr, password string) config.StorageConfig {
	return config.StorageConfig{Backend: "redis", RedisAddr: addr, RedisPassword: password, SnapshotTTL: time.Hour}
}

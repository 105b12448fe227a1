package storage

import (
	"context"
	"testing"
	"time"

	"github.com/JonMunkholm/listingdesk/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "session:abc:orders", Key("abc", KindOrders))
	assert.Equal(t, "session:abc:financial", Key("abc", KindFinancial))
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(Options{TTL: time.Hour})

	_, err := s.Load(ctx, "s1", KindOrders)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Save(ctx, "s1", KindOrders, `[{"id":"1"}]`))
	require.NoError(t, s.Save(ctx, "s1", KindFinancial, `[]`))

	got, err := s.Load(ctx, "s1", KindOrders)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"1"}]`, got)

	_, err = s.Load(ctx, "s2", KindOrders)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete(ctx, "s1"))
	assert.Equal(t, 0, s.Len())
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(Options{TTL: time.Minute, Now: func() time.Time { return now }})

	require.NoError(t, s.Save(ctx, "s1", KindOrders, "x"))

	now = now.Add(59 * time.Second)
	_, err := s.Load(ctx, "s1", KindOrders)
	require.NoError(t, err)

	now = now.Add(time.Second)
	_, err = s.Load(ctx, "s1", KindOrders)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, s.Len())
}

func TestOpen_Memory(t *testing.T) {
	s, err := Open(context.Background(), config.StorageConfig{Backend: "memory", SnapshotTTL: time.Hour})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	_, err = Open(context.Background(), config.StorageConfig{Backend: "etcd"})
	assert.Error(t, err)
}

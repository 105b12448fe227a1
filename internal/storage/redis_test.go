package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisStoreFromClient(client, Options{TTL: ttl})
	t.Cleanup(func() { s.Close() })
	return s, mr
}

func TestRedisStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedis(t, time.Hour)

	_, err := s.Load(ctx, "s1", KindOrders)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Save(ctx, "s1", KindOrders, `[{"id":"1"}]`))
	require.NoError(t, s.Save(ctx, "s1", KindFinancial, `[]`))

	got, err := s.Load(ctx, "s1", KindOrders)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"1"}]`, got)
	assert.Equal(t, time.Hour, mr.TTL(Key("s1", KindOrders)))

	require.NoError(t, s.Delete(ctx, "s1"))
	assert.False(t, mr.Exists(Key("s1", KindOrders)))
	assert.False(t, mr.Exists(Key("s1", KindFinancial)))
}

func TestRedisStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedis(t, time.Minute)

	require.NoError(t, s.Save(ctx, "s1", KindOrders, "x"))

	mr.FastForward(59 * time.Second)
	_, err := s.Load(ctx, "s1", KindOrders)
	require.NoError(t, err)

	mr.FastForward(time.Second)
	_, err = s.Load(ctx, "s1", KindOrders)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_ServerError(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedis(t, time.Minute)
	mr.SetError("LOADING server is loading")

	_, err := s.Load(ctx, "s1", KindOrders)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Error(t, s.Save(ctx, "s1", KindOrders, "x"))
}

func TestOpen_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.RequireAuth("secret")

	s, err := Open(context.Background(), configForRedis(mr.Addr(), "secret"))
	require.NoError(t, err)
	defer s.Close()
	assert.IsType(t, &RedisStore{}, s)

	_, err = Open(context.Background(), configForRedis(mr.Addr(), "wrong"))
	assert.Error(t, err)
}

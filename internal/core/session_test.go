package core

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/listingdesk/internal/storage"
)

func TestSessionManager_GetCreatesAndReuses(t *testing.T) {
	m := NewSessionManager(defaultRemote(), nil, nil, SessionOptions{})
	ctx := context.Background()

	s, created := m.Get(ctx, "not-a-uuid")
	require.True(t, created)
	_, err := uuid.Parse(s.ID)
	require.NoError(t, err)

	again, created := m.Get(ctx, s.ID)
	assert.False(t, created)
	assert.Same(t, s, again)
	assert.Equal(t, 1, m.Len())
}

func TestSessionManager_RestoresSnapshots(t *testing.T) {
	store := storage.NewMemoryStore(storage.Options{})
	ctx := context.Background()
	id := uuid.NewString()

	orders, err := json.Marshal([]Order{{ID: "7", Products: []Product{{BNCondition: 1, Broken: 2}}}})
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, id, storage.KindOrders, string(orders)))
	require.NoError(t, store.Save(ctx, id, storage.KindFinancial, `[{"luna":"mai"}]`))

	m := NewSessionManager(defaultRemote(), store, nil, SessionOptions{})
	s, created := m.Get(ctx, id)
	require.True(t, created)

	restored := s.State.Orders()
	require.Len(t, restored, 1)
	assert.Equal(t, 3, restored[0].Products[0].Found)
	assert.Equal(t, "mai", s.State.Financial()[0]["luna"])
}

func TestSessionManager_Reap(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	m := NewSessionManager(defaultRemote(), nil, nil, SessionOptions{IdleTimeout: time.Hour})
	m.now = func() time.Time { return now }

	idle, _ := m.Get(context.Background(), "")
	now = now.Add(45 * time.Minute)
	active, _ := m.Get(context.Background(), "")

	now = now.Add(30 * time.Minute)
	assert.Equal(t, 1, m.Reap())
	assert.Equal(t, 1, m.Len())

	_, created := m.Get(context.Background(), active.ID)
	assert.False(t, created)
	_, created = m.Get(context.Background(), idle.ID)
	assert.True(t, created)
}

func TestSessionManager_SharesDetailCache(t *testing.T) {
	remote := defaultRemote()
	m := NewSessionManager(remote, nil, nil, SessionOptions{})
	a, _ := m.Get(context.Background(), "")
	b, _ := m.Get(context.Background(), "")

	a.Syncer.FetchDetails(context.Background(), []string{"B000000001"})
	b.Syncer.FetchDetails(context.Background(), []string{"B000000001"})
	assert.Equal(t, 1, remote.detailCallCount())
}

package storage

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	payload   string
	expiresAt time.Time
}

// MemoryStore keeps snapshots in process. Expired entries are dropped lazily.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memEntry
	opts    Options
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore(opts Options) *MemoryStore {
	return &MemoryStore{entries: make(map[string]memEntry), opts: opts}
}

func (m *MemoryStore) Save(_ context.Context, sessionID string, kind Kind, payload string) error {
	e := memEntry{payload: payload}
	if m.opts.TTL > 0 {
		e.expiresAt = m.opts.now().Add(m.opts.TTL)
	}

	m.mu.Lock()
	m.entries[Key(sessionID, kind)] = e
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Load(_ context.Context, sessionID string, kind Kind) (string, error) {
	key := Key(sessionID, kind)

	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return "", ErrNotFound
	}
	if !e.expiresAt.IsZero() && !m.opts.now().Before(e.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return "", ErrNotFound
	}
	return e.payload, nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	for _, k := range Kinds {
		delete(m.entries, Key(sessionID, k))
	}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Close() error { return nil }

// Len returns the number of stored entries, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

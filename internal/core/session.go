package core

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/listingdesk/internal/logging"
	"github.com/JonMunkholm/listingdesk/internal/storage"
)

// Session bundles everything one browser session owns.
type Session struct {
	ID      string
	State   *State
	Syncer  *Syncer
	Router  *Router
	Actions *Actions
	Search  *Debouncer

	lastSeen atomic.Int64
}

func (s *Session) touch(now time.Time) { s.lastSeen.Store(now.UnixNano()) }

// LastSeen returns when the session last handled a request.
func (s *Session) LastSeen() time.Time { return time.Unix(0, s.lastSeen.Load()) }

// SessionOptions configure new sessions.
type SessionOptions struct {
	IdleTimeout       time.Duration
	SearchDebounce    time.Duration
	DefaultAccessCode string
}

// SessionManager owns every live session. The detail cache and the
// automation limiter are shared by all of them.
type SessionManager struct {
	remote  Remote
	store   storage.SnapshotStore
	limiter *AutomationLimiter
	cache   *DetailCache
	opts    SessionOptions
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionManager wires a manager. store may be nil.
func NewSessionManager(remote Remote, store storage.SnapshotStore, limiter *AutomationLimiter, opts SessionOptions) *SessionManager {
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 2 * time.Hour
	}
	if limiter == nil {
		limiter = NewAutomationLimiter(0, 0)
	}
	return &SessionManager{
		remote:   remote,
		store:    store,
		limiter:  limiter,
		cache:    NewDetailCache(),
		opts:     opts,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Limiter returns the shared automation limiter.
func (m *SessionManager) Limiter() *AutomationLimiter { return m.limiter }

// Get returns the session for id, creating it when id is unknown. An empty
// or malformed id gets a fresh uuid; callers should hand session.ID back to
// the browser. New sessions restore persisted orders and financial records.
func (m *SessionManager) Get(ctx context.Context, id string) (*Session, bool) {
	if parsed, err := uuid.Parse(id); err == nil {
		id = parsed.String()
	} else {
		id = uuid.NewString()
	}

	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		s.touch(m.now())
		return s, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.touch(m.now())
		return s, false
	}

	s = m.newSession(id)
	m.restore(logging.WithSessionID(ctx, id), s)
	s.touch(m.now())
	m.sessions[id] = s

	logging.FromContext(ctx).Debug("session created", "session_id", id, "sessions", len(m.sessions))
	return s, true
}

func (m *SessionManager) newSession(id string) *Session {
	state := NewState(m.opts.DefaultAccessCode)
	syncer := NewSyncer(m.remote, state, m.cache, m.store, id)
	return &Session{
		ID:      id,
		State:   state,
		Syncer:  syncer,
		Router:  NewRouter(state, syncer, NewExporter(syncer)),
		Actions: NewActions(state, syncer, m.limiter),
		Search:  NewDebouncer(m.opts.SearchDebounce),
	}
}

func (m *SessionManager) restore(ctx context.Context, s *Session) {
	if m.store == nil {
		return
	}
	logger := logging.FromContext(ctx)

	var orders []Order
	var financial []FinancialRecord
	for kind, dst := range map[storage.Kind]any{
		storage.KindOrders:    &orders,
		storage.KindFinancial: &financial,
	} {
		payload, err := m.store.Load(ctx, s.ID, kind)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			logger.Warn("snapshot load failed", "kind", kind, "error", err)
			continue
		}
		if err := json.Unmarshal([]byte(payload), dst); err != nil {
			logger.Warn("snapshot decode failed", "kind", kind, "error", err)
		}
	}

	s.State.Restore(orders, financial)
	if orders != nil || financial != nil {
		logger.Info("session restored", "orders", len(orders), "financial", len(financial))
	}
}

// Len returns the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Reap drops sessions idle for longer than the idle timeout. Their
// snapshots stay in the store until they expire, so a returning browser
// gets its orders back.
func (m *SessionManager) Reap() int {
	cutoff := m.now().Add(-m.opts.IdleTimeout)

	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

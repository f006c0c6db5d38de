// Package session hosts many isolated conversations. The manager hands
// out per-session single-flight access to a SessionContext; the store
// implementations keep the durable copy.
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/zentrium/assistant-engine-go/internal/domain"
	"github.com/zentrium/assistant-engine-go/internal/infra/cache"
	"github.com/zentrium/assistant-engine-go/internal/infra/observability"
	"github.com/zentrium/assistant-engine-go/internal/port"
)

// Manager guards each SessionContext with its own mutex so the engine
// sees one logical thread of execution per conversation. Live contexts
// sit in a TTL cache; evicted or unseen sessions are restored from the
// store on first touch.
type Manager struct {
	store   port.SessionStore
	live    *cache.InMemory[*domain.SessionContext]
	metrics *observability.Metrics
	logger  *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	now func() time.Time
}

// NewManager creates a manager whose in-memory contexts expire after
// ttl of inactivity. Expiry only drops the hot copy; the store still
// has everything needed to restore the session.
func NewManager(store port.SessionStore, ttl time.Duration, metrics *observability.Metrics, logger *zap.Logger) *Manager {
	return &Manager{
		store:   store,
		live:    cache.New[*domain.SessionContext](ttl),
		metrics: metrics,
		logger:  logger,
		locks:   make(map[string]*sync.Mutex),
		now:     time.Now,
	}
}

func (m *Manager) lockFor(sessionID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[sessionID] = l
	}
	return l
}

// Handle runs fn with exclusive access to the session's context,
// restoring it from the store first if it is not live. The context is
// put back in the cache afterwards, refreshing its TTL.
func (m *Manager) Handle(ctx context.Context, sessionID string, fn func(sc *domain.SessionContext)) {
	l := m.lockFor(sessionID)
	l.Lock()
	defer l.Unlock()

	sc, ok := m.live.Get(sessionID)
	if ok {
		m.metrics.IncrCacheHit("session")
	} else {
		m.metrics.IncrCacheMiss("session")
		sc = m.restore(ctx, sessionID)
	}

	fn(sc)
	m.live.Set(sessionID, sc)
}

// Each calls fn for every live session ID. Used by the idle monitor;
// sessions that fell out of the cache are by definition not idle
// candidates (nobody has the widget open on them).
func (m *Manager) Each(fn func(sessionID string)) {
	m.live.Range(func(key string, _ *domain.SessionContext) bool {
		fn(key)
		return true
	})
}

// restore rebuilds a context from the persistent store. Store errors
// degrade to a fresh session; that is the contract for every read path.
func (m *Manager) restore(ctx context.Context, sessionID string) *domain.SessionContext {
	sc := domain.NewSessionContext(sessionID, m.now())

	history, err := m.store.LoadHistory(ctx, sessionID)
	if err != nil {
		m.metrics.IncrStoreError("load_history")
		m.logger.Warn("failed to load history, starting fresh",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	} else if len(history) > 0 {
		sc.History = history
		for _, turn := range history {
			if turn.Role == domain.RoleUser {
				sc.MessageCount++
			}
		}
	}

	profile, err := m.store.LoadProfile(ctx, sessionID)
	if err != nil {
		m.metrics.IncrStoreError("load_profile")
		m.logger.Warn("failed to load profile, starting fresh",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	} else {
		sc.Profile = profile
	}

	return sc
}

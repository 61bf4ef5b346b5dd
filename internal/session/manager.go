package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"pawhub/internal/models"
)

// DefaultIdleTTL is how long an untouched store stays in memory.
const DefaultIdleTTL = 30 * time.Minute

type storeKey struct {
	kind    models.SessionKind
	visitor string
}

// Manager hands out one Store per (kind, visitor), all sharing a Persister.
// The first access to a store starts its rehydration.
type Manager struct {
	persister        Persister
	prefix           string
	logger           *slog.Logger
	idleTTL          time.Duration
	rehydrateTimeout time.Duration
	now              func() time.Time

	mu     sync.Mutex
	stores map[storeKey]*Store
}

// Option configures a Manager.
type Option func(*Manager)

// WithKeyPrefix namespaces persisted keys.
func WithKeyPrefix(prefix string) Option {
	return func(m *Manager) { m.prefix = prefix }
}

// WithLogger overrides the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithIdleTTL overrides how long an untouched store stays in memory.
func WithIdleTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.idleTTL = ttl
		}
	}
}

// WithRehydrateTimeout bounds one rehydration.
func WithRehydrateTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.rehydrateTimeout = d
		}
	}
}

// WithClock overrides the time source used for idle tracking.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a manager over persister.
func NewManager(persister Persister, opts ...Option) *Manager {
	m := &Manager{
		persister:        persister,
		logger:           slog.Default(),
		idleTTL:          DefaultIdleTTL,
		rehydrateTimeout: 3 * time.Second,
		now:              time.Now,
		stores:           make(map[storeKey]*Store),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Store returns the visitor's store of kind, starting rehydration on first use.
func (m *Manager) Store(kind models.SessionKind, visitorID string) *Store {
	k := storeKey{kind: kind, visitor: visitorID}

	m.mu.Lock()
	st, ok := m.stores[k]
	if !ok {
		st = NewStore(kind, Key(m.prefix, kind, visitorID), m.persister, m.logger)
		m.stores[k] = st
	}
	m.mu.Unlock()

	st.touch(m.now())
	if !ok {
		go m.rehydrate(st)
	}
	return st
}

func (m *Manager) rehydrate(st *Store) {
	ctx, cancel := context.WithTimeout(context.Background(), m.rehydrateTimeout)
	defer cancel()
	_ = st.Rehydrate(ctx) // logged by the store
}

// EvictIdle drops settled stores untouched since now minus the idle TTL.
// Persisted sessions are kept.
func (m *Manager) EvictIdle(_ context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-m.idleTTL)

	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k, st := range m.stores {
		if st.idleSince(cutoff) {
			delete(m.stores, k)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stores in memory.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stores)
}

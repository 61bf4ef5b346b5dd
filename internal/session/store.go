// Package session holds login sessions per visitor and kind, backed by a
// Persister so that they survive server restarts and idle eviction.
//
// A store starts Pending and stays Pending until rehydration from the
// persister completes. Code that must decide whether a visitor is signed in
// awaits rehydration first; a Pending store is never treated as signed out.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"pawhub/internal/models"
	dErrors "pawhub/pkg/domain-errors"
)

// Status of a Store.
type Status int

const (
	StatusPending Status = iota
	StatusUnauthenticated
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Store is the session of one kind for one visitor.
type Store struct {
	kind      models.SessionKind
	key       string
	persister Persister
	logger    *slog.Logger

	mu       sync.Mutex
	status   Status
	session  models.Session
	gen      uint64
	ready    chan struct{}
	lastUsed time.Time
}

// NewStore creates a Pending store for key. Call Rehydrate to settle it.
func NewStore(kind models.SessionKind, key string, persister Persister, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		kind:      kind,
		key:       key,
		persister: persister,
		logger:    logger,
		status:    StatusPending,
		ready:     make(chan struct{}),
	}
}

// Kind returns the session kind held by the store.
func (s *Store) Kind() models.SessionKind { return s.kind }

// Key returns the persisted key.
func (s *Store) Key() string { return s.key }

// Rehydrate replaces the in-memory state with what the persister holds.
// An unreadable or missing entry leaves the store unauthenticated; backend
// errors are logged and returned. A Set or Clear issued while rehydration is
// in flight wins over the loaded value.
func (s *Store) Rehydrate(ctx context.Context) error {
	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()

	sess, found, err := s.persister.Load(ctx, s.key)
	if err != nil {
		s.logger.ErrorContext(ctx, "session rehydration failed",
			"kind", string(s.kind),
			"error", err,
		)
		found = false
	}
	if found && (sess.AccessToken == "" || sess.Kind != s.kind) {
		s.logger.WarnContext(ctx, "discarding persisted session with mismatched kind or no token",
			"kind", string(s.kind),
		)
		found = false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == gen {
		if found {
			s.session = sess
			s.status = StatusAuthenticated
		} else {
			s.session = models.Session{}
			s.status = StatusUnauthenticated
		}
	}
	s.markReadyLocked()
	return err
}

// Set replaces the session wholesale and persists it. If persisting fails
// the previous state is kept.
func (s *Store) Set(ctx context.Context, sess models.Session) error {
	if sess.Kind == "" {
		sess.Kind = s.kind
	}
	if sess.Kind != s.kind {
		return dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("cannot store a %s session in the %s store", sess.Kind, s.kind))
	}
	if strings.TrimSpace(sess.AccessToken) == "" {
		return dErrors.New(dErrors.CodeValidation, "session has no access token")
	}
	if err := s.persister.Save(ctx, s.key, sess); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "could not save session")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.session = sess
	s.status = StatusAuthenticated
	s.markReadyLocked()
	return nil
}

// Clear signs the visitor out and deletes the persisted entry. The in-memory
// session is cleared even when the delete fails.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.gen++
	s.session = models.Session{}
	s.status = StatusUnauthenticated
	s.markReadyLocked()
	s.mu.Unlock()

	if err := s.persister.Delete(ctx, s.key); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "could not clear session")
	}
	return nil
}

// Current returns the session and status without waiting.
func (s *Store) Current() (models.Session, Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session, s.status
}

// Await waits for rehydration, then returns the session and status.
func (s *Store) Await(ctx context.Context) (models.Session, Status, error) {
	s.mu.Lock()
	ready := s.ready
	s.mu.Unlock()

	select {
	case <-ready:
	case <-ctx.Done():
		return models.Session{}, StatusPending, ctx.Err()
	}
	sess, status := s.Current()
	return sess, status, nil
}

// AccessToken returns the bearer token of an authenticated store, waiting for
// rehydration first. It is empty when nobody is signed in.
func (s *Store) AccessToken(ctx context.Context) string {
	sess, status, err := s.Await(ctx)
	if err != nil || status != StatusAuthenticated {
		return ""
	}
	return sess.AccessToken
}

func (s *Store) markReadyLocked() {
	select {
	case <-s.ready:
	default:
		close(s.ready)
	}
}

func (s *Store) idleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusPending {
		return false
	}
	return s.lastUsed.Before(cutoff)
}

func (s *Store) touch(now time.Time) {
	s.mu.Lock()
	s.lastUsed = now
	s.mu.Unlock()
}

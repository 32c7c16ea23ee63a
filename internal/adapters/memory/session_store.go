// Package memory keeps explorer sessions in process memory. cmd/api falls back
// to it when Valkey is unreachable, and tests use it as a real store.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/samirrijal/neverbeen/internal/core/domain"
)

type entry struct {
	session   domain.Session
	expiresAt time.Time
}

// SessionStore implements ports.SessionStore in memory.
type SessionStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewSessionStore creates a store whose entries expire ttl after their last save.
// A zero ttl keeps entries forever.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{entries: make(map[string]entry), ttl: ttl, now: time.Now}
}

func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok || s.expired(e) {
		return nil, domain.ErrSessionNotFound
	}
	sess := e.session
	if e.session.Destination != nil {
		d := *e.session.Destination
		sess.Destination = &d
	}
	return &sess, nil
}

func (s *SessionStore) Save(ctx context.Context, sess *domain.Session) error {
	e := entry{session: *sess}
	if sess.Destination != nil {
		d := *sess.Destination
		e.session.Destination = &d
	}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sess.ID] = e
	s.sweep()
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) expired(e entry) bool {
	return !e.expiresAt.IsZero() && s.now().After(e.expiresAt)
}

// sweep drops expired entries. Caller holds mu.
func (s *SessionStore) sweep() {
	for id, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, id)
		}
	}
}

package valkey

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/samirrijal/neverbeen/internal/core/domain"
)

// SessionStore implements ports.SessionStore on top of Cache. Every save
// refreshes the TTL, so idle sessions expire on their own.
type SessionStore struct {
	cache      *Cache
	ttlSeconds int
}

// NewSessionStore creates a session store sharing the cache client.
func NewSessionStore(cache *Cache, ttlSeconds int) *SessionStore {
	return &SessionStore{cache: cache, ttlSeconds: ttlSeconds}
}

func sessionKey(id string) string { return "sessions:" + id }

func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	data, err := s.cache.Get(ctx, sessionKey(id))
	if err != nil {
		if IsMiss(err) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	var sess domain.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &sess, nil
}

func (s *SessionStore) Save(ctx context.Context, sess *domain.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, sessionKey(sess.ID), data, s.ttlSeconds)
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.cache.Delete(ctx, sessionKey(id))
}

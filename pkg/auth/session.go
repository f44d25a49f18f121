package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/jordanlanch/printfast/pkg/cache"
)

// ErrSessionNotFound is returned for unknown or expired session ids
var ErrSessionNotFound = errors.New("session not found or expired")

// SessionStore keeps server-side sessions in Redis, keyed by an opaque id
// carried in a cookie. Each entry stores the user id.
type SessionStore struct {
	cache *cache.Client
	ttl   time.Duration
}

// NewSessionStore creates a Redis-backed session store
func NewSessionStore(cache *cache.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{cache: cache, ttl: ttl}
}

// TTL returns the lifetime of new sessions
func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

// Create starts a session for userID and returns its id
func (s *SessionStore) Create(ctx context.Context, userID string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	id := base64.RawURLEncoding.EncodeToString(buf)

	if err := s.cache.Set(ctx, sessionKey(id), userID, s.ttl); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return id, nil
}

// Lookup returns the user id bound to a session and slides its expiry
func (s *SessionStore) Lookup(ctx context.Context, id string) (string, error) {
	userID, err := s.cache.Get(ctx, sessionKey(id))
	if errors.Is(err, cache.ErrMiss) {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	if err := s.cache.Expire(ctx, sessionKey(id), s.ttl); err != nil {
		return "", fmt.Errorf("refresh session: %w", err)
	}
	return userID, nil
}

// Destroy removes a session
func (s *SessionStore) Destroy(ctx context.Context, id string) error {
	return s.cache.Delete(ctx, sessionKey(id))
}

func sessionKey(id string) string {
	return "session:" + id
}

// internal/domain/checkout/session_store.go
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	redisstore "github.com/berkelium/storefront/internal/infrastructure/database/redis"
	"github.com/redis/go-redis/v9"
)

// SessionStore persists checkout sessions by cart id
type SessionStore interface {
	Get(ctx context.Context, cartID string) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, cartID string) error
}

// RedisSessionStore keeps sessions as JSON blobs with a sliding TTL
type RedisSessionStore struct {
	client *redisstore.Client
	ttl    time.Duration
}

// NewRedisSessionStore creates a Redis-backed session store
func NewRedisSessionStore(client *redisstore.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func sessionKey(cartID string) string {
	return fmt.Sprintf("checkout:session:%s", cartID)
}

// Get returns ErrSessionNotFound when no session exists for cartID
func (s *RedisSessionStore) Get(ctx context.Context, cartID string) (*Session, error) {
	var session Session
	if err := s.client.GetJSON(ctx, sessionKey(cartID), &session); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load checkout session: %w", err)
	}
	return &session, nil
}

// Save writes the session and refreshes its TTL
func (s *RedisSessionStore) Save(ctx context.Context, session *Session) error {
	if err := s.client.SetJSON(ctx, sessionKey(session.CartID), session, s.ttl); err != nil {
		return fmt.Errorf("failed to save checkout session: %w", err)
	}
	return nil
}

// Delete removes the session
func (s *RedisSessionStore) Delete(ctx context.Context, cartID string) error {
	return s.client.Del(ctx, sessionKey(cartID))
}

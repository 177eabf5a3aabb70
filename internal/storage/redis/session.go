// Package redis stores checkout sessions in Redis so carts survive restarts
// and are shared between API replicas.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/redis/go-redis/v9"

	"github.com/xenking/brosmart/internal/domain/checkout"
)

const keyPrefix = "brosmart:session:"

var _ checkout.SessionStore = (*SessionStore)(nil)

// SessionStore implements checkout.SessionStore with one string key per
// session holding the JSON-encoded state.
type SessionStore struct {
	client *redis.Client
}

// NewClient parses redisURL and verifies the server responds.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return client, nil
}

// NewSessionStore returns a SessionStore using client.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func sessionKey(id string) string {
	return keyPrefix + id
}

// Load returns a fresh state for unknown or expired sessions.
func (s *SessionStore) Load(ctx context.Context, id string) (checkout.State, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return checkout.NewState(), nil
		}
		return checkout.State{}, fmt.Errorf("getting session %q: %w", id, err)
	}

	var st checkout.State
	if err := st.Decode(jx.DecodeBytes(data)); err != nil {
		return checkout.State{}, fmt.Errorf("decoding session %q: %w", id, err)
	}
	return st, nil
}

// Save overwrites the session and resets its expiry.
func (s *SessionStore) Save(ctx context.Context, id string, st checkout.State, ttl time.Duration) error {
	var e jx.Encoder
	st.Encode(&e)

	if err := s.client.Set(ctx, sessionKey(id), e.Bytes(), ttl).Err(); err != nil {
		return fmt.Errorf("setting session %q: %w", id, err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("deleting session %q: %w", id, err)
	}
	return nil
}

// Ping reports whether Redis is reachable. It matches health.CheckFunc.
func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

package redis

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionKey(t *testing.T) {
	assert.Equal(t, "brosmart:session:abc", sessionKey("abc"))
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := NewClient(context.Background(), "http://localhost:6379")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing redis URL")
}

func TestSessionStore_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	s := NewSessionStore(client)

	_, err := s.Load(context.Background(), "s1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `getting session "s1"`)

	require.Error(t, s.Ping(context.Background()))
}

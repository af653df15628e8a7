package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to create miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return client, mr
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("")

	token, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, s.SetToken(ctx, "abc"))
	token, _ = s.Token(ctx)
	assert.Equal(t, "abc", token)

	require.NoError(t, s.Clear(ctx))
	token, _ = s.Token(ctx)
	assert.Empty(t, token)
}

func TestRedisStore_RoundTrip(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()
	s := NewRedisStore(client, "sess-1", time.Minute)

	token, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token, "missing key means no credential")

	require.NoError(t, s.SetToken(ctx, "jwt-value"))
	assert.True(t, mr.Exists("boleteria:session:sess-1:access_token"))

	token, err = s.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "jwt-value", token)

	other := NewRedisStore(client, "sess-2", time.Minute)
	token, err = other.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token, "sessions do not share credentials")

	require.NoError(t, s.Clear(ctx))
	token, err = s.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestRedisStore_Expiry(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()
	s := NewRedisStore(client, "sess-ttl", time.Minute)

	require.NoError(t, s.SetToken(ctx, "short-lived"))
	mr.FastForward(2 * time.Minute)

	token, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestRedisStore_CorruptValue(t *testing.T) {
	client, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("boleteria:session:bad:access_token", "not-json"))

	_, err := NewRedisStore(client, "bad", 0).Token(context.Background())
	assert.Error(t, err)
}

func TestRedisStore_NilClient(t *testing.T) {
	s := &RedisStore{SessionID: "x"}
	_, err := s.Token(context.Background())
	assert.Error(t, err)
	assert.Error(t, s.SetToken(context.Background(), "t"))
	assert.Error(t, s.Clear(context.Background()))
}

func TestConnect(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()

	client, err := Connect(context.Background(), addr, 0)
	require.NoError(t, err)
	client.Close()

	mr.Close()
	_, err = Connect(context.Background(), addr, 0)
	assert.Error(t, err)
}

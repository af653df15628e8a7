package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "boleteria:session:"

type storedToken struct {
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}

// RedisStore keeps each UI session's credential in Redis so that several
// front-end replicas can serve the same browser session.
type RedisStore struct {
	Client    *redis.Client
	SessionID string
	TTL       time.Duration
}

func NewRedisStore(client *redis.Client, sessionID string, ttl time.Duration) *RedisStore {
	return &RedisStore{Client: client, SessionID: sessionID, TTL: ttl}
}

func (s *RedisStore) key() string {
	return keyPrefix + s.SessionID + ":access_token"
}

func (s *RedisStore) Token(ctx context.Context) (string, error) {
	if s.Client == nil {
		return "", fmt.Errorf("redis client not initialized")
	}

	raw, err := s.Client.Get(ctx, s.key()).Result()
	if err == redis.Nil {
		return "", nil
	} else if err != nil {
		return "", fmt.Errorf("failed to get token from Redis: %w", err)
	}

	var stored storedToken
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return "", fmt.Errorf("failed to unmarshal stored token: %w", err)
	}
	return stored.Token, nil
}

func (s *RedisStore) SetToken(ctx context.Context, token string) error {
	if s.Client == nil {
		return fmt.Errorf("redis client not initialized")
	}

	payload, err := json.Marshal(storedToken{Token: token, SavedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	// A zero TTL keeps the key until logout.
	if err := s.Client.Set(ctx, s.key(), payload, s.TTL).Err(); err != nil {
		return fmt.Errorf("failed to store token in Redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if s.Client == nil {
		return fmt.Errorf("redis client not initialized")
	}
	if err := s.Client.Del(ctx, s.key()).Err(); err != nil {
		return fmt.Errorf("failed to clear token in Redis: %w", err)
	}
	return nil
}

// Connect opens a Redis client and checks it answers.
func Connect(ctx context.Context, addr string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		DB:       db,
		PoolSize: 10,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection error: %w", err)
	}
	return client, nil
}

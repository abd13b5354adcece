// Package session provides the server-side admin session store, backed by
// Redis. Cookies carry only an opaque token; user resolution always goes
// through the store so revocation is immediate.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTL is the sliding lifetime of an admin session.
const TTL = 24 * time.Hour

const sessionKeyPrefix = "session:"

// ErrNotFound indicates the token maps to no active session.
var ErrNotFound = errors.New("session not found")

// Store is the interface handlers and middleware depend on.
type Store interface {
	Create(ctx context.Context, token, userID string) error
	Get(ctx context.Context, token string) (userID string, err error)
	Destroy(ctx context.Context, token string) error
}

// RedisStore implements Store on a Redis client.
type RedisStore struct {
	client *redis.Client
}

// New connects to Redis and returns a RedisStore.
func New(ctx context.Context, redisURL string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// Connection pool settings
	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)

	// Verify connection
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// Ping checks Redis connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Create registers a session token for a user.
func (s *RedisStore) Create(ctx context.Context, token, userID string) error {
	if err := s.client.Set(ctx, sessionKeyPrefix+token, userID, TTL).Err(); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// Get resolves a token to its user id and refreshes the TTL, so active
// admins are not logged out mid-session.
func (s *RedisStore) Get(ctx context.Context, token string) (string, error) {
	key := sessionKeyPrefix + token

	userID, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get session: %w", err)
	}

	// Best effort; an expiry refresh failure is not a lookup failure.
	_ = s.client.Expire(ctx, key, TTL).Err()

	return userID, nil
}

// Destroy removes a session. Destroying an absent session is a no-op.
func (s *RedisStore) Destroy(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}

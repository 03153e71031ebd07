package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/voxwallet-hq/voxwallet/pkg/metrics"
	"github.com/voxwallet-hq/voxwallet/pkg/models"
	"github.com/voxwallet-hq/voxwallet/pkg/retry"
)

// reconnectBackoff is the pause before the single retry after a failed
// store operation.
const reconnectBackoff = 250 * time.Millisecond

// RedisStore implements Store on a Redis key-value cache with expiry.
// Each operation tolerates one transient connectivity loss: it reconnects
// and retries exactly once before surfacing the failure.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %v", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

func sessionKey(userID int64) string {
	return fmt.Sprintf("session:%d", userID)
}

// Get loads the user's session. A missing or expired key yields the idle
// session, not an error.
func (s *RedisStore) Get(ctx context.Context, userID int64) (models.Session, error) {
	var raw string
	err := s.withReconnect(ctx, func(ctx context.Context) error {
		var err error
		raw, err = s.client.Get(ctx, sessionKey(userID)).Result()
		return err
	})
	if err == redis.Nil {
		return models.IdleSession(), nil
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to load session for user %d: %v", userID, err)
	}

	var session models.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return models.Session{}, fmt.Errorf("failed to decode session for user %d: %v", userID, err)
	}
	return session, nil
}

// Set stores the session and arms the TTL.
func (s *RedisStore) Set(ctx context.Context, userID int64, session models.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session for user %d: %v", userID, err)
	}

	err = s.withReconnect(ctx, func(ctx context.Context) error {
		return s.client.Set(ctx, sessionKey(userID), data, s.ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to store session for user %d: %v", userID, err)
	}
	return nil
}

// Clear removes the session. Clearing an absent session is not an error.
func (s *RedisStore) Clear(ctx context.Context, userID int64) error {
	err := s.withReconnect(ctx, func(ctx context.Context) error {
		return s.client.Del(ctx, sessionKey(userID)).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to clear session for user %d: %v", userID, err)
	}
	return nil
}

// withReconnect retries the operation exactly once after a failure that is
// not a cache miss. redis.Nil is a result, not a connectivity problem.
func (s *RedisStore) withReconnect(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := 0
	var result error
	err := retry.Do(ctx, 2, reconnectBackoff, func(ctx context.Context) error {
		attempts++
		result = op(ctx)
		if result == redis.Nil {
			return nil
		}
		return result
	})
	if attempts > 1 {
		metrics.SessionStoreRetries.Inc()
	}
	if err != nil {
		return err
	}
	return result
}

// TTL reports the expiry applied to stored sessions.
func (s *RedisStore) TTL() time.Duration {
	return s.ttl
}

// Close releases the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping verifies the Redis connection is alive.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

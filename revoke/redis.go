package revoke

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "carv"

// RedisStore is a Store backed by Redis keys with native TTL expiry. It is
// the closest this subsystem gets to cross-process revocation, and it is
// still advisory: Redis unavailability surfaces as an error the caller may
// ignore.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a RedisStore. An empty prefix selects "carv".
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}

	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

func (s *RedisStore) key(tokenStr string) string {
	return s.prefix + ":" + tokenStr
}

// Revoke records the token with a TTL matching its remaining lifetime.
// Already expired tokens are not recorded.
func (s *RedisStore) Revoke(ctx context.Context, tokenStr string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	return s.client.Set(ctx, s.key(tokenStr), "1", ttl).Err()
}

// IsRevoked reports whether the token key still exists.
func (s *RedisStore) IsRevoked(ctx context.Context, tokenStr string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(tokenStr)).Result()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

// SweepExpired is a no-op: Redis expires entries natively.
func (s *RedisStore) SweepExpired(context.Context) error {
	return nil
}

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore remembers token IDs (jti) that were logged out before
// their natural expiry.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RedisRevocationStore keeps one key per revoked token and lets Redis expire
// it together with the token, so the list never outgrows live sessions.
type RedisRevocationStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisRevocationStore creates a store under keyPrefix (typically ending with a colon).
func NewRedisRevocationStore(client redis.UniversalClient, keyPrefix string) *RedisRevocationStore {
	return &RedisRevocationStore{
		client: client,
		prefix: keyPrefix + "revoked:",
	}
}

// Revoke marks tokenID as revoked for ttl. A non-positive ttl means the
// token already expired and nothing is stored.
func (s *RedisRevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, s.prefix+tokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis: failed to revoke token: %w", err)
	}
	return nil
}

func (s *RedisRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.prefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("redis: failed to check token: %w", err)
	}
	return n > 0, nil
}

// NopRevocationStore is used when Redis is disabled: logout only clears the
// cookie and tokens stay valid until they expire.
type NopRevocationStore struct{}

func (NopRevocationStore) Revoke(context.Context, string, time.Duration) error { return nil }

func (NopRevocationStore) IsRevoked(context.Context, string) (bool, error) { return false, nil }

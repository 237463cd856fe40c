package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Entry is a cached value in the durable tier together with the tag
// generations that were current when the value was loaded.
type Entry struct {
	Generations map[string]int64 `json:"g"`
	Data        json.RawMessage  `json:"d"`
}

// Durable is the shared cache tier. Implementations must be safe for
// concurrent use.
type Durable interface {
	// Lookup returns the entry stored under key (nil when absent) and the
	// current generations of tags.
	Lookup(ctx context.Context, key string, tags []string) (*Entry, map[string]int64, error)
	Store(ctx context.Context, key string, e *Entry, ttl time.Duration) error
	// Bump increments the generation of every tag.
	Bump(ctx context.Context, tags []string) error
}

// RedisStore keeps entries and tag generations in Redis.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore creates a store whose keys start with keyPrefix (typically ending with a colon).
func NewRedisStore(client redis.UniversalClient, keyPrefix string) *RedisStore {
	return &RedisStore{client: client, prefix: keyPrefix}
}

func (s *RedisStore) entryKey(key string) string { return s.prefix + "cache:" + key }

func (s *RedisStore) tagKey(tag string) string { return s.prefix + "tag:" + tag }

func (s *RedisStore) Lookup(ctx context.Context, key string, tags []string) (*Entry, map[string]int64, error) {
	var (
		mget *redis.SliceCmd
		get  *redis.StringCmd
	)

	_, err := s.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		if len(tags) > 0 {
			keys := make([]string, len(tags))
			for i, t := range tags {
				keys[i] = s.tagKey(t)
			}
			mget = p.MGet(ctx, keys...)
		}
		get = p.Get(ctx, s.entryKey(key))
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, nil, fmt.Errorf("redis: lookup failed: %w", err)
	}

	gens := make(map[string]int64, len(tags))
	if mget != nil {
		for i, v := range mget.Val() {
			gens[tags[i]] = parseGeneration(v)
		}
	}

	raw, err := get.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, gens, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("redis: lookup failed: %w", err)
	}

	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		// unreadable entries are treated as absent and overwritten on fill
		return nil, gens, nil
	}
	return &e, gens, nil
}

func (s *RedisStore) Store(ctx context.Context, key string, e *Entry, ttl time.Duration) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.entryKey(key), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis: store failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Bump(ctx context.Context, tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for _, t := range tags {
			p.Incr(ctx, s.tagKey(t))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis: bump failed: %w", err)
	}
	return nil
}

func parseGeneration(v any) int64 {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

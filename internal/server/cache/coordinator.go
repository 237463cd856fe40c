package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/soncatalog/internal/logging"
	"golang.org/x/sync/singleflight"
)

// Coordinator serves cached reads from two tiers, the in-process memory
// tier and an optional durable tier, and invalidates them by tag.
//
// A read that starts after Invalidate returned never observes a value
// loaded before that call: every entry records the tag generations seen
// before its query ran and is discarded once any of them moves.
type Coordinator struct {
	mem       *memoryStore
	durable   Durable
	memoryTTL time.Duration
	group     singleflight.Group
	logger    logging.Logger
	now       func() time.Time
}

type Option func(*Coordinator)

// WithDurable enables the shared tier.
func WithDurable(d Durable) Option {
	return func(c *Coordinator) {
		c.durable = d
	}
}

// WithClock replaces time.Now for memory tier expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

// NewCoordinator creates a coordinator. memoryTTL caps how long a value
// stays in process memory regardless of the query TTL; it bounds how stale
// a replica can be after another replica invalidated.
func NewCoordinator(memoryTTL time.Duration, l logging.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		mem:       newMemoryStore(),
		memoryTTL: memoryTTL,
		logger:    l.With("module", "cache"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Invalidate drops every cached value depending on any of tags. Memory is
// always invalidated; an error means the durable tier could not be updated.
func (c *Coordinator) Invalidate(ctx context.Context, tags ...string) error {
	if len(tags) == 0 {
		return nil
	}

	dropped := c.mem.invalidate(tags)
	c.logger.Debug(ctx, "cache invalidated", "tags", tags, "dropped", dropped)

	if c.durable == nil {
		return nil
	}
	if err := c.durable.Bump(ctx, tags); err != nil {
		c.logger.Error(ctx, "durable cache invalidation failed", "tags", tags, "error", err)
		return fmt.Errorf("cache: invalidate %v: %w", tags, err)
	}
	return nil
}

type decodeFunc func([]byte) (any, error)
type fetchFunc func(context.Context) (any, error)

func (c *Coordinator) memoryExpiry(ttl time.Duration) time.Time {
	return c.now().Add(min(ttl, c.memoryTTL))
}

// load returns the value for key from the first tier holding a current
// copy, or runs fetch and fills both tiers.
func (c *Coordinator) load(ctx context.Context, key string, opts Options, decode decodeFunc, fetch fetchFunc) (any, error) {
	gens := c.mem.generations(opts.Tags)

	if !opts.SkipMemory {
		if v, ok := c.mem.get(key, gens, c.now()); ok {
			return v, nil
		}
	}

	// The generations are part of the flight key so a read issued after an
	// invalidation never joins a load that started before it.
	v, err, _ := c.group.Do(flightKey(key, gens), func() (any, error) {
		return c.fill(context.WithoutCancel(ctx), key, opts, gens, decode, fetch)
	})
	return v, err
}

func (c *Coordinator) fill(ctx context.Context, key string, opts Options, gens []uint64, decode decodeFunc, fetch fetchFunc) (any, error) {
	ttl := opts.ttl()

	var durableGens map[string]int64
	durableOK := c.durable != nil

	if durableOK {
		entry, current, err := c.durable.Lookup(ctx, key, opts.Tags)
		switch {
		case err != nil:
			c.logger.Warn(ctx, "durable cache unavailable, querying directly", "key", key, "error", err)
			durableOK = false
		case entry != nil && sameGenerations(entry.Generations, current, opts.Tags):
			v, err := decode(entry.Data)
			if err == nil {
				c.remember(key, v, opts, gens, ttl)
				return v, nil
			}
			c.logger.Warn(ctx, "discarding undecodable cache entry", "key", key, "error", err)
			durableGens = current
		default:
			durableGens = current
		}
	}

	v, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	c.remember(key, v, opts, gens, ttl)

	if durableOK {
		data, err := json.Marshal(v)
		if err != nil {
			c.logger.Warn(ctx, "cache value not serializable", "key", key, "error", err)
			return v, nil
		}
		if err := c.durable.Store(ctx, key, &Entry{Generations: durableGens, Data: data}, ttl); err != nil {
			c.logger.Warn(ctx, "durable cache store failed", "key", key, "error", err)
		}
	}

	return v, nil
}

func (c *Coordinator) remember(key string, v any, opts Options, gens []uint64, ttl time.Duration) {
	if opts.SkipMemory {
		return
	}
	c.mem.set(key, v, opts.Tags, gens, c.memoryExpiry(ttl), c.now())
}

func sameGenerations(stored, current map[string]int64, tags []string) bool {
	for _, t := range tags {
		if stored[t] != current[t] {
			return false
		}
	}
	return true
}

func flightKey(key string, gens []uint64) string {
	var b strings.Builder
	b.WriteString(key)
	for _, g := range gens {
		b.WriteByte('#')
		b.WriteString(strconv.FormatUint(g, 10))
	}
	return b.String()
}

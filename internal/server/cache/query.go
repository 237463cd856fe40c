package cache

import (
	"context"
	"encoding/json"
	"fmt"
)

// Query is a cached, typed read. Values returned by Get may be shared
// between callers and must not be modified.
type Query[A, R any] struct {
	c    *Coordinator
	name string
	opts Options
	fn   func(context.Context, A) (R, error)
}

// NewQuery wraps fn. name must be unique per query; together with the JSON
// form of the argument it forms the cache key.
func NewQuery[A, R any](c *Coordinator, name string, opts Options, fn func(context.Context, A) (R, error)) *Query[A, R] {
	return &Query[A, R]{c: c, name: name, opts: opts, fn: fn}
}

// Key returns the cache key used for arg.
func (q *Query[A, R]) Key(arg A) (string, error) {
	b, err := json.Marshal(arg)
	if err != nil {
		return "", fmt.Errorf("cache: key for %s: %w", q.name, err)
	}
	return q.name + ":" + string(b), nil
}

// Get returns the cached result for arg, running the wrapped read on a miss.
// Errors from the read are returned as is and never cached.
func (q *Query[A, R]) Get(ctx context.Context, arg A) (R, error) {
	var zero R

	key, err := q.Key(arg)
	if err != nil {
		return zero, err
	}

	v, err := q.c.load(ctx, key, q.opts,
		func(data []byte) (any, error) {
			var r R
			if err := json.Unmarshal(data, &r); err != nil {
				return nil, err
			}
			return r, nil
		},
		func(ctx context.Context) (any, error) {
			return q.fn(ctx, arg)
		},
	)
	if err != nil {
		return zero, err
	}

	r, ok := v.(R)
	if !ok {
		return zero, fmt.Errorf("cache: unexpected value type %T for %s", v, q.name)
	}
	return r, nil
}

package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore_LookupMissing(t *testing.T) {
	store, _ := newRedis(t)

	e, gens, err := store.Lookup(context.Background(), "k", []string{TagProducts, TagCategories})
	require.NoError(t, err)
	assert.Nil(t, e)
	assert.Equal(t, map[string]int64{TagProducts: 0, TagCategories: 0}, gens)
}

func TestRedisStore_StoreLookupBump(t *testing.T) {
	store, mr := newRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Bump(ctx, []string{TagProducts}))
	require.NoError(t, store.Bump(ctx, []string{TagProducts, TagContact}))

	_, gens, err := store.Lookup(ctx, "k", []string{TagProducts, TagContact})
	require.NoError(t, err)
	assert.Equal(t, int64(2), gens[TagProducts])
	assert.Equal(t, int64(1), gens[TagContact])

	entry := &Entry{Generations: gens, Data: json.RawMessage(`["a"]`)}
	require.NoError(t, store.Store(ctx, "k", entry, time.Minute))

	got, _, err := store.Lookup(ctx, "k", []string{TagProducts})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.JSONEq(t, `["a"]`, string(got.Data))
	assert.Equal(t, gens, got.Generations)

	assert.True(t, mr.Exists("son:cache:k"))
	assert.True(t, mr.Exists("son:tag:products"))

	mr.FastForward(time.Minute + time.Second)

	got, _, err = store.Lookup(ctx, "k", nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStore_CorruptEntryIsAbsent(t *testing.T) {
	store, mr := newRedis(t)
	require.NoError(t, mr.Set("son:cache:k", "{not json"))

	e, _, err := store.Lookup(context.Background(), "k", nil)
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestPathTag(t *testing.T) {
	assert.Equal(t, "path:/", PathTag("/"))
	assert.Equal(t, "path:/admin/messages", PathTag("/admin/messages"))
}

func TestOptionsDefaultTTL(t *testing.T) {
	assert.Equal(t, Medium, Options{}.ttl())
	assert.Equal(t, VeryLong, Options{TTL: VeryLong}.ttl())
}

package cache

import (
	"slices"
	"sync"
	"time"
)

// maxMemoryEntries triggers a sweep of expired entries on insert.
const maxMemoryEntries = 10000

type memEntry struct {
	value   any
	tags    []string
	gens    []uint64
	expires time.Time
}

// memoryStore is the in-process tier. Entries are never mutated after
// insert; a stale entry is replaced, not updated.
type memoryStore struct {
	mu      sync.RWMutex
	entries map[string]memEntry
	gens    map[string]uint64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		entries: make(map[string]memEntry),
		gens:    make(map[string]uint64),
	}
}

// generations returns the current generation of each tag, in tag order.
func (m *memoryStore) generations(tags []string) []uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]uint64, len(tags))
	for i, t := range tags {
		out[i] = m.gens[t]
	}
	return out
}

func (m *memoryStore) get(key string, gens []uint64, now time.Time) (any, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || !now.Before(e.expires) || !slices.Equal(e.gens, gens) {
		return nil, false
	}
	return e.value, true
}

func (m *memoryStore) set(key string, value any, tags []string, gens []uint64, expires time.Time, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// an invalidation may have happened while the value was being loaded
	for i, t := range tags {
		if m.gens[t] != gens[i] {
			return
		}
	}

	if len(m.entries) >= maxMemoryEntries {
		for k, e := range m.entries {
			if !now.Before(e.expires) {
				delete(m.entries, k)
			}
		}
	}

	m.entries[key] = memEntry{value: value, tags: tags, gens: gens, expires: expires}
}

// invalidate bumps the generation of every tag and drops the entries that
// depend on any of them. It returns the number of entries dropped.
func (m *memoryStore) invalidate(tags []string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range tags {
		m.gens[t]++
	}

	dropped := 0
	for k, e := range m.entries {
		for _, t := range e.tags {
			if slices.Contains(tags, t) {
				delete(m.entries, k)
				dropped++
				break
			}
		}
	}
	return dropped
}

func (m *memoryStore) size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

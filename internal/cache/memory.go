package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Memory is a bounded in-process cache. The least recently used entry is
// evicted when full. Entries live at most maxTTL, and Set may shorten that
// per entry.
type Memory struct {
	lru *expirable.LRU[string, memoryEntry]
	now func() time.Time
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// NewMemory returns a memory cache holding at most maxEntries entries for at
// most maxTTL each. A non-positive maxTTL leaves only per-entry expiry.
func NewMemory(maxEntries int, maxTTL time.Duration) *Memory {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &Memory{
		lru: expirable.NewLRU[string, memoryEntry](maxEntries, nil, maxTTL),
		now: time.Now,
	}
}

// Get returns a copy of a live entry.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	entry, ok := m.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !entry.expires.IsZero() && !m.now().Before(entry.expires) {
		m.lru.Remove(key)
		return nil, false, nil
	}
	return append([]byte(nil), entry.value...), true, nil
}

// Set stores a copy of value. A non-positive ttl falls back to the cache's
// own lifetime.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expires = m.now().Add(ttl)
	}
	m.lru.Add(key, entry)
	return nil
}

// Len reports the number of stored entries.
func (m *Memory) Len() int {
	return m.lru.Len()
}

// Close drops every entry.
func (m *Memory) Close() error {
	m.lru.Purge()
	return nil
}

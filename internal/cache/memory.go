package cache

import (
	"context"
	"time"
)

// MemoryCache keeps entries in process memory. It suits single-instance deployments and tests.
type MemoryCache struct {
	entries *TTLCache[string, []byte]
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: NewTTLCache[string, []byte]()}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	value, ok := m.entries.Get(key)
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.entries.Set(key, append([]byte(nil), value...), ttl)
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, keys ...string) error {
	m.entries.Delete(keys...)
	return nil
}

// NoopCache never stores anything; every read is a miss.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (NoopCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NoopCache) Delete(context.Context, ...string) error { return nil }

package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

type memory struct{ c *gocache.Cache }

// NewMemory returns an in-process cache with the given default TTL.
func NewMemory(defaultTTL time.Duration) Client {
	return &memory{c: gocache.New(defaultTTL, time.Minute)}
}

func (m *memory) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, ErrNotFound
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, ErrNotFound
	}
	return b, nil
}

func (m *memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = gocache.NoExpiration
	}
	m.c.Set(key, value, ttl)
	return nil
}

func (m *memory) Delete(_ context.Context, key string) error {
	m.c.Delete(key)
	return nil
}

func (m *memory) Ping(context.Context) error { return nil }
func (m *memory) Close() error               { return nil }

// Package cache abstracts the key/value cache behind a small client
// interface with memory and redis backends.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clientlinkhq/clientlink/internal/config"
)

// ErrNotFound is returned by Get when the key is absent or expired.
var ErrNotFound = errors.New("cache: not found")

// Client is the cache contract. A ttl of 0 means no expiry.
type Client interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// FromConfig builds the cache client selected by the cache config block.
func FromConfig(cfg *config.Config) (Client, error) {
	switch cfg.Cache.Kind {
	case "", "memory":
		ttl := 5 * time.Minute
		if cfg.Cache.Memory.DefaultTTL != "" {
			ttl = config.MustDuration(cfg.Cache.Memory.DefaultTTL)
		}
		return NewMemory(ttl), nil
	case "redis":
		return NewRedis(cfg.Cache.Redis.Addr, cfg.Cache.Redis.DB, cfg.Cache.Redis.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown cache kind %q", cfg.Cache.Kind)
	}
}

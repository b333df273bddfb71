// Package rate implements per-key request limiting: a redis-backed fixed
// window shared across replicas, and an in-process token bucket for
// single-node runs.
package rate

import (
	"context"
	"strings"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

// Result is the limiter verdict for one request.
type Result struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration // zero when allowed
	Reset      time.Duration // time left in the current window, when known
}

// Limiter answers whether the caller identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// RedisLimiter counts hits per key in a fixed window. The counter lives
// under a TTL'd key, so the window rolls over when redis expires it.
type RedisLimiter struct {
	client *rdb.Client
	prefix string
	max    int64
	window time.Duration
}

func NewRedisLimiter(client *rdb.Client, prefix string, max int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	if max < 1 {
		max = 1
	}
	return &RedisLimiter{client: client, prefix: prefix, max: int64(max), window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	k := l.prefix + strings.ReplaceAll(key, " ", "_")

	pipe := l.client.TxPipeline()
	hits := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, l.window)
	ttl := pipe.TTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, err
	}

	reset := ttl.Val()
	if reset < 0 {
		reset = l.window
	}
	res := Result{
		Allowed:   hits.Val() <= l.max,
		Remaining: l.max - hits.Val(),
		Reset:     reset,
	}
	if res.Remaining < 0 {
		res.Remaining = 0
	}
	if !res.Allowed {
		res.RetryAfter = reset
	}
	return res, nil
}

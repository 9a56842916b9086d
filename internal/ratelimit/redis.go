package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// hitScript implements the fixed window atomically server-side: reject
// without incrementing when the counter has reached the limit, otherwise
// increment and start the window expiry on first hit.
var hitScript = redis.NewScript(`
local limit = tonumber(ARGV[2])
local current = tonumber(redis.call("GET", KEYS[1]) or "0")
if current >= limit then
  return {0, current, redis.call("PTTL", KEYS[1])}
end
current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {1, current, redis.call("PTTL", KEYS[1])}
`)

// RedisStore shares fixed windows across replicas. The memory backend is
// the default; this one is selected with RATE_LIMIT_BACKEND=redis.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps an already-connected client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "scanrole:rl:"}
}

// Hit implements Store.
func (s *RedisStore) Hit(ctx context.Context, key string, limit int, window time.Duration) (Status, error) {
	res, err := hitScript.Run(ctx, s.client, []string{s.prefix + key}, window.Milliseconds(), limit).Slice()
	if err != nil {
		return Status{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(res) != 3 {
		return Status{}, fmt.Errorf("rate limit script: unexpected reply %v", res)
	}

	allowed, _ := res[0].(int64)
	count, _ := res[1].(int64)
	pttl, _ := res[2].(int64)

	ttl := time.Duration(pttl) * time.Millisecond
	if pttl < 0 {
		// Key vanished between INCR and PTTL or has no expiry yet; treat
		// the full window as remaining.
		ttl = window
	}
	resetAt := time.Now().Add(ttl)

	if allowed == 0 {
		return Status{Allowed: false, Remaining: 0, ResetAt: resetAt, RetryAfter: ttl}, nil
	}

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Status{Allowed: true, Remaining: remaining, ResetAt: resetAt}, nil
}

// Reset implements Store by dropping every key under the store prefix.
func (s *RedisStore) Reset(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("rate limit reset: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("rate limit reset scan: %w", err)
	}
	return nil
}

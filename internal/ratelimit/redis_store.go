package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// hitScript performs get-or-init plus increment-with-ceiling in one atomic
// step on the Redis side. The key's TTL is exactly the window; expiry is the
// window reset. Returns {count, pttl_millis}.
var hitScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if not current then
  redis.call('SET', KEYS[1], 1, 'PX', ARGV[2])
  return {1, tonumber(ARGV[2])}
end
current = tonumber(current)
if current < tonumber(ARGV[1]) then
  current = redis.call('INCR', KEYS[1])
else
  current = current + 1
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[2])
  ttl = tonumber(ARGV[2])
end
return {current, ttl}
`)

// RedisStore is a CounterStore sharing windows across worker instances.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a RedisStore.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Hit implements CounterStore.
func (s *RedisStore) Hit(ctx context.Context, key string, limit int, window time.Duration) (Hit, error) {
	values, err := hitScript.Run(ctx, s.client, []string{key}, limit, window.Milliseconds()).Int64Slice()
	if err != nil {
		return Hit{}, fmt.Errorf("ratelimit: redis hit %s: %w", key, err)
	}
	if len(values) != 2 {
		return Hit{}, fmt.Errorf("ratelimit: redis hit %s: unexpected reply %v", key, values)
	}

	count := values[0]
	ttl := time.Duration(values[1]) * time.Millisecond

	hit := Hit{Allowed: count <= int64(limit), Count: count}
	if !hit.Allowed {
		hit.RetryAfter = ttl
	}
	return hit, nil
}

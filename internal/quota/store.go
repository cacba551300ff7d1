package quota

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Decision is the outcome of a quota check.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Store counts requests per key per window. Correctness of "at most N per
// window" rests on the store's atomicity, not in-process coordination.
type Store interface {
	Allow(ctx context.Context, key string, window time.Duration, max int) (Decision, error)
	Refund(ctx context.Context, key string) error
}

// RedisStore keeps quota entries in Redis so counts are shared across
// process instances.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// refundScript decrements only keys that still exist. A plain DECR would
// recreate an expired window key at -1 with no TTL, turning the counter into
// a permanent all-time count.
var refundScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return redis.call("DECR", KEYS[1])
end
return 0`)

// Allow atomically increments the window counter. The window TTL is armed
// whenever the key has none, not just on the first hit, so a counter left
// behind without an expiry can never wedge the key forever.
func (s *RedisStore) Allow(ctx context.Context, key string, window time.Duration, max int) (Decision, error) {
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return Decision{}, err
	}

	ttl, err := s.client.PTTL(ctx, key).Result()
	if err != nil {
		return Decision{}, err
	}
	if ttl < 0 {
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return Decision{}, err
		}
		ttl = window
	}

	if count <= int64(max) {
		return Decision{Allowed: true}, nil
	}
	return Decision{Allowed: false, RetryAfter: ttl}, nil
}

// Refund releases one slot, used by categories that only count failures.
// Refunding an already-expired window is a no-op.
func (s *RedisStore) Refund(ctx context.Context, key string) error {
	return refundScript.Run(ctx, s.client, []string{key}).Err()
}

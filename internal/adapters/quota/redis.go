package quota

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mailprobe/mailprobe/internal/core"
)

// reserveScript performs the check-and-increment server-side so concurrent
// reservations for one owner serialize inside Redis. Returns the approved
// count.
var reserveScript = redis.NewScript(`
local used = tonumber(redis.call('GET', KEYS[1]) or '0')
local limit = tonumber(redis.call('GET', KEYS[2]) or ARGV[2])
local n = tonumber(ARGV[1])
local remaining = limit - used
if remaining >= n then
  redis.call('INCRBY', KEYS[1], n)
  return n
end
if remaining <= 0 or ARGV[3] ~= 'partial' then
  return 0
end
redis.call('INCRBY', KEYS[1], remaining)
return remaining
`)

// releaseScript decrements usage without letting it go negative.
var releaseScript = redis.NewScript(`
local used = tonumber(redis.call('GET', KEYS[1]) or '0')
local n = tonumber(ARGV[1])
if n > used then n = used end
if n > 0 then redis.call('DECRBY', KEYS[1], n) end
return n
`)

// RedisStore is the shared quota store for multi-node deployments.
type RedisStore struct {
	client       *redis.Client
	defaultLimit int64
	policy       AdmissionPolicy
	logger       *zap.Logger
}

// NewRedisStore creates a Redis-backed quota store.
func NewRedisStore(client *redis.Client, defaultLimit int64, policy AdmissionPolicy, logger *zap.Logger) *RedisStore {
	if policy != PolicyPartial {
		policy = PolicyReject
	}
	return &RedisStore{
		client:       client,
		defaultLimit: defaultLimit,
		policy:       policy,
		logger:       logger,
	}
}

func usedKey(owner string) string  { return "quota:" + owner + ":used" }
func limitKey(owner string) string { return "quota:" + owner + ":limit" }

// Reserve atomically checks and reserves up to n validations.
func (s *RedisStore) Reserve(ctx context.Context, owner string, n int) (core.Reservation, error) {
	if n <= 0 {
		return core.Reservation{Decision: core.QuotaFull, Approved: 0}, nil
	}

	approved, err := reserveScript.Run(ctx, s.client,
		[]string{usedKey(owner), limitKey(owner)},
		n, s.defaultLimit, string(s.policy)).Int()
	if err != nil {
		return core.Reservation{}, fmt.Errorf("quota reserve for %s: %w", owner, err)
	}

	switch {
	case approved == n:
		return core.Reservation{Decision: core.QuotaFull, Approved: approved}, nil
	case approved == 0:
		return core.Reservation{Decision: core.QuotaRejected}, nil
	default:
		return core.Reservation{Decision: core.QuotaPartial, Approved: approved}, nil
	}
}

// Release returns n unconsumed reservations to the owner.
func (s *RedisStore) Release(ctx context.Context, owner string, n int) error {
	if n <= 0 {
		return nil
	}
	if err := releaseScript.Run(ctx, s.client, []string{usedKey(owner)}, n).Err(); err != nil {
		return fmt.Errorf("quota release for %s: %w", owner, err)
	}
	return nil
}

// Usage reports an owner's current used count and lifetime limit.
func (s *RedisStore) Usage(ctx context.Context, owner string) (int64, int64, error) {
	used, err := s.client.Get(ctx, usedKey(owner)).Int64()
	if err != nil && err != redis.Nil {
		return 0, 0, fmt.Errorf("quota usage for %s: %w", owner, err)
	}
	limit, err := s.client.Get(ctx, limitKey(owner)).Int64()
	if err == redis.Nil {
		limit = s.defaultLimit
	} else if err != nil {
		return 0, 0, fmt.Errorf("quota limit for %s: %w", owner, err)
	}
	return used, limit, nil
}

// SetLimit sets an owner's lifetime limit.
func (s *RedisStore) SetLimit(ctx context.Context, owner string, limit int64) error {
	if err := s.client.Set(ctx, limitKey(owner), limit, 0).Err(); err != nil {
		return fmt.Errorf("quota set limit for %s: %w", owner, err)
	}
	return nil
}

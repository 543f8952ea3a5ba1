package usage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/moodmoney/quota/pkg/plans"
)

// incrementBelowScript returns {count, incremented}.
var incrementBelowScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
local limit = tonumber(ARGV[1])
if current >= limit then
	return {current, 0}
end
return {redis.call('INCR', KEYS[1]), 1}
`)

type redisStore struct {
	client redis.UniversalClient
	prefix string
}

// RedisOption configures the Redis store.
type RedisOption func(*redisStore)

// WithKeyPrefix replaces the default "usage" key prefix. An empty prefix
// keeps the default.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *redisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// NewRedisStore returns a Store keeping one integer key per counter.
// Keys never expire; past months stay readable.
func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) Store {
	if client == nil {
		panic("usage: redis client is required")
	}
	s := &redisStore{client: client, prefix: "usage"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *redisStore) key(userID uuid.UUID, feature plans.Feature, month Month) string {
	return fmt.Sprintf("%s:%s:%s:%s", s.prefix, userID, feature, month)
}

func (s *redisStore) Count(ctx context.Context, userID uuid.UUID, feature plans.Feature, month Month) (int64, error) {
	if err := validate(userID, feature); err != nil {
		return 0, err
	}

	count, err := s.client.Get(ctx, s.key(userID, feature, month)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Join(ErrCountFailed, err)
	}
	return count, nil
}

func (s *redisStore) Increment(ctx context.Context, userID uuid.UUID, feature plans.Feature, month Month) (int64, error) {
	if err := validate(userID, feature); err != nil {
		return 0, err
	}

	count, err := s.client.Incr(ctx, s.key(userID, feature, month)).Result()
	if err != nil {
		return 0, errors.Join(ErrIncrementFailed, err)
	}
	return count, nil
}

func (s *redisStore) IncrementBelow(ctx context.Context, userID uuid.UUID, feature plans.Feature, month Month, limit int64) (int64, bool, error) {
	if err := validate(userID, feature); err != nil {
		return 0, false, err
	}

	res, err := incrementBelowScript.Run(ctx, s.client, []string{s.key(userID, feature, month)}, limit).Int64Slice()
	if err != nil {
		return 0, false, errors.Join(ErrIncrementFailed, err)
	}
	if len(res) != 2 {
		return 0, false, fmt.Errorf("%w: unexpected script reply %v", ErrIncrementFailed, res)
	}
	return res[0], res[1] == 1, nil
}

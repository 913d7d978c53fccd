package otp

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps OTP entries in Redis with a native TTL, so expiry needs
// no bookkeeping and codes survive a process restart. Used when a Redis
// client is available; otherwise the server falls back to MemoryStore.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore wraps a connected Redis client.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: "otp:"}
}

// Put records a code for the email, replacing any previous one. Redis
// expires the key on its own after ttl.
func (s *RedisStore) Put(ctx context.Context, email, code string, ttl time.Duration) error {
	return s.rdb.Set(ctx, s.prefix+email, code, ttl).Err()
}

// Verify checks the code for the email. A missing key covers both the
// never-issued and the expired case; Redis has already dropped expired
// entries, so they are reported as ErrNoEntry.
func (s *RedisStore) Verify(ctx context.Context, email, code string) (bool, error) {
	if len(code) != 6 {
		return false, ErrBadCode
	}
	stored, err := s.rdb.Get(ctx, s.prefix+email).Result()
	if errors.Is(err, redis.Nil) {
		return false, ErrNoEntry
	}
	if err != nil {
		return false, err
	}
	if stored != code {
		return false, nil // retry allowed while the key lives
	}
	_ = s.rdb.Del(ctx, s.prefix+email).Err()
	return true, nil
}

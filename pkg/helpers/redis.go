package helpers

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient initializes a redis client
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func RedisSetJSON(ctx context.Context, rdb redis.Cmdable, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, b, ttl).Err()
}

func RedisGetJSON[T any](ctx context.Context, rdb redis.Cmdable, key string, dest *T) (bool, error) {
	res, err := rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(res, dest); err != nil {
		return false, err
	}
	return true, nil
}

func RedisDel(ctx context.Context, rdb redis.Cmdable, key string) error {
	return rdb.Del(ctx, key).Err()
}

// VerifiedCache caches a user's email-verified flag in Redis.
type VerifiedCache struct {
	RDB redis.Cmdable
	TTL time.Duration
}

func NewVerifiedCache(rdb redis.Cmdable, ttl time.Duration) *VerifiedCache {
	return &VerifiedCache{RDB: rdb, TTL: ttl}
}

// Get returns the cached flag and whether an entry was present.
func (c *VerifiedCache) Get(ctx context.Context, userID string) (verified bool, found bool, err error) {
	found, err = RedisGetJSON(ctx, c.RDB, KeyEmailVerified(userID), &verified)
	return verified, found, err
}

func (c *VerifiedCache) Set(ctx context.Context, userID string, verified bool) error {
	return RedisSetJSON(ctx, c.RDB, KeyEmailVerified(userID), verified, c.TTL)
}

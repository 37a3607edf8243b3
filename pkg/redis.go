package pkg

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	skills "github.com/manarouei/agent-skills-sub004"
)

const redisTimeout = 5 * time.Second

var ErrRedisDisabled = errors.New("redis is not configured")

// RedisEnabled reports whether ConnectRedis opened a client
func RedisEnabled() bool {
	return skills.Redis != nil
}

// RedisSet stores a value in Redis with a TTL. The value is JSON-serialized.
func RedisSet(ctx context.Context, key string, value any, ttl time.Duration) error {
	if !RedisEnabled() {
		return ErrRedisDisabled
	}
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return skills.Redis.Set(ctx, key, data, ttl).Err()
}

// RedisGet retrieves a value from Redis and JSON-deserializes it into dest.
// Returns redis.Nil if the key does not exist.
func RedisGet(ctx context.Context, key string, dest any) error {
	if !RedisEnabled() {
		return ErrRedisDisabled
	}
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	data, err := skills.Redis.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// RedisDelete removes keys from Redis
func RedisDelete(ctx context.Context, keys ...string) error {
	if !RedisEnabled() {
		return ErrRedisDisabled
	}
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	return skills.Redis.Del(ctx, keys...).Err()
}

// RedisExists checks whether a key exists in Redis
func RedisExists(ctx context.Context, key string) (bool, error) {
	if !RedisEnabled() {
		return false, ErrRedisDisabled
	}
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	n, err := skills.Redis.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// IsRedisNil returns true if the error is a redis key-not-found error
func IsRedisNil(err error) bool {
	return errors.Is(err, redis.Nil)
}

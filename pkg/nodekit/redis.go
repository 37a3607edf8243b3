package nodekit

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectTimeout bounds every TCP connect made by generated adapters
const ConnectTimeout = 30 * time.Second

// RedisOperation is one of the operations a Redis node can perform
type RedisOperation int

const (
	RedisDelete RedisOperation = iota
	RedisGet
	RedisSet
	RedisIncr
	RedisKeys
	RedisInfo
	RedisPush
	RedisPop
	RedisPublish
)

var redisOperationNames = [...]string{
	RedisDelete:  "delete",
	RedisGet:     "get",
	RedisSet:     "set",
	RedisIncr:    "incr",
	RedisKeys:    "keys",
	RedisInfo:    "info",
	RedisPush:    "push",
	RedisPop:     "pop",
	RedisPublish: "publish",
}

func (op RedisOperation) String() string {
	if op < 0 || int(op) >= len(redisOperationNames) {
		return "unknown"
	}
	return redisOperationNames[op]
}

// RedisOperations lists every operation in declaration order
func RedisOperations() []RedisOperation {
	out := make([]RedisOperation, len(redisOperationNames))
	for i := range redisOperationNames {
		out[i] = RedisOperation(i)
	}
	return out
}

// ParseRedisOperation resolves an operation name case-insensitively
func ParseRedisOperation(s string) (RedisOperation, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range redisOperationNames {
		if name == s {
			return RedisOperation(i), true
		}
	}
	return 0, false
}

// RedisOptions builds client options from a redis credential
func RedisOptions(creds Credentials) *redis.Options {
	host := creds.String("localhost", "host")
	port := creds.Int(6379, "port")
	opts := &redis.Options{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Username:     creds.String("", "user", "username"),
		Password:     creds.String("", "password"),
		DB:           creds.Int(0, "database", "db"),
		DialTimeout:  ConnectTimeout,
		ReadTimeout:  ConnectTimeout,
		WriteTimeout: ConnectTimeout,
	}
	if creds.Bool(false, "ssl", "tls") {
		opts.TLSConfig = &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}
	}
	return opts
}

// OpenRedis connects and pings within ConnectTimeout. The caller closes the client.
func OpenRedis(ctx context.Context, creds Credentials) (*redis.Client, error) {
	client := redis.NewClient(RedisOptions(creds))
	ctx, cancel := context.WithTimeout(ctx, ConnectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// RedisGetValue reads key. keyType "automatic" (or empty) asks redis for the
// key type first. Missing keys yield nil.
func RedisGetValue(ctx context.Context, c redis.Cmdable, key, keyType string) (any, error) {
	keyType = strings.ToLower(strings.TrimSpace(keyType))
	if keyType == "" || keyType == "automatic" {
		t, err := c.Type(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to detect type of %s: %w", key, err)
		}
		keyType = t
	}
	switch keyType {
	case "none":
		return nil, nil
	case "hash":
		m, err := c.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, err
		}
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out, nil
	case "list":
		l, err := c.LRange(ctx, key, 0, -1).Result()
		if err != nil {
			return nil, err
		}
		return stringsToAny(l), nil
	case "set":
		s, err := c.SMembers(ctx, key).Result()
		if err != nil {
			return nil, err
		}
		return stringsToAny(s), nil
	default:
		v, err := c.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

// RedisSetValue writes value at key. keyType "automatic" picks hash for
// objects, list for arrays and string otherwise. A positive ttl sets an expiry.
func RedisSetValue(ctx context.Context, c redis.Cmdable, key string, value any, keyType string, ttl time.Duration) error {
	keyType = strings.ToLower(strings.TrimSpace(keyType))
	if keyType == "hash" || keyType == "list" || keyType == "set" {
		value = decodeParam(value)
	} else {
		value = decodeJSONValue(value)
	}
	if keyType == "" || keyType == "automatic" {
		switch value.(type) {
		case map[string]any:
			keyType = "hash"
		case []any:
			keyType = "list"
		default:
			keyType = "string"
		}
	}

	var err error
	switch keyType {
	case "hash":
		m, ok := value.(map[string]any)
		if !ok {
			return fmt.Errorf("value for hash key %s must be an object", key)
		}
		fields := make([]any, 0, len(m)*2)
		for k, v := range m {
			fields = append(fields, k, redisScalar(v))
		}
		err = c.HSet(ctx, key, fields...).Err()
	case "list", "set":
		list, ok := value.([]any)
		if !ok {
			list = []any{value}
		}
		members := make([]any, 0, len(list))
		for _, v := range list {
			members = append(members, redisScalar(v))
		}
		if keyType == "list" {
			err = c.RPush(ctx, key, members...).Err()
		} else {
			err = c.SAdd(ctx, key, members...).Err()
		}
	default:
		err = c.Set(ctx, key, redisScalar(value), 0).Err()
	}
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	if ttl > 0 {
		if err := c.Expire(ctx, key, ttl).Err(); err != nil {
			return fmt.Errorf("failed to set expiry on %s: %w", key, err)
		}
	}
	return nil
}

// RedisIncrement increments key and optionally sets its expiry
func RedisIncrement(ctx context.Context, c redis.Cmdable, key string, ttl time.Duration) (int64, error) {
	n, err := c.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment %s: %w", key, err)
	}
	if ttl > 0 {
		if err := c.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("failed to set expiry on %s: %w", key, err)
		}
	}
	return n, nil
}

// RedisKeysMatching lists keys matching pattern, with their values when getValues is set
func RedisKeysMatching(ctx context.Context, c redis.Cmdable, pattern string, getValues bool) (map[string]any, error) {
	keys, err := c.Keys(ctx, pattern).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list keys %s: %w", pattern, err)
	}
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		if !getValues {
			out[k] = nil
			continue
		}
		v, err := RedisGetValue(ctx, c, k, "automatic")
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

// RedisInfoMap parses the INFO reply into a flat map, numbers decoded
func RedisInfoMap(ctx context.Context, c redis.Cmdable) (map[string]any, error) {
	raw, err := c.Info(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read info: %w", err)
	}
	out := map[string]any{}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			out[k] = f
			continue
		}
		out[k] = v
	}
	return out, nil
}

// RedisPushValue pushes value to the tail (or head) of list
func RedisPushValue(ctx context.Context, c redis.Cmdable, list string, value any, tail bool) (int64, error) {
	v := redisScalar(decodeJSONValue(value))
	var cmd *redis.IntCmd
	if tail {
		cmd = c.RPush(ctx, list, v)
	} else {
		cmd = c.LPush(ctx, list, v)
	}
	n, err := cmd.Result()
	if err != nil {
		return 0, fmt.Errorf("failed to push to %s: %w", list, err)
	}
	return n, nil
}

// RedisPopValue pops from the tail (or head) of list; an empty list yields nil.
// JSON values are decoded.
func RedisPopValue(ctx context.Context, c redis.Cmdable, list string, tail bool) (any, error) {
	var cmd *redis.StringCmd
	if tail {
		cmd = c.RPop(ctx, list)
	} else {
		cmd = c.LPop(ctx, list)
	}
	v, err := cmd.Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to pop from %s: %w", list, err)
	}
	var decoded any
	if json.Unmarshal([]byte(v), &decoded) == nil {
		return decoded, nil
	}
	return v, nil
}

// RedisPublishMessage publishes message and returns the receiver count
func RedisPublishMessage(ctx context.Context, c redis.Cmdable, channel string, message any) (int64, error) {
	n, err := c.Publish(ctx, channel, redisScalar(decodeJSONValue(message))).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to publish to %s: %w", channel, err)
	}
	return n, nil
}

// RedisDeleteKey deletes key and returns how many keys were removed
func RedisDeleteKey(ctx context.Context, c redis.Cmdable, key string) (int64, error) {
	n, err := c.Del(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return n, nil
}

// redisScalar stores objects and arrays as JSON text
func redisScalar(v any) any {
	switch v.(type) {
	case map[string]any, []any:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	case nil:
		return ""
	default:
		return v
	}
}

func stringsToAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

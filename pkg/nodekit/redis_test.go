package nodekit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisGetValue_DetectsType(t *testing.T) {
	mr, client := setupRedis(t)
	ctx := context.Background()
	require.NoError(t, mr.Set("str", "hello"))
	mr.HSet("h", "f", "v")
	_, err := mr.Push("l", "a", "b")
	require.NoError(t, err)

	v, err := RedisGetValue(ctx, client, "str", "automatic")
	require.NoError(t, err)
	assert.Equal(t, "hello", v)

	v, err = RedisGetValue(ctx, client, "h", "")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"f": "v"}, v)

	v, err = RedisGetValue(ctx, client, "l", "automatic")
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, v)

	v, err = RedisGetValue(ctx, client, "missing", "automatic")
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = RedisGetValue(ctx, client, "missing", "string")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestRedisSetValue_AutomaticAndTTL(t *testing.T) {
	mr, client := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, RedisSetValue(ctx, client, "k", "v", "automatic", time.Minute))
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
	assert.Equal(t, time.Minute, mr.TTL("k"))

	require.NoError(t, RedisSetValue(ctx, client, "obj", `{"a":"1"}`, "hash", 0))
	require.NoError(t, RedisSetValue(ctx, client, "obj2", map[string]any{"a": "1"}, "", 0))
	assert.Equal(t, "1", mr.HGet("obj2", "a"))

	require.NoError(t, RedisSetValue(ctx, client, "list", []any{"x", "y"}, "", 0))
	l, err := mr.List("list")
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, l)
}

func TestRedisIncrementPushPopDelete(t *testing.T) {
	mr, client := setupRedis(t)
	ctx := context.Background()

	n, err := RedisIncrement(ctx, client, "counter", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = RedisIncrement(ctx, client, "counter", 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 10*time.Second, mr.TTL("counter"))

	_, err = RedisPushValue(ctx, client, "q", map[string]any{"job": 1}, true)
	require.NoError(t, err)
	_, err = RedisPushValue(ctx, client, "q", "first", false)
	require.NoError(t, err)

	v, err := RedisPopValue(ctx, client, "q", false)
	require.NoError(t, err)
	assert.Equal(t, "first", v)
	v, err = RedisPopValue(ctx, client, "q", true)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"job": float64(1)}, v)
	v, err = RedisPopValue(ctx, client, "q", true)
	require.NoError(t, err)
	assert.Nil(t, v)

	removed, err := RedisDeleteKey(ctx, client, "counter")
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	assert.False(t, mr.Exists("counter"))
}

func TestRedisKeysMatchingAndPublish(t *testing.T) {
	mr, client := setupRedis(t)
	ctx := context.Background()
	require.NoError(t, mr.Set("user:1", "a"))
	require.NoError(t, mr.Set("user:2", "b"))
	require.NoError(t, mr.Set("other", "c"))

	keys, err := RedisKeysMatching(ctx, client, "user:*", true)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"user:1": "a", "user:2": "b"}, keys)

	keys, err = RedisKeysMatching(ctx, client, "user:*", false)
	require.NoError(t, err)
	assert.Len(t, keys, 2)
	assert.Nil(t, keys["user:1"])

	receivers, err := RedisPublishMessage(ctx, client, "events", "hi")
	require.NoError(t, err)
	assert.Equal(t, int64(0), receivers)
}

func TestParseRedisOperation(t *testing.T) {
	for _, op := range RedisOperations() {
		got, ok := ParseRedisOperation(op.String())
		require.True(t, ok)
		assert.Equal(t, op, got)
	}
	op, ok := ParseRedisOperation(" GET ")
	assert.True(t, ok)
	assert.Equal(t, RedisGet, op)

	_, ok = ParseRedisOperation("flushall")
	assert.False(t, ok)
	assert.Equal(t, "unknown", RedisOperation(42).String())
}

func TestRedisOptions_FromCredentials(t *testing.T) {
	opts := RedisOptions(Credentials{"host": "cache", "port": "6380", "password": "pw", "database": 2, "ssl": true})
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, ConnectTimeout, opts.DialTimeout)
	require.NotNil(t, opts.TLSConfig)

	opts = RedisOptions(Credentials{})
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Nil(t, opts.TLSConfig)
}

func TestOpenRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := OpenRedis(context.Background(), Credentials{"host": mr.Host(), "port": mr.Port()})
	require.NoError(t, err)
	defer client.Close()
	assert.NoError(t, client.Ping(context.Background()).Err())
}

func TestRedisMemory_RefreshesTTL(t *testing.T) {
	mr, client := setupRedis(t)
	ctx := context.Background()
	m := NewRedisMemory(client, time.Hour, 2)

	require.NoError(t, m.Append(ctx, "s", Message{Role: "user", Content: "one"}))
	assert.Equal(t, time.Hour, mr.TTL("chat_history:s"))

	mr.FastForward(40 * time.Minute)
	assert.Equal(t, 20*time.Minute, mr.TTL("chat_history:s"))

	require.NoError(t, m.Append(ctx, "s", Message{Role: "assistant", Content: "two"}, Message{Role: "user", Content: "three"}))
	assert.Equal(t, time.Hour, mr.TTL("chat_history:s"), "append refreshes the expiry")

	msgs, err := m.Messages(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, []Message{{Role: "assistant", Content: "two"}, {Role: "user", Content: "three"}}, msgs)

	require.NoError(t, m.Clear(ctx, "s"))
	assert.False(t, mr.Exists("chat_history:s"))
	msgs, err = m.Messages(ctx, "s")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

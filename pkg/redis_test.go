package pkg

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	skills "github.com/manarouei/agent-skills-sub004"
)

func withRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	saved := skills.Redis
	skills.Redis = client
	t.Cleanup(func() {
		skills.Redis = saved
		client.Close()
	})
	return mr
}

func TestRedis_SetGetDelete(t *testing.T) {
	mr := withRedis(t)
	ctx := context.Background()

	type entry struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	require.NoError(t, RedisSet(ctx, "k", entry{Name: "redis", Count: 2}, time.Minute))
	assert.Equal(t, time.Minute, mr.TTL("k"))

	var got entry
	require.NoError(t, RedisGet(ctx, "k", &got))
	assert.Equal(t, entry{Name: "redis", Count: 2}, got)

	ok, err := RedisExists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, RedisDelete(ctx, "k"))
	err = RedisGet(ctx, "k", &got)
	assert.True(t, IsRedisNil(err))
}

func TestRedis_Disabled(t *testing.T) {
	saved := skills.Redis
	skills.Redis = nil
	t.Cleanup(func() { skills.Redis = saved })

	ctx := context.Background()
	assert.False(t, RedisEnabled())
	assert.ErrorIs(t, RedisSet(ctx, "k", 1, time.Second), ErrRedisDisabled)
	assert.ErrorIs(t, RedisGet(ctx, "k", new(int)), ErrRedisDisabled)
	assert.ErrorIs(t, RedisDelete(ctx, "k"), ErrRedisDisabled)
	_, err := RedisExists(ctx, "k")
	assert.ErrorIs(t, err, ErrRedisDisabled)
}

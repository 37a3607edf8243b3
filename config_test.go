package skills

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv removes keys for the duration of the test; godotenv never
// overrides a variable that is present, even when empty.
func unsetEnv(t *testing.T, keys ...string) {
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestInitConfig_Defaults(t *testing.T) {
	unsetEnv(t, "RUN_MODE", "API_PORT", "INPUT_DIR", "OUTPUT_DIR", "JWT_SECRET", "JWT_EXPIRATION_MINUTES", "DB_HOSTNAME", "REDIS_HOST", "CACHE_TTL_SECONDS")
	InitConfig(filepath.Join(t.TempDir(), "missing.env"))

	c := GetConfig()
	assert.Equal(t, "prod", c.Mode)
	assert.Equal(t, ":8080", c.ApiPort)
	assert.Equal(t, "nodes", c.InputDir)
	assert.Equal(t, "generated", c.OutputDir)
	assert.Equal(t, 60, c.JWTConfig.Expiration)
	assert.Equal(t, time.Hour, c.RedisConfig.CacheTTL)

	require.NoError(t, ConnectDatabase())
	assert.Nil(t, DB)
	require.NoError(t, ConnectRedis(context.Background()))
	assert.Nil(t, Redis)
}

func TestInitConfig_EnvFile(t *testing.T) {
	unsetEnv(t, "API_PORT", "REDIS_DB", "CACHE_TTL_SECONDS")
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("API_PORT=:9999\nREDIS_DB=nope\nCACHE_TTL_SECONDS=30\n"), 0o644))

	InitConfig(path)
	assert.Equal(t, ":9999", GetConfig().ApiPort)
	assert.Equal(t, 0, GetConfig().RedisConfig.DB)
	assert.Equal(t, 30*time.Second, GetConfig().RedisConfig.CacheTTL)
}

func TestConnectRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("REDIS_HOST", mr.Host())
	t.Setenv("REDIS_PORT", mr.Port())
	InitConfig(filepath.Join(t.TempDir(), "missing.env"))

	require.NoError(t, ConnectRedis(context.Background()))
	t.Cleanup(func() {
		Redis.Close()
		Redis = nil
	})
	require.NotNil(t, Redis)
	assert.NoError(t, Redis.Ping(context.Background()).Err())
}

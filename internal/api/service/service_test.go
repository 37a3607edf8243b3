package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	skills "github.com/manarouei/agent-skills-sub004"
	"github.com/manarouei/agent-skills-sub004/internal/api/handler/request"
	"github.com/manarouei/agent-skills-sub004/internal/api/models"
	"github.com/manarouei/agent-skills-sub004/internal/gen"
)

// setupConfig points INPUT_DIR and OUTPUT_DIR at temporary directories
func setupConfig(t *testing.T) (string, string) {
	t.Helper()
	in, out := t.TempDir(), t.TempDir()
	t.Setenv("INPUT_DIR", in)
	t.Setenv("OUTPUT_DIR", out)
	t.Setenv("NATS_URL", "")
	t.Setenv("DB_HOSTNAME", "")
	t.Setenv("CACHE_TTL_SECONDS", "120")
	skills.InitConfig(filepath.Join(in, "missing.env"))
	return in, out
}

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

func redisNode() map[string]any {
	return map[string]any{
		"node_name":      "n8n-nodes-base.redis",
		"semantic_class": "tcp_client",
	}
}

func TestConvert_RoutesDescriptor(t *testing.T) {
	setupConfig(t)
	svc := NewConvertService(nil)

	res, cached, err := svc.Convert(context.Background(), request.ConvertDTO{Node: redisNode()})
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, gen.ClassTCPClient, res.Class)
	assert.Equal(t, "redis", res.Specialization())
	assert.Equal(t, "RedisNode", res.TypeName)
}

func TestConvert_RequestClassWins(t *testing.T) {
	setupConfig(t)
	svc := NewConvertService(nil)

	res, _, err := svc.Convert(context.Background(), request.ConvertDTO{SemanticClass: "stateful", Node: map[string]any{
		"node_name":      "wait",
		"semantic_class": "http_rest",
	}})
	require.NoError(t, err)
	assert.Equal(t, gen.ClassStateful, res.Class)
	assert.Equal(t, "wait", res.Specialization())
}

func TestConvert_InvalidDescriptor(t *testing.T) {
	setupConfig(t)
	svc := NewConvertService(nil)

	for _, node := range []map[string]any{
		{"semantic_class": "stateful"},
		{"node_name": ""},
		{"node_name": "x", "properties": []any{map[string]any{"type": "string"}}},
	} {
		_, _, err := svc.Convert(context.Background(), request.ConvertDTO{Node: node})
		assert.ErrorIs(t, err, ErrInvalidDescriptor, "%v", node)
	}
}

func TestConvert_Overrides(t *testing.T) {
	setupConfig(t)
	overrides, err := gen.ParseOverrides([]byte("version: 3\nnodes:\n  redis:\n    semantic_class: pure_transform\n"))
	require.NoError(t, err)
	svc := NewConvertService(overrides)

	res, _, err := svc.Convert(context.Background(), request.ConvertDTO{Node: redisNode()})
	require.NoError(t, err)
	assert.Equal(t, gen.ClassPureTransform, res.Class)
	assert.Contains(t, res.ConversionNotes, "override v3 applied")
}

func TestConvert_CachesInRedis(t *testing.T) {
	setupConfig(t)
	mr := withRedis(t)
	svc := NewConvertService(nil)
	ctx := context.Background()

	first, cached, err := svc.Convert(ctx, request.ConvertDTO{Node: redisNode()})
	require.NoError(t, err)
	assert.False(t, cached)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.Contains(t, keys[0], "codeconvert:result:")
	assert.Equal(t, 120*time.Second, mr.TTL(keys[0]))

	second, cached, err := svc.Convert(ctx, request.ConvertDTO{Node: redisNode()})
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, first.Fingerprint, second.Fingerprint)
	assert.Equal(t, first.Class, second.Class)
	assert.Equal(t, first.Code, second.Code)

	// another class is another entry
	_, cached, err = svc.Convert(ctx, request.ConvertDTO{SemanticClass: "stateful", Node: redisNode()})
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Len(t, mr.Keys(), 2)
}

func TestConvert_CacheUnavailable(t *testing.T) {
	setupConfig(t)
	mr := withRedis(t)
	mr.Close()
	svc := NewConvertService(nil)

	res, cached, err := svc.Convert(context.Background(), request.ConvertDTO{Node: redisNode()})
	require.NoError(t, err)
	assert.False(t, cached)
	assert.NotEmpty(t, res.Code)
}

func TestAdapter(t *testing.T) {
	setupConfig(t)
	svc := NewConvertService(nil)

	name, src, err := svc.Adapter(context.Background(), request.ConvertDTO{Package: "adapters", Node: redisNode()})
	require.NoError(t, err)
	assert.Equal(t, "redis.go", name)
	assert.Contains(t, string(src), "package adapters\n")
	assert.Contains(t, string(src), "func NewRedisNode(base *nodekit.Base) *RedisNode")
}

func TestClasses(t *testing.T) {
	setupConfig(t)
	classes := NewConvertService(nil).Classes()
	require.Len(t, classes, 5)
	assert.Equal(t, "http_rest", classes[0].Name)
	assert.Equal(t, []string{"rest"}, classes[0].Specializations)
	assert.Equal(t, "stateful", classes[4].Name)
}

func TestRunService_StartAndGet(t *testing.T) {
	in, out := setupConfig(t)
	require.NoError(t, os.MkdirAll(filepath.Join(in, "team", "nodes"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(in, "team", "nodes", "redis.json"),
		[]byte(`{"node_name": "redis", "semantic_class": "tcp_client"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(in, "team", "nodes", "broken.json"),
		[]byte(`{"semantic_class": "stateful"}`), 0o644))

	svc := NewRunService(context.Background(), nil)
	started, err := svc.Start(request.RunDTO{Path: "team", Workers: 2}, "admin")
	require.NoError(t, err)
	assert.Equal(t, string(models.RunRunning), started.Status)
	assert.Equal(t, "admin", started.StartedBy)
	assert.Equal(t, "codeconvert.run."+started.RunID+".progress", started.Subject)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, svc.Wait(ctx, started.RunID))
	svc.Close()

	run, err := svc.Get(started.RunID)
	require.NoError(t, err)
	assert.Equal(t, string(models.RunCompleted), run.Status)
	assert.Equal(t, 1, run.Converted)
	assert.Equal(t, 1, run.Failed)
	assert.NotNil(t, run.FinishedAt)
	require.Len(t, run.Nodes, 2)
	assert.FileExists(t, filepath.Join(out, started.RunID, "redis.go"))
}

func TestRunService_RejectsPaths(t *testing.T) {
	setupConfig(t)
	svc := NewRunService(context.Background(), nil)

	for _, path := range []string{"missing", "../../etc", "/etc"} {
		_, err := svc.Start(request.RunDTO{Path: path}, "admin")
		assert.ErrorIs(t, err, ErrInvalidRunPath, path)
	}
}

func TestRunService_UnknownRun(t *testing.T) {
	setupConfig(t)
	svc := NewRunService(context.Background(), nil)

	_, err := svc.Get("nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
	assert.ErrorIs(t, svc.Wait(context.Background(), "nope"), ErrRunNotFound)
}

package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/manarouei/agent-skills-sub004/internal/contract"
)

func TestTCPClient_Libraries(t *testing.T) {
	tests := []struct {
		node     string
		spec     string
		library  string
		credType string
	}{
		{"redis", "redis", "github.com/redis/go-redis/v9", "redis"},
		{"n8n-nodes-base.postgres", "postgres", "github.com/jackc/pgx/v5", "postgres"},
		{"mySql", "mysql", "github.com/go-sql-driver/mysql", "mySql"},
		{"microsoftSql", "microsoftsql", "github.com/denisenkom/go-mssqldb", "microsoftSql"},
		{"questDb", "postgreswire", "github.com/lib/pq", "questDb"},
		{"mongoDb", "mongodb", "go.mongodb.org/mongo-driver", "mongoDb"},
		{"emailSend", "emailsend", "github.com/wneessen/go-mail", "smtp"},
		{"emailReadImap", "emailreadimap", "github.com/emersion/go-imap/v2", "imap"},
		{"telnet", "generic", "net", "telnetApi"},
	}
	for _, tt := range tests {
		t.Run(tt.node, func(t *testing.T) {
			res := Route(ClassTCPClient, contract.Context{NodeName: tt.node})
			assert.Equal(t, tt.spec, res.Specialization())
			assert.Equal(t, tt.library, res.Extras["library"])
			assert.Equal(t, tt.credType, res.Extras["credential_type"])
			assert.Equal(t, 30, res.Extras["connect_timeout_seconds"])
		})
	}
}

func TestTCPClient_LibraryFromConnection(t *testing.T) {
	res := Route(ClassTCPClient, contract.Context{
		NodeName: "cacheLayer",
		Contract: contract.ExecutionContract{Connection: contract.ConnectionConfig{Library: "Redis"}},
	})
	assert.Equal(t, "redis", res.Specialization())
	assert.Equal(t, "Redis", res.Extras["library"])
	assert.Contains(t, res.Imports, "github.com/redis/go-redis/v9")
}

func TestTCPClient_GenericNeedsReview(t *testing.T) {
	res := Route(ClassTCPClient, contract.Context{NodeName: "telnet"})
	assert.Contains(t, res.ConversionNotes, `no client library known for "telnet"; emitting a raw TCP exchange`)
	assert.Contains(t, res.Helpers, "nodekit.DialTCP(ctx, creds, 80)")
}

func TestTCPClient_RedisDeclaredOperations(t *testing.T) {
	res := Route(ClassTCPClient, contract.Context{
		NodeName: "redis",
		Properties: []contract.Property{
			{Name: "operation", Type: "options", Default: "info", Options: options("info", "get", "flush")},
		},
	})
	assert.Equal(t, []string{"info", "get"}, res.Extras["operations"])
	assert.Contains(t, res.ConversionNotes, `redis operation "flush" is not supported and fails at runtime`)
	assert.Contains(t, res.Code, "case nodekit.RedisInfo:")
	assert.Contains(t, res.Code, "case nodekit.RedisGet:")
	assert.NotContains(t, res.Code, "case nodekit.RedisSet:")
	assert.Contains(t, res.Code, `n.StringParam("operation", i, "info")`)
	assert.NotContains(t, res.Imports, "time")
}

func TestTCPClient_RedisAllOperationsByDefault(t *testing.T) {
	res := Route(ClassTCPClient, contract.Context{NodeName: "redis"})
	assert.Len(t, res.Extras["operations"], 9)
	assert.Contains(t, res.Imports, "time")
	assert.Contains(t, res.Code, `n.StringParam("operation", i, "get")`)
}

func TestTCPClient_SQLDialects(t *testing.T) {
	tests := []struct {
		node    string
		dialect string
		schema  string
	}{
		{"postgres", "nodekit.DialectPostgres", `"public"`},
		{"questDb", "nodekit.DialectPostgresWire", `""`},
		{"mySql", "nodekit.DialectMySQL", `""`},
		{"microsoftSql", "nodekit.DialectMSSQL", `"dbo"`},
	}
	for _, tt := range tests {
		res := Route(ClassTCPClient, contract.Context{NodeName: tt.node})
		assert.Contains(t, res.Helpers, tt.dialect, tt.node)
		assert.Contains(t, res.Helpers, `n.StringParam("schema", i, `+tt.schema+`)`, tt.node)
		assert.Contains(t, res.Code, `n.StringParam("operation", i, "executeQuery")`, tt.node)
	}
}

func TestTCPClient_DefaultQueryKind(t *testing.T) {
	query := func(q string) contract.Context {
		return contract.Context{
			NodeName:   "postgres",
			Properties: []contract.Property{{Name: "query", Type: "string", Default: q}},
		}
	}

	res := Route(ClassTCPClient, query("SELECT id, name FROM users WHERE id = 1"))
	assert.Equal(t, "select", res.Extras["default_query_kind"])

	res = Route(ClassTCPClient, query("DELETE FROM users WHERE id = 1"))
	assert.Equal(t, "delete", res.Extras["default_query_kind"])
	assert.Contains(t, res.ConversionNotes, "default query is a delete statement; run it with fetch=false")

	res = Route(ClassTCPClient, query("SELEC nonsense"))
	assert.NotContains(t, res.Extras, "default_query_kind")
	assert.NotEmpty(t, res.ConversionNotes)

	res = Route(ClassTCPClient, contract.Context{NodeName: "postgres"})
	assert.NotContains(t, res.Extras, "default_query_kind")
}

func TestTCPClient_MongoDefaults(t *testing.T) {
	res := Route(ClassTCPClient, contract.Context{NodeName: "mongoDb"})
	assert.Contains(t, res.Code, `n.StringParam("operation", i, "find")`)
	assert.Contains(t, res.Imports, "go.mongodb.org/mongo-driver/mongo")
}

package gen

import (
	"strings"

	"github.com/blastrain/vitess-sqlparser/sqlparser"

	"github.com/manarouei/agent-skills-sub004/internal/contract"
	"github.com/manarouei/agent-skills-sub004/pkg/nodekit"
)

// TCPClientGenerator converts nodes talking to a server through a client library
type TCPClientGenerator struct{}

func (g *TCPClientGenerator) Class() SemanticClass {
	return ClassTCPClient
}

// redisHandlerTemplates maps each redis operation to its handler template
var redisHandlerTemplates = [...]string{
	nodekit.RedisDelete:  "redis_delete",
	nodekit.RedisGet:     "redis_get",
	nodekit.RedisSet:     "redis_set",
	nodekit.RedisIncr:    "redis_incr",
	nodekit.RedisKeys:    "redis_keys",
	nodekit.RedisInfo:    "redis_info",
	nodekit.RedisPush:    "redis_push",
	nodekit.RedisPop:     "redis_pop",
	nodekit.RedisPublish: "redis_publish",
}

// sqlDialects maps a specialization to the nodekit dialect constant
var sqlDialects = map[string]string{
	"postgres":     "DialectPostgres",
	"postgreswire": "DialectPostgresWire",
	"mysql":        "DialectMySQL",
	"microsoftsql": "DialectMSSQL",
}

var sqlDefaultSchema = map[string]string{
	"postgres":     "public",
	"postgreswire": "",
	"mysql":        "",
	"microsoftsql": "dbo",
}

type redisOp struct {
	Name   string
	Const  string
	Method string
}

type tcpData struct {
	nodeData
	Specialization string
	DefaultOp      string
	DefaultPort    int
	Dialect        string
	DefaultSchema  string
	RedisOps       []redisOp
}

func (g *TCPClientGenerator) Generate(node contract.Context) *Result {
	ctx := NewGeneratorContext(ClassTCPClient, node)

	lib, known := TCPLibraries[ctx.Key]
	if l := NormalizeKey(node.Contract.Connection.Library); !known && l != "" {
		lib, known = TCPLibraries[l]
	}
	spec := "generic"
	if known {
		spec = lib.Specialization
	} else {
		ctx.Note("no client library known for %q; emitting a raw TCP exchange", node.NodeName)
		lib = TCPLibrary{Library: "net", CredentialType: credentialBase(node.NodeName) + "Api"}
	}
	if node.Contract.Connection.Library != "" {
		lib.Library = node.Contract.Connection.Library
	}

	credType := node.Contract.Credentials.Type
	if credType == "" {
		credType = lib.CredentialType
	}
	data := tcpData{
		nodeData:       ctx.data(credType),
		Specialization: spec,
		DefaultOp:      node.DefaultString("operation"),
		DefaultPort:    lib.DefaultPort,
	}

	ctx.AddImport("fmt")
	switch spec {
	case "redis":
		g.redis(ctx, &data)
	case "postgres", "postgreswire", "mysql", "microsoftsql":
		data.Dialect = sqlDialects[spec]
		data.DefaultSchema = sqlDefaultSchema[spec]
		if data.DefaultOp == "" {
			data.DefaultOp = "executeQuery"
		}
		inspectDefaultQuery(ctx, node)
		ctx.AddImport("database/sql", "strings")
		ctx.EmitCode("sql_execute", data)
		ctx.EmitCode("sql_operations", data)
		ctx.EmitHelper("sql_connect", data)
		ctx.EmitHelper("sql_execute_query", data)
		ctx.EmitHelper("sql_columns", data)
	case "mongodb":
		if data.DefaultOp == "" {
			data.DefaultOp = "find"
		}
		ctx.AddImport("strings", "go.mongodb.org/mongo-driver/mongo")
		ctx.EmitCode("mongo_execute", data)
		ctx.EmitCode("mongo_operations", data)
		ctx.EmitHelper("mongo_fields", data)
	case "emailsend":
		ctx.EmitCode("smtp_execute", data)
		ctx.EmitCode("smtp_send", data)
	case "emailreadimap":
		ctx.EmitCode("imap_execute", data)
	default:
		if data.DefaultPort == 0 {
			data.DefaultPort = 80
		}
		ctx.EmitCode("tcp_execute", data)
		ctx.EmitHelper("tcp_exchange", data)
	}

	ctx.SetExtra("specialization", spec)
	ctx.SetExtra("library", lib.Library)
	ctx.SetExtra("credential_type", credType)
	ctx.SetExtra("connect_timeout_seconds", int(nodekit.ConnectTimeout.Seconds()))
	return ctx.Result()
}

// redis emits one handler per declared operation from the handler table
func (g *TCPClientGenerator) redis(ctx *GeneratorContext, data *tcpData) {
	declared := ctx.Node.OptionValues("operation")
	var ops []nodekit.RedisOperation
	if len(declared) == 0 {
		ops = nodekit.RedisOperations()
	}
	for _, name := range declared {
		op, ok := nodekit.ParseRedisOperation(name)
		if !ok {
			ctx.Note("redis operation %q is not supported and fails at runtime", name)
			continue
		}
		ops = append(ops, op)
	}
	if data.DefaultOp == "" {
		data.DefaultOp = nodekit.RedisGet.String()
	}

	ctx.AddImport("github.com/redis/go-redis/v9")
	names := make([]string, 0, len(ops))
	for _, op := range ops {
		name := op.String()
		data.RedisOps = append(data.RedisOps, redisOp{
			Name:   name,
			Const:  "Redis" + strings.ToUpper(name[:1]) + name[1:],
			Method: "redis" + strings.ToUpper(name[:1]) + name[1:],
		})
		names = append(names, name)
		if op == nodekit.RedisSet || op == nodekit.RedisIncr {
			ctx.AddImport("time")
		}
	}
	ctx.SetExtra("operations", names)

	ctx.EmitCode("redis_execute", data)
	for _, op := range ops {
		ctx.EmitCode(redisHandlerTemplates[op], data)
	}
	ctx.EmitHelper("redis_connect", data)
}

// inspectDefaultQuery records the statement kind of a default query
func inspectDefaultQuery(ctx *GeneratorContext, node contract.Context) {
	q := strings.TrimSpace(node.DefaultString("query"))
	if q == "" {
		return
	}
	stmt, err := sqlparser.Parse(q)
	if err != nil {
		ctx.Note("default query could not be parsed: %v", err)
		return
	}
	kind := "other"
	switch stmt.(type) {
	case *sqlparser.Select:
		kind = "select"
	case *sqlparser.Insert:
		kind = "insert"
	case *sqlparser.Update:
		kind = "update"
	case *sqlparser.Delete:
		kind = "delete"
	}
	ctx.SetExtra("default_query_kind", kind)
	if kind != "select" {
		ctx.Note("default query is a %s statement; run it with fetch=false", kind)
	}
}

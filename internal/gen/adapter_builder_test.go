package gen

import (
	"go/ast"
	"go/parser"
	"go/token"
	"path"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manarouei/agent-skills-sub004/internal/contract"
)

// importNames maps import paths whose package name differs from the last element
var importNames = map[string]string{
	"github.com/redis/go-redis/v9": "redis",
	"github.com/openai/openai-go":  "openai",
}

func packageName(importPath string) string {
	if name, ok := importNames[importPath]; ok {
		return name
	}
	return path.Base(importPath)
}

// parseAdapter assembles the full file for res, parses it and checks that
// every import is used and every package selector is imported.
func parseAdapter(t *testing.T, res *Result) *ast.File {
	t.Helper()
	for _, note := range res.ConversionNotes {
		require.NotContains(t, note, "could not be formatted", res.NodeName)
		require.NotContains(t, note, "failed to execute template", res.NodeName)
	}

	src, err := AdapterFile("nodes", res)
	require.NoError(t, err, "%s\n%s", res.NodeName, src)
	f, err := parser.ParseFile(token.NewFileSet(), AdapterFileName(res), src, parser.ParseComments)
	require.NoError(t, err, "%s", src)

	imported := map[string]bool{}
	for _, imp := range f.Imports {
		p, _ := strconv.Unquote(imp.Path.Value)
		imported[packageName(p)] = true
	}
	used := map[string]bool{}
	ast.Inspect(f, func(n ast.Node) bool {
		if sel, ok := n.(*ast.SelectorExpr); ok {
			if id, ok := sel.X.(*ast.Ident); ok {
				used[id.Name] = true
			}
		}
		return true
	})
	for name := range imported {
		assert.True(t, used[name], "%s: import %s is unused\n%s", res.NodeName, name, src)
	}
	for _, pkg := range []string{"context", "fmt", "strings", "http", "sql", "time", "redis", "mongo", "openai", "genai", "qdrant", "nodekit"} {
		if used[pkg] {
			assert.True(t, imported[pkg], "%s: %s is used but not imported\n%s", res.NodeName, pkg, src)
		}
	}
	return f
}

// methods lists the methods declared on the adapter type
func methods(f *ast.File) map[string]bool {
	out := map[string]bool{}
	for _, d := range f.Decls {
		if fn, ok := d.(*ast.FuncDecl); ok && fn.Recv != nil {
			out[fn.Name.Name] = true
		}
	}
	return out
}

func options(values ...string) []contract.PropertyOption {
	out := make([]contract.PropertyOption, 0, len(values))
	for _, v := range values {
		out = append(out, contract.PropertyOption{Name: v, Value: v})
	}
	return out
}

type specializationCase struct {
	class SemanticClass
	node  contract.Context
	spec  string
	want  []string
}

// specializationCases covers one node per specialization of every class
func specializationCases() []specializationCase {
	return []specializationCase{
		{ClassHTTPREST, githubContext(), "rest", []string{"Execute", "executeOperation", "endpoints", "request", "requestAllItems", "payload", "credentials"}},
		{ClassHTTPREST, contract.Context{NodeName: "mystery"}, "rest", []string{"Execute", "request"}},

		{ClassTCPClient, contract.Context{NodeName: "redis"}, "redis", []string{"Execute", "connect", "redisGet", "redisSet", "redisIncr", "redisPublish"}},
		{ClassTCPClient, contract.Context{NodeName: "redis", Properties: []contract.Property{{Name: "operation", Options: options("info", "keys")}}}, "redis", []string{"Execute", "redisInfo", "redisKeys"}},
		{ClassTCPClient, contract.Context{NodeName: "postgres"}, "postgres", []string{"Execute", "connect", "executeQuery", "opInsert", "opUpdate", "opDelete", "table", "columns"}},
		{ClassTCPClient, contract.Context{NodeName: "mySql"}, "mysql", []string{"Execute", "executeQuery"}},
		{ClassTCPClient, contract.Context{NodeName: "microsoftSql"}, "microsoftsql", []string{"Execute", "executeQuery"}},
		{ClassTCPClient, contract.Context{NodeName: "questDb"}, "postgreswire", []string{"Execute", "executeQuery"}},
		{ClassTCPClient, contract.Context{NodeName: "mongoDb"}, "mongodb", []string{"Execute", "mongoFind", "mongoAggregate", "mongoDelete", "fields"}},
		{ClassTCPClient, contract.Context{NodeName: "emailSend"}, "emailsend", []string{"Execute", "sendEmail"}},
		{ClassTCPClient, contract.Context{NodeName: "emailReadImap"}, "emailreadimap", []string{"Execute"}},
		{ClassTCPClient, contract.Context{NodeName: "telnet"}, "generic", []string{"Execute", "exchange"}},

		{ClassSDKClient, contract.Context{NodeName: "openAi"}, "openai", []string{"Execute", "client", "call"}},
		{ClassSDKClient, contract.Context{NodeName: "lmChatDeepSeek"}, "deepseek", []string{"Execute", "client", "call"}},
		{ClassSDKClient, contract.Context{NodeName: "googleGemini"}, "gemini", []string{"Execute", "client", "call"}},
		{ClassSDKClient, contract.Context{NodeName: "supabase"}, "supabase", []string{"Execute", "client", "call"}},
		{ClassSDKClient, contract.Context{NodeName: "vectorStoreQdrant"}, "qdrantvectorstore", []string{"Execute", "client", "call"}},
		{ClassSDKClient, contract.Context{NodeName: "telegram", Properties: []contract.Property{{Name: "chatId"}, {Name: "text"}, {Name: "additionalFields", Type: "collection"}}}, "telegram", []string{"Execute", "client", "call"}},
		{ClassSDKClient, contract.Context{NodeName: "bale"}, "bale", []string{"Execute", "client", "call"}},
		{ClassSDKClient, contract.Context{NodeName: "pinecone"}, "generic", []string{"Execute", "client", "call"}},

		{ClassPureTransform, contract.Context{NodeName: "merge"}, "merge", []string{"Execute", "branches"}},
		{ClassPureTransform, contract.Context{NodeName: "if"}, "if", []string{"Execute", "branches"}},
		{ClassPureTransform, contract.Context{NodeName: "switch"}, "switch", []string{"Execute", "branches"}},
		{ClassPureTransform, contract.Context{NodeName: "filter"}, "filter", []string{"Execute", "branches"}},
		{ClassPureTransform, contract.Context{NodeName: "set"}, "set", []string{"Execute", "branches"}},
		{ClassPureTransform, contract.Context{NodeName: "splitOut"}, "iterator", []string{"Execute", "branches"}},
		{ClassPureTransform, contract.Context{NodeName: "noOp"}, "passthrough", []string{"Execute", "branches"}},
		{ClassPureTransform, contract.Context{NodeName: "dateTime"}, "passthrough", []string{"Execute", "branches"}},

		{ClassStateful, contract.Context{NodeName: "wait"}, "wait", []string{"Execute"}},
		{ClassStateful, contract.Context{NodeName: "loop"}, "loop", []string{"Execute"}},
		{ClassStateful, contract.Context{NodeName: "splitInBatches"}, "splitinbatches", []string{"Execute"}},
		{ClassStateful, contract.Context{NodeName: "executeWorkflow"}, "subworkflow", []string{"Execute"}},
		{ClassStateful, contract.Context{NodeName: "memoryBufferWindow"}, "buffer_memory", []string{"Execute", "memoryOperation"}},
		{ClassStateful, contract.Context{NodeName: "memoryRedisChat"}, "redis_memory", []string{"Execute", "memoryOperation"}},
		{ClassStateful, contract.Context{NodeName: "cron"}, "generic", []string{"Execute"}},
	}
}

func TestAdapterFile_EverySpecialization(t *testing.T) {
	for _, tt := range specializationCases() {
		t.Run(tt.class.String()+"/"+tt.node.NodeName, func(t *testing.T) {
			res := Route(tt.class, tt.node)
			assert.Equal(t, tt.spec, res.Specialization())

			f := parseAdapter(t, res)
			assert.Equal(t, "nodes", f.Name.Name)
			got := methods(f)
			for _, m := range tt.want {
				assert.True(t, got[m], "%s lacks method %s", res.TypeName, m)
			}
		})
	}
}

func TestAdapterFile_StructAndConstructor(t *testing.T) {
	res := Route(ClassStateful, contract.Context{
		NodeName: "loop",
		Contract: contract.ExecutionContract{State: map[string]any{"max_iterations": 25}},
	})
	src, err := AdapterFile("", res)
	require.NoError(t, err)
	code := string(src)

	assert.True(t, strings.HasPrefix(code, "// Code generated by codeconvert. DO NOT EDIT.\n"))
	assert.Contains(t, code, "package nodes\n")
	assert.Contains(t, code, "type LoopNode struct {\n\t*nodekit.Base\n\tloop *nodekit.LoopState\n}")
	assert.Contains(t, squash(code), "return &LoopNode{ Base: base, loop: nodekit.NewLoopState(25), }")
	assert.Contains(t, code, "var _ nodekit.Adapter = (*LoopNode)(nil)")
	assert.Equal(t, "loop.go", AdapterFileName(res))
}

func TestAdapterFile_RejectsEmptyResult(t *testing.T) {
	_, err := AdapterFile("nodes", nil)
	assert.ErrorIs(t, err, ErrNoCode)
	_, err = AdapterFile("nodes", &Result{TypeName: "XNode"})
	assert.ErrorIs(t, err, ErrNoCode)
}

func TestAdapterFileName(t *testing.T) {
	assert.Equal(t, "split_in_batches.go", AdapterFileName(&Result{TypeName: "SplitInBatchesNode"}))
	assert.Equal(t, "git_hub.go", AdapterFileName(&Result{TypeName: "GitHubNode"}))
	assert.Equal(t, "node.go", AdapterFileName(&Result{TypeName: "Node"}))
}

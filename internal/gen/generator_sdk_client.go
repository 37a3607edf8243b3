package gen

import (
	"sort"
	"strings"
	"unicode"

	"github.com/manarouei/agent-skills-sub004/internal/contract"
	"github.com/manarouei/agent-skills-sub004/pkg/nodekit"
)

// SDKClientGenerator converts nodes built on a vendor SDK
type SDKClientGenerator struct{}

func (g *SDKClientGenerator) Class() SemanticClass {
	return ClassSDKClient
}

// defaultModels are used when the node declares no model default
var defaultModels = map[string]string{
	"openai":   "gpt-4o-mini",
	"deepseek": "deepseek-chat",
	"gemini":   "gemini-2.0-flash",
}

// botURLs maps a bot specialization to its nodekit URL template constant
var botURLs = map[string]string{
	"telegram": "TelegramBaseURL",
	"bale":     "BaleBaseURL",
}

type initParam struct {
	Name  string
	Field string
}

type botField struct {
	Param string
	Wire  string
}

type sdkData struct {
	nodeData
	Specialization string
	ClientType     string
	Closable       bool
	DefaultOp      string
	DefaultModel   string
	DeepSeek       bool
	BotURL         string
	BotFields      []botField
	Collections    []string
	InitParams     []initParam
}

func (g *SDKClientGenerator) Generate(node contract.Context) *Result {
	ctx := NewGeneratorContext(ClassSDKClient, node)

	lib, known := SDKLibraries[ctx.Key]
	if l := NormalizeKey(node.Contract.Connection.Library); !known && l != "" {
		lib, known = SDKLibraries[l]
	}
	spec := "generic"
	if known {
		spec = lib.Specialization
	} else {
		lib = SDKLibrary{Library: "net/http", ClientClass: "nodekit.GenericClient"}
	}
	if node.Contract.SDKConfig.ClientClass != "" {
		lib.ClientClass = node.Contract.SDKConfig.ClientClass
	}

	credType := node.Contract.Credentials.Type
	if credType == "" {
		credType = lib.CredentialType
	}
	if credType == "" {
		credType = credentialBase(node.NodeName) + "Api"
	}
	data := sdkData{
		nodeData:       ctx.data(credType),
		Specialization: spec,
		DefaultOp:      node.DefaultString("operation"),
		DefaultModel:   node.DefaultString("model"),
	}
	if data.DefaultModel == "" {
		data.DefaultModel = defaultModels[spec]
	}

	ctx.AddImport("fmt")
	switch spec {
	case "openai", "deepseek":
		data.ClientType = "openai.Client"
		data.DeepSeek = spec == "deepseek"
		ctx.AddImport("github.com/openai/openai-go")
		g.emit(ctx, data, "sdk_openai")
	case "gemini":
		data.ClientType = "*genai.Client"
		ctx.AddImport("google.golang.org/genai")
		g.emit(ctx, data, "sdk_gemini")
	case "supabase":
		data.ClientType = "*nodekit.SupabaseClient"
		if data.DefaultOp == "" {
			data.DefaultOp = "getAll"
		}
		g.emit(ctx, data, "sdk_supabase")
	case "qdrantvectorstore":
		data.ClientType = "*qdrant.Client"
		data.Closable = true
		if data.DefaultOp == "" {
			data.DefaultOp = "load"
		}
		ctx.AddImport("github.com/qdrant/go-client/qdrant")
		g.emit(ctx, data, "sdk_qdrant")
	case "telegram", "bale":
		data.ClientType = "*nodekit.BotClient"
		data.BotURL = botURLs[spec]
		if data.DefaultOp == "" {
			data.DefaultOp = "sendMessage"
		}
		fields, collections := requestFields(node)
		for _, f := range fields {
			data.BotFields = append(data.BotFields, botField{Param: f, Wire: snakeCase(f)})
		}
		data.Collections = collections
		g.emit(ctx, data, "sdk_bot")
	default:
		data.ClientType = "*nodekit.GenericClient"
		data.InitParams = initParams(ctx, node)
		ctx.AddImport("net/http")
		g.emit(ctx, data, "sdk_generic")
	}

	ctx.SetExtra("specialization", spec)
	ctx.SetExtra("library", lib.Library)
	ctx.SetExtra("client_class", lib.ClientClass)
	ctx.SetExtra("credential_type", credType)
	ctx.SetExtra("timeout_seconds", int(nodekit.SDKTimeout.Seconds()))
	return ctx.Result()
}

// emit renders the shared Execute loop plus the specialization's client and call
func (g *SDKClientGenerator) emit(ctx *GeneratorContext, data sdkData, prefix string) {
	ctx.EmitCode("sdk_execute", data)
	ctx.EmitCode(prefix+"_call", data)
	ctx.EmitHelper(prefix+"_client", data)
}

// initParams reads the init_from_credentials mapping in a stable order
func initParams(ctx *GeneratorContext, node contract.Context) []initParam {
	mapping := node.Contract.SDKConfig.InitFromCredentials
	if len(mapping) == 0 {
		ctx.Note("no SDK init parameters declared for %q; using base_url and api_key from the credential", node.NodeName)
		mapping = map[string]string{"base_url": "baseUrl", "api_key": "apiKey"}
	}
	names := make([]string, 0, len(mapping))
	for name := range mapping {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]initParam, 0, len(names))
	for _, name := range names {
		out = append(out, initParam{Name: name, Field: mapping[name]})
	}
	return out
}

// snakeCase turns a camelCase parameter name into its bot API field name
func snakeCase(s string) string {
	var b strings.Builder
	prev := rune(0)
	for _, r := range s {
		if unicode.IsUpper(r) {
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
		prev = r
	}
	return b.String()
}

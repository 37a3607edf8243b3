package gen

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// KnownBaseURLs holds the public API root of well known REST services
var KnownBaseURLs = map[string]string{
	"airtable":       "https://api.airtable.com/v0",
	"asana":          "https://app.asana.com/api/1.0",
	"clickup":        "https://api.clickup.com/api/v2",
	"discord":        "https://discord.com/api/v10",
	"github":         "https://api.github.com",
	"gitlab":         "https://gitlab.com/api/v4",
	"hubspot":        "https://api.hubapi.com",
	"linear":         "https://api.linear.app",
	"notion":         "https://api.notion.com/v1",
	"openweathermap": "https://api.openweathermap.org/data/2.5",
	"pipedrive":      "https://api.pipedrive.com/v1",
	"sendgrid":       "https://api.sendgrid.com/v3",
	"slack":          "https://slack.com/api",
	"stripe":         "https://api.stripe.com/v1",
	"todoist":        "https://api.todoist.com/rest/v2",
	"trello":         "https://api.trello.com/1",
}

// SDKLibrary describes the client used for an SDK node
type SDKLibrary struct {
	Library        string
	ClientClass    string
	CredentialType string
	Specialization string
}

var SDKLibraries = map[string]SDKLibrary{
	"openai":            {Library: "github.com/openai/openai-go", ClientClass: "openai.Client", CredentialType: "openAiApi", Specialization: "openai"},
	"lmchatopenai":      {Library: "github.com/openai/openai-go", ClientClass: "openai.Client", CredentialType: "openAiApi", Specialization: "openai"},
	"deepseek":          {Library: "github.com/openai/openai-go", ClientClass: "openai.Client", CredentialType: "deepSeekApi", Specialization: "deepseek"},
	"lmchatdeepseek":    {Library: "github.com/openai/openai-go", ClientClass: "openai.Client", CredentialType: "deepSeekApi", Specialization: "deepseek"},
	"gemini":            {Library: "google.golang.org/genai", ClientClass: "genai.Client", CredentialType: "googlePalmApi", Specialization: "gemini"},
	"googlegemini":      {Library: "google.golang.org/genai", ClientClass: "genai.Client", CredentialType: "googlePalmApi", Specialization: "gemini"},
	"supabase":          {Library: "postgrest", ClientClass: "nodekit.SupabaseClient", CredentialType: "supabaseApi", Specialization: "supabase"},
	"qdrantvectorstore": {Library: "github.com/qdrant/go-client", ClientClass: "qdrant.Client", CredentialType: "qdrantApi", Specialization: "qdrantvectorstore"},
	"vectorstoreqdrant": {Library: "github.com/qdrant/go-client", ClientClass: "qdrant.Client", CredentialType: "qdrantApi", Specialization: "qdrantvectorstore"},
	"telegram":          {Library: "bot api", ClientClass: "nodekit.BotClient", CredentialType: "telegramApi", Specialization: "telegram"},
	"bale":              {Library: "bot api", ClientClass: "nodekit.BotClient", CredentialType: "baleApi", Specialization: "bale"},
}

// TCPLibrary describes the driver used for a TCP node
type TCPLibrary struct {
	Library        string
	Specialization string
	CredentialType string
	DefaultPort    int
}

var TCPLibraries = map[string]TCPLibrary{
	"redis":         {Library: "github.com/redis/go-redis/v9", Specialization: "redis", CredentialType: "redis", DefaultPort: 6379},
	"postgres":      {Library: "github.com/jackc/pgx/v5", Specialization: "postgres", CredentialType: "postgres", DefaultPort: 5432},
	"postgresql":    {Library: "github.com/jackc/pgx/v5", Specialization: "postgres", CredentialType: "postgres", DefaultPort: 5432},
	"mysql":         {Library: "github.com/go-sql-driver/mysql", Specialization: "mysql", CredentialType: "mySql", DefaultPort: 3306},
	"mongodb":       {Library: "go.mongodb.org/mongo-driver", Specialization: "mongodb", CredentialType: "mongoDb", DefaultPort: 27017},
	"microsoftsql":  {Library: "github.com/denisenkom/go-mssqldb", Specialization: "microsoftsql", CredentialType: "microsoftSql", DefaultPort: 1433},
	"questdb":       {Library: "github.com/lib/pq", Specialization: "postgreswire", CredentialType: "questDb", DefaultPort: 8812},
	"timescaledb":   {Library: "github.com/lib/pq", Specialization: "postgreswire", CredentialType: "timescaleDb", DefaultPort: 5432},
	"cratedb":       {Library: "github.com/lib/pq", Specialization: "postgreswire", CredentialType: "crateDb", DefaultPort: 5432},
	"emailsend":     {Library: "github.com/wneessen/go-mail", Specialization: "emailsend", CredentialType: "smtp", DefaultPort: 587},
	"emailreadimap": {Library: "github.com/emersion/go-imap/v2", Specialization: "emailreadimap", CredentialType: "imap", DefaultPort: 993},
}

// TransformConfig is the default shape of a pure-transform node
type TransformConfig struct {
	Specialization string
	Outputs        []string
	ItemMapping    string
}

var TransformConfigs = map[string]TransformConfig{
	"merge":      {Specialization: "merge", Outputs: []string{"output"}, ItemMapping: "N:M"},
	"if":         {Specialization: "if", Outputs: []string{"true", "false"}, ItemMapping: "route"},
	"switch":     {Specialization: "switch", Outputs: []string{"output0", "output1", "output2", "output3"}, ItemMapping: "route"},
	"filter":     {Specialization: "filter", Outputs: []string{"kept"}, ItemMapping: "filter"},
	"set":        {Specialization: "set", Outputs: []string{"output"}, ItemMapping: "1:1"},
	"editfields": {Specialization: "set", Outputs: []string{"output"}, ItemMapping: "1:1"},
	"iterator":   {Specialization: "iterator", Outputs: []string{"output"}, ItemMapping: "1:N"},
	"itemlists":  {Specialization: "iterator", Outputs: []string{"output"}, ItemMapping: "1:N"},
	"splitout":   {Specialization: "iterator", Outputs: []string{"output"}, ItemMapping: "1:N"},
	"noop":       {Specialization: "passthrough", Outputs: []string{"output"}, ItemMapping: "1:1"},
}

// StatefulConfig is the default shape of a stateful node
type StatefulConfig struct {
	Specialization string
	Outputs        []string
	State          map[string]any
}

var StatefulConfigs = map[string]StatefulConfig{
	"wait":               {Specialization: "wait", Outputs: []string{"output"}, State: map[string]any{"max_wait_seconds": 60}},
	"loop":               {Specialization: "loop", Outputs: []string{"loop", "done"}, State: map[string]any{"max_iterations": 100}},
	"splitinbatches":     {Specialization: "splitinbatches", Outputs: []string{"batch", "done"}, State: map[string]any{"batch_size": 10}},
	"subworkflow":        {Specialization: "subworkflow", Outputs: []string{"output"}},
	"executeworkflow":    {Specialization: "subworkflow", Outputs: []string{"output"}},
	"buffermemory":       {Specialization: "buffer_memory", Outputs: []string{"output"}, State: map[string]any{"window": 10}},
	"memorybufferwindow": {Specialization: "buffer_memory", Outputs: []string{"output"}, State: map[string]any{"window": 10}},
	"redismemory":        {Specialization: "redis_memory", Outputs: []string{"output"}, State: map[string]any{"ttl_seconds": 3600, "window": 10}},
	"memoryredischat":    {Specialization: "redis_memory", Outputs: []string{"output"}, State: map[string]any{"ttl_seconds": 3600, "window": 10}},
}

// NormalizeKey turns a node name into a table key: package prefixes such as
// "n8n-nodes-base." are dropped, the rest is lowercased with '-', '_' and
// spaces removed.
func NormalizeKey(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', '_', ' ', '\t':
			return -1
		}
		return unicode.ToLower(r)
	}, name)
}

// TypeName derives the adapter struct name from a node name,
// e.g. "n8n-nodes-base.splitInBatches" becomes "SplitInBatchesNode".
func TypeName(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	words := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	// casers keep state, so each call gets its own
	caser := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	for _, w := range words {
		b.WriteString(caser.String(w))
	}
	out := b.String()
	if out == "" {
		return "UnnamedNode"
	}
	if unicode.IsDigit(rune(out[0])) {
		out = "N" + out
	}
	return out + "Node"
}

// lowerFirst returns s with its first letter lowercased ("GitHub" -> "gitHub")
func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// credentialBase is the camel-case stem used to derive credential type names
func credentialBase(name string) string {
	return lowerFirst(strings.TrimSuffix(TypeName(name), "Node"))
}

// Specializations lists the specializations a class can emit, sorted
func Specializations(class SemanticClass) []string {
	seen := map[string]bool{}
	switch class {
	case ClassHTTPREST:
		seen["rest"] = true
	case ClassTCPClient:
		seen["generic"] = true
		for _, l := range TCPLibraries {
			seen[l.Specialization] = true
		}
	case ClassSDKClient:
		seen["generic"] = true
		for _, l := range SDKLibraries {
			seen[l.Specialization] = true
		}
	case ClassPureTransform:
		for _, c := range TransformConfigs {
			seen[c.Specialization] = true
		}
	case ClassStateful:
		seen["generic"] = true
		for _, c := range StatefulConfigs {
			seen[c.Specialization] = true
		}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

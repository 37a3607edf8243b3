package gen

import (
	"regexp"
	"sort"
	"strings"

	"github.com/manarouei/agent-skills-sub004/internal/contract"
)

// HTTPRESTGenerator converts nodes wrapping a JSON REST API
type HTTPRESTGenerator struct{}

func (g *HTTPRESTGenerator) Class() SemanticClass {
	return ClassHTTPREST
}

var (
	uriPattern = regexp.MustCompile(`uri:\s*['"\x60](https?://[^'"\x60$]+)`)
	urlPattern = regexp.MustCompile(`url:\s*['"\x60](https?://[^'"\x60$]+)`)

	resourceToken  = regexp.MustCompile(`resource\s*===?\s*['"](\w+)['"]`)
	operationToken = regexp.MustCompile(`operation\s*===?\s*['"](\w+)['"]`)
	apiCallToken   = regexp.MustCompile(`\w+ApiRequest(AllItems)?\.call\(\s*this\s*,\s*['"](\w+)['"]\s*,\s*['"\x60]([^'"\x60]*)['"\x60]`)
)

// properties never sent as request fields
var controlProperties = map[string]bool{
	"resource":       true,
	"operation":      true,
	"authentication": true,
	"returnAll":      true,
	"limit":          true,
}

var collectionTypes = map[string]bool{
	"collection":      true,
	"fixedCollection": true,
	"json":            true,
}

type httpEndpoint struct {
	Key    string
	Method string
	Path   string
	All    bool
}

type httpRESTData struct {
	nodeData
	BaseURL         string
	FromCredentials bool
	AuthStyle       string
	OAuth2          bool
	OAuth2Type      string
	HasResource     bool
	DefaultResource string
	DefaultOp       string
	HasOperation    bool
	HasLimit        bool
	Endpoints       []httpEndpoint
	Fields          []string
	Collections     []string
}

func (g *HTTPRESTGenerator) Generate(node contract.Context) *Result {
	ctx := NewGeneratorContext(ClassHTTPREST, node)
	ctx.SetExtra("specialization", "rest")

	credType := node.Contract.Credentials.Type
	if credType == "" {
		credType = credentialBase(node.NodeName) + "Api"
	}
	data := httpRESTData{
		nodeData:        ctx.data(credType),
		OAuth2:          node.HasProperty("authentication"),
		OAuth2Type:      credentialBase(node.NodeName) + "OAuth2Api",
		HasResource:     node.HasProperty("resource"),
		DefaultResource: node.DefaultString("resource"),
		HasOperation:    node.HasProperty("operation"),
		DefaultOp:       node.DefaultString("operation"),
		HasLimit:        node.HasProperty("limit"),
	}

	data.BaseURL, data.FromCredentials = resolveBaseURL(ctx.Key, node)
	if data.FromCredentials {
		ctx.Note("no base URL known for %q; it is read from the credentials at runtime", node.NodeName)
	}

	switch auth := strings.ToLower(strings.TrimSpace(node.Contract.HTTPConfig.AuthHeader)); auth {
	case "", "bearer":
		data.AuthStyle = "AuthBearer"
	case "token":
		data.AuthStyle = "AuthToken"
	default:
		data.AuthStyle = "AuthBearer"
		ctx.Note("unknown auth header style %q, using bearer", auth)
	}

	data.Endpoints = scanEndpoints(node, ctx)
	data.Fields, data.Collections = requestFields(node)

	ctx.AddImport("fmt", "net/http")
	if data.OAuth2 {
		ctx.AddImport("strings")
	}

	ctx.EmitCode("http_execute", data)
	ctx.EmitCode("http_operation", data)
	ctx.EmitHelper("http_credentials", data)
	ctx.EmitHelper("http_request", data)
	ctx.EmitHelper("http_request_all", data)
	ctx.EmitHelper("http_payload", data)

	ops := make([]string, 0, len(data.Endpoints))
	for _, ep := range data.Endpoints {
		if ep.Path != "" {
			ops = append(ops, ep.Key)
		}
	}
	ctx.SetExtra("base_url", data.BaseURL)
	ctx.SetExtra("base_url_from_credentials", data.FromCredentials)
	ctx.SetExtra("credential_type", credType)
	ctx.SetExtra("auth_header", strings.ToLower(strings.TrimPrefix(data.AuthStyle, "Auth")))
	ctx.SetExtra("oauth2", data.OAuth2)
	ctx.SetExtra("operations", ops)
	return ctx.Result()
}

// resolveBaseURL applies the lookup order contract, table, uri pattern,
// url pattern and finally credentials.
func resolveBaseURL(key string, node contract.Context) (string, bool) {
	if u := strings.TrimSpace(node.Contract.HTTPConfig.BaseURL); u != "" {
		return strings.TrimRight(u, "/"), node.Contract.HTTPConfig.BaseURLFromCredentials
	}
	if u, ok := KnownBaseURLs[key]; ok {
		return u, node.Contract.HTTPConfig.BaseURLFromCredentials
	}
	for _, re := range []*regexp.Regexp{uriPattern, urlPattern} {
		if m := re.FindStringSubmatch(node.TSCode); m != nil {
			return strings.TrimRight(m[1], "/"), node.Contract.HTTPConfig.BaseURLFromCredentials
		}
	}
	return "", true
}

type sourceToken struct {
	pos   int
	kind  byte
	match []string
}

// scanEndpoints finds, for every resource/operation branch of the source,
// the first API call made inside it. Declared operations without a call
// are kept with an empty path so they surface for manual review.
func scanEndpoints(node contract.Context, ctx *GeneratorContext) []httpEndpoint {
	var tokens []sourceToken
	collect := func(re *regexp.Regexp, kind byte) {
		for _, idx := range re.FindAllStringSubmatchIndex(node.TSCode, -1) {
			m := make([]string, 0, len(idx)/2)
			for i := 0; i < len(idx); i += 2 {
				if idx[i] < 0 {
					m = append(m, "")
					continue
				}
				m = append(m, node.TSCode[idx[i]:idx[i+1]])
			}
			tokens = append(tokens, sourceToken{pos: idx[0], kind: kind, match: m})
		}
	}
	collect(resourceToken, 'r')
	collect(operationToken, 'o')
	collect(apiCallToken, 'c')
	sort.SliceStable(tokens, func(i, j int) bool { return tokens[i].pos < tokens[j].pos })

	hasResource := node.HasProperty("resource")
	found := map[string]httpEndpoint{}
	seenOps := map[string]bool{}
	resource, pending := "", ""
	for _, t := range tokens {
		switch t.kind {
		case 'r':
			resource = t.match[1]
			pending = ""
		case 'o':
			pending = t.match[1]
			if hasResource && resource != "" {
				pending = resource + ":" + pending
			}
			seenOps[t.match[1]] = true
			if _, ok := found[pending]; !ok {
				found[pending] = httpEndpoint{Key: pending}
			}
		case 'c':
			key := pending
			if key == "" && !node.HasProperty("operation") {
				key = "default"
			}
			if key == "" {
				continue
			}
			if ep, ok := found[key]; ok && ep.Path != "" {
				continue
			}
			found[key] = httpEndpoint{
				Key:    key,
				Method: strings.ToUpper(t.match[2]),
				Path:   t.match[3],
				All:    t.match[1] != "",
			}
		}
	}

	for _, op := range node.OptionValues("operation") {
		if !seenOps[op] {
			found[op] = httpEndpoint{Key: op}
		}
	}

	keys := make([]string, 0, len(found))
	for k := range found {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]httpEndpoint, 0, len(keys))
	for _, k := range keys {
		ep := found[k]
		if ep.Path == "" {
			ctx.Note("operation %q has no recognisable API call and needs manual review", k)
		}
		out = append(out, ep)
	}
	return out
}

// requestFields splits the declared properties into plain request fields and
// collections whose entries are flattened into the request.
func requestFields(node contract.Context) (fields, collections []string) {
	seen := map[string]bool{}
	for _, p := range node.Properties {
		if controlProperties[p.Name] || seen[p.Name] || !validIdentPath(p.Name) {
			continue
		}
		seen[p.Name] = true
		if collectionTypes[p.Type] {
			collections = append(collections, p.Name)
		} else if p.Type != "notice" {
			fields = append(fields, p.Name)
		}
	}
	return fields, collections
}

var identPathPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func validIdentPath(name string) bool {
	return identPathPattern.MatchString(name)
}

package gen

import (
	"fmt"
	"go/format"
	"sort"
	"strings"

	"github.com/manarouei/agent-skills-sub004/internal/contract"
)

const nodekitImport = "github.com/manarouei/agent-skills-sub004/pkg/nodekit"

// GeneratorContext collects the output of one generator call
type GeneratorContext struct {
	Class SemanticClass
	Node  contract.Context

	// Key is the normalised node name used for table lookups
	Key      string
	TypeName string

	// Imports collects all imports needed, path -> alias
	Imports map[string]string

	code    strings.Builder
	helpers strings.Builder
	notes   []string
	fields  []Field
	extras  map[string]any
}

// NewGeneratorContext creates a new generator context for node
func NewGeneratorContext(class SemanticClass, node contract.Context) *GeneratorContext {
	ctx := &GeneratorContext{
		Class:    class,
		Node:     node,
		Key:      NormalizeKey(node.NodeName),
		TypeName: TypeName(node.NodeName),
		Imports:  make(map[string]string),
		extras:   make(map[string]any),
	}
	ctx.AddImport("context")
	ctx.AddImport(nodekitImport)
	return ctx
}

// AddImport adds an import to the context
func (ctx *GeneratorContext) AddImport(paths ...string) {
	for _, path := range paths {
		if _, exists := ctx.Imports[path]; !exists {
			ctx.Imports[path] = ""
		}
	}
}

// Note records a conversion note for human review
func (ctx *GeneratorContext) Note(format string, args ...any) {
	ctx.notes = append(ctx.notes, fmt.Sprintf(format, args...))
}

// AddField declares an instance field of the adapter
func (ctx *GeneratorContext) AddField(name, typ, init string) {
	ctx.fields = append(ctx.fields, Field{Name: name, Type: typ, Init: init})
}

// SetExtra stores a class-specific extra
func (ctx *GeneratorContext) SetExtra(key string, value any) {
	ctx.extras[key] = value
}

// EmitCode renders a template into the Execute/handler section
func (ctx *GeneratorContext) EmitCode(name string, data any) {
	ctx.render(&ctx.code, name, data)
}

// EmitHelper renders a template into the helper section
func (ctx *GeneratorContext) EmitHelper(name string, data any) {
	ctx.render(&ctx.helpers, name, data)
}

func (ctx *GeneratorContext) render(buf *strings.Builder, name string, data any) {
	engine, err := defaultTemplateEngine()
	if err != nil {
		ctx.Note("templates unavailable: %v", err)
		return
	}
	out, err := engine.GenerateNodeFunction(name, data)
	if err != nil {
		ctx.Note("%v", err)
		return
	}
	if buf.Len() > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString(strings.TrimSpace(out))
	buf.WriteString("\n")
}

// nodeData is what every template receives about the node
type nodeData struct {
	TypeName       string
	NodeName       string
	Key            string
	CredentialType string
}

func (ctx *GeneratorContext) data(credentialType string) nodeData {
	return nodeData{
		TypeName:       ctx.TypeName,
		NodeName:       ctx.Node.NodeName,
		Key:            ctx.Key,
		CredentialType: credentialType,
	}
}

// Result formats the collected source and builds the generator result.
// Source that does not format is kept as is, with a note.
func (ctx *GeneratorContext) Result() *Result {
	code := ctx.formatted("code", ctx.code.String())
	helpers := ctx.formatted("helpers", ctx.helpers.String())

	imports := make([]string, 0, len(ctx.Imports))
	for path := range ctx.Imports {
		imports = append(imports, path)
	}
	sort.Strings(imports)

	notes := ctx.notes
	if notes == nil {
		notes = []string{}
	}
	return &Result{
		Class:           ctx.Class,
		NodeName:        ctx.Node.NodeName,
		TypeName:        ctx.TypeName,
		Code:            code,
		Imports:         imports,
		Helpers:         helpers,
		ConversionNotes: notes,
		Fields:          ctx.fields,
		Extras:          ctx.extras,
		Fingerprint:     Fingerprint(ctx.TypeName, code, helpers, imports),
	}
}

func (ctx *GeneratorContext) formatted(section, src string) string {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	out, err := format.Source([]byte(src))
	if err != nil {
		ctx.Note("generated %s could not be formatted: %v", section, err)
		return src
	}
	return string(out)
}

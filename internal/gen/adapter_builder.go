package gen

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/manarouei/agent-skills-sub004/internal/gen/ir"
)

// DefaultPackage is the package name of generated adapter files
const DefaultPackage = "nodes"

var ErrNoCode = errors.New("generator result has no code")

// AdapterFile assembles a complete source file from a generator result:
// the adapter struct embedding *nodekit.Base, its constructor, the interface
// assertion, then the generated methods.
func AdapterFile(pkg string, res *Result) ([]byte, error) {
	if res == nil || strings.TrimSpace(res.Code) == "" {
		return nil, ErrNoCode
	}
	if pkg == "" {
		pkg = DefaultPackage
	}

	fb := ir.NewFile(pkg).
		Header(
			"Code generated by codeconvert. DO NOT EDIT.",
			fmt.Sprintf("Source node: %s (%s)", res.NodeName, res.Class),
		).
		Import(res.Imports...)

	st := ir.NewStruct(res.TypeName).
		Doc(fmt.Sprintf("%s adapts the %s node.", res.TypeName, displayName(res.NodeName))).
		Embed("*nodekit.Base")
	elements := []ir.Expr{ir.KV(ir.Id("Base"), ir.Id("base"))}
	for _, f := range res.Fields {
		st.Field(f.Name, f.Type)
		if f.Init != "" {
			elements = append(elements, ir.KV(ir.Id(f.Name), ir.Raw(f.Init)))
		}
	}
	fb.AddDecl(st.Build())

	ctor := ir.NewFunc("New"+res.TypeName).
		Doc(fmt.Sprintf("New%s binds the adapter to base.", res.TypeName)).
		Param("base", "*nodekit.Base").
		Returns("*" + res.TypeName).
		Body(ir.Return(ir.Addr(ir.Composite(res.TypeName, elements...))))
	fb.AddDecl(ctor.Build())

	fb.AddDecl(&ir.VarDecl{
		Name:  "_",
		Type:  "nodekit.Adapter",
		Value: ir.Call(ir.Paren(ir.Deref(ir.Id(res.TypeName))), ir.Nil()),
	})
	fb.AddRaw(res.Code)
	fb.AddRaw(res.Helpers)

	var buf bytes.Buffer
	if err := ir.EmitFile(&buf, fb.Build()); err != nil {
		return nil, fmt.Errorf("failed to emit %s: %w", res.TypeName, err)
	}
	return FormatFile(buf.Bytes())
}

// AdapterFileName is the file name an adapter is written to
func AdapterFileName(res *Result) string {
	name := strings.TrimSuffix(res.TypeName, "Node")
	if name == "" {
		name = res.TypeName
	}
	return snakeCase(name) + ".go"
}

func displayName(name string) string {
	if name == "" {
		return "unnamed"
	}
	return name
}

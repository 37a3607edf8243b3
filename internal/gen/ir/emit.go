package ir

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Emitter writes Go code from IR nodes. The output is valid but not
// gofmt-aligned; callers format it afterwards.
type Emitter struct {
	w      io.Writer
	indent int
	err    error
}

// NewEmitter creates a new emitter
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: w}
}

// Emit writes the IR node to the writer
func (e *Emitter) Emit(n Node) error {
	e.emit(n)
	return e.err
}

// EmitFile is a convenience method for emitting a file
func EmitFile(w io.Writer, f *File) error {
	return NewEmitter(w).Emit(f)
}

func (e *Emitter) write(s string) {
	if e.err != nil {
		return
	}
	_, e.err = io.WriteString(e.w, s)
}

func (e *Emitter) writef(format string, args ...any) {
	e.write(fmt.Sprintf(format, args...))
}

func (e *Emitter) writeIndent() {
	e.write(strings.Repeat("\t", e.indent))
}

func (e *Emitter) newline() {
	e.write("\n")
}

func (e *Emitter) emit(n Node) {
	if e.err != nil {
		return
	}

	switch v := n.(type) {
	case *File:
		e.emitFile(v)
	case *StructDecl:
		e.emitStruct(v)
	case *FuncDecl:
		e.emitFunc(v)
	case *VarDecl:
		e.emitVarDecl(v)
	case *RawDecl:
		e.write(strings.TrimSpace(v.Code))
		e.newline()
	case *ReturnStmt:
		e.emitReturn(v)
	case Expr:
		e.emitExpr(v)
	default:
		e.err = fmt.Errorf("unknown node type: %T", n)
	}
}

func (e *Emitter) emitDoc(lines []string) {
	for _, l := range lines {
		e.writeIndent()
		if l == "" {
			e.write("//\n")
			continue
		}
		e.writef("// %s\n", l)
	}
}

func (e *Emitter) emitFile(f *File) {
	if len(f.Header) > 0 {
		e.emitDoc(f.Header)
		e.newline()
	}
	e.writef("package %s\n", f.Package)

	if len(f.Imports) > 0 {
		e.newline()
		if len(f.Imports) == 1 {
			e.write("import ")
			e.emitImport(f.Imports[0])
			e.newline()
		} else {
			e.write("import (\n")
			e.indent++
			for _, imp := range f.Imports {
				e.writeIndent()
				e.emitImport(imp)
				e.newline()
			}
			e.indent--
			e.write(")\n")
		}
	}

	for _, decl := range f.Decls {
		e.newline()
		e.emit(decl)
	}
}

func (e *Emitter) emitImport(imp Import) {
	if imp.Alias != "" {
		e.writef("%s %q", imp.Alias, imp.Path)
	} else {
		e.writef("%q", imp.Path)
	}
}

func (e *Emitter) emitStruct(s *StructDecl) {
	e.emitDoc(s.Doc)
	e.writef("type %s struct {\n", s.Name)
	e.indent++
	for _, f := range s.Fields {
		e.writeIndent()
		if f.Name != "" {
			e.writef("%s ", f.Name)
		}
		e.write(f.Type)
		e.newline()
	}
	e.indent--
	e.write("}\n")
}

func (e *Emitter) emitFunc(f *FuncDecl) {
	e.emitDoc(f.Doc)
	e.write("func ")

	if f.Receiver != nil {
		e.writef("(%s %s) ", f.Receiver.Name, f.Receiver.Type)
	}

	e.write(f.Name)
	e.write("(")
	e.emitParams(f.Params)
	e.write(")")

	if len(f.Results) > 0 {
		e.write(" ")
		if len(f.Results) == 1 && f.Results[0].Name == "" {
			e.write(f.Results[0].Type)
		} else {
			e.write("(")
			e.emitParams(f.Results)
			e.write(")")
		}
	}

	e.write(" {\n")
	e.indent++
	for _, stmt := range f.Body {
		e.writeIndent()
		e.emit(stmt)
		e.newline()
	}
	e.indent--
	e.write("}\n")
}

func (e *Emitter) emitParams(params []Param) {
	for i, p := range params {
		if i > 0 {
			e.write(", ")
		}
		if p.Name != "" {
			e.write(p.Name)
			e.write(" ")
		}
		e.write(p.Type)
	}
}

func (e *Emitter) emitVarDecl(v *VarDecl) {
	e.write("var ")
	e.write(v.Name)
	if v.Type != "" {
		e.write(" ")
		e.write(v.Type)
	}
	if v.Value != nil {
		e.write(" = ")
		e.emitExpr(v.Value)
	}
	e.newline()
}

func (e *Emitter) emitReturn(r *ReturnStmt) {
	e.write("return")
	for i, v := range r.Values {
		if i == 0 {
			e.write(" ")
		} else {
			e.write(", ")
		}
		e.emitExpr(v)
	}
}

func (e *Emitter) emitExpr(expr Expr) {
	if e.err != nil {
		return
	}

	switch v := expr.(type) {
	case *Ident:
		e.write(v.Name)
	case *Literal:
		e.emitLiteral(v)
	case *CallExpr:
		e.emitExpr(v.Func)
		e.write("(")
		for i, arg := range v.Args {
			if i > 0 {
				e.write(", ")
			}
			e.emitExpr(arg)
		}
		e.write(")")
	case *SelectorExpr:
		e.emitExpr(v.X)
		e.write(".")
		e.write(v.Sel)
	case *UnaryExpr:
		e.write(v.Op)
		e.emitExpr(v.X)
	case *ParenExpr:
		e.write("(")
		e.emitExpr(v.X)
		e.write(")")
	case *CompositeLit:
		e.emitComposite(v)
	case *KeyValueExpr:
		e.emitExpr(v.Key)
		e.write(": ")
		e.emitExpr(v.Value)
	case *RawExpr:
		e.write(v.Code)
	default:
		e.err = fmt.Errorf("unknown expression type: %T", expr)
	}
}

func (e *Emitter) emitComposite(c *CompositeLit) {
	e.write(c.Type)
	if len(c.Elements) == 0 {
		e.write("{}")
		return
	}
	e.write("{\n")
	e.indent++
	for _, el := range c.Elements {
		e.writeIndent()
		e.emitExpr(el)
		e.write(",\n")
	}
	e.indent--
	e.writeIndent()
	e.write("}")
}

func (e *Emitter) emitLiteral(l *Literal) {
	switch v := l.Value.(type) {
	case nil:
		e.write("nil")
	case string:
		e.write(strconv.Quote(v))
	case bool:
		e.write(strconv.FormatBool(v))
	case int:
		e.write(strconv.Itoa(v))
	case int64:
		e.write(strconv.FormatInt(v, 10))
	case float64:
		e.write(strconv.FormatFloat(v, 'g', -1, 64))
	default:
		e.err = fmt.Errorf("unsupported literal type: %T", l.Value)
	}
}

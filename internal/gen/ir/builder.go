package ir

// FileBuilder builds a File
type FileBuilder struct {
	file *File
}

// NewFile creates a new file builder
func NewFile(pkg string) *FileBuilder {
	return &FileBuilder{
		file: &File{
			Package: pkg,
			Imports: make([]Import, 0),
			Decls:   make([]Decl, 0),
		},
	}
}

// Header adds comment lines above the package clause
func (b *FileBuilder) Header(lines ...string) *FileBuilder {
	b.file.Header = append(b.file.Header, lines...)
	return b
}

// Import adds imports
func (b *FileBuilder) Import(paths ...string) *FileBuilder {
	for _, p := range paths {
		b.file.Imports = append(b.file.Imports, Import{Path: p})
	}
	return b
}

// ImportAlias adds an aliased import
func (b *FileBuilder) ImportAlias(alias, path string) *FileBuilder {
	b.file.Imports = append(b.file.Imports, Import{Alias: alias, Path: path})
	return b
}

// AddDecl adds a declaration
func (b *FileBuilder) AddDecl(d Decl) *FileBuilder {
	b.file.Decls = append(b.file.Decls, d)
	return b
}

// AddRaw adds rendered declarations; blank code is skipped
func (b *FileBuilder) AddRaw(code string) *FileBuilder {
	if code == "" {
		return b
	}
	return b.AddDecl(&RawDecl{Code: code})
}

// Build returns the completed file
func (b *FileBuilder) Build() *File {
	return b.file
}

// StructBuilder builds a struct declaration
type StructBuilder struct {
	decl *StructDecl
}

// NewStruct creates a new struct builder
func NewStruct(name string) *StructBuilder {
	return &StructBuilder{
		decl: &StructDecl{
			Name:   name,
			Fields: make([]FieldDef, 0),
		},
	}
}

// Doc sets the doc comment lines
func (b *StructBuilder) Doc(lines ...string) *StructBuilder {
	b.decl.Doc = lines
	return b
}

// Embed adds an embedded field
func (b *StructBuilder) Embed(typ string) *StructBuilder {
	b.decl.Fields = append(b.decl.Fields, FieldDef{Type: typ})
	return b
}

// Field adds a field
func (b *StructBuilder) Field(name, typ string) *StructBuilder {
	b.decl.Fields = append(b.decl.Fields, FieldDef{Name: name, Type: typ})
	return b
}

// Build returns the struct declaration
func (b *StructBuilder) Build() *StructDecl {
	return b.decl
}

// FuncBuilder builds a function declaration
type FuncBuilder struct {
	decl *FuncDecl
}

// NewFunc creates a new function builder
func NewFunc(name string) *FuncBuilder {
	return &FuncBuilder{
		decl: &FuncDecl{
			Name: name,
		},
	}
}

// Doc sets the doc comment lines
func (b *FuncBuilder) Doc(lines ...string) *FuncBuilder {
	b.decl.Doc = lines
	return b
}

// Receiver makes the function a method
func (b *FuncBuilder) Receiver(name, typ string) *FuncBuilder {
	b.decl.Receiver = &Param{Name: name, Type: typ}
	return b
}

// Param adds a parameter
func (b *FuncBuilder) Param(name, typ string) *FuncBuilder {
	b.decl.Params = append(b.decl.Params, Param{Name: name, Type: typ})
	return b
}

// Returns sets unnamed result types
func (b *FuncBuilder) Returns(types ...string) *FuncBuilder {
	for _, t := range types {
		b.decl.Results = append(b.decl.Results, Param{Type: t})
	}
	return b
}

// Body sets the statements
func (b *FuncBuilder) Body(stmts ...Stmt) *FuncBuilder {
	b.decl.Body = stmts
	return b
}

// Build returns the function declaration
func (b *FuncBuilder) Build() *FuncDecl {
	return b.decl
}

// Id creates an identifier
func Id(name string) *Ident {
	return &Ident{Name: name}
}

// Lit creates a literal
func Lit(value any) *Literal {
	return &Literal{Value: value}
}

// Nil creates nil
func Nil() *Literal {
	return &Literal{}
}

// Raw wraps a Go expression
func Raw(code string) *RawExpr {
	return &RawExpr{Code: code}
}

// Call creates a call of fn
func Call(fn Expr, args ...Expr) *CallExpr {
	return &CallExpr{Func: fn, Args: args}
}

// Sel creates x.name
func Sel(x Expr, name string) *SelectorExpr {
	return &SelectorExpr{X: x, Sel: name}
}

// Addr creates &x
func Addr(x Expr) *UnaryExpr {
	return &UnaryExpr{Op: "&", X: x}
}

// Deref creates *x
func Deref(x Expr) *UnaryExpr {
	return &UnaryExpr{Op: "*", X: x}
}

// Paren creates (x)
func Paren(x Expr) *ParenExpr {
	return &ParenExpr{X: x}
}

// KV creates key: value
func KV(key, value Expr) *KeyValueExpr {
	return &KeyValueExpr{Key: key, Value: value}
}

// Composite creates Type{elements...}
func Composite(typ string, elements ...Expr) *CompositeLit {
	return &CompositeLit{Type: typ, Elements: elements}
}

// Return creates a return statement
func Return(values ...Expr) *ReturnStmt {
	return &ReturnStmt{Values: values}
}

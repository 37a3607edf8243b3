package ir

// Node is the base interface for all IR nodes
type Node interface {
	irNode()
}

// Expr represents an expression
type Expr interface {
	Node
	irExpr()
}

// Stmt represents a statement
type Stmt interface {
	Node
	irStmt()
}

// Decl is a top-level declaration
type Decl interface {
	Node
	irDecl()
}

// File represents a generated adapter source file
type File struct {
	// Header is emitted as line comments above the package clause
	Header  []string
	Package string
	Imports []Import
	Decls   []Decl
}

func (File) irNode() {}

// Import represents an import declaration
type Import struct {
	Alias string // empty for no alias
	Path  string
}

// StructDecl represents a struct type declaration
type StructDecl struct {
	Doc    []string
	Name   string
	Fields []FieldDef
}

func (StructDecl) irNode() {}
func (StructDecl) irDecl() {}

// FieldDef represents a struct field. An empty Name embeds Type.
type FieldDef struct {
	Name string
	Type string
}

// FuncDecl represents a function or method declaration
type FuncDecl struct {
	Doc      []string
	Receiver *Param // nil for non-method
	Name     string
	Params   []Param
	Results  []Param
	Body     []Stmt
}

func (FuncDecl) irNode() {}
func (FuncDecl) irDecl() {}

// Param represents a function parameter or return value
type Param struct {
	Name string // can be empty for unnamed returns
	Type string
}

// VarDecl represents var name Type = value, at top level or in a body
type VarDecl struct {
	Name  string
	Type  string // can be empty for type inference
	Value Expr   // can be nil
}

func (VarDecl) irNode() {}
func (VarDecl) irDecl() {}
func (VarDecl) irStmt() {}

// RawDecl inserts already rendered declarations, such as template output
type RawDecl struct {
	Code string
}

func (RawDecl) irNode() {}
func (RawDecl) irDecl() {}

// ReturnStmt represents a return statement
type ReturnStmt struct {
	Values []Expr
}

func (ReturnStmt) irNode() {}
func (ReturnStmt) irStmt() {}

// Ident represents an identifier
type Ident struct {
	Name string
}

func (Ident) irNode() {}
func (Ident) irExpr() {}

// Literal represents a basic literal: string, int, bool or nil
type Literal struct {
	Value any
}

func (Literal) irNode() {}
func (Literal) irExpr() {}

// CallExpr represents a function call
type CallExpr struct {
	Func Expr
	Args []Expr
}

func (CallExpr) irNode() {}
func (CallExpr) irExpr() {}

// SelectorExpr represents a.b
type SelectorExpr struct {
	X   Expr
	Sel string
}

func (SelectorExpr) irNode() {}
func (SelectorExpr) irExpr() {}

// UnaryExpr represents &x, *x or !x
type UnaryExpr struct {
	Op string
	X  Expr
}

func (UnaryExpr) irNode() {}
func (UnaryExpr) irExpr() {}

// ParenExpr represents (x)
type ParenExpr struct {
	X Expr
}

func (ParenExpr) irNode() {}
func (ParenExpr) irExpr() {}

// CompositeLit represents Type{...}. Elements are emitted one per line.
type CompositeLit struct {
	Type     string
	Elements []Expr
}

func (CompositeLit) irNode() {}
func (CompositeLit) irExpr() {}

// KeyValueExpr represents key: value in composite literals
type KeyValueExpr struct {
	Key   Expr
	Value Expr
}

func (KeyValueExpr) irNode() {}
func (KeyValueExpr) irExpr() {}

// RawExpr inserts a Go expression as is
type RawExpr struct {
	Code string
}

func (RawExpr) irNode() {}
func (RawExpr) irExpr() {}

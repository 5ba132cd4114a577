// Package ast defines the node kinds the template interpreter consumes,
// as enumerated in the interpreter's external interface: a FileAST root,
// declarations, type nodes, expressions, control flow, and function nodes.
// Lexing and parsing a 010 template into this tree is out of scope for this
// module; these types are the boundary a parser (or a test fixture) builds
// against.
package ast

import "fmt"

// Coord is a source position, analogous to go/token.Position but carried
// directly on each node rather than looked up in a shared FileSet, since
// nodes here are expected to be small, hand-built trees rather than the
// output of a heavyweight scanner.
type Coord struct {
	File   string
	Line   int
	Column int
}

func (c Coord) String() string {
	if c.File == "" {
		return fmt.Sprintf("%d:%d", c.Line, c.Column)
	}
	return fmt.Sprintf("%s:%d:%d", c.File, c.Line, c.Column)
}

// Node is implemented by every AST node kind the evaluator dispatches on.
// Kind returns a stable name used in UnsupportedASTNode errors and logging.
type Node interface {
	Pos() Coord
	Kind() string
}

type base struct {
	Coord Coord
}

func (b base) Pos() Coord { return b.Coord }

// FileAST is the root of a parsed template.
type FileAST struct {
	base
	Children []Node
}

func (*FileAST) Kind() string { return "FileAST" }

// Decl is a declaration: a name bound to a type, with optional qualifiers
// and initializer. IsFuncParam is set by FuncDecl evaluation on each
// parameter declaration so that evaluating it yields a (name, constructor)
// pair instead of binding a field; it stays set on the node afterwards.
type Decl struct {
	base
	Name        string
	Quals       []string
	Type        Node
	Init        Node // may be nil
	IsFuncParam bool
}

func (*Decl) Kind() string { return "Decl" }

// IsLocal reports whether the "local" qualifier is present, following
// original_source/pfp's plain membership test over the qualifier list.
func (d *Decl) IsLocal() bool {
	for _, q := range d.Quals {
		if q == "local" {
			return true
		}
	}
	return false
}

// TypeDecl is a transparent wrapper around a type node. DeclName carries
// the name of the declarator it participates in — needed by ArrayDecl,
// whose element type's TypeDecl is where the declared name actually lives.
type TypeDecl struct {
	base
	Type     Node
	DeclName string
}

func (*TypeDecl) Kind() string { return "TypeDecl" }

// Struct is a struct body: an ordered list of member declarations.
type Struct struct {
	base
	Name  string
	Decls []Node
}

func (*Struct) Kind() string { return "Struct" }

// IdentifierType is an ordered list of qualifier + identifier names, e.g.
// ["unsigned", "int"] or ["MyTypedef"].
type IdentifierType struct {
	base
	Names []string
}

func (*IdentifierType) Kind() string { return "IdentifierType" }

// Typedef introduces a new type name resolving to the qualifier +
// identifier names chain held in Names.
type Typedef struct {
	base
	Name  string
	Names []string
}

func (*Typedef) Kind() string { return "Typedef" }

// ConstantKind enumerates literal kinds recognized by the Constant node.
type ConstantKind string

const (
	ConstInt    ConstantKind = "int"
	ConstLong   ConstantKind = "long"
	ConstFloat  ConstantKind = "float"
	ConstDouble ConstantKind = "double"
	ConstChar   ConstantKind = "char"
	ConstString ConstantKind = "string"
)

// Constant is a literal value in its textual source form.
type Constant struct {
	base
	Type  ConstantKind
	Value string
}

func (*Constant) Kind() string { return "Constant" }

// BinaryOp applies op to the evaluated values of Left and Right.
type BinaryOp struct {
	base
	Op    string
	Left  Node
	Right Node
}

func (*BinaryOp) Kind() string { return "BinaryOp" }

// UnaryOp applies op to the evaluated field of Expr. Supported ops:
// "p++", "p--", "~", "!".
type UnaryOp struct {
	base
	Op   string
	Expr Node
}

func (*UnaryOp) Kind() string { return "UnaryOp" }

// Assignment writes the evaluated RHS value into the field addressed by LHS.
type Assignment struct {
	base
	LValue Node
	RValue Node
}

func (*Assignment) Kind() string { return "Assignment" }

// ID references a bound identifier: a local, a var, or a function.
type ID struct {
	base
	Name string
}

func (*ID) Kind() string { return "ID" }

// FuncDef attaches a body to the function value produced by evaluating Decl.
type FuncDef struct {
	base
	Decl Node
	Body Node // *Compound
}

func (*FuncDef) Kind() string { return "FuncDef" }

// FuncDecl declares a function's signature: its parameter list and return
// type, without a body (the body is attached by the enclosing FuncDef).
type FuncDecl struct {
	base
	Args Node // *ParamList
	Type Node // return type node
}

func (*FuncDecl) Kind() string { return "FuncDecl" }

// FuncCall invokes the function named by Name (itself evaluated as an ID or
// nested expression) with the argument expressions in Args.
type FuncCall struct {
	base
	Name Node
	Args Node // *ExprList, may be nil for a zero-argument call
}

func (*FuncCall) Kind() string { return "FuncCall" }

// ParamList is an ordered list of parameter declarations.
type ParamList struct {
	base
	Params []Node // *Decl, each with IsFuncParam set during evaluation
}

func (*ParamList) Kind() string { return "ParamList" }

// ExprList is an ordered list of expressions, e.g. call arguments.
type ExprList struct {
	base
	Exprs []Node
}

func (*ExprList) Kind() string { return "ExprList" }

// Compound is a scoped block of statements: a new scope frame is pushed on
// entry and popped on every exit path.
type Compound struct {
	base
	Children []Node
}

func (*Compound) Kind() string { return "Compound" }

// Return signals a non-local return out of the enclosing function call,
// carrying the evaluated value of Expr (nil Expr means no value).
type Return struct {
	base
	Expr Node // may be nil
}

func (*Return) Kind() string { return "Return" }

// ArrayDecl declares a fixed-length array: Dim is evaluated to the element
// count, Type is the element type node.
type ArrayDecl struct {
	base
	Dim      Node
	Type     Node
	DimQuals []string
}

func (*ArrayDecl) Kind() string { return "ArrayDecl" }

// At constructs a node's base Coord; helper for test fixtures that build
// trees by hand.
func At(file string, line, col int) Coord {
	return Coord{File: file, Line: line, Column: col}
}

// Helper constructors set base.Coord so callers don't need to spell out the
// embedded field; they mirror the AST shape in spec.md's external interface
// table without requiring a builder package.

func NewFileAST(c Coord, children ...Node) *FileAST { return &FileAST{base{c}, children} }

func NewDecl(c Coord, name string, quals []string, typ, init Node) *Decl {
	return &Decl{base{c}, name, quals, typ, init, false}
}

func NewTypeDecl(c Coord, typ Node, declName string) *TypeDecl {
	return &TypeDecl{base{c}, typ, declName}
}

func NewStruct(c Coord, name string, decls ...Node) *Struct {
	return &Struct{base{c}, name, decls}
}

func NewIdentifierType(c Coord, names ...string) *IdentifierType {
	return &IdentifierType{base{c}, names}
}

func NewTypedef(c Coord, name string, names []string) *Typedef {
	return &Typedef{base{c}, name, names}
}

func NewConstant(c Coord, kind ConstantKind, value string) *Constant {
	return &Constant{base{c}, kind, value}
}

func NewBinaryOp(c Coord, op string, left, right Node) *BinaryOp {
	return &BinaryOp{base{c}, op, left, right}
}

func NewUnaryOp(c Coord, op string, expr Node) *UnaryOp {
	return &UnaryOp{base{c}, op, expr}
}

func NewAssignment(c Coord, lvalue, rvalue Node) *Assignment {
	return &Assignment{base{c}, lvalue, rvalue}
}

func NewID(c Coord, name string) *ID { return &ID{base{c}, name} }

func NewFuncDef(c Coord, decl, body Node) *FuncDef { return &FuncDef{base{c}, decl, body} }

func NewFuncDecl(c Coord, args, typ Node) *FuncDecl { return &FuncDecl{base{c}, args, typ} }

func NewFuncCall(c Coord, name, args Node) *FuncCall { return &FuncCall{base{c}, name, args} }

func NewParamList(c Coord, params ...Node) *ParamList { return &ParamList{base{c}, params} }

func NewExprList(c Coord, exprs ...Node) *ExprList { return &ExprList{base{c}, exprs} }

func NewCompound(c Coord, children ...Node) *Compound { return &Compound{base{c}, children} }

func NewReturn(c Coord, expr Node) *Return { return &Return{base{c}, expr} }

func NewArrayDecl(c Coord, dim, typ Node, dimQuals ...string) *ArrayDecl {
	return &ArrayDecl{base{c}, dim, typ, dimQuals}
}

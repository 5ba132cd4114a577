package interp

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/ufwt/pfp/ast"
)

// errStackUnderflow is returned by Stack.Pop when asked to remove the
// bottom frame.
var errStackUnderflow = errors.New("scope stack: cannot pop the bottom frame")

// UnsupportedASTNodeError is raised when the evaluator receives a node
// outside its supported kind set.
type UnsupportedASTNodeError struct {
	Coord ast.Coord
	Kind  string
}

func (e *UnsupportedASTNodeError) Error() string {
	return fmt.Sprintf("%s: unsupported AST node kind %q", e.Coord, e.Kind)
}

// UnsupportedBinaryOperatorError is raised for a BinaryOp node carrying an
// operator outside the supported set.
type UnsupportedBinaryOperatorError struct {
	Coord ast.Coord
	Op    string
}

func (e *UnsupportedBinaryOperatorError) Error() string {
	return fmt.Sprintf("%s: unsupported binary operator %q", e.Coord, e.Op)
}

// UnsupportedUnaryOperatorError is raised for a UnaryOp node carrying an
// operator outside the supported set.
type UnsupportedUnaryOperatorError struct {
	Coord ast.Coord
	Op    string
}

func (e *UnsupportedUnaryOperatorError) Error() string {
	return fmt.Sprintf("%s: unsupported unary operator %q", e.Coord, e.Op)
}

// UnsupportedConstantTypeError is raised for a Constant node whose literal
// kind is not recognized.
type UnsupportedConstantTypeError struct {
	Coord ast.Coord
	Type  ast.ConstantKind
}

func (e *UnsupportedConstantTypeError) Error() string {
	return fmt.Sprintf("%s: unsupported constant type %q", e.Coord, e.Type)
}

// UnresolvedIDError is raised when an ID lookup via GetID fails.
type UnresolvedIDError struct {
	Coord ast.Coord
	Name  string
}

func (e *UnresolvedIDError) Error() string {
	return fmt.Sprintf("%s: unresolved identifier %q", e.Coord, e.Name)
}

// UnresolvedTypeError is raised when type resolution reaches a non-builtin
// leaf with no typedef registered for it.
type UnresolvedTypeError struct {
	Coord         ast.Coord
	FullNames     []string
	ResolvedChain []string
}

func (e *UnresolvedTypeError) Error() string {
	return fmt.Sprintf("%s: unresolved type %v (resolved so far: %v)", e.Coord, e.FullNames, e.ResolvedChain)
}

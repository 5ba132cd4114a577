// Package field implements the DOM data model of the interpreter: the
// Field interface and its concrete variants (integer, float, char, string,
// struct, array, void), plus the DOM root. Fields are the unit of decoded
// value the AST evaluator produces and binds into scope.
package field

import (
	"github.com/ufwt/pfp/stream"
)

// Range is the stream span a parse-bound field occupies. Valid is false
// for locals and other fields that never consumed bytes.
type Range struct {
	Offset int64
	Length int64
	Valid  bool
}

// Field is the unit of a decoded value: a display name, a non-owning
// parent back-reference, an optional stream range, and a value.
type Field interface {
	// Name returns the field's display name.
	Name() string
	SetName(name string)

	// Parent returns the owning struct/DOM, or nil for the DOM root.
	Parent() Field
	SetParent(p Field)

	// Range returns the stream span this field occupies; Valid is false
	// for fields that never parsed (locals, parameters).
	Range() Range

	// Value returns the field's current scalar or container value.
	Value() interface{}

	// SetValue overwrites the field's value without touching the stream;
	// used by assignment and initializers.
	SetValue(v interface{}) error

	// Parse reads bytes from s, populates Value, and sets Range. Only
	// meaningful for parse-bound fields; locals never call this.
	Parse(s stream.Stream) error
}

// Constructor is a first-class, not-yet-instantiated field type: the value
// type resolution returns, and what declarations invoke. Invoked with a
// non-nil stream it parses and returns a populated field; invoked with nil
// it returns a default-valued field performing no stream I/O.
type Constructor func(s stream.Stream) (Field, error)

// base is embedded by every concrete field kind to share the name/parent
// bookkeeping every Field must provide.
type base struct {
	name   string
	parent Field
	rng    Range
}

func (b *base) Name() string        { return b.name }
func (b *base) SetName(name string) { b.name = name }
func (b *base) Parent() Field       { return b.parent }
func (b *base) SetParent(p Field)   { b.parent = p }
func (b *base) Range() Range        { return b.rng }

// Container is implemented by struct and array fields, which own children
// and expose them in insertion order.
type Container interface {
	Field
	Children() []Field
}

// Deref coerces an evaluator result to the form a native function or
// operator wants to see: a Container is returned as-is (so e.g.
// ArrayLength can inspect it directly), any other Field derefs to its
// Value(), and anything else passes through unchanged as an already-plain
// scalar produced by a prior expression evaluation.
func Deref(v interface{}) interface{} {
	if c, ok := v.(Container); ok {
		return c
	}
	if f, ok := v.(Field); ok {
		return f.Value()
	}
	return v
}

// Package builtin holds the catalog of native functions bound into the
// root scope of every interpreter Eval run (spec.md §4.D,
// §6 "Built-in function registry"). Registration happens once per process
// via package init; re-creating an interpreter never re-registers.
//
// Native callables only need their arguments, the active DOM context, the
// stream, and the call's source coordinate — never direct access to the
// scope stack — so this package stays independent of package interp and
// is imported by it, not the reverse.
package builtin

import (
	"fmt"
	"io"
	"sort"

	"github.com/pkg/errors"

	"github.com/ufwt/pfp/ast"
	"github.com/ufwt/pfp/field"
	"github.com/ufwt/pfp/stream"
)

// CallContext is the narrow view a native callable gets of the call site.
type CallContext interface {
	Args() []interface{}
	Ctxt() field.Field
	Stream() stream.Stream
	Coord() ast.Coord
	Output() io.Writer
}

// Func is a single native function registered in the catalog: a name, an
// opaque callable, and its declared return type constructor.
type Func struct {
	Name       string
	ReturnType field.Constructor
	Call       func(ctx CallContext) (interface{}, error)
}

var catalog = map[string]Func{}

// register is idempotent: a name already present is left untouched, so
// package-level init order never clobbers an existing registration.
func register(f Func) {
	if _, exists := catalog[f.Name]; exists {
		return
	}
	catalog[f.Name] = f
}

// Catalog returns a snapshot of the registered native functions, safe to
// range over without holding any lock: the catalog is write-once (filled
// by init funcs before any interpreter is constructed) and read-many
// thereafter.
func Catalog() map[string]Func {
	out := make(map[string]Func, len(catalog))
	for k, v := range catalog {
		out[k] = v
	}
	return out
}

// Names returns the registered function names, sorted, for diagnostics and
// tests.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for k := range catalog {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func init() {
	register(Func{Name: "Printf", ReturnType: field.NewVoid(), Call: printf})
	register(Func{Name: "ArrayLength", ReturnType: field.NewInt(), Call: arrayLength})
	register(Func{Name: "Strlen", ReturnType: field.NewInt(), Call: strlen})
	register(Func{Name: "FTell", ReturnType: field.NewInt(), Call: ftell})
	register(Func{Name: "FSeek", ReturnType: field.NewInt(), Call: fseek})
	register(Func{Name: "FSkip", ReturnType: field.NewInt(), Call: fskip})
}

func printf(ctx CallContext) (interface{}, error) {
	args := ctx.Args()
	if len(args) == 0 {
		return nil, errors.New("Printf: expected at least a format string argument")
	}
	format, ok := field.Deref(args[0]).(string)
	if !ok {
		return nil, errors.Errorf("Printf: first argument must be a string, got %T", args[0])
	}
	rest := make([]interface{}, len(args)-1)
	for i, a := range args[1:] {
		rest[i] = field.Deref(a)
	}
	fmt.Fprintf(ctx.Output(), format, rest...)
	return nil, nil
}

func arrayLength(ctx CallContext) (interface{}, error) {
	args := ctx.Args()
	if len(args) != 1 {
		return nil, errors.New("ArrayLength: expected exactly one argument")
	}
	arr, ok := field.Deref(args[0]).(field.Container)
	if !ok {
		return nil, errors.Errorf("ArrayLength: argument must be an array, got %T", args[0])
	}
	return int64(len(arr.Children())), nil
}

func strlen(ctx CallContext) (interface{}, error) {
	args := ctx.Args()
	if len(args) != 1 {
		return nil, errors.New("Strlen: expected exactly one argument")
	}
	s, ok := field.Deref(args[0]).(string)
	if !ok {
		return nil, errors.Errorf("Strlen: argument must be a string, got %T", args[0])
	}
	return int64(len(s)), nil
}

func ftell(ctx CallContext) (interface{}, error) {
	return ctx.Stream().Tell(), nil
}

func fseek(ctx CallContext) (interface{}, error) {
	args := ctx.Args()
	if len(args) != 1 {
		return nil, errors.New("FSeek: expected exactly one argument")
	}
	off, err := toInt64(field.Deref(args[0]))
	if err != nil {
		return nil, errors.Wrap(err, "FSeek")
	}
	if err := ctx.Stream().Seek(off); err != nil {
		return nil, errors.Wrap(err, "FSeek")
	}
	return int64(0), nil
}

func fskip(ctx CallContext) (interface{}, error) {
	args := ctx.Args()
	if len(args) != 1 {
		return nil, errors.New("FSkip: expected exactly one argument")
	}
	n, err := toInt64(field.Deref(args[0]))
	if err != nil {
		return nil, errors.Wrap(err, "FSkip")
	}
	if err := ctx.Stream().Seek(ctx.Stream().Tell() + n); err != nil {
		return nil, errors.Wrap(err, "FSkip")
	}
	return int64(0), nil
}

func toInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case uint64:
		return int64(n), nil
	case int:
		return int64(n), nil
	default:
		return 0, errors.Errorf("cannot convert %T to integer", v)
	}
}

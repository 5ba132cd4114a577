package interp

import (
	"io"

	"github.com/pkg/errors"

	"github.com/ufwt/pfp/ast"
	"github.com/ufwt/pfp/builtin"
	"github.com/ufwt/pfp/field"
	"github.com/ufwt/pfp/stream"
)

// Param is one entry of a function's parameter list definition: a name
// paired with the constructor for its declared type.
type Param struct {
	Name string
	Ctor field.Constructor
}

// Function is a user-defined function value: a return type constructor, an
// ordered parameter list, a captured scope reference, and a body AST.
type Function struct {
	Name          string
	ReturnCtor    field.Constructor
	Params        []Param
	CapturedScope *Stack
	Body          *ast.Compound
}

// NativeFunction wraps a catalog entry: an opaque callable plus its
// declared return type. The callable is invoked with a builtin.CallContext
// carrying the arguments, the DOM context, the stream, the call coordinate
// and the output writer; it gets no access to the scope stack or to the
// Interpreter.
type NativeFunction struct {
	Name       string
	ReturnType field.Constructor
	catalog    builtin.Func
}

// nativeCallCtx adapts a single call site to builtin.CallContext.
type nativeCallCtx struct {
	args   []interface{}
	ctxt   field.Field
	stream stream.Stream
	coord  ast.Coord
	interp *Interpreter
}

func (c *nativeCallCtx) Args() []interface{}   { return c.args }
func (c *nativeCallCtx) Ctxt() field.Field     { return c.ctxt }
func (c *nativeCallCtx) Stream() stream.Stream { return c.stream }
func (c *nativeCallCtx) Coord() ast.Coord      { return c.coord }
func (c *nativeCallCtx) Output() io.Writer     { return c.interp.opts.Output }

// registerBuiltins binds every catalog entry into scope's root frame as a
// NativeFunction local. Eval calls it on the fresh stack it creates for
// each run.
func registerBuiltins(scope *Stack) {
	for name, fn := range builtin.Catalog() {
		scope.AddLocal(name, &NativeFunction{Name: name, ReturnType: fn.ReturnType, catalog: fn})
	}
}

// callFunction invokes a user-defined function: it clones the function's
// captured scope to isolate this call from sibling calls, pushes a frame
// for the parameter bindings, binds each argument (coerced to a scalar
// value where the argument was itself a field), evaluates the body, and
// unwinds the return signal into a plain value. s is the ambient stream of
// the call site, threaded through so the body can call stream-touching
// natives such as FTell.
func (it *Interpreter) callFunction(fn *Function, args []interface{}, s stream.Stream, coord ast.Coord) (interface{}, error) {
	if len(args) != len(fn.Params) {
		return nil, errors.Errorf("%s: function %q expects %d argument(s), got %d", coord, fn.Name, len(fn.Params), len(args))
	}

	it.depth++
	defer func() { it.depth-- }()
	if it.depth > it.opts.MaxRecursionDepth {
		return nil, errors.Errorf("%s: max recursion depth %d exceeded calling %q", coord, it.opts.MaxRecursionDepth, fn.Name)
	}

	callScope := fn.CapturedScope.Clone()
	callScope.Push()

	for i, p := range fn.Params {
		pf, err := p.Ctor(nil)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: binding parameter %q", coord, p.Name)
		}
		if err := pf.SetValue(scalarValue(args[i])); err != nil {
			return nil, errors.Wrapf(err, "%s: binding parameter %q", coord, p.Name)
		}
		callScope.AddLocal(p.Name, pf)
	}

	it.logger.Debugf("calling function %q at %s", fn.Name, coord)
	val, ret, err := it.evalCompound(fn.Body, callScope, nil, s)
	if err != nil {
		return nil, err
	}
	if ret {
		return val, nil
	}
	// Control fell through without a return: produce the zero value of
	// the declared return type.
	zero, err := fn.ReturnCtor(nil)
	if err != nil {
		return nil, err
	}
	return zero.Value(), nil
}

// callNative invokes a registered native function.
func (it *Interpreter) callNative(fn *NativeFunction, args []interface{}, ctxt field.Field, s stream.Stream, coord ast.Coord) (interface{}, error) {
	ctx := &nativeCallCtx{args: args, ctxt: ctxt, stream: s, coord: coord, interp: it}
	it.logger.Debugf("calling native %q at %s", fn.Name, coord)
	return fn.catalog.Call(ctx)
}

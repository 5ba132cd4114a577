package interp

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/ufwt/pfp/ast"
	"github.com/ufwt/pfp/field"
	"github.com/ufwt/pfp/stream"
)

// Eval is the single public entry point: it walks root (expected to be a
// *ast.FileAST) and interprets it against s, producing a DOM. Each call
// gets a fresh scope stack seeded with the native function catalog, so
// independent Eval calls on the same Interpreter never leak top-level
// typedefs or locals into one another, while still sharing the
// process-global, write-once builtin catalog (spec.md §5).
func (it *Interpreter) Eval(root ast.Node, s stream.Stream) (*field.DOM, error) {
	file, ok := root.(*ast.FileAST)
	if !ok {
		return nil, errors.Errorf("Eval: expected *ast.FileAST root, got %T", root)
	}

	scope := NewStack()
	registerBuiltins(scope)

	dom := field.NewDOM()
	for _, child := range file.Children {
		_, returned, err := it.eval(child, scope, dom, s)
		if err != nil {
			return nil, err
		}
		if returned {
			return nil, errors.Errorf("%s: return statement outside of a function body", child.Pos())
		}
	}

	if scope.Depth() != 1 {
		return nil, errors.Errorf("internal: scope stack left at depth %d, expected 1", scope.Depth())
	}
	return dom, nil
}

// eval is the single entry point the evaluator dispatches from, per
// spec.md §4.C: evaluate(node, scope, ctxt, stream) -> value. It returns
// (value, returned, err): returned is true when a Return signal is
// propagating and must be relayed upward without further processing,
// after the caller pops any scope frame it owns (spec.md §9's tagged
// Completed|Returned outcome, modeled here as an extra boolean result
// rather than through panics or a sentinel error).
func (it *Interpreter) eval(n ast.Node, scope *Stack, ctxt field.Field, s stream.Stream) (interface{}, bool, error) {
	switch node := n.(type) {
	case *ast.FileAST:
		return it.evalFileAST(node, scope, s)
	case *ast.Decl:
		return it.evalDecl(node, scope, ctxt, s)
	case *ast.TypeDecl:
		return it.eval(node.Type, scope, ctxt, s)
	case *ast.Struct:
		return it.evalStruct(node, scope, s)
	case *ast.IdentifierType:
		ctor, err := resolveType(node.Pos(), node.Names, scope)
		return ctor, false, err
	case *ast.Typedef:
		scope.AddType(node.Name, node.Names)
		return nil, false, nil
	case *ast.Constant:
		f, err := it.evalConstant(node)
		return f, false, err
	case *ast.BinaryOp:
		return it.evalBinaryOp(node, scope, ctxt, s)
	case *ast.UnaryOp:
		return it.evalUnaryOp(node, scope, ctxt, s)
	case *ast.Assignment:
		return it.evalAssignment(node, scope, ctxt, s)
	case *ast.ID:
		return it.evalID(node, scope)
	case *ast.FuncDef:
		return it.evalFuncDef(node, scope, ctxt, s)
	case *ast.FuncDecl:
		return it.evalFuncDecl(node, scope, ctxt, s)
	case *ast.ParamList:
		return it.evalParamList(node, scope, ctxt, s)
	case *ast.FuncCall:
		return it.evalFuncCall(node, scope, ctxt, s)
	case *ast.ExprList:
		return it.evalExprList(node, scope, ctxt, s)
	case *ast.Compound:
		return it.evalCompound(node, scope, ctxt, s)
	case *ast.Return:
		return it.evalReturn(node, scope, ctxt, s)
	case *ast.ArrayDecl:
		return it.evalArrayDecl(node, scope, ctxt, s, true)
	default:
		return nil, false, &UnsupportedASTNodeError{Coord: n.Pos(), Kind: n.Kind()}
	}
}

func (it *Interpreter) evalFileAST(node *ast.FileAST, scope *Stack, s stream.Stream) (interface{}, bool, error) {
	dom := field.NewDOM()
	for _, child := range node.Children {
		if _, returned, err := it.eval(child, scope, dom, s); err != nil {
			return nil, false, err
		} else if returned {
			return nil, false, errors.Errorf("%s: return statement outside of a function body", child.Pos())
		}
	}
	return dom, false, nil
}

// evalDecl implements spec.md §4.C's Declaration contract. ArrayDecl types
// are special-cased ahead of the generic dispatch so the "local" qualifier
// can gate stream parsing the same way it does for scalars (spec.md §9's
// redesign: arrays must not always parse).
func (it *Interpreter) evalDecl(node *ast.Decl, scope *Stack, ctxt field.Field, s stream.Stream) (interface{}, bool, error) {
	it.logger.Debugf("declaring %q at %s", node.Name, node.Pos())

	if arr, ok := unwrapArrayDecl(node.Type); ok {
		return it.evalArrayDeclAsDecl(node, arr, scope, ctxt, s)
	}

	val, returned, err := it.eval(node.Type, scope, ctxt, s)
	if err != nil || returned {
		return val, returned, err
	}

	switch {
	case node.IsLocal():
		f, ok := val.(field.Field)
		if !ok {
			ctor, ok := val.(field.Constructor)
			if !ok {
				return nil, false, errors.Errorf("%s: %q: local declaration requires a type, got %T", node.Pos(), node.Name, val)
			}
			var err error
			f, err = ctor(nil)
			if err != nil {
				return nil, false, err
			}
		}
		f.SetName(node.Name)
		if node.Init != nil {
			initVal, returned, err := it.eval(node.Init, scope, ctxt, s)
			if err != nil || returned {
				return initVal, returned, err
			}
			if err := f.SetValue(scalarValue(initVal)); err != nil {
				return nil, false, errors.Wrapf(err, "%s: initializing %q", node.Pos(), node.Name)
			}
		}
		scope.AddLocal(node.Name, f)
		return f, false, nil

	case isFunctionValue(val):
		fn := val.(*Function)
		fn.Name = node.Name
		scope.AddLocal(node.Name, fn)
		return fn, false, nil

	case node.IsFuncParam:
		ctor, ok := val.(field.Constructor)
		if !ok {
			return nil, false, errors.Errorf("%s: parameter %q: expected a type, got %T", node.Pos(), node.Name, val)
		}
		return Param{Name: node.Name, Ctor: ctor}, false, nil

	default:
		f, ok := val.(field.Field)
		if !ok {
			ctor, ok := val.(field.Constructor)
			if !ok {
				return nil, false, errors.Errorf("%s: %q: expected a type or field, got %T", node.Pos(), node.Name, val)
			}
			f, err = ctor(s)
			if err != nil {
				return nil, false, errors.Wrapf(err, "%s: parsing %q", node.Pos(), node.Name)
			}
			f.SetName(node.Name)
		}
		scope.AddVar(node.Name, f)
		addChild(ctxt, node.Name, f)
		return f, false, nil
	}
}

// unwrapArrayDecl looks through a transparent TypeDecl wrapper to see if
// the declared type is an ArrayDecl.
func unwrapArrayDecl(n ast.Node) (*ast.ArrayDecl, bool) {
	switch t := n.(type) {
	case *ast.ArrayDecl:
		return t, true
	case *ast.TypeDecl:
		return unwrapArrayDecl(t.Type)
	default:
		return nil, false
	}
}

func isFunctionValue(v interface{}) bool {
	_, ok := v.(*Function)
	return ok
}

// addChild appends f as a named child of ctxt, if ctxt supports it (the
// DOM and struct fields do; a nil ctxt — e.g. inside a function body —
// does not).
func addChild(ctxt field.Field, name string, f field.Field) {
	type adder interface {
		AddChild(name string, f field.Field)
	}
	if c, ok := ctxt.(adder); ok {
		c.AddChild(name, f)
	}
}

func (it *Interpreter) evalStruct(node *ast.Struct, scope *Stack, s stream.Stream) (interface{}, bool, error) {
	st := field.NewStructField()
	st.SetName(node.Name)

	scope.Push()
	defer scope.Pop() //nolint:errcheck // Pop only fails on bottom-frame removal, impossible here.

	for _, d := range node.Decls {
		_, returned, err := it.eval(d, scope, st, s)
		if err != nil {
			return nil, false, err
		}
		if returned {
			return nil, false, errors.Errorf("%s: return statement inside a struct body", d.Pos())
		}
	}
	return st, false, nil
}

func (it *Interpreter) evalConstant(node *ast.Constant) (field.Field, error) {
	switch node.Type {
	case ast.ConstInt, ast.ConstLong:
		n, err := strconv.ParseInt(node.Value, 0, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: invalid integer literal %q", node.Pos(), node.Value)
		}
		f, _ := field.NewInt()(nil)
		if err := f.SetValue(n); err != nil {
			return nil, err
		}
		return f, nil

	case ast.ConstFloat:
		n, err := strconv.ParseFloat(node.Value, 32)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: invalid float literal %q", node.Pos(), node.Value)
		}
		f, _ := field.NewFloat()(nil)
		if err := f.SetValue(n); err != nil {
			return nil, err
		}
		return f, nil

	case ast.ConstDouble:
		n, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: invalid double literal %q", node.Pos(), node.Value)
		}
		f, _ := field.NewDouble()(nil)
		if err := f.SetValue(n); err != nil {
			return nil, err
		}
		return f, nil

	case ast.ConstChar:
		unquoted := strings.Trim(node.Value, "'")
		runes := []rune(unquoted)
		if len(runes) == 0 {
			return nil, errors.Errorf("%s: empty char literal", node.Pos())
		}
		f, _ := field.NewCharField()(nil)
		if err := f.SetValue(int64(runes[0])); err != nil {
			return nil, err
		}
		return f, nil

	case ast.ConstString:
		unquoted := strings.Trim(node.Value, `"`)
		f, _ := field.NewString()(nil)
		if err := f.SetValue(unquoted); err != nil {
			return nil, err
		}
		return f, nil

	default:
		return nil, &UnsupportedConstantTypeError{Coord: node.Pos(), Type: node.Type}
	}
}

func (it *Interpreter) evalBinaryOp(node *ast.BinaryOp, scope *Stack, ctxt field.Field, s stream.Stream) (interface{}, bool, error) {
	lv, returned, err := it.eval(node.Left, scope, ctxt, s)
	if err != nil || returned {
		return lv, returned, err
	}
	rv, returned, err := it.eval(node.Right, scope, ctxt, s)
	if err != nil || returned {
		return rv, returned, err
	}
	res, err := applyBinaryOp(node.Op, scalarValue(lv), scalarValue(rv), node.Pos())
	return res, false, err
}

func (it *Interpreter) evalUnaryOp(node *ast.UnaryOp, scope *Stack, ctxt field.Field, s stream.Stream) (interface{}, bool, error) {
	fv, returned, err := it.eval(node.Expr, scope, ctxt, s)
	if err != nil || returned {
		return fv, returned, err
	}

	switch node.Op {
	case "p++", "p--":
		delta := int64(1)
		if node.Op == "p--" {
			delta = -1
		}
		type incDecer interface{ IncDec(delta int64) interface{} }
		f, ok := fv.(incDecer)
		if !ok {
			return nil, false, errors.Errorf("%s: %q requires an addressable integer or char field, got %T", node.Pos(), node.Op, fv)
		}
		return f.IncDec(delta), false, nil

	case "~":
		v, err := toInt64Value(scalarValue(fv))
		if err != nil {
			return nil, false, errors.Wrapf(err, "%s", node.Pos())
		}
		return ^v, false, nil

	case "!":
		v := scalarValue(fv)
		b, ok := v.(bool)
		if !ok {
			n, err := toInt64Value(v)
			if err != nil {
				return nil, false, errors.Wrapf(err, "%s", node.Pos())
			}
			return n == 0, false, nil
		}
		return !b, false, nil

	default:
		return nil, false, &UnsupportedUnaryOperatorError{Coord: node.Pos(), Op: node.Op}
	}
}

func (it *Interpreter) evalAssignment(node *ast.Assignment, scope *Stack, ctxt field.Field, s stream.Stream) (interface{}, bool, error) {
	lv, returned, err := it.eval(node.LValue, scope, ctxt, s)
	if err != nil || returned {
		return lv, returned, err
	}
	f, ok := lv.(field.Field)
	if !ok {
		return nil, false, errors.Errorf("%s: assignment target must be addressable, got %T", node.Pos(), lv)
	}
	rv, returned, err := it.eval(node.RValue, scope, ctxt, s)
	if err != nil || returned {
		return rv, returned, err
	}
	if err := f.SetValue(scalarValue(rv)); err != nil {
		return nil, false, errors.Wrapf(err, "%s", node.Pos())
	}
	return f, false, nil
}

func (it *Interpreter) evalID(node *ast.ID, scope *Stack) (interface{}, bool, error) {
	v, ok := scope.GetID(node.Name)
	if !ok {
		return nil, false, &UnresolvedIDError{Coord: node.Pos(), Name: node.Name}
	}
	return v, false, nil
}

func (it *Interpreter) evalFuncDef(node *ast.FuncDef, scope *Stack, ctxt field.Field, s stream.Stream) (interface{}, bool, error) {
	val, returned, err := it.eval(node.Decl, scope, ctxt, s)
	if err != nil || returned {
		return val, returned, err
	}
	fn, ok := val.(*Function)
	if !ok {
		return nil, false, errors.Errorf("%s: FuncDef's declaration did not produce a function value (got %T)", node.Pos(), val)
	}
	body, ok := node.Body.(*ast.Compound)
	if !ok {
		return nil, false, errors.Errorf("%s: function body must be a compound block", node.Pos())
	}
	fn.Body = body
	return fn, false, nil
}

func (it *Interpreter) evalFuncDecl(node *ast.FuncDecl, scope *Stack, ctxt field.Field, s stream.Stream) (interface{}, bool, error) {
	if pl, ok := node.Args.(*ast.ParamList); ok {
		for _, p := range pl.Params {
			if d, ok := p.(*ast.Decl); ok {
				d.IsFuncParam = true
			}
		}
	}

	paramsVal, returned, err := it.eval(node.Args, scope, ctxt, s)
	if err != nil || returned {
		return paramsVal, returned, err
	}
	params, _ := paramsVal.([]Param)

	retVal, returned, err := it.eval(node.Type, scope, ctxt, s)
	if err != nil || returned {
		return retVal, returned, err
	}
	retCtor, ok := retVal.(field.Constructor)
	if !ok {
		return nil, false, errors.Errorf("%s: function return type did not resolve to a type, got %T", node.Pos(), retVal)
	}

	return &Function{ReturnCtor: retCtor, Params: params, CapturedScope: scope.Clone()}, false, nil
}

func (it *Interpreter) evalParamList(node *ast.ParamList, scope *Stack, ctxt field.Field, s stream.Stream) (interface{}, bool, error) {
	params := make([]Param, 0, len(node.Params))
	for _, p := range node.Params {
		val, returned, err := it.eval(p, scope, ctxt, s)
		if err != nil || returned {
			return val, returned, err
		}
		pr, ok := val.(Param)
		if !ok {
			return nil, false, errors.Errorf("%s: parameter did not evaluate to a (name, type) pair, got %T", p.Pos(), val)
		}
		params = append(params, pr)
	}
	return params, false, nil
}

func (it *Interpreter) evalFuncCall(node *ast.FuncCall, scope *Stack, ctxt field.Field, s stream.Stream) (interface{}, bool, error) {
	var argVals []interface{}
	if node.Args != nil {
		val, returned, err := it.eval(node.Args, scope, ctxt, s)
		if err != nil || returned {
			return val, returned, err
		}
		argVals, _ = val.([]interface{})
	}

	calleeVal, returned, err := it.eval(node.Name, scope, ctxt, s)
	if err != nil || returned {
		return calleeVal, returned, err
	}

	switch fn := calleeVal.(type) {
	case *Function:
		result, err := it.callFunction(fn, argVals, s, node.Pos())
		return result, false, err
	case *NativeFunction:
		result, err := it.callNative(fn, argVals, ctxt, s, node.Pos())
		return result, false, err
	default:
		return nil, false, errors.Errorf("%s: callee is not callable, got %T", node.Pos(), calleeVal)
	}
}

func (it *Interpreter) evalExprList(node *ast.ExprList, scope *Stack, ctxt field.Field, s stream.Stream) (interface{}, bool, error) {
	vals := make([]interface{}, 0, len(node.Exprs))
	for _, e := range node.Exprs {
		v, returned, err := it.eval(e, scope, ctxt, s)
		if err != nil || returned {
			return v, returned, err
		}
		vals = append(vals, v)
	}
	return vals, false, nil
}

func (it *Interpreter) evalCompound(node *ast.Compound, scope *Stack, ctxt field.Field, s stream.Stream) (interface{}, bool, error) {
	scope.Push()
	defer scope.Pop() //nolint:errcheck // Pop only fails on bottom-frame removal, impossible here.

	for _, child := range node.Children {
		v, returned, err := it.eval(child, scope, ctxt, s)
		if err != nil {
			return nil, false, err
		}
		if returned {
			return v, true, nil
		}
	}
	return nil, false, nil
}

func (it *Interpreter) evalReturn(node *ast.Return, scope *Stack, ctxt field.Field, s stream.Stream) (interface{}, bool, error) {
	if node.Expr == nil {
		return nil, true, nil
	}
	v, returned, err := it.eval(node.Expr, scope, ctxt, s)
	if err != nil {
		return nil, false, err
	}
	if returned {
		return v, true, nil
	}
	return scalarValue(v), true, nil
}

// evalArrayDecl evaluates an ArrayDecl's dimension and element type and
// builds the array field, parsing it from s when parse is true and building
// it without stream I/O otherwise. The generic dispatch path always passes
// parse=true. The element type must resolve to a constructor, so an array
// whose element type is itself an ArrayDecl is rejected.
func (it *Interpreter) evalArrayDecl(node *ast.ArrayDecl, scope *Stack, ctxt field.Field, s stream.Stream, parse bool) (interface{}, bool, error) {
	dimVal, returned, err := it.eval(node.Dim, scope, ctxt, s)
	if err != nil || returned {
		return dimVal, returned, err
	}
	n, err := toInt64Value(scalarValue(dimVal))
	if err != nil {
		return nil, false, errors.Wrapf(err, "%s: array dimension", node.Pos())
	}

	ctorVal, returned, err := it.eval(node.Type, scope, ctxt, s)
	if err != nil || returned {
		return ctorVal, returned, err
	}
	ctor, ok := ctorVal.(field.Constructor)
	if !ok {
		return nil, false, errors.Errorf("%s: array element type did not resolve to a type, got %T", node.Pos(), ctorVal)
	}

	arr := field.NewArrayField(int(n), ctor)
	arr.SetName(declNameOf(node.Type))

	if parse {
		if err := arr.Parse(s); err != nil {
			return nil, false, err
		}
	} else if err := arr.Build(int(n)); err != nil {
		return nil, false, err
	}
	return arr, false, nil
}

// evalArrayDeclAsDecl is the ArrayDecl path reached directly from a Decl,
// which lets the "local" qualifier gate stream parsing the same way it
// does for scalar declarations (spec.md §9's redesign note: arrays must
// not always parse).
func (it *Interpreter) evalArrayDeclAsDecl(decl *ast.Decl, node *ast.ArrayDecl, scope *Stack, ctxt field.Field, s stream.Stream) (interface{}, bool, error) {
	switch {
	case decl.IsLocal():
		val, returned, err := it.evalArrayDecl(node, scope, ctxt, s, false)
		if err != nil || returned {
			return val, returned, err
		}
		arr := val.(*field.ArrayField)
		arr.SetName(decl.Name)
		if decl.Init != nil {
			initVal, returned, err := it.eval(decl.Init, scope, ctxt, s)
			if err != nil || returned {
				return initVal, returned, err
			}
			if err := arr.SetValue(scalarValue(initVal)); err != nil {
				return nil, false, errors.Wrapf(err, "%s: initializing %q", decl.Pos(), decl.Name)
			}
		}
		scope.AddLocal(decl.Name, arr)
		return arr, false, nil

	case decl.IsFuncParam:
		// Arrays as function parameters are accepted syntactically but
		// rare in practice; resolve the element constructor eagerly and
		// defer instantiation to call time like any other parameter.
		dimVal, returned, err := it.eval(node.Dim, scope, ctxt, s)
		if err != nil || returned {
			return dimVal, returned, err
		}
		n, err := toInt64Value(scalarValue(dimVal))
		if err != nil {
			return nil, false, err
		}
		elemCtorVal, returned, err := it.eval(node.Type, scope, ctxt, s)
		if err != nil || returned {
			return elemCtorVal, returned, err
		}
		elemCtor, ok := elemCtorVal.(field.Constructor)
		if !ok {
			return nil, false, errors.Errorf("%s: array element type did not resolve to a type", node.Pos())
		}
		count := int(n)
		arrayCtor := field.Constructor(func(ps stream.Stream) (field.Field, error) {
			a := field.NewArrayField(count, elemCtor)
			if ps != nil {
				if err := a.Parse(ps); err != nil {
					return nil, err
				}
			} else if err := a.Build(count); err != nil {
				return nil, err
			}
			return a, nil
		})
		return Param{Name: decl.Name, Ctor: arrayCtor}, false, nil

	default:
		val, returned, err := it.evalArrayDecl(node, scope, ctxt, s, true)
		if err != nil || returned {
			return val, returned, err
		}
		arr := val.(*field.ArrayField)
		arr.SetName(decl.Name)
		scope.AddVar(decl.Name, arr)
		addChild(ctxt, decl.Name, arr)
		return arr, false, nil
	}
}

// declNameOf recovers the declarator name that attaches to an array's
// element TypeDecl, per the original source's `node.type.declname`
// convention (spec.md's Supplemented Features note on array declname
// propagation).
func declNameOf(n ast.Node) string {
	if td, ok := n.(*ast.TypeDecl); ok {
		return td.DeclName
	}
	return ""
}

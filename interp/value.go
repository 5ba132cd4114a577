package interp

import (
	"github.com/pkg/errors"

	"github.com/ufwt/pfp/ast"
	"github.com/ufwt/pfp/field"
)

// scalarValue coerces a call argument or operand to a plain value via
// field.Deref: non-container fields auto-deref to Value(); a Container
// passes through unchanged (callers that care, like ArrayLength, expect
// it); anything else is already a plain scalar produced by a prior
// expression evaluation.
func scalarValue(v interface{}) interface{} {
	return field.Deref(v)
}

// applyBinaryOp implements the supported operator set from spec.md §4.C:
// arithmetic + - * / %, bitwise | ^ &, comparison > < >= <= == !=.
// Division semantics follow the operand types: integer division when both
// operands are integral.
func applyBinaryOp(op string, l, r interface{}, coord ast.Coord) (interface{}, error) {
	switch op {
	case "+", "-", "*", "/", "%", "|", "^", "&":
		return arith(op, l, r, coord)
	case ">", "<", ">=", "<=", "==", "!=":
		return compare(op, l, r, coord)
	default:
		return nil, &UnsupportedBinaryOperatorError{Coord: coord, Op: op}
	}
}

func arith(op string, l, r interface{}, coord ast.Coord) (interface{}, error) {
	if isFloat(l) || isFloat(r) {
		lf, err := toFloat64(l)
		if err != nil {
			return nil, errors.Wrapf(err, "%s", coord)
		}
		rf, err := toFloat64(r)
		if err != nil {
			return nil, errors.Wrapf(err, "%s", coord)
		}
		switch op {
		case "+":
			return lf + rf, nil
		case "-":
			return lf - rf, nil
		case "*":
			return lf * rf, nil
		case "/":
			if rf == 0 {
				return nil, errors.Errorf("%s: division by zero", coord)
			}
			return lf / rf, nil
		default:
			return nil, &UnsupportedBinaryOperatorError{Coord: coord, Op: op}
		}
	}

	li, err := toInt64Value(l)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", coord)
	}
	ri, err := toInt64Value(r)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", coord)
	}
	switch op {
	case "+":
		return li + ri, nil
	case "-":
		return li - ri, nil
	case "*":
		return li * ri, nil
	case "/":
		if ri == 0 {
			return nil, errors.Errorf("%s: division by zero", coord)
		}
		return li / ri, nil
	case "%":
		if ri == 0 {
			return nil, errors.Errorf("%s: division by zero", coord)
		}
		return li % ri, nil
	case "|":
		return li | ri, nil
	case "^":
		return li ^ ri, nil
	case "&":
		return li & ri, nil
	}
	return nil, &UnsupportedBinaryOperatorError{Coord: coord, Op: op}
}

func compare(op string, l, r interface{}, coord ast.Coord) (interface{}, error) {
	if ls, ok := l.(string); ok {
		if rs, ok := r.(string); ok {
			return compareOrdered(op, ls < rs, ls == rs, coord)
		}
	}
	if lb, ok := l.(bool); ok {
		if rb, ok := r.(bool); ok {
			switch op {
			case "==":
				return lb == rb, nil
			case "!=":
				return lb != rb, nil
			default:
				return nil, errors.Errorf("%s: operator %q not supported on bool operands", coord, op)
			}
		}
	}
	lf, err := toFloat64(l)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", coord)
	}
	rf, err := toFloat64(r)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", coord)
	}
	return compareOrdered(op, lf < rf, lf == rf, coord)
}

func compareOrdered(op string, less, equal bool, coord ast.Coord) (interface{}, error) {
	switch op {
	case ">":
		return !less && !equal, nil
	case "<":
		return less, nil
	case ">=":
		return !less, nil
	case "<=":
		return less || equal, nil
	case "==":
		return equal, nil
	case "!=":
		return !equal, nil
	default:
		return nil, &UnsupportedBinaryOperatorError{Coord: coord, Op: op}
	}
}

func isFloat(v interface{}) bool {
	_, ok := v.(float64)
	return ok
}

func toFloat64(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	default:
		return 0, errors.Errorf("cannot convert %T to a numeric value", v)
	}
}

func toInt64Value(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case uint64:
		return int64(n), nil
	case float64:
		return int64(n), nil
	default:
		return 0, errors.Errorf("cannot convert %T to an integer value", v)
	}
}

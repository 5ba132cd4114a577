package interp

import (
	"github.com/ufwt/pfp/ast"
	"github.com/ufwt/pfp/field"
)

// builtinBaseNames are the dialect's built-in base type names (spec.md
// §4.B step 2): anything else must resolve through the scope's types
// mapping.
var builtinBaseNames = map[string]bool{
	"char": true, "int": true, "long": true, "short": true,
	"double": true, "float": true, "void": true, "string": true, "wstring": true,
}

// resolveType reduces names (an ordered qualifier + identifier chain, e.g.
// ["unsigned", "int"] or ["MyTypedef"]) to a concrete field constructor,
// per the algorithm in spec.md §4.B.
func resolveType(coord ast.Coord, names []string, scope *Stack) (field.Constructor, error) {
	chain := append([]string(nil), names...)
	for {
		core := chain[len(chain)-1]
		if builtinBaseNames[core] {
			return baseConstructor(core, chain[:len(chain)-1]), nil
		}
		resolved, ok := scope.GetType(core)
		if !ok {
			return nil, &UnresolvedTypeError{Coord: coord, FullNames: names, ResolvedChain: chain}
		}
		chain = chain[:len(chain)-1]
		chain = append(chain, resolved...)
	}
}

// baseConstructor maps a builtin base name, plus its leading qualifiers,
// to a field constructor. For the integer families (char/short/int/long),
// presence of "unsigned" anywhere among the qualifiers selects the
// unsigned variant; long aliases to the 32-bit int family.
func baseConstructor(core string, quals []string) field.Constructor {
	unsigned := hasQual(quals, "unsigned")
	switch core {
	case "char":
		if unsigned {
			return field.NewUCharField()
		}
		return field.NewCharField()
	case "short":
		if unsigned {
			return field.NewUShort()
		}
		return field.NewShort()
	case "int", "long":
		if unsigned {
			return field.NewUInt()
		}
		return field.NewInt()
	case "double":
		return field.NewDouble()
	case "float":
		return field.NewFloat()
	case "void":
		return field.NewVoid()
	case "string":
		return field.NewString()
	case "wstring":
		return field.NewWString()
	}
	// unreachable: callers only invoke this for names already verified to
	// be in builtinBaseNames.
	return field.NewVoid()
}

func hasQual(quals []string, want string) bool {
	for _, q := range quals {
		if q == want {
			return true
		}
	}
	return false
}

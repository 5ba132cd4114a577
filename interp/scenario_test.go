package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ufwt/pfp/ast"
	"github.com/ufwt/pfp/field"
	"github.com/ufwt/pfp/stream"
)

var c = ast.At("t.bt", 1, 1)

func idType(names ...string) *ast.IdentifierType { return ast.NewIdentifierType(c, names...) }

// scenario 1: `char a; char b;` against bytes 41 42.
func TestScenario_TwoChars(t *testing.T) {
	root := ast.NewFileAST(c,
		ast.NewDecl(c, "a", nil, idType("char"), nil),
		ast.NewDecl(c, "b", nil, idType("char"), nil),
	)
	s := stream.New([]byte{0x41, 0x42})
	it := New(Options{})

	dom, err := it.Eval(root, s)
	require.NoError(t, err)

	a, ok := dom.Child("a")
	require.True(t, ok)
	assert.EqualValues(t, 0x41, a.Value())

	b, ok := dom.Child("b")
	require.True(t, ok)
	assert.EqualValues(t, 0x42, b.Value())

	assert.Equal(t, int64(2), s.Tell())
}

// scenario 2: `typedef unsigned char BYTE; BYTE x; BYTE y;` against FF 01.
func TestScenario_TypedefChain(t *testing.T) {
	root := ast.NewFileAST(c,
		ast.NewTypedef(c, "BYTE", []string{"unsigned", "char"}),
		ast.NewDecl(c, "x", nil, idType("BYTE"), nil),
		ast.NewDecl(c, "y", nil, idType("BYTE"), nil),
	)
	s := stream.New([]byte{0xFF, 0x01})
	it := New(Options{})

	dom, err := it.Eval(root, s)
	require.NoError(t, err)

	x, ok := dom.Child("x")
	require.True(t, ok)
	assert.EqualValues(t, 255, x.Value())

	y, ok := dom.Child("y")
	require.True(t, ok)
	assert.EqualValues(t, 1, y.Value())
}

// scenario 3: `struct S { char a; char b; } s;` against 58 59.
func TestScenario_Struct(t *testing.T) {
	structType := ast.NewStruct(c, "S",
		ast.NewDecl(c, "a", nil, idType("char"), nil),
		ast.NewDecl(c, "b", nil, idType("char"), nil),
	)
	root := ast.NewFileAST(c, ast.NewDecl(c, "s", nil, structType, nil))
	s := stream.New([]byte{0x58, 0x59})
	it := New(Options{})

	dom, err := it.Eval(root, s)
	require.NoError(t, err)

	sf, ok := dom.Child("s")
	require.True(t, ok)
	st, ok := sf.(field.Container)
	require.True(t, ok)
	assert.Len(t, st.Children(), 2)

	structField, ok := sf.(*field.StructField)
	require.True(t, ok)
	a, ok := structField.Child("a")
	require.True(t, ok)
	assert.EqualValues(t, 0x58, a.Value())
	b, ok := structField.Child("b")
	require.True(t, ok)
	assert.EqualValues(t, 0x59, b.Value())
}

// scenario 4: `char arr[3];` against 01 02 03.
func TestScenario_Array(t *testing.T) {
	elemType := ast.NewTypeDecl(c, idType("char"), "arr")
	arrDecl := ast.NewArrayDecl(c, ast.NewConstant(c, ast.ConstInt, "3"), elemType)
	root := ast.NewFileAST(c, ast.NewDecl(c, "arr", nil, arrDecl, nil))
	s := stream.New([]byte{0x01, 0x02, 0x03})
	it := New(Options{})

	dom, err := it.Eval(root, s)
	require.NoError(t, err)

	arr, ok := dom.Child("arr")
	require.True(t, ok)
	af, ok := arr.(*field.ArrayField)
	require.True(t, ok)
	require.Equal(t, 3, af.Len())
	for i, want := range []int64{1, 2, 3} {
		assert.EqualValues(t, want, af.Children()[i].Value())
	}
}

// scenario 5: `local int n = 5; char data[n];` against 0A 0B 0C 0D 0E.
// n must not appear in the DOM; data is a 5-element array sized by n.
func TestScenario_LocalSizedArray(t *testing.T) {
	elemType := ast.NewTypeDecl(c, idType("char"), "data")
	arrDecl := ast.NewArrayDecl(c, ast.NewID(c, "n"), elemType)
	root := ast.NewFileAST(c,
		ast.NewDecl(c, "n", []string{"local"}, idType("int"), ast.NewConstant(c, ast.ConstInt, "5")),
		ast.NewDecl(c, "data", nil, arrDecl, nil),
	)
	s := stream.New([]byte{0x0A, 0x0B, 0x0C, 0x0D, 0x0E})
	it := New(Options{})

	dom, err := it.Eval(root, s)
	require.NoError(t, err)

	_, ok := dom.Child("n")
	assert.False(t, ok, "local declaration must not become a DOM child")

	data, ok := dom.Child("data")
	require.True(t, ok)
	af, ok := data.(*field.ArrayField)
	require.True(t, ok)
	require.Equal(t, 5, af.Len())
	for i, want := range []int64{0x0A, 0x0B, 0x0C, 0x0D, 0x0E} {
		assert.EqualValues(t, want, af.Children()[i].Value())
	}
}

// scenario 6: `int add(int a, int b) { return a + b; } local int r = add(2,3);`
// against an empty stream: r == 5, no stream consumption, r is not in the DOM.
func TestScenario_FunctionCall(t *testing.T) {
	paramA := ast.NewDecl(c, "a", nil, idType("int"), nil)
	paramB := ast.NewDecl(c, "b", nil, idType("int"), nil)
	funcDecl := ast.NewFuncDecl(c, ast.NewParamList(c, paramA, paramB), idType("int"))
	body := ast.NewCompound(c, ast.NewReturn(c, ast.NewBinaryOp(c, "+", ast.NewID(c, "a"), ast.NewID(c, "b"))))
	addDef := ast.NewFuncDef(c, ast.NewDecl(c, "add", nil, funcDecl, nil), body)

	call := ast.NewFuncCall(c, ast.NewID(c, "add"), ast.NewExprList(c,
		ast.NewConstant(c, ast.ConstInt, "2"),
		ast.NewConstant(c, ast.ConstInt, "3"),
	))
	rDecl := ast.NewDecl(c, "r", []string{"local"}, idType("int"), call)

	root := ast.NewFileAST(c, addDef, rDecl)
	s := stream.New(nil)
	it := New(Options{})

	// Drive the evaluator one level below Eval so the test can inspect the
	// local "r" binding directly: r is deliberately never added to the DOM.
	scope := NewStack()
	registerBuiltins(scope)
	dom := field.NewDOM()

	for _, child := range root.Children {
		_, returned, err := it.eval(child, scope, dom, s)
		require.NoError(t, err)
		require.False(t, returned)
	}

	rv, ok := scope.GetLocal("r")
	require.True(t, ok)
	rf, ok := rv.(field.Field)
	require.True(t, ok)
	assert.EqualValues(t, 5, rf.Value())

	assert.Equal(t, int64(0), s.Tell())
	assert.Equal(t, 0, len(dom.Children()))
}

// invariant 1: without function calls or locals, total bytes consumed
// equal the sum of byte widths of all parse-bound declarations.
func TestInvariant_ByteAccounting(t *testing.T) {
	root := ast.NewFileAST(c,
		ast.NewDecl(c, "a", nil, idType("char"), nil),
		ast.NewDecl(c, "b", nil, idType("short"), nil),
		ast.NewDecl(c, "c", nil, idType("int"), nil),
	)
	s := stream.New(make([]byte, 1+2+4))
	it := New(Options{})

	_, err := it.Eval(root, s)
	require.NoError(t, err)
	assert.Equal(t, int64(7), s.Tell())
}

// invariant 2: after successful interpretation the scope stack has depth 1.
func TestInvariant_StackDepthAfterEval(t *testing.T) {
	root := ast.NewFileAST(c, ast.NewDecl(c, "a", nil, idType("char"), nil))
	s := stream.New([]byte{0x01})
	it := New(Options{})

	scope := NewStack()
	registerBuiltins(scope)
	dom := field.NewDOM()
	for _, child := range root.Children {
		_, _, err := it.eval(child, scope, dom, s)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, scope.Depth())
}

// invariant 3: a typedef chain T1 -> T2 -> ... -> base resolves to a chain
// whose last element is the builtin base name.
func TestInvariant_TypedefChainResolves(t *testing.T) {
	scope := NewStack()
	scope.AddType("T2", []string{"unsigned", "int"})
	scope.AddType("T1", []string{"T2"})

	chain, ok := scope.GetType("T1")
	require.True(t, ok)
	assert.Equal(t, "int", chain[len(chain)-1])
}

// invariant 4: an identifier shadowed by a local in a nested scope resolves
// to the local while that scope is live, and to the outer binding once the
// nested frame is popped.
func TestInvariant_LocalsShadowAcrossFrames(t *testing.T) {
	scope := NewStack()
	outer, _ := field.NewInt()(nil)
	require.NoError(t, outer.SetValue(int64(1)))
	scope.AddVar("x", outer)

	scope.Push()
	inner, _ := field.NewInt()(nil)
	require.NoError(t, inner.SetValue(int64(2)))
	scope.AddLocal("x", inner)

	v, ok := scope.GetID("x")
	require.True(t, ok)
	assert.EqualValues(t, 2, v.(field.Field).Value())

	require.NoError(t, scope.Pop())

	v, ok = scope.GetID("x")
	require.True(t, ok)
	assert.EqualValues(t, 1, v.(field.Field).Value())
}

// invariant 6: evaluating a binary op on two integer constants matches
// direct arithmetic evaluation.
func TestRoundTrip_BinaryOpOnConstants(t *testing.T) {
	it := New(Options{})
	node := ast.NewBinaryOp(c, "+", ast.NewConstant(c, ast.ConstInt, "2"), ast.NewConstant(c, ast.ConstInt, "3"))
	scope := NewStack()

	v, returned, err := it.eval(node, scope, nil, stream.New(nil))
	require.NoError(t, err)
	require.False(t, returned)
	assert.EqualValues(t, 5, v)
}

// invariant 7: p++ leaves the field at v+1 and returns the pre-increment
// value v.
func TestRoundTrip_PostIncrementReturnsOldValue(t *testing.T) {
	f, _ := field.NewInt()(nil)
	require.NoError(t, f.SetValue(int64(41)))

	prev := f.(*field.IntField).IncDec(1)
	assert.EqualValues(t, 41, prev)
	assert.EqualValues(t, 42, f.Value())
}

// invariant 8: an empty template produces an empty DOM; an empty struct
// produces a struct field with zero children.
func TestBoundary_EmptyTemplateAndStruct(t *testing.T) {
	root := ast.NewFileAST(c)
	it := New(Options{})
	dom, err := it.Eval(root, stream.New(nil))
	require.NoError(t, err)
	assert.Empty(t, dom.Children())

	structRoot := ast.NewFileAST(c, ast.NewDecl(c, "s", nil, ast.NewStruct(c, "Empty"), nil))
	dom2, err := it.Eval(structRoot, stream.New(nil))
	require.NoError(t, err)
	s, ok := dom2.Child("s")
	require.True(t, ok)
	container, ok := s.(field.Container)
	require.True(t, ok)
	assert.Empty(t, container.Children())
}

// Error kinds: unsupported operators, unresolved IDs, and unresolved types
// raise the corresponding typed errors carrying their originating coordinate.
func TestErrors_UnsupportedBinaryOperator(t *testing.T) {
	it := New(Options{})
	node := ast.NewBinaryOp(c, "??", ast.NewConstant(c, ast.ConstInt, "1"), ast.NewConstant(c, ast.ConstInt, "2"))
	_, _, err := it.eval(node, NewStack(), nil, stream.New(nil))
	require.Error(t, err)
	var target *UnsupportedBinaryOperatorError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "??", target.Op)
	assert.Equal(t, c, target.Coord)
}

func TestErrors_UnresolvedID(t *testing.T) {
	it := New(Options{})
	node := ast.NewID(c, "nope")
	_, _, err := it.eval(node, NewStack(), nil, stream.New(nil))
	require.Error(t, err)
	var target *UnresolvedIDError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "nope", target.Name)
}

func TestErrors_UnresolvedType(t *testing.T) {
	it := New(Options{})
	node := ast.NewDecl(c, "x", nil, idType("Nope"), nil)
	_, _, err := it.eval(node, NewStack(), field.NewDOM(), stream.New(nil))
	require.Error(t, err)
	var target *UnresolvedTypeError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, []string{"Nope"}, target.FullNames)
}

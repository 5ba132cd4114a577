package builtin_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ufwt/pfp/ast"
	"github.com/ufwt/pfp/builtin"
	"github.com/ufwt/pfp/field"
	"github.com/ufwt/pfp/stream"
)

type fakeCtx struct {
	args   []interface{}
	ctxt   field.Field
	stream stream.Stream
	out    *bytes.Buffer
}

func (c *fakeCtx) Args() []interface{}   { return c.args }
func (c *fakeCtx) Ctxt() field.Field     { return c.ctxt }
func (c *fakeCtx) Stream() stream.Stream { return c.stream }
func (c *fakeCtx) Coord() ast.Coord      { return ast.At("t", 1, 1) }
func (c *fakeCtx) Output() io.Writer {
	if c.out == nil {
		c.out = &bytes.Buffer{}
	}
	return c.out
}

func find(t *testing.T, name string) builtin.Func {
	t.Helper()
	fn, ok := builtin.Catalog()[name]
	require.True(t, ok, "expected %q to be registered", name)
	return fn
}

func TestCatalogRegistersExpectedNames(t *testing.T) {
	names := builtin.Names()
	for _, want := range []string{"Printf", "ArrayLength", "Strlen", "FTell", "FSeek", "FSkip"} {
		assert.Contains(t, names, want)
	}
}

func TestPrintfFormatsToOutput(t *testing.T) {
	fn := find(t, "Printf")
	intField, _ := field.NewInt()(nil)
	require.NoError(t, intField.SetValue(int64(7)))

	buf := &bytes.Buffer{}
	ctx := &fakeCtx{args: []interface{}{"count=%d", intField}, out: buf}
	_, err := fn.Call(ctx)
	require.NoError(t, err)
	assert.Equal(t, "count=7", buf.String())
}

func TestArrayLengthOnContainer(t *testing.T) {
	fn := find(t, "ArrayLength")
	arr := field.NewArrayField(3, field.NewCharField())
	require.NoError(t, arr.Build(3))

	ctx := &fakeCtx{args: []interface{}{arr}}
	v, err := fn.Call(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, v)
}

func TestStrlenDerefsFieldArgument(t *testing.T) {
	fn := find(t, "Strlen")
	strField, _ := field.NewString()(nil)
	require.NoError(t, strField.SetValue("hello"))

	ctx := &fakeCtx{args: []interface{}{strField}}
	v, err := fn.Call(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 5, v)
}

func TestFTellReturnsStreamPosition(t *testing.T) {
	fn := find(t, "FTell")
	s := stream.New([]byte{1, 2, 3, 4})
	_, err := s.ReadN(2)
	require.NoError(t, err)

	ctx := &fakeCtx{stream: s}
	v, err := fn.Call(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, v)
}

func TestFSeekRepositionsStream(t *testing.T) {
	fn := find(t, "FSeek")
	s := stream.New([]byte{1, 2, 3, 4})

	ctx := &fakeCtx{args: []interface{}{int64(3)}, stream: s}
	_, err := fn.Call(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), s.Tell())
}

func TestFSkipAdvancesRelativeToCurrentPosition(t *testing.T) {
	fn := find(t, "FSkip")
	s := stream.New([]byte{1, 2, 3, 4, 5})
	_, err := s.ReadN(1)
	require.NoError(t, err)

	ctx := &fakeCtx{args: []interface{}{int64(2)}, stream: s}
	_, err = fn.Call(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), s.Tell())
}

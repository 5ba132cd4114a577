package field_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ufwt/pfp/field"
	"github.com/ufwt/pfp/stream"
)

func TestIntFieldParseLittleEndian(t *testing.T) {
	f, err := field.NewInt()(stream.New([]byte{0x01, 0x00, 0x00, 0x00}))
	require.NoError(t, err)
	assert.EqualValues(t, 1, f.Value())
	assert.Equal(t, int64(0), f.Range().Offset)
	assert.Equal(t, int64(4), f.Range().Length)
}

func TestUnsignedIntFieldWraps(t *testing.T) {
	f, err := field.NewUInt()(stream.New([]byte{0xFF, 0xFF, 0xFF, 0xFF}))
	require.NoError(t, err)
	assert.EqualValues(t, 0xFFFFFFFF, f.Value())
}

func TestSignedShortNegative(t *testing.T) {
	f, err := field.NewShort()(stream.New([]byte{0xFF, 0xFF}))
	require.NoError(t, err)
	assert.EqualValues(t, -1, f.Value())
}

func TestCharFieldSignedAndUnsigned(t *testing.T) {
	signed, err := field.NewCharField()(stream.New([]byte{0xFF}))
	require.NoError(t, err)
	assert.EqualValues(t, -1, signed.Value())

	unsigned, err := field.NewUCharField()(stream.New([]byte{0xFF}))
	require.NoError(t, err)
	assert.EqualValues(t, 255, unsigned.Value())
}

func TestIncDecReturnsPreMutationValue(t *testing.T) {
	f, _ := field.NewInt()(nil)
	require.NoError(t, f.SetValue(int64(9)))
	type incDecer interface{ IncDec(int64) interface{} }
	prev := f.(incDecer).IncDec(1)
	assert.EqualValues(t, 9, prev)
	assert.EqualValues(t, 10, f.Value())
}

func TestFloatAndDoubleParse(t *testing.T) {
	// 1.5f little-endian bytes: 0x3FC00000
	fl, err := field.NewFloat()(stream.New([]byte{0x00, 0x00, 0xC0, 0x3F}))
	require.NoError(t, err)
	assert.InDelta(t, 1.5, fl.Value(), 1e-6)

	db, err := field.NewDouble()(stream.New([]byte{0, 0, 0, 0, 0, 0, 0xF8, 0x3F}))
	require.NoError(t, err)
	assert.InDelta(t, 1.5, db.Value(), 1e-9)
}

func TestStringFieldReadsUntilZero(t *testing.T) {
	f, err := field.NewString()(stream.New([]byte{'h', 'i', 0x00, 'x'}))
	require.NoError(t, err)
	assert.Equal(t, "hi", f.Value())
	assert.Equal(t, int64(3), f.Range().Length)
}

func TestWStringFieldDecodesUTF16LE(t *testing.T) {
	// "hi" as UTF-16LE plus a terminator.
	f, err := field.NewWString()(stream.New([]byte{'h', 0, 'i', 0, 0, 0}))
	require.NoError(t, err)
	assert.Equal(t, "hi", f.Value())
}

func TestVoidFieldNeverReads(t *testing.T) {
	f, err := field.NewVoid()(stream.New(nil))
	require.NoError(t, err)
	assert.Nil(t, f.Value())
}

func TestStructFieldAddChildAndLookup(t *testing.T) {
	s := field.NewStructField()
	child, _ := field.NewInt()(nil)
	s.AddChild("x", child)

	got, ok := s.Child("x")
	require.True(t, ok)
	assert.Same(t, child, got)
	assert.Same(t, field.Field(s), got.Parent())
	assert.Len(t, s.Children(), 1)
}

func TestStructFieldAddChildOverwritesByName(t *testing.T) {
	s := field.NewStructField()
	first, _ := field.NewInt()(nil)
	second, _ := field.NewInt()(nil)
	s.AddChild("x", first)
	s.AddChild("x", second)

	assert.Len(t, s.Children(), 1)
	got, _ := s.Child("x")
	assert.Same(t, second, got)
}

func TestArrayFieldParse(t *testing.T) {
	a := field.NewArrayField(3, field.NewCharField())
	require.NoError(t, a.Parse(stream.New([]byte{1, 2, 3})))
	require.Equal(t, 3, a.Len())
	for i, want := range []int64{1, 2, 3} {
		assert.EqualValues(t, want, a.Children()[i].Value())
	}
}

func TestArrayFieldBuildDoesNotTouchStream(t *testing.T) {
	a := field.NewArrayField(2, field.NewInt())
	require.NoError(t, a.Build(2))
	assert.Equal(t, 2, a.Len())
	for _, c := range a.Children() {
		assert.EqualValues(t, 0, c.Value())
		assert.False(t, c.Range().Valid)
	}
}

func TestDerefUnwrapsNonContainerField(t *testing.T) {
	f, _ := field.NewInt()(nil)
	require.NoError(t, f.SetValue(int64(7)))
	assert.EqualValues(t, 7, field.Deref(f))
}

func TestDerefPassesThroughContainer(t *testing.T) {
	s := field.NewStructField()
	assert.Same(t, field.Field(s), field.Deref(s))
}

func TestDerefPassesThroughPlainScalar(t *testing.T) {
	assert.Equal(t, int64(3), field.Deref(int64(3)))
}

func TestDOMChildOwnership(t *testing.T) {
	dom := field.NewDOM()
	child, _ := field.NewInt()(nil)
	dom.AddChild("x", child)

	got, ok := dom.Child("x")
	require.True(t, ok)
	assert.Same(t, child, got)
	assert.Equal(t, field.Field(dom), got.Parent())
}

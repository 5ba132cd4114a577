package field

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"github.com/ufwt/pfp/stream"
)

// IntField is a fixed-width integer field, signed or unsigned. Width is in
// bytes: 2 for short and 4 for int/long (long aliases to the 32-bit int
// family per the dialect's width rules). The char family uses the separate
// CharField.
type IntField struct {
	base
	Width    int
	Unsigned bool
	val      int64
}

func newInt(width int, unsigned bool) *IntField {
	return &IntField{Width: width, Unsigned: unsigned}
}

// NewShort returns a constructor for a signed 16-bit integer field.
func NewShort() Constructor { return scalarCtor(func() Field { return newInt(2, false) }) }

// NewUShort returns a constructor for an unsigned 16-bit integer field.
func NewUShort() Constructor { return scalarCtor(func() Field { return newInt(2, true) }) }

// NewInt returns a constructor for a signed 32-bit integer field. Used for
// both "int" and "long" (long aliases to the 32-bit int family).
func NewInt() Constructor { return scalarCtor(func() Field { return newInt(4, false) }) }

// NewUInt returns a constructor for an unsigned 32-bit integer field.
func NewUInt() Constructor { return scalarCtor(func() Field { return newInt(4, true) }) }

func scalarCtor(make func() Field) Constructor {
	return func(s stream.Stream) (Field, error) {
		f := make()
		if s == nil {
			return f, nil
		}
		if err := f.Parse(s); err != nil {
			return nil, err
		}
		return f, nil
	}
}

func (f *IntField) Value() interface{} {
	if f.Unsigned {
		return uint64(f.val)
	}
	return f.val
}

func (f *IntField) SetValue(v interface{}) error {
	i, err := toInt64(v)
	if err != nil {
		return errors.Wrapf(err, "field %s", f.name)
	}
	f.val = i
	return nil
}

func (f *IntField) Parse(s stream.Stream) error {
	offset := s.Tell()
	b, err := s.ReadN(f.Width)
	if err != nil {
		return errors.Wrapf(err, "parse int field %q", f.name)
	}
	var u uint64
	switch f.Width {
	case 1:
		u = uint64(b[0])
	case 2:
		u = uint64(binary.LittleEndian.Uint16(b))
	case 4:
		u = uint64(binary.LittleEndian.Uint32(b))
	case 8:
		u = binary.LittleEndian.Uint64(b)
	default:
		return errors.Errorf("unsupported integer width %d", f.Width)
	}
	if f.Unsigned {
		f.val = int64(u)
	} else {
		switch f.Width {
		case 1:
			f.val = int64(int8(u))
		case 2:
			f.val = int64(int16(u))
		case 4:
			f.val = int64(int32(u))
		default:
			f.val = int64(u)
		}
	}
	f.rng = Range{Offset: offset, Length: int64(f.Width), Valid: true}
	return nil
}

// IncDec implements p++/p-- in place, returning the pre-mutation value.
func (f *IntField) IncDec(delta int64) interface{} {
	prev := f.Value()
	f.val += delta
	return prev
}

// FloatField is a 32- or 64-bit IEEE-754 floating point field.
type FloatField struct {
	base
	Width int // 4 or 8
	val   float64
}

// NewFloat returns a constructor for a 32-bit float field.
func NewFloat() Constructor {
	return scalarCtor(func() Field { return &FloatField{Width: 4} })
}

// NewDouble returns a constructor for a 64-bit float field.
func NewDouble() Constructor {
	return scalarCtor(func() Field { return &FloatField{Width: 8} })
}

func (f *FloatField) Value() interface{} { return f.val }

func (f *FloatField) SetValue(v interface{}) error {
	fl, err := toFloat64(v)
	if err != nil {
		return errors.Wrapf(err, "field %s", f.name)
	}
	f.val = fl
	return nil
}

func (f *FloatField) Parse(s stream.Stream) error {
	offset := s.Tell()
	b, err := s.ReadN(f.Width)
	if err != nil {
		return errors.Wrapf(err, "parse float field %q", f.name)
	}
	switch f.Width {
	case 4:
		f.val = float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	case 8:
		f.val = math.Float64frombits(binary.LittleEndian.Uint64(b))
	default:
		return errors.Errorf("unsupported float width %d", f.Width)
	}
	f.rng = Range{Offset: offset, Length: int64(f.Width), Valid: true}
	return nil
}

func toInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case uint64:
		return int64(n), nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case float64:
		return int64(n), nil
	default:
		return 0, errors.Errorf("cannot convert %T to integer", v)
	}
}

func toFloat64(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case int:
		return float64(n), nil
	default:
		return 0, errors.Errorf("cannot convert %T to float", v)
	}
}

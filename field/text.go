package field

import (
	"bytes"
	"encoding/binary"
	"unicode/utf16"

	"github.com/pkg/errors"

	"github.com/ufwt/pfp/stream"
)

// CharField is the dialect's distinct "byte character" family: a single
// byte, signed or unsigned. The type resolver groups it with the integer
// families for unsigned/signed qualifier handling, but it remains its own
// field kind so arithmetic on chars and on general integers can be told
// apart by callers that care (e.g. pretty-printers).
type CharField struct {
	base
	Unsigned bool
	val      int64
}

// NewCharField returns a constructor for a signed 8-bit char field.
func NewCharField() Constructor {
	return scalarCtor(func() Field { return &CharField{} })
}

// NewUCharField returns a constructor for an unsigned 8-bit char field.
func NewUCharField() Constructor {
	return scalarCtor(func() Field { return &CharField{Unsigned: true} })
}

func (f *CharField) Value() interface{} {
	if f.Unsigned {
		return uint64(uint8(f.val))
	}
	return f.val
}

func (f *CharField) SetValue(v interface{}) error {
	i, err := toInt64(v)
	if err != nil {
		return errors.Wrapf(err, "field %s", f.name)
	}
	f.val = i
	return nil
}

func (f *CharField) Parse(s stream.Stream) error {
	offset := s.Tell()
	b, err := s.ReadN(1)
	if err != nil {
		return errors.Wrapf(err, "parse char field %q", f.name)
	}
	if f.Unsigned {
		f.val = int64(b[0])
	} else {
		f.val = int64(int8(b[0]))
	}
	f.rng = Range{Offset: offset, Length: 1, Valid: true}
	return nil
}

// IncDec implements p++/p-- in place, returning the pre-mutation value.
func (f *CharField) IncDec(delta int64) interface{} {
	prev := f.Value()
	f.val += delta
	return prev
}

// StringField is a zero-terminated byte string, the dialect's "string"
// base type. Length-prefixed strings are a variant of the same family
// named in the data model but are not reachable from any builtin base
// type name in this dialect's grammar (§4.B enumerates only the
// zero-terminated "string"/"wstring" names), so only the zero-terminated
// reader is implemented.
type StringField struct {
	base
	val string
}

// NewString returns a constructor for a zero-terminated string field.
func NewString() Constructor {
	return scalarCtor(func() Field { return &StringField{} })
}

func (f *StringField) Value() interface{} { return f.val }

func (f *StringField) SetValue(v interface{}) error {
	s, ok := v.(string)
	if !ok {
		return errors.Errorf("field %s: cannot assign %T to string", f.name, v)
	}
	f.val = s
	return nil
}

func (f *StringField) Parse(s stream.Stream) error {
	offset := s.Tell()
	var buf bytes.Buffer
	for {
		b, err := s.ReadN(1)
		if err != nil {
			return errors.Wrapf(err, "parse string field %q", f.name)
		}
		if b[0] == 0 {
			break
		}
		buf.WriteByte(b[0])
	}
	f.val = buf.String()
	f.rng = Range{Offset: offset, Length: s.Tell() - offset, Valid: true}
	return nil
}

// WStringField is a zero-terminated UTF-16LE string, the dialect's
// "wstring" base type.
type WStringField struct {
	base
	val string
}

// NewWString returns a constructor for a zero-terminated wide string
// field.
func NewWString() Constructor {
	return scalarCtor(func() Field { return &WStringField{} })
}

func (f *WStringField) Value() interface{} { return f.val }

func (f *WStringField) SetValue(v interface{}) error {
	s, ok := v.(string)
	if !ok {
		return errors.Errorf("field %s: cannot assign %T to wstring", f.name, v)
	}
	f.val = s
	return nil
}

func (f *WStringField) Parse(s stream.Stream) error {
	offset := s.Tell()
	var units []uint16
	for {
		b, err := s.ReadN(2)
		if err != nil {
			return errors.Wrapf(err, "parse wstring field %q", f.name)
		}
		u := binary.LittleEndian.Uint16(b)
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	f.val = string(utf16.Decode(units))
	f.rng = Range{Offset: offset, Length: s.Tell() - offset, Valid: true}
	return nil
}

package field

import "github.com/ufwt/pfp/stream"

// VoidField is the dialect's "void" base type: used as a function's return
// type constructor and for calls whose value is never consulted.
type VoidField struct {
	base
}

// NewVoid returns a constructor for a void field. Invoking it never reads
// the stream, regardless of whether one is supplied.
func NewVoid() Constructor {
	return func(stream.Stream) (Field, error) { return &VoidField{}, nil }
}

func (f *VoidField) Value() interface{}         { return nil }
func (f *VoidField) SetValue(interface{}) error { return nil }
func (f *VoidField) Parse(stream.Stream) error  { return nil }

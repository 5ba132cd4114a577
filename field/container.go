package field

import (
	"github.com/pkg/errors"

	"github.com/ufwt/pfp/stream"
)

// StructField is a struct-typed field: an ordered list of named children,
// each owned exclusively by this struct. Its bytes are consumed by
// evaluating its member declarations one at a time against the stream
// (the evaluator's Struct case), not by a single bulk Parse call; Parse is
// a no-op here, present so StructField satisfies the Field interface.
type StructField struct {
	base
	children []Field
	index    map[string]int
}

// NewStructField constructs an empty struct field ready to receive
// children via AddChild.
func NewStructField() *StructField {
	return &StructField{index: map[string]int{}}
}

func (s *StructField) Value() interface{} { return s.children }

func (s *StructField) SetValue(v interface{}) error {
	return errors.Errorf("struct field %s: cannot assign a scalar value", s.name)
}

func (s *StructField) Parse(stream.Stream) error { return nil }

func (s *StructField) Children() []Field { return s.children }

// AddChild appends f as a named child, setting its parent link to s. Per
// the DOM's ownership invariant, a struct exclusively owns its direct
// children.
func (s *StructField) AddChild(name string, f Field) {
	f.SetName(name)
	f.SetParent(s)
	if idx, ok := s.index[name]; ok {
		s.children[idx] = f
		return
	}
	s.index[name] = len(s.children)
	s.children = append(s.children, f)
}

// Child looks up a direct child by name.
func (s *StructField) Child(name string) (Field, bool) {
	idx, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.children[idx], true
}

// ArrayField is a fixed-length array of a single element constructor.
type ArrayField struct {
	base
	elemCtor Constructor
	elems    []Field
}

// NewArrayField constructs an array field of length n whose elements are
// produced by elemCtor.
func NewArrayField(n int, elemCtor Constructor) *ArrayField {
	return &ArrayField{elemCtor: elemCtor, elems: make([]Field, 0, n)}
}

func (a *ArrayField) Value() interface{} { return a.elems }

func (a *ArrayField) SetValue(v interface{}) error {
	elems, ok := v.([]Field)
	if !ok {
		return errors.Errorf("array field %s: cannot assign %T", a.name, v)
	}
	a.elems = elems
	return nil
}

func (a *ArrayField) Children() []Field { return a.elems }

// Len returns the number of elements the array currently holds (zero until
// Parse or Build has run).
func (a *ArrayField) Len() int { return len(a.elems) }

// Parse constructs and parses each element of the array against s in
// order, left to right, per the interpreter's stream-consumption
// invariant.
func (a *ArrayField) Parse(s stream.Stream) error {
	offset := s.Tell()
	n := cap(a.elems)
	a.elems = a.elems[:0]
	for i := 0; i < n; i++ {
		elem, err := a.elemCtor(s)
		if err != nil {
			return errors.Wrapf(err, "array field %s: element %d", a.name, i)
		}
		elem.SetParent(a)
		a.elems = append(a.elems, elem)
	}
	a.rng = Range{Offset: offset, Length: s.Tell() - offset, Valid: true}
	return nil
}

// Build constructs n elements via elemCtor without touching any stream,
// for arrays declared "local" (spec.md §9's redesign note: a local array
// must skip stream parsing the same way a local scalar does). Elements
// get no stream range.
func (a *ArrayField) Build(n int) error {
	a.elems = a.elems[:0]
	for i := 0; i < n; i++ {
		elem, err := a.elemCtor(nil)
		if err != nil {
			return errors.Wrapf(err, "array field %s: building element %d", a.name, i)
		}
		elem.SetParent(a)
		a.elems = append(a.elems, elem)
	}
	return nil
}

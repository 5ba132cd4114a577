package interp

import "github.com/ufwt/pfp/field"

// frame is one layer of the scope stack: three independent mappings for
// types, locals, and vars (spec.md §3, "Scope frame").
type frame struct {
	types  map[string][]string
	locals map[string]interface{} // field.Field or *Function
	vars   map[string]field.Field
}

func newFrame() *frame {
	return &frame{
		types:  map[string][]string{},
		locals: map[string]interface{}{},
		vars:   map[string]field.Field{},
	}
}

// Stack is an ordered sequence of frames; the most recently pushed is
// innermost. Lookup walks from innermost outward and returns the first
// hit in the requested category.
type Stack struct {
	frames []*frame
}

// NewStack returns a stack containing exactly one frame, satisfying the
// invariant that the stack is non-empty at entry.
func NewStack() *Stack {
	return &Stack{frames: []*frame{newFrame()}}
}

func (s *Stack) top() *frame { return s.frames[len(s.frames)-1] }

// Push appends an empty frame.
func (s *Stack) Push() {
	s.frames = append(s.frames, newFrame())
}

// Pop removes the innermost frame. It never removes the bottom frame;
// doing so is a programmer error and returns an error rather than
// panicking, so callers can decide how to treat it.
func (s *Stack) Pop() error {
	if len(s.frames) <= 1 {
		return errStackUnderflow
	}
	s.frames = s.frames[:len(s.frames)-1]
	return nil
}

// Depth reports the number of frames currently on the stack.
func (s *Stack) Depth() int { return len(s.frames) }

// Clone produces a new stack object that shares the underlying frame
// objects (so typedefs and builtins registered into those frames remain
// visible) but pins the current innermost frame: the clone gets its own
// independent slice header, so subsequent pushes/pops on either stack are
// invisible to the other. Function values use this to capture their
// definition-time scope.
func (s *Stack) Clone() *Stack {
	frames := make([]*frame, len(s.frames))
	copy(frames, s.frames)
	return &Stack{frames: frames}
}

// AddVar binds name to field in the innermost frame's vars mapping.
func (s *Stack) AddVar(name string, f field.Field) { s.top().vars[name] = f }

// AddLocal binds name to value (a field.Field or *Function) in the
// innermost frame's locals mapping.
func (s *Stack) AddLocal(name string, v interface{}) { s.top().locals[name] = v }

// AddType records name as resolving to chain, after reducing chain so its
// last element is never itself a typedef name known to this stack
// (invariant 2: the type resolver never returns a chain whose last
// element is a typedef name).
func (s *Stack) AddType(name string, chain []string) {
	s.top().types[name] = s.resolveChain(chain)
}

// resolveChain repeatedly replaces the chain's last element with its
// registered type-chain resolution until the last element is not itself a
// known typedef name, bounding future lookups of name to a single hop.
func (s *Stack) resolveChain(chain []string) []string {
	res := append([]string(nil), chain...)
	for {
		core := res[len(res)-1]
		orig, ok := s.GetType(core)
		if !ok {
			return res
		}
		res = res[:len(res)-1]
		res = append(res, orig...)
	}
}

// GetVar looks up name in the vars mapping, innermost frame first.
func (s *Stack) GetVar(name string) (field.Field, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if v, ok := s.frames[i].vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// GetLocal looks up name in the locals mapping, innermost frame first.
func (s *Stack) GetLocal(name string) (interface{}, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if v, ok := s.frames[i].locals[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// GetType looks up name in the types mapping, innermost frame first.
func (s *Stack) GetType(name string) ([]string, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if v, ok := s.frames[i].types[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// GetID is the composite lookup with locals-before-vars ordering across
// the full stack: it scans every frame for a local hit before scanning any
// frame for a var hit, so function parameters and user-declared locals
// shadow a same-named stream field regardless of relative depth.
func (s *Stack) GetID(name string) (interface{}, bool) {
	if v, ok := s.GetLocal(name); ok {
		return v, true
	}
	if v, ok := s.GetVar(name); ok {
		return v, true
	}
	return nil, false
}

package object

import (
	"log/slog"
	"scopecore/internal/ast"
)

type Binding struct {
	Name      string
	Value     Object
	IsMutable bool
	Position  ast.Position
}

func (b *Binding) IsInitialized() bool {
	return b.Value != BINDING_UNINITIALIZED
}

// Frame holds the bindings created by one block. Bindings keeps every
// declaration in order; latest points at the most recent one per name so a
// redeclaration hides, but never overwrites, the earlier binding.
type Frame struct {
	ID       uint64
	Bindings []*Binding
	latest   map[string]*Binding
}

func newFrame(id uint64) *Frame {
	return &Frame{
		ID:     id,
		latest: make(map[string]*Binding),
	}
}

func (f *Frame) declare(b *Binding) {
	f.Bindings = append(f.Bindings, b)
	f.latest[b.Name] = b
}

// Lookup returns the most recently declared binding of name in this frame only.
func (f *Frame) Lookup(name string) (*Binding, bool) {
	b, ok := f.latest[name]
	return b, ok
}

// ScopeStack is the ordered stack of frames for one evaluation, innermost
// last. It is owned by a single evaluation and is not safe for concurrent use.
type ScopeStack struct {
	frames []*Frame
	nextID uint64
}

func NewScopeStack() *ScopeStack {
	return &ScopeStack{}
}

func (s *ScopeStack) Depth() int {
	return len(s.frames)
}

// Current returns the innermost frame, or nil when no block is active.
func (s *ScopeStack) Current() *Frame {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

func (s *ScopeStack) EnterBlock() {
	s.nextID++
	s.frames = append(s.frames, newFrame(s.nextID))
	slog.Debug("enter block", slog.Int("depth", len(s.frames)))
}

func (s *ScopeStack) ExitBlock() error {
	if len(s.frames) == 0 {
		return NewError(EmptyStackError, "block exit with no active frame")
	}
	top := s.frames[len(s.frames)-1]
	s.frames[len(s.frames)-1] = nil
	s.frames = s.frames[:len(s.frames)-1]
	slog.Debug("exit block",
		slog.Int("depth", len(s.frames)),
		slog.Int("released", len(top.Bindings)))
	return nil
}

// Declare adds a binding to the innermost frame, shadowing any visible binding
// of the same name. Declaring on an empty stack opens a root frame first.
func (s *ScopeStack) Declare(name string, val Object, isMutable bool, pos ast.Position) *Binding {
	if len(s.frames) == 0 {
		s.EnterBlock()
	}
	binding := &Binding{
		Name:      name,
		Value:     val,
		IsMutable: isMutable,
		Position:  pos,
	}
	s.Current().declare(binding)

	slog.Debug("binding value",
		slog.String("name", name),
		slog.Any("type", val.Type()),
		slog.Bool("mutable", isMutable),
		slog.Int("depth", len(s.frames)))
	return binding
}

// Resolve finds the nearest visible binding for name, innermost frame first.
func (s *ScopeStack) Resolve(name string) (*Binding, error) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if b, ok := s.frames[i].Lookup(name); ok {
			return b, nil
		}
	}
	return nil, &Error{
		Kind:    UnresolvedNameError,
		Message: "cannot find value `" + name + "` in this scope",
		Name:    name,
		Depth:   len(s.frames),
	}
}

// Assign replaces the value of the nearest visible binding in place. The first
// assignment to an uninitialized binding is its initialisation and is allowed
// whatever the mutability.
func (s *ScopeStack) Assign(name string, val Object, pos ast.Position) error {
	binding, err := s.Resolve(name)
	if err != nil {
		return err
	}
	if !binding.IsMutable && binding.IsInitialized() {
		return &Error{
			Kind:     ImmutableAssignmentError,
			Message:  "cannot assign twice to immutable variable `" + name + "`",
			Name:     name,
			Depth:    len(s.frames),
			Position: pos,
		}
	}
	binding.Value = val

	slog.Debug("assigning bound value",
		slog.String("name", name),
		slog.Any("type", val.Type()),
		slog.Int("depth", len(s.frames)))
	return nil
}

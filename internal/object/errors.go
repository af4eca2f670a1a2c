package object

import (
	"errors"
	"fmt"
	"scopecore/internal/ast"
)

type ErrorKind string

const (
	UnresolvedNameError      ErrorKind = "UnresolvedNameError"
	ImmutableAssignmentError ErrorKind = "ImmutableAssignmentError"
	UnmatchedLabelError      ErrorKind = "UnmatchedLabelError"
	EmptyStackError          ErrorKind = "EmptyStackError"
	UninitializedReadError   ErrorKind = "UninitializedReadError"
	TypeMismatchError        ErrorKind = "TypeMismatchError"
	ArithmeticError          ErrorKind = "ArithmeticError"
)

// Error is the single diagnostic an evaluation can end with. Inside the
// evaluator it travels as an Object; at the API boundary it is returned as an
// error.
type Error struct {
	Kind     ErrorKind
	Message  string
	Name     string
	Label    string
	Depth    int
	Position ast.Position
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect() string  { return e.Error() }

func (e *Error) Error() string {
	if e.Position.IsZero() {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s at %s: %s", e.Kind, e.Position, e.Message)
}

func NewError(kind ErrorKind, format string, a ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, a...)}
}

func (e *Error) At(pos ast.Position) *Error {
	if e.Position.IsZero() {
		e.Position = pos
	}
	return e
}

// IsKind reports whether err is, or wraps, a diagnostic of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var diag *Error
	if errors.As(err, &diag) {
		return diag.Kind == kind
	}
	return false
}

package object

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	UNIT_OBJ    = "UNIT"
	BOOLEAN_OBJ = "BOOLEAN"
	INTEGER_OBJ = "INTEGER"
	FLOAT_OBJ   = "FLOAT"
	STRING_OBJ  = "STRING"
	TUPLE_OBJ   = "TUPLE"
	RANGE_OBJ   = "RANGE"
	ERROR_OBJ   = "ERROR"

	BREAK_OBJ         = "BREAK"
	CONTINUE_OBJ      = "CONTINUE"
	UNINITIALIZED_OBJ = "UNINITIALIZED"
)

var (
	UNIT  = &Unit{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

type ObjectType string

type Object interface {
	Type() ObjectType
	Inspect() string
}

// Iterable is a finite, restartable sequence a for loop can walk.
type Iterable interface {
	Object
	Len() int
	At(i int) Object
}

type Unit struct{}

func (u *Unit) Type() ObjectType { return UNIT_OBJ }
func (u *Unit) Inspect() string  { return "()" }

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return strconv.FormatBool(b.Value) }

func NativeBool(v bool) *Boolean {
	if v {
		return TRUE
	}
	return FALSE
}

type Integer struct {
	Value int64
}

func (i *Integer) Type() ObjectType { return INTEGER_OBJ }
func (i *Integer) Inspect() string  { return strconv.FormatInt(i.Value, 10) }

type Float struct {
	Value float64
}

func (f *Float) Type() ObjectType { return FLOAT_OBJ }
func (f *Float) Inspect() string  { return strconv.FormatFloat(f.Value, 'f', -1, 64) }

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }

type Tuple struct {
	Elements []Object
}

func (t *Tuple) Type() ObjectType  { return TUPLE_OBJ }
func (t *Tuple) Len() int          { return len(t.Elements) }
func (t *Tuple) At(i int) Object   { return t.Elements[i] }
func (t *Tuple) Inspect() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.Inspect()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Range is an integer interval. End is exclusive unless Inclusive is set.
type Range struct {
	Start     int64
	End       int64
	Inclusive bool
}

func (r *Range) Type() ObjectType { return RANGE_OBJ }
func (r *Range) Inspect() string {
	if r.Inclusive {
		return fmt.Sprintf("%d..=%d", r.Start, r.End)
	}
	return fmt.Sprintf("%d..%d", r.Start, r.End)
}

// Count returns the number of elements. ok is false when the count does not
// fit in an int.
func (r *Range) Count() (n int, ok bool) {
	if r.End < r.Start || (r.End == r.Start && !r.Inclusive) {
		return 0, true
	}
	// the difference of two int64 always fits in a uint64
	span := uint64(r.End) - uint64(r.Start)
	if r.Inclusive {
		if span == math.MaxUint64 {
			return 0, false
		}
		span++
	}
	if span > math.MaxInt {
		return 0, false
	}
	return int(span), true
}

// Len is Count for ranges already known to fit.
func (r *Range) Len() int {
	n, _ := r.Count()
	return n
}

func (r *Range) At(i int) Object {
	return &Integer{Value: r.Start + int64(i)}
}

// Uninitialized marks a binding that was declared without a value and has not
// been assigned yet.
type Uninitialized struct{}

func (u *Uninitialized) Type() ObjectType { return UNINITIALIZED_OBJ }
func (u *Uninitialized) Inspect() string  { return "<uninitialized>" }

// BINDING_UNINITIALIZED is the singleton sentinel instance used by the runtime.
var BINDING_UNINITIALIZED = &Uninitialized{}

// BreakSignal travels up from a break statement to the loop it targets. An
// empty Label targets the innermost loop; a nil Value means unit.
type BreakSignal struct {
	Label string
	Value Object
}

func (bs *BreakSignal) Type() ObjectType { return BREAK_OBJ }
func (bs *BreakSignal) Inspect() string {
	var out strings.Builder
	out.WriteString("break")
	if bs.Label != "" {
		out.WriteString(" '" + bs.Label)
	}
	if bs.Value != nil {
		out.WriteString(" " + bs.Value.Inspect())
	}
	return out.String()
}

type ContinueSignal struct {
	Label string
}

func (cs *ContinueSignal) Type() ObjectType { return CONTINUE_OBJ }
func (cs *ContinueSignal) Inspect() string {
	if cs.Label != "" {
		return "continue '" + cs.Label
	}
	return "continue"
}

// FromNative converts a scalar decoded from configuration into a runtime value.
func FromNative(v any) (Object, error) {
	switch v := v.(type) {
	case nil:
		return UNIT, nil
	case bool:
		return NativeBool(v), nil
	case int:
		return &Integer{Value: int64(v)}, nil
	case int64:
		return &Integer{Value: v}, nil
	case float64:
		return &Float{Value: v}, nil
	case string:
		return &String{Value: v}, nil
	case []any:
		elements := make([]Object, len(v))
		for i, e := range v {
			obj, err := FromNative(e)
			if err != nil {
				return nil, err
			}
			elements[i] = obj
		}
		return &Tuple{Elements: elements}, nil
	default:
		return nil, fmt.Errorf("unsupported constant type %T", v)
	}
}

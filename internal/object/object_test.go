package object

import (
	"math"
	"testing"
)

func TestRangeLen(t *testing.T) {
	tests := []struct {
		name     string
		r        *Range
		expected int
	}{
		{"inclusive", &Range{Start: 1, End: 3, Inclusive: true}, 3},
		{"exclusive", &Range{Start: 1, End: 3}, 2},
		{"empty exclusive", &Range{Start: 3, End: 3}, 0},
		{"single inclusive", &Range{Start: 3, End: 3, Inclusive: true}, 1},
		{"reversed", &Range{Start: 5, End: 1, Inclusive: true}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Len(); got != tt.expected {
				t.Errorf("expected len %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestRangeCountAtInt64Bounds(t *testing.T) {
	tests := []struct {
		name     string
		r        *Range
		expected int
		ok       bool
	}{
		{"inclusive to max", &Range{Start: math.MaxInt64 - 1, End: math.MaxInt64, Inclusive: true}, 2, true},
		{"exclusive to max", &Range{Start: math.MaxInt64 - 1, End: math.MaxInt64}, 1, true},
		{"from min", &Range{Start: math.MinInt64, End: math.MinInt64 + 2}, 2, true},
		{"full exclusive", &Range{Start: math.MinInt64, End: math.MaxInt64}, 0, false},
		{"full inclusive", &Range{Start: math.MinInt64, End: math.MaxInt64, Inclusive: true}, 0, false},
		{"negative to positive", &Range{Start: -2, End: 2, Inclusive: true}, 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.r.Count()
			if got != tt.expected || ok != tt.ok {
				t.Errorf("Count() = (%d, %v), want (%d, %v)", got, ok, tt.expected, tt.ok)
			}
		})
	}

	top := &Range{Start: math.MaxInt64 - 1, End: math.MaxInt64, Inclusive: true}
	if last := top.At(top.Len() - 1).(*Integer).Value; last != math.MaxInt64 {
		t.Errorf("expected last element MaxInt64, got %d", last)
	}
}

func TestRangeIsRestartable(t *testing.T) {
	r := &Range{Start: 2, End: 4, Inclusive: true}

	for pass := 0; pass < 2; pass++ {
		var got []int64
		for i := 0; i < r.Len(); i++ {
			got = append(got, r.At(i).(*Integer).Value)
		}
		if len(got) != 3 || got[0] != 2 || got[2] != 4 {
			t.Errorf("pass %d: unexpected elements %v", pass, got)
		}
	}
}

func TestInspect(t *testing.T) {
	tests := []struct {
		obj      Object
		expected string
	}{
		{&Integer{Value: 42}, "42"},
		{&Float{Value: 3.14}, "3.14"},
		{&Float{Value: 5}, "5"},
		{&String{Value: "Hello, Rust!"}, "Hello, Rust!"},
		{TRUE, "true"},
		{UNIT, "()"},
		{&Tuple{Elements: []Object{&Integer{Value: 10}, &Float{Value: 3.142}, &String{Value: "Hello"}}}, "(10, 3.142, Hello)"},
		{&BreakSignal{Label: "outer", Value: &Integer{Value: 10}}, "break 'outer 10"},
		{&ContinueSignal{}, "continue"},
	}

	for _, tt := range tests {
		if got := tt.obj.Inspect(); got != tt.expected {
			t.Errorf("expected %q, got %q", tt.expected, got)
		}
	}
}

func TestFromNative(t *testing.T) {
	obj, err := FromNative(int64(100000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if i, ok := obj.(*Integer); !ok || i.Value != 100000 {
		t.Errorf("expected integer 100000, got %v", obj.Inspect())
	}

	obj, err = FromNative(3.14159)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f, ok := obj.(*Float); !ok || f.Value != 3.14159 {
		t.Errorf("expected float 3.14159, got %v", obj.Inspect())
	}

	if _, err := FromNative(map[string]any{}); err == nil {
		t.Errorf("expected error for map constant")
	}
}

package evaluator

import (
	"errors"
	"math"
	"reflect"
	"scopecore/internal/ast"
	"scopecore/internal/object"
	"testing"
)

func mustEvaluate(t *testing.T, program *ast.Program, constants map[string]object.Object) *Result {
	t.Helper()
	result, err := Evaluate(program, constants)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return result
}

func expectKind(t *testing.T, program *ast.Program, kind object.ErrorKind) *object.Error {
	t.Helper()
	result, err := Evaluate(program, nil)
	if result != nil {
		t.Errorf("expected no result, got value %s and output %v", result.Value.Inspect(), result.Output)
	}
	var diag *object.Error
	if !errors.As(err, &diag) {
		t.Fatalf("expected %s, got %v", kind, err)
	}
	if diag.Kind != kind {
		t.Fatalf("expected %s, got %s (%s)", kind, diag.Kind, diag.Message)
	}
	return diag
}

func expectOutput(t *testing.T, result *Result, expected []string) {
	t.Helper()
	if !reflect.DeepEqual(result.Output, expected) {
		t.Errorf("unexpected output\n got: %q\nwant: %q", result.Output, expected)
	}
}

func TestNestedScopeShadowing(t *testing.T) {
	program := ast.NewProgram(
		ast.Let("x", ast.Int(100)),
		ast.Block(
			ast.Let("x", ast.Int(500)),
			ast.Emit("inside {}", ast.Ident("x")),
			ast.Block(
				ast.Let("x", ast.Infix(ast.Ident("x"), "+", ast.Int(10))),
				ast.Emit("inner {}", ast.Ident("x")),
			),
			ast.Emit("after inner {}", ast.Ident("x")),
		),
		ast.Emit("outer {}", ast.Ident("x")),
		ast.Let("s", ast.Int(100)),
		ast.Block(
			ast.Let("s", ast.Str("We have shadowed s to a string")),
			ast.Emit("{}", ast.Ident("s")),
		),
		ast.Emit("{}", ast.Ident("s")),
	)

	result := mustEvaluate(t, program, nil)
	expectOutput(t, result, []string{
		"inside 500",
		"inner 510",
		"after inner 500",
		"outer 100",
		"We have shadowed s to a string",
		"100",
	})
}

func TestInnerBindingNotVisibleAfterBlock(t *testing.T) {
	program := ast.NewProgram(
		ast.Block(ast.Let("inner", ast.Int(1))),
		ast.Emit("{}", ast.Ident("inner")),
	)

	diag := expectKind(t, program, object.UnresolvedNameError)
	if diag.Name != "inner" || diag.Depth != 1 {
		t.Errorf("expected name inner at depth 1, got %q at %d", diag.Name, diag.Depth)
	}
}

func TestSameBlockShadowing(t *testing.T) {
	tests := []struct {
		name     string
		program  *ast.Program
		expected string
	}{
		{
			"shadow with expression of previous binding",
			ast.NewProgram(
				ast.Let("x", ast.Int(100)),
				ast.Let("x", ast.Infix(ast.Ident("x"), "+", ast.Int(1))),
				ast.Expr(ast.Ident("x")),
			),
			"101",
		},
		{
			"shadow with a different type",
			ast.NewProgram(
				ast.Let("x", ast.Int(100)),
				ast.Let("x", ast.Str("Welcome to rust training..")),
				ast.Expr(ast.Ident("x")),
			),
			"Welcome to rust training..",
		},
		{
			"immutable shadowed as mutable",
			ast.NewProgram(
				ast.Let("x", ast.Int(100)),
				ast.LetMut("x", ast.Ident("x")),
				ast.Assign("x", ast.Int(500)),
				ast.Expr(ast.Ident("x")),
			),
			"500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := mustEvaluate(t, tt.program, nil)
			if got := result.Value.Inspect(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestMutableShadowedBackToImmutable(t *testing.T) {
	program := ast.NewProgram(
		ast.Let("x", ast.Int(100)),
		ast.LetMut("x", ast.Ident("x")),
		ast.Assign("x", ast.Int(500)),
		ast.Let("x", ast.Ident("x")),
		ast.Emit("Value of immutable x {}", ast.Ident("x")),
		&ast.AssignStatement{
			Position: ast.Position{Line: 27, Column: 5},
			Name:     ast.Ident("x"),
			Operator: "=",
			Value:    ast.Int(1000),
		},
	)

	diag := expectKind(t, program, object.ImmutableAssignmentError)
	if diag.Name != "x" {
		t.Errorf("expected name x, got %q", diag.Name)
	}
	if diag.Position != (ast.Position{Line: 27, Column: 5}) {
		t.Errorf("expected position 27:5, got %s", diag.Position)
	}
}

func TestImmutableAssignmentAnyType(t *testing.T) {
	values := []ast.Expression{
		ast.Int(500),
		ast.Float(5.5),
		ast.Str("500"),
		ast.Bool(true),
		ast.Tuple(ast.Int(1), ast.Int(2)),
	}

	for _, v := range values {
		program := ast.NewProgram(
			ast.Let("x", ast.Int(100)),
			ast.Assign("x", v),
		)
		expectKind(t, program, object.ImmutableAssignmentError)
	}
}

func TestCompoundAssignment(t *testing.T) {
	program := ast.NewProgram(
		ast.LetMut("number", ast.Int(3)),
		ast.AssignOp("number", "-=", ast.Int(1)),
		ast.AssignOp("number", "*=", ast.Int(10)),
		ast.Expr(ast.Ident("number")),
	)

	result := mustEvaluate(t, program, nil)
	if got := result.Value.(*object.Integer).Value; got != 20 {
		t.Errorf("expected 20, got %d", got)
	}

	immutable := ast.NewProgram(
		ast.Let("count", ast.Int(0)),
		ast.AssignOp("count", "+=", ast.Int(1)),
	)
	expectKind(t, immutable, object.ImmutableAssignmentError)
}

func TestUninitializedBinding(t *testing.T) {
	read := ast.NewProgram(
		&ast.LetStatement{Pattern: ast.Ident("x"), TypeHint: "i32"},
		ast.Emit("Value of variable x {}", ast.Ident("x")),
		ast.Assign("x", ast.Int(100)),
	)
	expectKind(t, read, object.UninitializedReadError)

	deferred := ast.NewProgram(
		&ast.LetStatement{Pattern: ast.Ident("x"), TypeHint: "i32"},
		ast.Assign("x", ast.Int(100)),
		ast.Emit("Value of variable x after initialization {}", ast.Ident("x")),
	)
	result := mustEvaluate(t, deferred, nil)
	expectOutput(t, result, []string{"Value of variable x after initialization 100"})
}

func TestTupleDestructuring(t *testing.T) {
	program := ast.NewProgram(
		&ast.LetStatement{
			Pattern: ast.TuplePat("a", "b", "c"),
			Value:   ast.Tuple(ast.Int(10), ast.Float(3.142), ast.Str("Hello")),
		},
		ast.Emit("Value of a-{}, b-{}, c-{}", ast.Ident("a"), ast.Ident("b"), ast.Ident("c")),
	)
	result := mustEvaluate(t, program, nil)
	expectOutput(t, result, []string{"Value of a-10, b-3.142, c-Hello"})

	mismatch := ast.NewProgram(
		&ast.LetStatement{
			Pattern: ast.TuplePat("x", "y"),
			Value:   ast.Tuple(ast.Int(1), ast.Int(2), ast.Int(3)),
		},
	)
	expectKind(t, mismatch, object.TypeMismatchError)
}

func TestUnresolvedNameProducesNoOutput(t *testing.T) {
	program := ast.NewProgram(
		ast.Emit("before"),
		ast.Expr(ast.For("", ast.Ident("i"), ast.Range(ast.Int(1), ast.Int(3), true),
			ast.Emit("{}", ast.Ident("i")),
			ast.Block(
				ast.Emit("{}", ast.Ident("missing")),
			),
		)),
	)

	diag := expectKind(t, program, object.UnresolvedNameError)
	if diag.Name != "missing" {
		t.Errorf("expected name missing, got %q", diag.Name)
	}
	if diag.Depth != 3 {
		t.Errorf("expected depth 3 (root, iteration, block), got %d", diag.Depth)
	}
}

func TestConstants(t *testing.T) {
	constants := map[string]object.Object{
		"PI": &object.Float{Value: 3.14159},
		"E":  &object.Float{Value: 2.71828},
	}
	program := ast.NewProgram(
		ast.Let("radius", ast.Float(5.0)),
		ast.Expr(ast.Infix(ast.Infix(ast.Float(2.0), "*", ast.Ident("PI")), "*", ast.Ident("radius"))),
	)

	result := mustEvaluate(t, program, constants)
	f, ok := result.Value.(*object.Float)
	if !ok || f.Value < 31.4158 || f.Value > 31.416 {
		t.Errorf("expected circumference ~31.4159, got %s", result.Value.Inspect())
	}

	reassign := ast.NewProgram(ast.Assign("PI", ast.Float(3.0)))
	if _, err := Evaluate(reassign, constants); !object.IsKind(err, object.ImmutableAssignmentError) {
		t.Errorf("expected ImmutableAssignmentError, got %v", err)
	}

	declared := ast.NewProgram(
		ast.Const("MAX_POINTS", "u32", ast.Int(100000)),
		ast.Assign("MAX_POINTS", ast.Int(1)),
	)
	expectKind(t, declared, object.ImmutableAssignmentError)
}

func TestNestedIf(t *testing.T) {
	classify := func(n int64) string {
		program := ast.NewProgram(
			ast.Let("number", ast.Int(n)),
			ast.Expr(ast.If(
				ast.Infix(ast.Infix(ast.Ident("number"), "%", ast.Int(2)), "==", ast.Int(0)),
				ast.Block(ast.Expr(ast.If(
					ast.Infix(ast.Infix(ast.Ident("number"), "%", ast.Int(4)), "==", ast.Int(0)),
					ast.Block(ast.Expr(ast.Str("divisible by 4"))),
					ast.Block(ast.Expr(ast.Str("even"))),
				))),
				ast.Block(ast.Expr(ast.Str("odd"))),
			)),
		)
		return mustEvaluate(t, program, nil).Value.Inspect()
	}

	if got := classify(8); got != "divisible by 4" {
		t.Errorf("8: got %q", got)
	}
	if got := classify(6); got != "even" {
		t.Errorf("6: got %q", got)
	}
	if got := classify(7); got != "odd" {
		t.Errorf("7: got %q", got)
	}
}

func TestTypeErrors(t *testing.T) {
	tests := []struct {
		name    string
		program *ast.Program
		kind    object.ErrorKind
	}{
		{"int plus float", ast.NewProgram(ast.Expr(ast.Infix(ast.Int(1), "+", ast.Float(1)))), object.TypeMismatchError},
		{"non-bool condition", ast.NewProgram(ast.Expr(ast.If(ast.Int(1), ast.Block(), nil))), object.TypeMismatchError},
		{"division by zero", ast.NewProgram(ast.Expr(ast.Infix(ast.Int(1), "/", ast.Int(0)))), object.ArithmeticError},
		{"negate string", ast.NewProgram(ast.Expr(ast.Prefix("-", ast.Str("x")))), object.TypeMismatchError},
		{"emit arity", ast.NewProgram(ast.Emit("{} {}", ast.Int(1))), object.TypeMismatchError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectKind(t, tt.program, tt.kind)
		})
	}
}

func TestIntegerOverflow(t *testing.T) {
	maxInt, minInt := ast.Int(math.MaxInt64), ast.Int(math.MinInt64)
	tests := []struct {
		name string
		expr ast.Expression
	}{
		{"add", ast.Infix(maxInt, "+", ast.Int(1))},
		{"subtract", ast.Infix(minInt, "-", ast.Int(1))},
		{"multiply", ast.Infix(maxInt, "*", ast.Int(2))},
		{"multiply min by -1", ast.Infix(ast.Int(-1), "*", minInt)},
		{"divide min by -1", ast.Infix(minInt, "/", ast.Int(-1))},
		{"negate min", ast.Prefix("-", minInt)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectKind(t, ast.NewProgram(ast.Expr(tt.expr)), object.ArithmeticError)
		})
	}

	compound := ast.NewProgram(
		ast.LetMut("n", ast.Int(math.MaxInt64-1)),
		ast.AssignOp("n", "+=", ast.Int(1)),
		ast.AssignOp("n", "+=", ast.Int(1)),
	)
	expectKind(t, compound, object.ArithmeticError)

	edge := ast.NewProgram(ast.Expr(ast.Infix(ast.Infix(minInt, "+", maxInt), "*", ast.Int(-1))))
	result := mustEvaluate(t, edge, nil)
	if got := result.Value.(*object.Integer).Value; got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
}

func TestLogicalShortCircuit(t *testing.T) {
	// The right operand would fail to resolve if it were evaluated.
	program := ast.NewProgram(
		ast.Expr(ast.Infix(ast.Bool(false), "&&", ast.Ident("missing"))),
	)
	result := mustEvaluate(t, program, nil)
	if result.Value != object.FALSE {
		t.Errorf("expected false, got %s", result.Value.Inspect())
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	program := ast.NewProgram(
		ast.LetMut("sum", ast.Int(0)),
		ast.Expr(ast.For("", ast.Ident("i"), ast.Range(ast.Int(1), ast.Int(5), true),
			ast.AssignOp("sum", "+=", ast.Ident("i")),
			ast.Emit("{}", ast.Ident("sum")),
		)),
		ast.Expr(ast.Ident("sum")),
	)

	e := NewEvaluator(nil)
	first, err := e.Evaluate(program)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := e.Evaluate(program)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ between runs: %+v vs %+v", first, second)
	}

	failing := ast.NewProgram(ast.Emit("{}", ast.Ident("nope")))
	_, err1 := e.Evaluate(failing)
	_, err2 := e.Evaluate(failing)
	if err1 == nil || err2 == nil || err1.Error() != err2.Error() {
		t.Errorf("diagnostics differ between runs: %v vs %v", err1, err2)
	}
}

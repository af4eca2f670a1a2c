package lessons

import (
	"fmt"
	"scopecore/internal/ast"
	"scopecore/internal/object"
	"sort"
)

// Lesson is one teaching program. Defaults are constants declared in the
// root frame unless configuration supplies a value of the same name.
// Expect names the diagnostic the lesson is written to provoke.
type Lesson struct {
	Name        string
	Description string
	Program     *ast.Program
	Defaults    map[string]object.Object
	Expect      object.ErrorKind
}

// Constants merges configured values over the lesson defaults.
func (l Lesson) Constants(configured map[string]object.Object) map[string]object.Object {
	if len(l.Defaults) == 0 && len(configured) == 0 {
		return nil
	}
	merged := make(map[string]object.Object, len(l.Defaults)+len(configured))
	for name, val := range l.Defaults {
		merged[name] = val
	}
	for name, val := range configured {
		merged[name] = val
	}
	return merged
}

func at(line, column int, s *ast.AssignStatement) *ast.AssignStatement {
	s.Position = ast.Position{Line: line, Column: column}
	return s
}

func ref(line, column int, name string) *ast.Identifier {
	return &ast.Identifier{Position: ast.Position{Line: line, Column: column}, Value: name}
}

var catalogue = []Lesson{
	{
		Name:        "shadowing",
		Description: "redeclaring a name in the same block, including with a different type",
		Program: ast.NewProgram(
			ast.Let("x", ast.Int(100)),
			ast.Emit("Value of variable x {}", ast.Ident("x")),
			ast.Let("x", ast.Infix(ast.Ident("x"), "+", ast.Int(1))),
			ast.Emit("Value of x after shadowing {}", ast.Ident("x")),
			ast.Let("x", ast.Str("Welcome to rust trainig..")),
			ast.Emit("X shadowed all together differnt type {}", ast.Ident("x")),
		),
	},
	{
		Name:        "scope-shadowing",
		Description: "inner blocks shadow a name only until they exit",
		Program: ast.NewProgram(
			ast.Let("x", ast.Int(100)),
			ast.Block(
				ast.Let("x", ast.Int(500)),
				ast.Emit("Value of variable x inside the scope{}", ast.Ident("x")),
				ast.Block(
					ast.Let("x", ast.Infix(ast.Ident("x"), "+", ast.Int(10))),
					ast.Emit("Value of x inside inner scope {}", ast.Ident("x")),
				),
				ast.Emit("Value of variable x after executing inner scope inside the scope{}", ast.Ident("x")),
			),
			ast.Emit("Value of x {}", ast.Ident("x")),
			ast.Let("s", ast.Int(100)),
			ast.Block(
				ast.Let("s", ast.Str("We have shadowed s to a string")),
				ast.Emit("Shadowed value of s{}", ast.Ident("s")),
			),
			ast.Emit("Value of s {}", ast.Ident("s")),
		),
	},
	{
		Name:        "mutable",
		Description: "a mutable binding accepts reassignment",
		Program: ast.NewProgram(
			ast.LetMut("x", ast.Int(100)),
			ast.Emit("Value of variable x {}", ast.Ident("x")),
			ast.Assign("x", ast.Int(500)),
			ast.Emit("Value of variable x {}, after mutation", ast.Ident("x")),
		),
	},
	{
		Name:        "immutability",
		Description: "assigning to an immutable binding is rejected",
		Program: ast.NewProgram(
			ast.Let("x", ast.Int(100)),
			ast.Emit("Value of x {}", ast.Ident("x")),
			at(14, 5, ast.Assign("x", ast.Int(500))),
			ast.Emit("Value of x after chainging {}", ast.Ident("x")),
		),
		Expect: object.ImmutableAssignmentError,
	},
	{
		Name:        "mutable-shadowing",
		Description: "shadowing switches mutability in both directions",
		Program: ast.NewProgram(
			ast.Let("x", ast.Int(100)),
			ast.Emit("Value of x is {}", ast.Ident("x")),
			ast.LetMut("x", ast.Ident("x")),
			ast.Emit("Value of mutable x {}", ast.Ident("x")),
			ast.Assign("x", ast.Int(500)),
			ast.Emit("Value x {}, after the mutation ", ast.Ident("x")),
			ast.Let("x", ast.Ident("x")),
			ast.Emit("Value of immutable x {}", ast.Ident("x")),
			at(24, 5, ast.Assign("x", ast.Int(1000))),
			ast.Emit("[]Value of immutable x {}", ast.Ident("x")),
		),
		Expect: object.ImmutableAssignmentError,
	},
	{
		Name:        "uninitialized",
		Description: "reading a declared but unassigned binding is rejected",
		Program: ast.NewProgram(
			&ast.LetStatement{Pattern: ast.Ident("x"), TypeHint: "i32"},
			ast.Emit("Value of variable x {}", ref(10, 40, "x")),
			ast.Assign("x", ast.Int(100)),
			ast.Emit("Value of variable x after initialixation {}", ast.Ident("x")),
		),
		Expect: object.UninitializedReadError,
	},
	{
		Name:        "deferred-init",
		Description: "an immutable binding declared without a value is initialised by its first assignment",
		Program: ast.NewProgram(
			&ast.LetStatement{Pattern: ast.Ident("x"), TypeHint: "i32"},
			ast.Assign("x", ast.Int(100)),
			ast.Emit("Value of variable x after initialixation {}", ast.Ident("x")),
		),
	},
	{
		Name:        "multiple-declaration",
		Description: "tuple patterns declare several bindings at once",
		Program: ast.NewProgram(
			&ast.LetStatement{Pattern: ast.TuplePat("x", "y", "z"), Value: ast.Tuple(ast.Int(10), ast.Int(20), ast.Int(30))},
			ast.Emit("Value of x-{}, y-{}, z-{}", ast.Ident("x"), ast.Ident("y"), ast.Ident("z")),
			&ast.LetStatement{Pattern: ast.TuplePat("a", "b", "c"), Value: ast.Tuple(ast.Int(10), ast.Float(3.142), ast.Str("Hello"))},
			ast.Emit("Value of a-{}, b-{}, c-{}", ast.Ident("a"), ast.Ident("b"), ast.Ident("c")),
		),
	},
	{
		Name:        "type-annotation",
		Description: "annotated declarations behave like inferred ones",
		Program: ast.NewProgram(
			&ast.LetStatement{Pattern: ast.Ident("x"), TypeHint: "i32", Value: ast.Int(42)},
			ast.Emit("The value of x is: {}", ast.Ident("x")),
			&ast.LetStatement{Pattern: ast.Ident("y"), TypeHint: "f64", Value: ast.Float(3.14)},
			ast.Emit("The value of y is: {}", ast.Ident("y")),
			&ast.LetStatement{Pattern: ast.Ident("greeting"), TypeHint: "&str", Value: ast.Str("Hello, Rust!")},
			ast.Emit("{}", ast.Ident("greeting")),
		),
	},
	{
		Name:        "nested-if",
		Description: "if expressions nest and each branch has its own scope",
		Program: ast.NewProgram(
			ast.Let("number", ast.Int(8)),
			ast.Expr(ast.If(
				ast.Infix(ast.Infix(ast.Ident("number"), "%", ast.Int(2)), "==", ast.Int(0)),
				ast.Block(ast.Expr(ast.If(
					ast.Infix(ast.Infix(ast.Ident("number"), "%", ast.Int(4)), "==", ast.Int(0)),
					ast.Block(ast.Emit("The number is divisible by 4.")),
					ast.Block(ast.Emit("The number is even but not divisible by 4.")),
				))),
				ast.Block(ast.Emit("The number is odd.")),
			)),
		),
	},
	{
		Name:        "loop",
		Description: "an unconditional loop left with break",
		Program: ast.NewProgram(
			ast.LetMut("count", ast.Int(0)),
			ast.Expr(ast.Loop("",
				ast.AssignOp("count", "+=", ast.Int(1)),
				ast.Emit("Count: {}", ast.Ident("count")),
				ast.Expr(ast.If(ast.Infix(ast.Ident("count"), "==", ast.Int(3)), ast.Block(ast.Break("", nil)), nil)),
			)),
		),
	},
	{
		Name:        "while",
		Description: "a guarded loop",
		Program: ast.NewProgram(
			ast.LetMut("number", ast.Int(3)),
			ast.Expr(ast.While("", ast.Infix(ast.Ident("number"), ">", ast.Int(0)),
				ast.Emit("Number: {}", ast.Ident("number")),
				ast.AssignOp("number", "-=", ast.Int(1)),
			)),
		),
	},
	{
		Name:        "for-range",
		Description: "iterating an inclusive range",
		Program: ast.NewProgram(
			ast.Expr(ast.For("", ast.Ident("i"), ast.Range(ast.Int(1), ast.Int(5), true),
				ast.Emit("Iteration: {}", ast.Ident("i")),
			)),
		),
	},
	{
		Name:        "nested-loop",
		Description: "an inner loop runs fully for each outer iteration",
		Program: ast.NewProgram(
			ast.Expr(ast.For("", ast.Ident("i"), ast.Range(ast.Int(1), ast.Int(3), true),
				ast.Emit("Outer loop iteration: {}", ast.Ident("i")),
				ast.Expr(ast.For("", ast.Ident("j"), ast.Range(ast.Int(1), ast.Int(2), true),
					ast.Emit("Inner loop iteration: {}", ast.Ident("j")),
				)),
			)),
		),
	},
	{
		Name:        "nested-loop-break",
		Description: "a labeled break leaves both loops",
		Program: ast.NewProgram(
			ast.Expr(ast.For("outer", ast.Ident("i"), ast.Range(ast.Int(1), ast.Int(3), true),
				ast.Emit("Outer loop iteration: {}", ast.Ident("i")),
				ast.Expr(ast.For("", ast.Ident("j"), ast.Range(ast.Int(1), ast.Int(2), true),
					ast.Emit("Inner loop iteration: {}", ast.Ident("j")),
					ast.Expr(ast.If(
						ast.Infix(
							ast.Infix(ast.Ident("i"), "==", ast.Int(2)),
							"&&",
							ast.Infix(ast.Ident("j"), "==", ast.Int(2)),
						),
						ast.Block(ast.Break("outer", nil)),
						nil,
					)),
				)),
			)),
		),
	},
	{
		Name:        "loop-value",
		Description: "break carries the value of a loop expression",
		Program: ast.NewProgram(
			ast.LetMut("sum", ast.Int(0)),
			ast.Let("result", ast.Loop("",
				ast.AssignOp("sum", "+=", ast.Int(1)),
				ast.Expr(ast.If(
					ast.Infix(ast.Ident("sum"), "==", ast.Int(5)),
					ast.Block(ast.Break("", ast.Infix(ast.Ident("sum"), "*", ast.Int(2)))),
					nil,
				)),
			)),
			ast.Emit("Result from loop: {}", ast.Ident("result")),
			ast.Expr(ast.Ident("result")),
		),
	},
	{
		Name:        "fibonacci",
		Description: "per-iteration bindings and outer mutable state",
		Program: ast.NewProgram(
			ast.Let("n", ast.Int(10)),
			ast.LetMut("prev", ast.Int(0)),
			ast.LetMut("curr", ast.Int(1)),
			ast.Expr(ast.For("", ast.Wildcard(), ast.Range(ast.Int(2), ast.Ident("n"), true),
				ast.Let("next", ast.Infix(ast.Ident("prev"), "+", ast.Ident("curr"))),
				ast.Emit("{}", ast.Ident("curr")),
				ast.Assign("prev", ast.Ident("curr")),
				ast.Assign("curr", ast.Ident("next")),
			)),
			ast.Emit("{}", ast.Ident("curr")),
			ast.Expr(ast.Ident("curr")),
		),
	},
	{
		Name:        "constants",
		Description: "PI and E are root constants unless configuration overrides them",
		Program: ast.NewProgram(
			ast.Let("radius", ast.Float(5.0)),
			ast.Let("circumference", ast.Infix(ast.Infix(ast.Float(2.0), "*", ast.Ident("PI")), "*", ast.Ident("radius"))),
			ast.Let("exponential", ast.Infix(ast.Ident("E"), "*", ast.Ident("E"))),
			ast.Emit("Circumference: {}", ast.Ident("circumference")),
			ast.Emit("Exponential of E: {}", ast.Ident("exponential")),
		),
		Defaults: map[string]object.Object{
			"PI": &object.Float{Value: 3.14159},
			"E":  &object.Float{Value: 2.71828},
		},
	},
	{
		Name:        "config-parameters",
		Description: "integer constants read like any other binding",
		Program: ast.NewProgram(
			ast.Emit("Maximum points allowed: {}", ast.Ident("MAX_POINTS")),
			ast.Emit("Connecting to server with timeout: {} seconds", ast.Ident("DEFAULT_TIMEOUT")),
		),
		Defaults: map[string]object.Object{
			"MAX_POINTS":      &object.Integer{Value: 100000},
			"DEFAULT_TIMEOUT": &object.Integer{Value: 30},
		},
	},
	{
		Name:        "file-paths",
		Description: "string constants declared in the program",
		Program: ast.NewProgram(
			ast.Const("CONFIG_FILE_PATH", "&str", ast.Str("/etc/myapp/config.json")),
			ast.Const("DATA_DIR_PATH", "&str", ast.Str("/var/lib/myapp/data/")),
			ast.Emit("Reading configuration from: {}", ast.Ident("CONFIG_FILE_PATH")),
			ast.Emit("Processing data files from: {}", ast.Ident("DATA_DIR_PATH")),
		),
	},
	{
		Name:        "conversion-constants",
		Description: "float constants used in unit conversions",
		Program: ast.NewProgram(
			ast.Const("M_TO_CM_RATIO", "f64", ast.Float(100.0)),
			ast.Const("KG_TO_G_RATIO", "f64", ast.Float(1000.0)),
			ast.Let("length_m", ast.Float(2.5)),
			ast.Let("weight_kg", ast.Float(1.8)),
			ast.Emit("Length in centimeters: {}", ast.Infix(ast.Ident("length_m"), "*", ast.Ident("M_TO_CM_RATIO"))),
			ast.Emit("Weight in grams: {}", ast.Infix(ast.Ident("weight_kg"), "*", ast.Ident("KG_TO_G_RATIO"))),
		),
	},
}

// All returns the catalogue in declaration order.
func All() []Lesson {
	out := make([]Lesson, len(catalogue))
	copy(out, catalogue)
	return out
}

func Names() []string {
	names := make([]string, len(catalogue))
	for i, l := range catalogue {
		names[i] = l.Name
	}
	sort.Strings(names)
	return names
}

func Find(name string) (Lesson, error) {
	for _, l := range catalogue {
		if l.Name == name {
			return l, nil
		}
	}
	return Lesson{}, fmt.Errorf("unknown lesson %q", name)
}

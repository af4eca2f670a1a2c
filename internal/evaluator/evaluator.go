package evaluator

import (
	"errors"
	"log/slog"
	"scopecore/internal/ast"
	"scopecore/internal/object"
	"sort"
	"strings"
)

// Result is the outcome of a successful evaluation.
type Result struct {
	Value  object.Object
	Output []string
}

type Evaluator struct {
	// Constants are declared as immutable bindings in the root frame before
	// the program runs.
	Constants map[string]object.Object

	scopes *object.ScopeStack
	loops  []string // labels of the active loops, innermost last
	output []string
}

func NewEvaluator(constants map[string]object.Object) *Evaluator {
	return &Evaluator{Constants: constants}
}

// Evaluate runs program with a fresh evaluator.
func Evaluate(program *ast.Program, constants map[string]object.Object) (*Result, error) {
	return NewEvaluator(constants).Evaluate(program)
}

// Evaluate runs program to completion and returns its final value and output,
// or the single diagnostic that aborted it. No state survives between calls.
func (e *Evaluator) Evaluate(program *ast.Program) (*Result, error) {
	e.scopes = object.NewScopeStack()
	e.loops = nil
	e.output = nil

	e.scopes.EnterBlock()
	names := make([]string, 0, len(e.Constants))
	for name := range e.Constants {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		e.scopes.Declare(name, e.Constants[name], false, ast.Position{})
	}

	slog.Debug("evaluation start",
		slog.Int("statements", len(program.Statements)),
		slog.Int("constants", len(names)))

	result := e.exitBlock(e.evalStatements(program.Statements))

	switch result := result.(type) {
	case *object.Error:
		slog.Debug("evaluation failed", slog.String("kind", string(result.Kind)))
		return nil, result
	case *object.BreakSignal:
		return nil, unmatchedLabel("break", result.Label)
	case *object.ContinueSignal:
		return nil, unmatchedLabel("continue", result.Label)
	}

	if e.scopes.Depth() != 0 {
		return nil, object.NewError(object.EmptyStackError, "%d frame(s) left active after evaluation", e.scopes.Depth())
	}

	return &Result{Value: result, Output: e.output}, nil
}

func (e *Evaluator) Eval(node ast.Node) object.Object {
	switch node := node.(type) {

	// Statements
	case *ast.Program:
		return e.evalStatements(node.Statements)

	case *ast.BlockStatement:
		return e.evalBlockStatement(node)

	case *ast.ExpressionStatement:
		return e.Eval(node.Expression)

	case *ast.LetStatement:
		return e.evalLetStatement(node)

	case *ast.ConstStatement:
		val := e.Eval(node.Value)
		if isSignal(val) {
			return val
		}
		e.scopes.Declare(node.Name.Value, val, false, node.Pos())
		return nil

	case *ast.AssignStatement:
		return e.evalAssignStatement(node)

	case *ast.BreakStatement:
		return e.evalBreakStatement(node)

	case *ast.ContinueStatement:
		if err := e.checkLabel("continue", node.Label); err != nil {
			return err.At(node.Pos())
		}
		return &object.ContinueSignal{Label: node.Label}

	case *ast.EmitStatement:
		return e.evalEmitStatement(node)

	// Expressions
	case *ast.IntegerLiteral:
		return &object.Integer{Value: node.Value}

	case *ast.FloatLiteral:
		return &object.Float{Value: node.Value}

	case *ast.StringLiteral:
		return &object.String{Value: node.Value}

	case *ast.Boolean:
		return object.NativeBool(node.Value)

	case *ast.UnitLiteral:
		return object.UNIT

	case *ast.TupleLiteral:
		elements := make([]object.Object, len(node.Elements))
		for i, el := range node.Elements {
			val := e.Eval(el)
			if isSignal(val) {
				return val
			}
			elements[i] = val
		}
		return &object.Tuple{Elements: elements}

	case *ast.Identifier:
		return e.evalIdentifier(node)

	case *ast.PrefixExpression:
		right := e.Eval(node.Right)
		if isSignal(right) {
			return right
		}
		return atPos(e.evalPrefixExpression(node.Operator, right), node.Pos())

	case *ast.InfixExpression:
		if node.Operator == "&&" || node.Operator == "||" {
			return e.evalLogicalExpression(node)
		}

		left := e.Eval(node.Left)
		if isSignal(left) {
			return left
		}

		right := e.Eval(node.Right)
		if isSignal(right) {
			return right
		}

		return atPos(e.evalInfixExpression(node.Operator, left, right), node.Pos())

	case *ast.RangeExpression:
		return e.evalRangeExpression(node)

	case *ast.IfExpression:
		return e.evalIfExpression(node)

	case *ast.LoopExpression:
		return e.evalLoopExpression(node)

	case *ast.WhileExpression:
		return e.evalWhileExpression(node)

	case *ast.ForExpression:
		return e.evalForExpression(node)
	}

	return nil
}

// evalStatements runs statements in the current frame, stopping at the first
// error or control signal. The value is that of a trailing expression
// statement, otherwise unit.
func (e *Evaluator) evalStatements(statements []ast.Statement) object.Object {
	var result object.Object = object.UNIT

	for i, statement := range statements {
		val := e.Eval(statement)
		if isSignal(val) {
			return val
		}
		if i == len(statements)-1 {
			if _, ok := statement.(*ast.ExpressionStatement); ok && val != nil {
				result = val
			}
		}
	}

	return result
}

func (e *Evaluator) evalBlockStatement(block *ast.BlockStatement) (result object.Object) {
	e.scopes.EnterBlock()
	defer func() { result = e.exitBlock(result) }()

	return e.evalStatements(block.Statements)
}

// exitBlock pops the innermost frame. A failed pop replaces the result unless
// the result is already an error.
func (e *Evaluator) exitBlock(result object.Object) object.Object {
	if err := e.scopes.ExitBlock(); err != nil {
		if isError(result) {
			return result
		}
		return toError(err)
	}
	return result
}

func (e *Evaluator) evalLetStatement(node *ast.LetStatement) object.Object {
	if node.Value == nil {
		for _, name := range node.Pattern.Names() {
			e.scopes.Declare(name.Value, object.BINDING_UNINITIALIZED, node.Mutable, name.Pos())
		}
		return nil
	}

	val := e.Eval(node.Value)
	if isSignal(val) {
		return val
	}
	if err := e.bindPattern(node.Pattern, val, node.Mutable); err != nil {
		return err
	}
	return nil
}

// bindPattern declares the names of pattern in the current frame.
func (e *Evaluator) bindPattern(pattern ast.Pattern, val object.Object, mutable bool) *object.Error {
	switch p := pattern.(type) {
	case *ast.Identifier:
		e.scopes.Declare(p.Value, val, mutable, p.Pos())
	case *ast.WildcardPattern:
	case *ast.TuplePattern:
		tuple, ok := val.(*object.Tuple)
		if !ok {
			return object.NewError(object.TypeMismatchError, "cannot destructure %s into %s", val.Type(), p.String()).At(p.Pos())
		}
		if len(tuple.Elements) != len(p.Elements) {
			return object.NewError(object.TypeMismatchError, "expected a tuple with %d elements, found one with %d elements",
				len(p.Elements), len(tuple.Elements)).At(p.Pos())
		}
		for i, el := range p.Elements {
			if err := e.bindPattern(el, tuple.Elements[i], mutable); err != nil {
				return err
			}
		}
	default:
		return object.NewError(object.TypeMismatchError, "unsupported pattern %T", pattern).At(pattern.Pos())
	}
	return nil
}

func (e *Evaluator) evalAssignStatement(node *ast.AssignStatement) object.Object {
	val := e.Eval(node.Value)
	if isSignal(val) {
		return val
	}

	if op := strings.TrimSuffix(node.Operator, "="); op != "" {
		current := e.evalIdentifier(node.Name)
		if isError(current) {
			return current
		}
		val = e.evalInfixExpression(op, current, val)
		if isError(val) {
			return atPos(val, node.Pos())
		}
	}

	if err := e.scopes.Assign(node.Name.Value, val, node.Pos()); err != nil {
		return toError(err).At(node.Pos())
	}
	return nil
}

func (e *Evaluator) evalIdentifier(node *ast.Identifier) object.Object {
	binding, err := e.scopes.Resolve(node.Value)
	if err != nil {
		return toError(err).At(node.Pos())
	}
	if !binding.IsInitialized() {
		return &object.Error{
			Kind:     object.UninitializedReadError,
			Message:  "used binding `" + node.Value + "` isn't initialized",
			Name:     node.Value,
			Depth:    e.scopes.Depth(),
			Position: node.Pos(),
		}
	}
	return binding.Value
}

func (e *Evaluator) evalIfExpression(ie *ast.IfExpression) object.Object {
	condition := e.Eval(ie.Condition)
	if isSignal(condition) {
		return condition
	}

	b, ok := condition.(*object.Boolean)
	if !ok {
		return object.NewError(object.TypeMismatchError, "expected `bool` condition, found %s", condition.Type()).At(ie.Condition.Pos())
	}

	if b.Value {
		return e.Eval(ie.ThenBranch)
	} else if ie.ElseBranch != nil {
		return e.Eval(ie.ElseBranch)
	}
	return object.UNIT
}

func (e *Evaluator) evalEmitStatement(node *ast.EmitStatement) object.Object {
	args := make([]string, len(node.Arguments))
	for i, arg := range node.Arguments {
		val := e.Eval(arg)
		if isSignal(val) {
			return val
		}
		args[i] = val.Inspect()
	}

	line, err := formatLine(node.Format, args)
	if err != nil {
		return err.At(node.Pos())
	}
	e.output = append(e.output, line)
	return nil
}

func formatLine(format string, args []string) (string, *object.Error) {
	if format == "" {
		return strings.Join(args, " "), nil
	}
	if n := strings.Count(format, "{}"); n != len(args) {
		return "", object.NewError(object.TypeMismatchError, "format string has %d placeholder(s) but %d argument(s) were supplied", n, len(args))
	}

	var out strings.Builder
	rest := format
	for _, arg := range args {
		i := strings.Index(rest, "{}")
		out.WriteString(rest[:i])
		out.WriteString(arg)
		rest = rest[i+2:]
	}
	out.WriteString(rest)
	return out.String(), nil
}

func isError(obj object.Object) bool {
	if obj != nil {
		return obj.Type() == object.ERROR_OBJ
	}
	return false
}

// isSignal reports whether obj must stop the evaluation of the current
// statement list: an error or a break/continue signal.
func isSignal(obj object.Object) bool {
	if obj == nil {
		return false
	}
	switch obj.Type() {
	case object.ERROR_OBJ, object.BREAK_OBJ, object.CONTINUE_OBJ:
		return true
	}
	return false
}

func atPos(obj object.Object, pos ast.Position) object.Object {
	if err, ok := obj.(*object.Error); ok {
		return err.At(pos)
	}
	return obj
}

func toError(err error) *object.Error {
	var diag *object.Error
	if errors.As(err, &diag) {
		return diag
	}
	return object.NewError(object.TypeMismatchError, "%s", err.Error())
}

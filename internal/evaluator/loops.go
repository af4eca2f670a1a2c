package evaluator

import (
	"log/slog"
	"scopecore/internal/ast"
	"scopecore/internal/object"
)

func (e *Evaluator) enterLoop(label string) {
	e.loops = append(e.loops, label)
	slog.Debug("loop start", slog.String("label", label), slog.Int("nesting", len(e.loops)))
}

func (e *Evaluator) exitLoop() {
	e.loops = e.loops[:len(e.loops)-1]
}

// checkLabel verifies that a break or continue has a loop to land on.
func (e *Evaluator) checkLabel(keyword, label string) *object.Error {
	if len(e.loops) == 0 {
		return unmatchedLabel(keyword, label)
	}
	if label == "" {
		return nil
	}
	for i := len(e.loops) - 1; i >= 0; i-- {
		if e.loops[i] == label {
			return nil
		}
	}
	return unmatchedLabel(keyword, label)
}

func unmatchedLabel(keyword, label string) *object.Error {
	if label == "" {
		return &object.Error{
			Kind:    object.UnmatchedLabelError,
			Message: "`" + keyword + "` outside of a loop",
		}
	}
	return &object.Error{
		Kind:    object.UnmatchedLabelError,
		Message: "use of undeclared label `'" + label + "`",
		Label:   label,
	}
}

func (e *Evaluator) evalBreakStatement(node *ast.BreakStatement) object.Object {
	if err := e.checkLabel("break", node.Label); err != nil {
		return err.At(node.Pos())
	}

	var val object.Object
	if node.Value != nil {
		val = e.Eval(node.Value)
		if isSignal(val) {
			return val
		}
	}
	return &object.BreakSignal{Label: node.Label, Value: val}
}

// targets reports whether a signal carrying signalLabel stops at the loop
// declared with label. Only the innermost loop sees an unlabeled signal first.
func targets(label, signalLabel string) bool {
	return signalLabel == "" || signalLabel == label
}

// settle decides what the loop declared with label does with the outcome of
// one iteration. done is false when the loop moves on to its next iteration;
// otherwise val is the loop's value or the signal to re-propagate.
func settle(label string, outcome object.Object) (val object.Object, done bool) {
	switch sig := outcome.(type) {
	case *object.BreakSignal:
		if !targets(label, sig.Label) {
			return sig, true
		}
		if sig.Value == nil {
			return object.UNIT, true
		}
		return sig.Value, true
	case *object.ContinueSignal:
		if !targets(label, sig.Label) {
			return sig, true
		}
		return nil, false
	case *object.Error:
		return sig, true
	}
	return nil, false
}

// evalIteration runs one loop body in its own frame. bind, when set, declares
// the iteration variables before the body runs. The frame is popped on every
// exit path.
func (e *Evaluator) evalIteration(body *ast.BlockStatement, bind func() *object.Error) (result object.Object) {
	e.scopes.EnterBlock()
	defer func() { result = e.exitBlock(result) }()

	if bind != nil {
		if err := bind(); err != nil {
			return err
		}
	}
	return e.evalStatements(body.Statements)
}

// evalLoopExpression repeats the body until a break targets this loop. A loop
// with no reachable break does not terminate.
func (e *Evaluator) evalLoopExpression(node *ast.LoopExpression) object.Object {
	e.enterLoop(node.Label)
	defer e.exitLoop()

	for iteration := 1; ; iteration++ {
		outcome := e.evalIteration(node.Body, nil)
		if val, done := settle(node.Label, outcome); done {
			slog.Debug("loop exit", slog.String("label", node.Label), slog.Int("iterations", iteration))
			return val
		}
	}
}

// evalWhileExpression evaluates the guard in the enclosing loop context, like a
// for iterable: a break or continue inside the guard never targets this loop.
func (e *Evaluator) evalWhileExpression(node *ast.WhileExpression) object.Object {
	for iteration := 0; ; iteration++ {
		guard := e.Eval(node.Condition)
		if isSignal(guard) {
			return guard
		}

		b, ok := guard.(*object.Boolean)
		if !ok {
			return object.NewError(object.TypeMismatchError, "expected `bool` loop condition, found %s", guard.Type()).At(node.Condition.Pos())
		}
		if !b.Value {
			slog.Debug("loop exit", slog.String("label", node.Label), slog.Int("iterations", iteration))
			return object.UNIT
		}

		e.enterLoop(node.Label)
		outcome := e.evalIteration(node.Body, nil)
		e.exitLoop()
		if val, done := settle(node.Label, outcome); done {
			return val
		}
	}
}

func (e *Evaluator) evalForExpression(node *ast.ForExpression) object.Object {
	// The iterable belongs to the enclosing scope: a break inside it targets
	// an outer loop, not this one.
	iterable := e.Eval(node.Iterable)
	if isSignal(iterable) {
		return iterable
	}
	seq, ok := iterable.(object.Iterable)
	if !ok {
		return object.NewError(object.TypeMismatchError, "`%s` is not an iterator", iterable.Type()).At(node.Iterable.Pos())
	}

	e.enterLoop(node.Label)
	defer e.exitLoop()

	for i := 0; i < seq.Len(); i++ {
		element := seq.At(i)
		outcome := e.evalIteration(node.Body, func() *object.Error {
			return e.bindPattern(node.Pattern, element, false)
		})
		if val, done := settle(node.Label, outcome); done {
			return val
		}
	}

	slog.Debug("loop exit", slog.String("label", node.Label), slog.Int("iterations", seq.Len()))
	return object.UNIT
}

func (e *Evaluator) evalRangeExpression(node *ast.RangeExpression) object.Object {
	start := e.Eval(node.Start)
	if isSignal(start) {
		return start
	}
	end := e.Eval(node.End)
	if isSignal(end) {
		return end
	}

	s, ok := start.(*object.Integer)
	if !ok {
		return object.NewError(object.TypeMismatchError, "range start must be an integer, found %s", start.Type()).At(node.Start.Pos())
	}
	en, ok := end.(*object.Integer)
	if !ok {
		return object.NewError(object.TypeMismatchError, "range end must be an integer, found %s", end.Type()).At(node.End.Pos())
	}
	rng := &object.Range{Start: s.Value, End: en.Value, Inclusive: node.Inclusive}
	if _, ok := rng.Count(); !ok {
		return object.NewError(object.ArithmeticError, "range %s has more elements than can be iterated", rng.Inspect()).At(node.Pos())
	}
	return rng
}

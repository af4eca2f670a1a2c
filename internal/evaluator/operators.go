package evaluator

import (
	"math"
	"scopecore/internal/ast"
	"scopecore/internal/object"
)

func (e *Evaluator) evalPrefixExpression(operator string, right object.Object) object.Object {
	switch operator {
	case "!":
		if b, ok := right.(*object.Boolean); ok {
			return object.NativeBool(!b.Value)
		}
	case "-":
		switch r := right.(type) {
		case *object.Integer:
			if r.Value == math.MinInt64 {
				return object.NewError(object.ArithmeticError, "attempt to negate %d with overflow", r.Value)
			}
			return &object.Integer{Value: -r.Value}
		case *object.Float:
			return &object.Float{Value: -r.Value}
		}
	}
	return object.NewError(object.TypeMismatchError, "cannot apply unary operator `%s` to %s", operator, right.Type())
}

// evalLogicalExpression short-circuits && and ||.
func (e *Evaluator) evalLogicalExpression(node *ast.InfixExpression) object.Object {
	left := e.Eval(node.Left)
	if isSignal(left) {
		return left
	}
	l, ok := left.(*object.Boolean)
	if !ok {
		return object.NewError(object.TypeMismatchError, "expected `bool` operand for `%s`, found %s", node.Operator, left.Type()).At(node.Left.Pos())
	}
	if (node.Operator == "&&" && !l.Value) || (node.Operator == "||" && l.Value) {
		return l
	}

	right := e.Eval(node.Right)
	if isSignal(right) {
		return right
	}
	r, ok := right.(*object.Boolean)
	if !ok {
		return object.NewError(object.TypeMismatchError, "expected `bool` operand for `%s`, found %s", node.Operator, right.Type()).At(node.Right.Pos())
	}
	return r
}

func (e *Evaluator) evalInfixExpression(
	operator string,
	left, right object.Object,
) object.Object {
	switch {
	case left.Type() == object.INTEGER_OBJ && right.Type() == object.INTEGER_OBJ:
		return e.evalIntegerInfixExpression(operator, left.(*object.Integer).Value, right.(*object.Integer).Value)
	case left.Type() == object.FLOAT_OBJ && right.Type() == object.FLOAT_OBJ:
		return e.evalFloatInfixExpression(operator, left.(*object.Float).Value, right.(*object.Float).Value)
	case left.Type() == object.STRING_OBJ && right.Type() == object.STRING_OBJ:
		return e.evalStringInfixExpression(operator, left.(*object.String).Value, right.(*object.String).Value)
	case left.Type() == object.BOOLEAN_OBJ && right.Type() == object.BOOLEAN_OBJ:
		l, r := left.(*object.Boolean).Value, right.(*object.Boolean).Value
		switch operator {
		case "==":
			return object.NativeBool(l == r)
		case "!=":
			return object.NativeBool(l != r)
		}
	case left.Type() == object.UNIT_OBJ && right.Type() == object.UNIT_OBJ:
		switch operator {
		case "==":
			return object.TRUE
		case "!=":
			return object.FALSE
		}
	case left.Type() != right.Type():
		return object.NewError(object.TypeMismatchError, "mismatched types: %s %s %s",
			left.Type(), operator, right.Type())
	}
	return object.NewError(object.TypeMismatchError, "unknown operator: %s %s %s",
		left.Type(), operator, right.Type())
}

func overflow(op string, l, r int64) *object.Error {
	return object.NewError(object.ArithmeticError, "attempt to %s %d and %d with overflow", op, l, r)
}

func (e *Evaluator) evalIntegerInfixExpression(operator string, l, r int64) object.Object {
	switch operator {
	case "+":
		sum := l + r
		if (l^sum)&(r^sum) < 0 {
			return overflow("add", l, r)
		}
		return &object.Integer{Value: sum}
	case "-":
		diff := l - r
		if (l^r)&(l^diff) < 0 {
			return overflow("subtract", l, r)
		}
		return &object.Integer{Value: diff}
	case "*":
		product := l * r
		if l != 0 && (product/l != r || (l == -1 && r == math.MinInt64)) {
			return overflow("multiply", l, r)
		}
		return &object.Integer{Value: product}
	case "/":
		if r == 0 {
			return object.NewError(object.ArithmeticError, "attempt to divide by zero")
		}
		if l == math.MinInt64 && r == -1 {
			return overflow("divide", l, r)
		}
		return &object.Integer{Value: l / r}
	case "%":
		if r == 0 {
			return object.NewError(object.ArithmeticError, "attempt to calculate the remainder with a divisor of zero")
		}
		return &object.Integer{Value: l % r}
	case "<":
		return object.NativeBool(l < r)
	case "<=":
		return object.NativeBool(l <= r)
	case ">":
		return object.NativeBool(l > r)
	case ">=":
		return object.NativeBool(l >= r)
	case "==":
		return object.NativeBool(l == r)
	case "!=":
		return object.NativeBool(l != r)
	}
	return object.NewError(object.TypeMismatchError, "unknown operator: INTEGER %s INTEGER", operator)
}

func (e *Evaluator) evalFloatInfixExpression(operator string, l, r float64) object.Object {
	switch operator {
	case "+":
		return &object.Float{Value: l + r}
	case "-":
		return &object.Float{Value: l - r}
	case "*":
		return &object.Float{Value: l * r}
	case "/":
		return &object.Float{Value: l / r}
	case "%":
		return &object.Float{Value: math.Mod(l, r)}
	case "<":
		return object.NativeBool(l < r)
	case "<=":
		return object.NativeBool(l <= r)
	case ">":
		return object.NativeBool(l > r)
	case ">=":
		return object.NativeBool(l >= r)
	case "==":
		return object.NativeBool(l == r)
	case "!=":
		return object.NativeBool(l != r)
	}
	return object.NewError(object.TypeMismatchError, "unknown operator: FLOAT %s FLOAT", operator)
}

func (e *Evaluator) evalStringInfixExpression(operator string, l, r string) object.Object {
	switch operator {
	case "+":
		return &object.String{Value: l + r}
	case "==":
		return object.NativeBool(l == r)
	case "!=":
		return object.NativeBool(l != r)
	case "<":
		return object.NativeBool(l < r)
	case ">":
		return object.NativeBool(l > r)
	}
	return object.NewError(object.TypeMismatchError, "unknown operator: STRING %s STRING", operator)
}

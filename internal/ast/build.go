package ast

// Constructors for assembling trees in code. Nodes built here carry no
// position.

func NewProgram(statements ...Statement) *Program {
	return &Program{Statements: statements}
}

func Block(statements ...Statement) *BlockStatement {
	return &BlockStatement{Statements: statements}
}

func Expr(e Expression) *ExpressionStatement {
	return &ExpressionStatement{Expression: e}
}

func Ident(name string) *Identifier { return &Identifier{Value: name} }

func Wildcard() *WildcardPattern { return &WildcardPattern{} }

func TuplePat(names ...string) *TuplePattern {
	elements := make([]Pattern, len(names))
	for i, n := range names {
		if n == "_" {
			elements[i] = Wildcard()
		} else {
			elements[i] = Ident(n)
		}
	}
	return &TuplePattern{Elements: elements}
}

func Int(v int64) *IntegerLiteral { return &IntegerLiteral{Value: v} }

func Float(v float64) *FloatLiteral { return &FloatLiteral{Value: v} }

func Str(v string) *StringLiteral { return &StringLiteral{Value: v} }

func Bool(v bool) *Boolean { return &Boolean{Value: v} }

func Tuple(elements ...Expression) *TupleLiteral {
	return &TupleLiteral{Elements: elements}
}

func Infix(left Expression, operator string, right Expression) *InfixExpression {
	return &InfixExpression{Left: left, Operator: operator, Right: right}
}

func Prefix(operator string, right Expression) *PrefixExpression {
	return &PrefixExpression{Operator: operator, Right: right}
}

func Range(start, end Expression, inclusive bool) *RangeExpression {
	return &RangeExpression{Start: start, End: end, Inclusive: inclusive}
}

func Let(name string, value Expression) *LetStatement {
	return &LetStatement{Pattern: Ident(name), Value: value}
}

func LetMut(name string, value Expression) *LetStatement {
	return &LetStatement{Pattern: Ident(name), Mutable: true, Value: value}
}

func Const(name, typeHint string, value Expression) *ConstStatement {
	return &ConstStatement{Name: Ident(name), TypeHint: typeHint, Value: value}
}

func Assign(name string, value Expression) *AssignStatement {
	return &AssignStatement{Name: Ident(name), Operator: "=", Value: value}
}

func AssignOp(name, operator string, value Expression) *AssignStatement {
	return &AssignStatement{Name: Ident(name), Operator: operator, Value: value}
}

func Emit(format string, args ...Expression) *EmitStatement {
	return &EmitStatement{Format: format, Arguments: args}
}

func Break(label string, value Expression) *BreakStatement {
	return &BreakStatement{Label: label, Value: value}
}

func Continue(label string) *ContinueStatement {
	return &ContinueStatement{Label: label}
}

func If(condition Expression, then, otherwise *BlockStatement) *IfExpression {
	return &IfExpression{Condition: condition, ThenBranch: then, ElseBranch: otherwise}
}

func Loop(label string, body ...Statement) *LoopExpression {
	return &LoopExpression{Label: label, Body: Block(body...)}
}

func While(label string, condition Expression, body ...Statement) *WhileExpression {
	return &WhileExpression{Label: label, Condition: condition, Body: Block(body...)}
}

func For(label string, pattern Pattern, iterable Expression, body ...Statement) *ForExpression {
	return &ForExpression{Label: label, Pattern: pattern, Iterable: iterable, Body: Block(body...)}
}

package ast

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Position locates a node in whatever front-end produced the tree. The zero
// value means the position is unknown.
type Position struct {
	Line   int
	Column int
}

func (p Position) IsZero() bool { return p.Line == 0 && p.Column == 0 }

func (p Position) String() string {
	if p.IsZero() {
		return "<unknown>"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// The base Node interface
type Node interface {
	Pos() Position
	String() string
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

// Pattern is the left-hand side of a declaration or a for loop.
type Pattern interface {
	Node
	patternNode()
	// Names returns the identifiers the pattern binds, in order.
	Names() []*Identifier
}

type Program struct {
	Statements []Statement
}

func (p *Program) Pos() Position {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return Position{}
}

func (p *Program) String() string {
	var out bytes.Buffer

	for _, s := range p.Statements {
		out.WriteString(s.String())
	}

	return out.String()
}

// LetStatement declares a new binding. A nil Value declares the binding
// without initialising it.
type LetStatement struct {
	Position Position
	Pattern  Pattern
	Mutable  bool
	TypeHint string // informational only, e.g. "i32"
	Value    Expression
}

func (ls *LetStatement) statementNode() {}
func (ls *LetStatement) Pos() Position  { return ls.Position }
func (ls *LetStatement) String() string {
	var out bytes.Buffer

	out.WriteString("let ")
	if ls.Mutable {
		out.WriteString("mut ")
	}
	out.WriteString(ls.Pattern.String())
	if ls.TypeHint != "" {
		out.WriteString(": " + ls.TypeHint)
	}
	if ls.Value != nil {
		out.WriteString(" = ")
		out.WriteString(ls.Value.String())
	}
	out.WriteString(";")

	return out.String()
}

type ConstStatement struct {
	Position Position
	Name     *Identifier
	TypeHint string
	Value    Expression
}

func (cs *ConstStatement) statementNode() {}
func (cs *ConstStatement) Pos() Position  { return cs.Position }
func (cs *ConstStatement) String() string {
	var out bytes.Buffer

	out.WriteString("const ")
	out.WriteString(cs.Name.String())
	if cs.TypeHint != "" {
		out.WriteString(": " + cs.TypeHint)
	}
	out.WriteString(" = ")
	out.WriteString(cs.Value.String())
	out.WriteString(";")

	return out.String()
}

// AssignStatement writes to an existing binding. Operator is "=" or a
// compound operator such as "+=".
type AssignStatement struct {
	Position Position
	Name     *Identifier
	Operator string
	Value    Expression
}

func (as *AssignStatement) statementNode() {}
func (as *AssignStatement) Pos() Position  { return as.Position }
func (as *AssignStatement) String() string {
	op := as.Operator
	if op == "" {
		op = "="
	}
	return as.Name.String() + " " + op + " " + as.Value.String() + ";"
}

type ExpressionStatement struct {
	Position   Position
	Expression Expression
}

func (es *ExpressionStatement) statementNode() {}
func (es *ExpressionStatement) Pos() Position  { return es.Position }
func (es *ExpressionStatement) String() string {
	if es.Expression != nil {
		return es.Expression.String()
	}
	return ""
}

type BreakStatement struct {
	Position Position
	Label    string
	Value    Expression
}

func (bs *BreakStatement) statementNode() {}
func (bs *BreakStatement) Pos() Position  { return bs.Position }
func (bs *BreakStatement) String() string {
	var out bytes.Buffer

	out.WriteString("break")
	if bs.Label != "" {
		out.WriteString(" '" + bs.Label)
	}
	if bs.Value != nil {
		out.WriteString(" ")
		out.WriteString(bs.Value.String())
	}
	out.WriteString(";")

	return out.String()
}

type ContinueStatement struct {
	Position Position
	Label    string
}

func (cs *ContinueStatement) statementNode() {}
func (cs *ContinueStatement) Pos() Position  { return cs.Position }
func (cs *ContinueStatement) String() string {
	if cs.Label != "" {
		return "continue '" + cs.Label + ";"
	}
	return "continue;"
}

// EmitStatement records one line of program output. Each "{}" in Format is
// replaced by the next argument; an empty Format joins the arguments with spaces.
type EmitStatement struct {
	Position  Position
	Format    string
	Arguments []Expression
}

func (es *EmitStatement) statementNode() {}
func (es *EmitStatement) Pos() Position  { return es.Position }
func (es *EmitStatement) String() string {
	args := make([]string, 0, len(es.Arguments)+1)
	args = append(args, strconv.Quote(es.Format))
	for _, a := range es.Arguments {
		args = append(args, a.String())
	}
	return "emit(" + strings.Join(args, ", ") + ");"
}

type BlockStatement struct {
	Position   Position
	Statements []Statement
}

func (bs *BlockStatement) statementNode()  {}
func (bs *BlockStatement) expressionNode() {}
func (bs *BlockStatement) Pos() Position   { return bs.Position }
func (bs *BlockStatement) String() string {
	var out bytes.Buffer

	out.WriteString("{")
	for _, s := range bs.Statements {
		out.WriteString(s.String())
	}
	out.WriteString("}")

	return out.String()
}

// Expressions
type Identifier struct {
	Position Position
	Value    string
}

func (i *Identifier) expressionNode() {}
func (i *Identifier) patternNode()    {}
func (i *Identifier) Pos() Position   { return i.Position }
func (i *Identifier) String() string  { return i.Value }
func (i *Identifier) Names() []*Identifier {
	return []*Identifier{i}
}

// WildcardPattern is `_`: it matches anything and binds nothing.
type WildcardPattern struct {
	Position Position
}

func (wp *WildcardPattern) patternNode()         {}
func (wp *WildcardPattern) Pos() Position        { return wp.Position }
func (wp *WildcardPattern) String() string       { return "_" }
func (wp *WildcardPattern) Names() []*Identifier { return nil }

type TuplePattern struct {
	Position Position
	Elements []Pattern
}

func (tp *TuplePattern) patternNode()  {}
func (tp *TuplePattern) Pos() Position { return tp.Position }
func (tp *TuplePattern) String() string {
	parts := make([]string, len(tp.Elements))
	for i, e := range tp.Elements {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
func (tp *TuplePattern) Names() []*Identifier {
	var names []*Identifier
	for _, e := range tp.Elements {
		names = append(names, e.Names()...)
	}
	return names
}

type IntegerLiteral struct {
	Position Position
	Value    int64
}

func (il *IntegerLiteral) expressionNode() {}
func (il *IntegerLiteral) Pos() Position   { return il.Position }
func (il *IntegerLiteral) String() string  { return strconv.FormatInt(il.Value, 10) }

type FloatLiteral struct {
	Position Position
	Value    float64
}

func (fl *FloatLiteral) expressionNode() {}
func (fl *FloatLiteral) Pos() Position   { return fl.Position }
func (fl *FloatLiteral) String() string {
	s := strconv.FormatFloat(fl.Value, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

type StringLiteral struct {
	Position Position
	Value    string
}

func (sl *StringLiteral) expressionNode() {}
func (sl *StringLiteral) Pos() Position   { return sl.Position }
func (sl *StringLiteral) String() string  { return strconv.Quote(sl.Value) }

type Boolean struct {
	Position Position
	Value    bool
}

func (b *Boolean) expressionNode() {}
func (b *Boolean) Pos() Position   { return b.Position }
func (b *Boolean) String() string  { return strconv.FormatBool(b.Value) }

type UnitLiteral struct {
	Position Position
}

func (u *UnitLiteral) expressionNode() {}
func (u *UnitLiteral) Pos() Position   { return u.Position }
func (u *UnitLiteral) String() string  { return "()" }

type TupleLiteral struct {
	Position Position
	Elements []Expression
}

func (tl *TupleLiteral) expressionNode() {}
func (tl *TupleLiteral) Pos() Position   { return tl.Position }
func (tl *TupleLiteral) String() string {
	parts := make([]string, len(tl.Elements))
	for i, e := range tl.Elements {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

type PrefixExpression struct {
	Position Position
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode() {}
func (pe *PrefixExpression) Pos() Position   { return pe.Position }
func (pe *PrefixExpression) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(pe.Operator)
	out.WriteString(pe.Right.String())
	out.WriteString(")")

	return out.String()
}

type InfixExpression struct {
	Position Position
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode() {}
func (ie *InfixExpression) Pos() Position   { return ie.Position }
func (ie *InfixExpression) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(ie.Left.String())
	out.WriteString(" " + ie.Operator + " ")
	out.WriteString(ie.Right.String())
	out.WriteString(")")

	return out.String()
}

// RangeExpression is `start..end` or, when Inclusive, `start..=end`.
type RangeExpression struct {
	Position  Position
	Start     Expression
	End       Expression
	Inclusive bool
}

func (re *RangeExpression) expressionNode() {}
func (re *RangeExpression) Pos() Position   { return re.Position }
func (re *RangeExpression) String() string {
	op := ".."
	if re.Inclusive {
		op = "..="
	}
	return re.Start.String() + op + re.End.String()
}

type IfExpression struct {
	Position   Position
	Condition  Expression
	ThenBranch *BlockStatement
	ElseBranch *BlockStatement
}

func (ie *IfExpression) expressionNode() {}
func (ie *IfExpression) Pos() Position   { return ie.Position }
func (ie *IfExpression) String() string {
	var out bytes.Buffer

	out.WriteString("if ")
	out.WriteString(ie.Condition.String())
	out.WriteString(" ")
	out.WriteString(ie.ThenBranch.String())

	if ie.ElseBranch != nil {
		out.WriteString(" else ")
		out.WriteString(ie.ElseBranch.String())
	}

	return out.String()
}

func labelPrefix(label string) string {
	if label == "" {
		return ""
	}
	return "'" + label + ": "
}

// LoopExpression repeats Body until a break targets it.
type LoopExpression struct {
	Position Position
	Label    string
	Body     *BlockStatement
}

func (le *LoopExpression) expressionNode() {}
func (le *LoopExpression) Pos() Position   { return le.Position }
func (le *LoopExpression) String() string {
	return labelPrefix(le.Label) + "loop " + le.Body.String()
}

type WhileExpression struct {
	Position  Position
	Label     string
	Condition Expression
	Body      *BlockStatement
}

func (we *WhileExpression) expressionNode() {}
func (we *WhileExpression) Pos() Position   { return we.Position }
func (we *WhileExpression) String() string {
	return labelPrefix(we.Label) + "while " + we.Condition.String() + " " + we.Body.String()
}

type ForExpression struct {
	Position Position
	Label    string
	Pattern  Pattern
	Iterable Expression
	Body     *BlockStatement
}

func (fe *ForExpression) expressionNode() {}
func (fe *ForExpression) Pos() Position   { return fe.Position }
func (fe *ForExpression) String() string {
	return labelPrefix(fe.Label) + "for " + fe.Pattern.String() + " in " + fe.Iterable.String() + " " + fe.Body.String()
}

package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"scopecore/internal/ast"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a program tree from path. Files ending in .yaml or .yml are
// decoded as YAML, everything else as JSON.
func LoadFile(path string) (*ast.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseJSON(data)
	}
}

func ParseJSON(data []byte) (*ast.Program, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode JSON tree: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("failed to decode JSON tree: unexpected content after the program at offset %d", dec.InputOffset())
	}
	return DecodeProgram(raw)
}

func ParseYAML(data []byte) (*ast.Program, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode YAML tree: %w", err)
	}
	return DecodeProgram(raw)
}

// DecodeProgram builds a program from the generic map form produced by
// WalkAST. A bare list of statements is accepted as a program.
func DecodeProgram(raw interface{}) (*ast.Program, error) {
	d := &decoder{}
	if list, ok := raw.([]interface{}); ok {
		statements, err := d.statements(list, "statements")
		if err != nil {
			return nil, err
		}
		return &ast.Program{Statements: statements}, nil
	}

	m, err := d.object(raw, "program")
	if err != nil {
		return nil, err
	}
	if t := d.str(m, "type"); t != "Program" {
		return nil, fmt.Errorf("program: expected node type Program, got %q", t)
	}
	list, _ := m["statements"].([]interface{})
	statements, err := d.statements(list, "program.statements")
	if err != nil {
		return nil, err
	}
	return &ast.Program{Statements: statements}, nil
}

type decoder struct{}

func (d *decoder) object(raw interface{}, path string) (map[string]interface{}, error) {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%s: expected an object, got %T", path, raw)
	}
	return m, nil
}

func (d *decoder) str(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

func (d *decoder) boolean(m map[string]interface{}, key string) bool {
	b, _ := m[key].(bool)
	return b
}

func (d *decoder) position(m map[string]interface{}) ast.Position {
	line, _ := toInt64(m["line"])
	col, _ := toInt64(m["column"])
	return ast.Position{Line: int(line), Column: int(col)}
}

func (d *decoder) statements(list []interface{}, path string) ([]ast.Statement, error) {
	statements := make([]ast.Statement, 0, len(list))
	for i, raw := range list {
		stmt, err := d.statement(raw, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}
	return statements, nil
}

func (d *decoder) statement(raw interface{}, path string) (ast.Statement, error) {
	m, err := d.object(raw, path)
	if err != nil {
		return nil, err
	}
	pos := d.position(m)

	switch t := d.str(m, "type"); t {
	case "BlockStatement":
		return d.block(m, path)

	case "ExpressionStatement":
		expr, err := d.expression(m["expression"], path+".expression")
		if err != nil {
			return nil, err
		}
		return &ast.ExpressionStatement{Position: pos, Expression: expr}, nil

	case "LetStatement":
		pattern, err := d.pattern(m["pattern"], path+".pattern")
		if err != nil {
			return nil, err
		}
		var value ast.Expression
		if m["value"] != nil {
			if value, err = d.expression(m["value"], path+".value"); err != nil {
				return nil, err
			}
		}
		return &ast.LetStatement{
			Position: pos,
			Pattern:  pattern,
			Mutable:  d.boolean(m, "mutable"),
			TypeHint: d.str(m, "typeHint"),
			Value:    value,
		}, nil

	case "ConstStatement":
		value, err := d.expression(m["value"], path+".value")
		if err != nil {
			return nil, err
		}
		return &ast.ConstStatement{
			Position: pos,
			Name:     &ast.Identifier{Position: pos, Value: d.str(m, "name")},
			TypeHint: d.str(m, "typeHint"),
			Value:    value,
		}, nil

	case "AssignStatement":
		value, err := d.expression(m["value"], path+".value")
		if err != nil {
			return nil, err
		}
		op := d.str(m, "operator")
		if op == "" {
			op = "="
		}
		return &ast.AssignStatement{
			Position: pos,
			Name:     &ast.Identifier{Position: pos, Value: d.str(m, "name")},
			Operator: op,
			Value:    value,
		}, nil

	case "BreakStatement":
		var value ast.Expression
		if m["value"] != nil {
			if value, err = d.expression(m["value"], path+".value"); err != nil {
				return nil, err
			}
		}
		return &ast.BreakStatement{Position: pos, Label: d.str(m, "label"), Value: value}, nil

	case "ContinueStatement":
		return &ast.ContinueStatement{Position: pos, Label: d.str(m, "label")}, nil

	case "EmitStatement":
		list, _ := m["arguments"].([]interface{})
		args, err := d.expressions(list, path+".arguments")
		if err != nil {
			return nil, err
		}
		return &ast.EmitStatement{Position: pos, Format: d.str(m, "format"), Arguments: args}, nil

	default:
		// Loops, ifs and blocks are expressions that may stand alone.
		expr, err := d.expression(raw, path)
		if err != nil {
			return nil, err
		}
		return &ast.ExpressionStatement{Position: pos, Expression: expr}, nil
	}
}

func (d *decoder) block(m map[string]interface{}, path string) (*ast.BlockStatement, error) {
	if t := d.str(m, "type"); t != "BlockStatement" {
		return nil, fmt.Errorf("%s: expected BlockStatement, got %q", path, t)
	}
	list, _ := m["statements"].([]interface{})
	statements, err := d.statements(list, path+".statements")
	if err != nil {
		return nil, err
	}
	return &ast.BlockStatement{Position: d.position(m), Statements: statements}, nil
}

func (d *decoder) blockField(raw interface{}, path string) (*ast.BlockStatement, error) {
	m, err := d.object(raw, path)
	if err != nil {
		return nil, err
	}
	return d.block(m, path)
}

func (d *decoder) expressions(list []interface{}, path string) ([]ast.Expression, error) {
	exprs := make([]ast.Expression, 0, len(list))
	for i, raw := range list {
		expr, err := d.expression(raw, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}
	return exprs, nil
}

func (d *decoder) expression(raw interface{}, path string) (ast.Expression, error) {
	m, err := d.object(raw, path)
	if err != nil {
		return nil, err
	}
	pos := d.position(m)

	switch t := d.str(m, "type"); t {
	case "Identifier":
		return &ast.Identifier{Position: pos, Value: d.str(m, "value")}, nil

	case "IntegerLiteral":
		v, err := toInt64(m["value"])
		if err != nil {
			return nil, fmt.Errorf("%s.value: %w", path, err)
		}
		return &ast.IntegerLiteral{Position: pos, Value: v}, nil

	case "FloatLiteral":
		v, err := toFloat64(m["value"])
		if err != nil {
			return nil, fmt.Errorf("%s.value: %w", path, err)
		}
		return &ast.FloatLiteral{Position: pos, Value: v}, nil

	case "StringLiteral":
		return &ast.StringLiteral{Position: pos, Value: d.str(m, "value")}, nil

	case "Boolean":
		return &ast.Boolean{Position: pos, Value: d.boolean(m, "value")}, nil

	case "UnitLiteral":
		return &ast.UnitLiteral{Position: pos}, nil

	case "TupleLiteral":
		list, _ := m["elements"].([]interface{})
		elements, err := d.expressions(list, path+".elements")
		if err != nil {
			return nil, err
		}
		return &ast.TupleLiteral{Position: pos, Elements: elements}, nil

	case "PrefixExpression":
		right, err := d.expression(m["right"], path+".right")
		if err != nil {
			return nil, err
		}
		return &ast.PrefixExpression{Position: pos, Operator: d.str(m, "operator"), Right: right}, nil

	case "InfixExpression":
		left, err := d.expression(m["left"], path+".left")
		if err != nil {
			return nil, err
		}
		right, err := d.expression(m["right"], path+".right")
		if err != nil {
			return nil, err
		}
		return &ast.InfixExpression{Position: pos, Left: left, Operator: d.str(m, "operator"), Right: right}, nil

	case "RangeExpression":
		start, err := d.expression(m["start"], path+".start")
		if err != nil {
			return nil, err
		}
		end, err := d.expression(m["end"], path+".end")
		if err != nil {
			return nil, err
		}
		return &ast.RangeExpression{Position: pos, Start: start, End: end, Inclusive: d.boolean(m, "inclusive")}, nil

	case "BlockStatement":
		return d.block(m, path)

	case "IfExpression":
		cond, err := d.expression(m["condition"], path+".condition")
		if err != nil {
			return nil, err
		}
		then, err := d.blockField(m["then"], path+".then")
		if err != nil {
			return nil, err
		}
		var otherwise *ast.BlockStatement
		if m["else"] != nil {
			if otherwise, err = d.blockField(m["else"], path+".else"); err != nil {
				return nil, err
			}
		}
		return &ast.IfExpression{Position: pos, Condition: cond, ThenBranch: then, ElseBranch: otherwise}, nil

	case "LoopExpression":
		body, err := d.blockField(m["body"], path+".body")
		if err != nil {
			return nil, err
		}
		return &ast.LoopExpression{Position: pos, Label: d.str(m, "label"), Body: body}, nil

	case "WhileExpression":
		cond, err := d.expression(m["condition"], path+".condition")
		if err != nil {
			return nil, err
		}
		body, err := d.blockField(m["body"], path+".body")
		if err != nil {
			return nil, err
		}
		return &ast.WhileExpression{Position: pos, Label: d.str(m, "label"), Condition: cond, Body: body}, nil

	case "ForExpression":
		pattern, err := d.pattern(m["pattern"], path+".pattern")
		if err != nil {
			return nil, err
		}
		iterable, err := d.expression(m["iterable"], path+".iterable")
		if err != nil {
			return nil, err
		}
		body, err := d.blockField(m["body"], path+".body")
		if err != nil {
			return nil, err
		}
		return &ast.ForExpression{Position: pos, Label: d.str(m, "label"), Pattern: pattern, Iterable: iterable, Body: body}, nil

	default:
		return nil, fmt.Errorf("%s: unknown expression type %q", path, t)
	}
}

func (d *decoder) pattern(raw interface{}, path string) (ast.Pattern, error) {
	// A bare string is shorthand for an identifier, or the wildcard "_".
	if name, ok := raw.(string); ok {
		if name == "_" {
			return &ast.WildcardPattern{}, nil
		}
		return &ast.Identifier{Value: name}, nil
	}

	m, err := d.object(raw, path)
	if err != nil {
		return nil, err
	}
	pos := d.position(m)

	switch t := d.str(m, "type"); t {
	case "Identifier":
		return &ast.Identifier{Position: pos, Value: d.str(m, "value")}, nil
	case "WildcardPattern":
		return &ast.WildcardPattern{Position: pos}, nil
	case "TuplePattern":
		list, _ := m["elements"].([]interface{})
		elements := make([]ast.Pattern, 0, len(list))
		for i, el := range list {
			p, err := d.pattern(el, fmt.Sprintf("%s.elements[%d]", path, i))
			if err != nil {
				return nil, err
			}
			elements = append(elements, p)
		}
		return &ast.TuplePattern{Position: pos, Elements: elements}, nil
	default:
		return nil, fmt.Errorf("%s: unknown pattern type %q", path, t)
	}
}

func toInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("integer %d out of range", n)
		}
		return int64(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("expected an integer, got %v", n)
		}
		return int64(n), nil
	case json.Number:
		return n.Int64()
	default:
		return 0, fmt.Errorf("expected an integer, got %T", v)
	}
}

func toFloat64(v interface{}) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	case json.Number:
		return n.Float64()
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}

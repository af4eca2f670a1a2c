package codec

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"reflect"
	"scopecore/internal/ast"
)

// WalkAST recursively traverses a program tree and serializes it into a map
// structure. The output is the same shape the decoder accepts, so an encoded
// tree can be loaded back.
func WalkAST(node ast.Node) interface{} {
	if node == nil || (reflect.ValueOf(node).Kind() == reflect.Ptr && reflect.ValueOf(node).IsNil()) {
		return nil
	}

	var out map[string]interface{}

	switch n := node.(type) {
	case *ast.Program:
		out = map[string]interface{}{
			"type":       "Program",
			"statements": walkStatements(n.Statements),
		}

	case *ast.BlockStatement:
		out = map[string]interface{}{
			"type":       "BlockStatement",
			"statements": walkStatements(n.Statements),
		}

	case *ast.ExpressionStatement:
		out = map[string]interface{}{
			"type":       "ExpressionStatement",
			"expression": WalkAST(n.Expression),
		}

	case *ast.LetStatement:
		out = map[string]interface{}{
			"type":    "LetStatement",
			"pattern": WalkAST(n.Pattern),
			"mutable": n.Mutable,
			"value":   WalkAST(n.Value),
		}
		if n.TypeHint != "" {
			out["typeHint"] = n.TypeHint
		}

	case *ast.ConstStatement:
		out = map[string]interface{}{
			"type":  "ConstStatement",
			"name":  n.Name.Value,
			"value": WalkAST(n.Value),
		}
		if n.TypeHint != "" {
			out["typeHint"] = n.TypeHint
		}

	case *ast.AssignStatement:
		out = map[string]interface{}{
			"type":     "AssignStatement",
			"name":     n.Name.Value,
			"operator": n.Operator,
			"value":    WalkAST(n.Value),
		}

	case *ast.BreakStatement:
		out = map[string]interface{}{
			"type":  "BreakStatement",
			"label": n.Label,
			"value": WalkAST(n.Value),
		}

	case *ast.ContinueStatement:
		out = map[string]interface{}{
			"type":  "ContinueStatement",
			"label": n.Label,
		}

	case *ast.EmitStatement:
		out = map[string]interface{}{
			"type":      "EmitStatement",
			"format":    n.Format,
			"arguments": walkExpressions(n.Arguments),
		}

	case *ast.Identifier:
		out = map[string]interface{}{"type": "Identifier", "value": n.Value}

	case *ast.WildcardPattern:
		out = map[string]interface{}{"type": "WildcardPattern"}

	case *ast.TuplePattern:
		elements := make([]interface{}, len(n.Elements))
		for i, e := range n.Elements {
			elements[i] = WalkAST(e)
		}
		out = map[string]interface{}{"type": "TuplePattern", "elements": elements}

	case *ast.IntegerLiteral:
		out = map[string]interface{}{"type": "IntegerLiteral", "value": n.Value}

	case *ast.FloatLiteral:
		out = map[string]interface{}{"type": "FloatLiteral", "value": n.Value}

	case *ast.StringLiteral:
		out = map[string]interface{}{"type": "StringLiteral", "value": n.Value}

	case *ast.Boolean:
		out = map[string]interface{}{"type": "Boolean", "value": n.Value}

	case *ast.UnitLiteral:
		out = map[string]interface{}{"type": "UnitLiteral"}

	case *ast.TupleLiteral:
		out = map[string]interface{}{"type": "TupleLiteral", "elements": walkExpressions(n.Elements)}

	case *ast.PrefixExpression:
		out = map[string]interface{}{
			"type":     "PrefixExpression",
			"operator": n.Operator,
			"right":    WalkAST(n.Right),
		}

	case *ast.InfixExpression:
		out = map[string]interface{}{
			"type":     "InfixExpression",
			"left":     WalkAST(n.Left),
			"operator": n.Operator,
			"right":    WalkAST(n.Right),
		}

	case *ast.RangeExpression:
		out = map[string]interface{}{
			"type":      "RangeExpression",
			"start":     WalkAST(n.Start),
			"end":       WalkAST(n.End),
			"inclusive": n.Inclusive,
		}

	case *ast.IfExpression:
		out = map[string]interface{}{
			"type":      "IfExpression",
			"condition": WalkAST(n.Condition),
			"then":      WalkAST(n.ThenBranch),
			"else":      WalkAST(n.ElseBranch),
		}

	case *ast.LoopExpression:
		out = map[string]interface{}{
			"type":  "LoopExpression",
			"label": n.Label,
			"body":  WalkAST(n.Body),
		}

	case *ast.WhileExpression:
		out = map[string]interface{}{
			"type":      "WhileExpression",
			"label":     n.Label,
			"condition": WalkAST(n.Condition),
			"body":      WalkAST(n.Body),
		}

	case *ast.ForExpression:
		out = map[string]interface{}{
			"type":     "ForExpression",
			"label":    n.Label,
			"pattern":  WalkAST(n.Pattern),
			"iterable": WalkAST(n.Iterable),
			"body":     WalkAST(n.Body),
		}

	default:
		return map[string]interface{}{
			"type": "Unknown",
			"node": fmt.Sprintf("%T", n),
		}
	}

	if pos := node.Pos(); !pos.IsZero() {
		out["line"] = pos.Line
		out["column"] = pos.Column
	}
	return out
}

func walkStatements(statements []ast.Statement) []interface{} {
	result := make([]interface{}, len(statements))
	for i, s := range statements {
		result[i] = WalkAST(s)
	}
	return result
}

func walkExpressions(expressions []ast.Expression) []interface{} {
	result := make([]interface{}, len(expressions))
	for i, e := range expressions {
		result[i] = WalkAST(e)
	}
	return result
}

func RenderASTAsJSON(node ast.Node) (string, error) {
	astMap := WalkAST(node)
	buf := new(bytes.Buffer)
	encoder := json.NewEncoder(buf)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(astMap); err != nil {
		return "", fmt.Errorf("failed to encode JSON: %v", err)
	}
	return buf.String(), nil
}

// Digest identifies a program tree by the SHA-256 of its canonical JSON form.
func Digest(node ast.Node) (string, error) {
	data, err := json.Marshal(WalkAST(node))
	if err != nil {
		return "", fmt.Errorf("failed to encode tree: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

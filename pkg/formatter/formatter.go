// Package formatter implements the StarBird source code formatter.
package formatter

import (
	"math"
	"strings"

	"github.com/starbird-lang/starbird/pkg/ast"
	"github.com/starbird-lang/starbird/pkg/evaluator"
	"github.com/starbird-lang/starbird/pkg/token"
)

const indent = "  "

// Precedence table for binary and logical operators (higher = tighter binding).
// Assignment sits below all of them at 0.
var precedence = map[token.Type]int{
	token.Or:         1,
	token.And:        2,
	token.EqualEqual: 3, token.BangEqual: 3,
	token.Greater: 4, token.GreaterEqual: 4, token.Less: 4, token.LessEqual: 4,
	token.Plus: 5, token.Minus: 5,
	token.Star: 6, token.Slash: 6,
}

// exprPrecedence returns the binding strength of an operator node, or -1 for
// nodes that never need parentheses.
func exprPrecedence(e ast.Expr) int {
	switch expr := e.(type) {
	case *ast.Assign:
		return 0
	case *ast.Binary:
		return precedence[expr.Operator.Type]
	case *ast.Logical:
		return precedence[expr.Operator.Type]
	}
	return -1
}

func needsParens(child ast.Expr, parentPrec int, isRight bool) bool {
	childPrec := exprPrecedence(child)
	if childPrec < 0 {
		return false
	}
	if childPrec < parentPrec {
		return true
	}
	// All binary levels are left-associative: a same-precedence right
	// operand must keep its grouping.
	return childPrec == parentPrec && isRight
}

// Format pretty-prints a StarBird program back to source code.
func Format(stmts []ast.Stmt) string {
	if len(stmts) == 0 {
		return ""
	}
	lines := make([]string, len(stmts))
	for i, s := range stmts {
		lines[i] = formatStmt(s, 0)
	}
	return strings.Join(lines, "\n") + "\n"
}

// HasComments reports whether source contains a // comment outside a string
// literal. Comments are not preserved by Format.
func HasComments(source string) bool {
	inString := false
	for i := 0; i < len(source); i++ {
		switch {
		case source[i] == '"':
			inString = !inString
		case !inString && source[i] == '/' && i+1 < len(source) && source[i+1] == '/':
			return true
		}
	}
	return false
}

func formatStmt(s ast.Stmt, depth int) string {
	prefix := strings.Repeat(indent, depth)
	switch stmt := s.(type) {
	case *ast.Expression:
		return prefix + formatExpr(stmt.Expr) + ";"
	case *ast.Print:
		return prefix + "print " + formatExpr(stmt.Expr) + ";"
	case *ast.Var:
		if stmt.Initializer == nil {
			return prefix + "var " + stmt.Name.Lexeme + ";"
		}
		return prefix + "var " + stmt.Name.Lexeme + " = " + formatExpr(stmt.Initializer) + ";"
	case *ast.Block:
		return prefix + formatBlock(stmt.Statements, depth)
	case *ast.If:
		then := stmt.Then
		// An else-less if in the then branch would capture our else on re-parse.
		if stmt.Else != nil && dangles(then) {
			then = &ast.Block{Statements: []ast.Stmt{then}}
		}
		out := prefix + "if (" + formatExpr(stmt.Condition) + ")" + formatBody(then, depth)
		if stmt.Else == nil {
			return out
		}
		if _, ok := then.(*ast.Block); ok {
			out += " else"
		} else {
			out += "\n" + prefix + "else"
		}
		if elif, ok := stmt.Else.(*ast.If); ok {
			return out + " " + strings.TrimPrefix(formatStmt(elif, depth), prefix)
		}
		return out + formatBody(stmt.Else, depth)
	}
	return ""
}

// dangles reports whether s ends in an if without an else.
func dangles(s ast.Stmt) bool {
	stmt, ok := s.(*ast.If)
	if !ok {
		return false
	}
	if stmt.Else == nil {
		return true
	}
	return dangles(stmt.Else)
}

// formatBody renders the branch of an if: a block stays on the same line,
// any other statement goes on its own line one level deeper.
func formatBody(s ast.Stmt, depth int) string {
	if b, ok := s.(*ast.Block); ok {
		return " " + formatBlock(b.Statements, depth)
	}
	return "\n" + formatStmt(s, depth+1)
}

func formatBlock(stmts []ast.Stmt, depth int) string {
	if len(stmts) == 0 {
		return "{}"
	}
	lines := make([]string, len(stmts))
	for i, s := range stmts {
		lines[i] = formatStmt(s, depth+1)
	}
	return "{\n" + strings.Join(lines, "\n") + "\n" + strings.Repeat(indent, depth) + "}"
}

func formatExpr(e ast.Expr) string {
	switch expr := e.(type) {
	case *ast.Literal:
		return formatLiteral(expr.Value)
	case *ast.Variable:
		return expr.Name.Lexeme
	case *ast.Grouping:
		return "(" + formatExpr(expr.Inner) + ")"
	case *ast.Assign:
		return expr.Name.Lexeme + " = " + formatExpr(expr.Value)
	case *ast.Binary:
		return formatInfix(expr.Left, expr.Operator, expr.Right)
	case *ast.Logical:
		return formatInfix(expr.Left, expr.Operator, expr.Right)
	case *ast.Unary:
		operandStr := formatExpr(expr.Operand)
		if exprPrecedence(expr.Operand) >= 0 || isNegativeLiteral(expr.Operand) {
			operandStr = "(" + operandStr + ")"
		}
		return expr.Operator.Lexeme + operandStr
	}
	return ""
}

func formatInfix(left ast.Expr, op token.Token, right ast.Expr) string {
	prec := precedence[op.Type]
	leftStr := formatExpr(left)
	rightStr := formatExpr(right)
	if needsParens(left, prec, false) {
		leftStr = "(" + leftStr + ")"
	}
	if needsParens(right, prec, true) {
		rightStr = "(" + rightStr + ")"
	}
	return leftStr + " " + op.Lexeme + " " + rightStr
}

// isNegativeLiteral matches number literals only a built tree can hold; the
// grammar itself has no signed literals.
func isNegativeLiteral(e ast.Expr) bool {
	lit, ok := e.(*ast.Literal)
	if !ok {
		return false
	}
	n, ok := lit.Value.(float64)
	return ok && math.Signbit(n)
}

func formatLiteral(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case bool:
		if val {
			return "true"
		}
		return "false"
	case float64:
		return evaluator.FormatNumber(val)
	case string:
		return `"` + val + `"`
	}
	return "null"
}

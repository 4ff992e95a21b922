package ast

import (
	"strconv"
	"strings"
)

// Sprint renders a node as a parenthesised prefix tree, e.g. `(+ 1 (* 2 3))`.
// It is meant for debugging dumps, not for round-tripping source.
func Sprint(n Node) string {
	var b strings.Builder
	writeNode(&b, n)
	return b.String()
}

// SprintProgram renders each statement on its own line.
func SprintProgram(stmts []Stmt) string {
	lines := make([]string, len(stmts))
	for i, s := range stmts {
		lines[i] = Sprint(s)
	}
	return strings.Join(lines, "\n")
}

func writeNode(b *strings.Builder, n Node) {
	switch n := n.(type) {
	case nil:
		b.WriteString("<nil>")
	case *Assign:
		parenthesize(b, "= "+n.Name.Lexeme, n.Value)
	case *Binary:
		parenthesize(b, n.Operator.Lexeme, n.Left, n.Right)
	case *Logical:
		parenthesize(b, n.Operator.Lexeme, n.Left, n.Right)
	case *Grouping:
		parenthesize(b, "group", n.Inner)
	case *Unary:
		parenthesize(b, n.Operator.Lexeme, n.Operand)
	case *Variable:
		b.WriteString(n.Name.Lexeme)
	case *Literal:
		b.WriteString(literalText(n.Value))

	case *Block:
		nodes := make([]Node, len(n.Statements))
		for i, s := range n.Statements {
			nodes[i] = s
		}
		parenthesize(b, "block", nodes...)
	case *Expression:
		parenthesize(b, ";", n.Expr)
	case *Print:
		parenthesize(b, "print", n.Expr)
	case *Var:
		if n.Initializer == nil {
			b.WriteString("(var " + n.Name.Lexeme + ")")
			return
		}
		parenthesize(b, "var "+n.Name.Lexeme, n.Initializer)
	case *If:
		parts := []Node{n.Condition, n.Then}
		if n.Else != nil {
			parts = append(parts, n.Else)
		}
		parenthesize(b, "if", parts...)
	}
}

func parenthesize(b *strings.Builder, name string, parts ...Node) {
	b.WriteByte('(')
	b.WriteString(name)
	for _, p := range parts {
		b.WriteByte(' ')
		writeNode(b, p)
	}
	b.WriteByte(')')
}

func literalText(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return strconv.Quote(v)
	}
	return "?"
}

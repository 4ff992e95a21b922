// Package ast defines the StarBird language AST node types.
//
// The node structs live in nodes_gen.go, generated from nodes.txt.
// Nodes are immutable once the parser has built them.
package ast

//go:generate go run ../../cmd/genast -in nodes.txt -out nodes_gen.go

// Node is the interface implemented by all AST nodes.
type Node interface {
	Kind() string
}

// Expr is the interface for all expression nodes.
type Expr interface {
	Node
	exprNode() // sealed marker
}

// Stmt is the interface for all statement nodes.
type Stmt interface {
	Node
	stmtNode() // sealed marker
}

// Line returns the first source line recorded in n or its children, or 0
// when the subtree holds no token (for example a bare literal).
func Line(n Node) int {
	switch n := n.(type) {
	case *Assign:
		return n.Name.Line
	case *Binary:
		return firstLine(Line(n.Left), n.Operator.Line)
	case *Logical:
		return firstLine(Line(n.Left), n.Operator.Line)
	case *Grouping:
		return Line(n.Inner)
	case *Unary:
		return n.Operator.Line
	case *Variable:
		return n.Name.Line
	case *Literal:
		return 0
	case *Block:
		for _, s := range n.Statements {
			if l := Line(s); l > 0 {
				return l
			}
		}
	case *Expression:
		return Line(n.Expr)
	case *If:
		return Line(n.Condition)
	case *Print:
		return Line(n.Expr)
	case *Var:
		return n.Name.Line
	}
	return 0
}

func firstLine(a, b int) int {
	if a > 0 {
		return a
	}
	return b
}

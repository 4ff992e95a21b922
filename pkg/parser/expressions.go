package parser

import (
	"github.com/starbird-lang/starbird/pkg/ast"
	"github.com/starbird-lang/starbird/pkg/token"
)

// Expression levels, lowest precedence first. Each level parses the next
// tighter level and then loops over its own operators, which makes every
// binary level left-associative.

func (p *parser) expression() (ast.Expr, error) {
	return p.assignment()
}

// assignment is right-associative. The left side is parsed as an ordinary
// expression and only accepted as a target if it turned out to be a bare
// variable.
func (p *parser) assignment() (ast.Expr, error) {
	expr, err := p.or()
	if err != nil {
		return nil, err
	}

	if p.match(token.Equal) {
		equals := p.previous()
		value, err := p.assignment()
		if err != nil {
			return nil, err
		}

		if v, ok := expr.(*ast.Variable); ok {
			return &ast.Assign{Name: v.Name, Value: value}, nil
		}
		// Reported without unwinding: the parser is not confused, so no
		// resynchronization is needed.
		p.report(p.errorAt(equals, "Invalid assignment target."))
	}

	return expr, nil
}

func (p *parser) or() (ast.Expr, error) {
	return p.logical(p.and, token.Or)
}

func (p *parser) and() (ast.Expr, error) {
	return p.logical(p.equality, token.And)
}

func (p *parser) equality() (ast.Expr, error) {
	return p.binary(p.comparison, token.BangEqual, token.EqualEqual)
}

func (p *parser) comparison() (ast.Expr, error) {
	return p.binary(p.term, token.Greater, token.GreaterEqual, token.Less, token.LessEqual)
}

func (p *parser) term() (ast.Expr, error) {
	return p.binary(p.factor, token.Minus, token.Plus)
}

func (p *parser) factor() (ast.Expr, error) {
	return p.binary(p.unary, token.Slash, token.Star)
}

func (p *parser) binary(next func() (ast.Expr, error), ops ...token.Type) (ast.Expr, error) {
	expr, err := next()
	if err != nil {
		return nil, err
	}
	for p.match(ops...) {
		op := p.previous()
		right, err := next()
		if err != nil {
			return nil, err
		}
		expr = &ast.Binary{Left: expr, Operator: op, Right: right}
	}
	return expr, nil
}

func (p *parser) logical(next func() (ast.Expr, error), op token.Type) (ast.Expr, error) {
	expr, err := next()
	if err != nil {
		return nil, err
	}
	for p.match(op) {
		operator := p.previous()
		right, err := next()
		if err != nil {
			return nil, err
		}
		expr = &ast.Logical{Left: expr, Operator: operator, Right: right}
	}
	return expr, nil
}

func (p *parser) unary() (ast.Expr, error) {
	if p.match(token.Bang, token.Minus) {
		op := p.previous()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Operator: op, Operand: operand}, nil
	}
	return p.primary()
}

func (p *parser) primary() (ast.Expr, error) {
	switch {
	case p.match(token.False):
		return &ast.Literal{Value: false}, nil
	case p.match(token.True):
		return &ast.Literal{Value: true}, nil
	case p.match(token.Null):
		return &ast.Literal{Value: nil}, nil
	case p.match(token.Number, token.String):
		return &ast.Literal{Value: p.previous().Literal}, nil
	case p.match(token.Identifier):
		return &ast.Variable{Name: p.previous()}, nil
	case p.match(token.LeftParen):
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.RightParen, "Expect ')' after expression."); err != nil {
			return nil, err
		}
		return &ast.Grouping{Inner: expr}, nil
	}
	return nil, p.errorAt(p.current(), "Expect expression.")
}

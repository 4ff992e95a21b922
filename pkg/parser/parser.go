// Package parser implements the StarBird recursive-descent parser.
package parser

import (
	"github.com/starbird-lang/starbird/pkg/ast"
	"github.com/starbird-lang/starbird/pkg/diagnostics"
	"github.com/starbird-lang/starbird/pkg/lexer"
	"github.com/starbird-lang/starbird/pkg/token"
)

// parseError aborts the declaration being parsed. It is handed back up the
// descent to the declaration loop, which reports it and resynchronizes.
type parseError struct {
	tok token.Token
	msg string
}

func (e *parseError) Error() string {
	return e.msg
}

type parser struct {
	tokens []token.Token
	pos    int
	diags  []diagnostics.Diagnostic
}

// Parse turns a token sequence into a program. Every parse error is reported
// as a diagnostic; a declaration that fails to parse is dropped from the
// result and parsing resumes at the next statement boundary.
func Parse(tokens []token.Token) ([]ast.Stmt, []diagnostics.Diagnostic) {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != token.EOF {
		line := 1
		if len(tokens) > 0 {
			line = tokens[len(tokens)-1].Line
		}
		tokens = append(tokens[:len(tokens):len(tokens)], token.New(token.EOF, "", line))
	}

	p := &parser{tokens: tokens}
	stmts := []ast.Stmt{}
	for !p.atEnd() {
		if stmt := p.declaration(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return stmts, p.diags
}

// ParseSource tokenizes source and parses it. Lexical diagnostics come first,
// followed by parse diagnostics.
func ParseSource(source string) ([]ast.Stmt, []diagnostics.Diagnostic) {
	tokens, lexDiags := lexer.Tokenize(source)
	stmts, parseDiags := Parse(tokens)
	return stmts, append(lexDiags, parseDiags...)
}

// --- token cursor ---

func (p *parser) current() token.Token {
	return p.tokens[p.pos]
}

func (p *parser) previous() token.Token {
	return p.tokens[p.pos-1]
}

func (p *parser) atEnd() bool {
	return p.current().Type == token.EOF
}

func (p *parser) check(typ token.Type) bool {
	if p.atEnd() {
		return false
	}
	return p.current().Type == typ
}

func (p *parser) advance() token.Token {
	if !p.atEnd() {
		p.pos++
	}
	return p.previous()
}

// match consumes the current token if it has one of the given types.
func (p *parser) match(types ...token.Type) bool {
	for _, typ := range types {
		if p.check(typ) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *parser) consume(typ token.Type, msg string) (token.Token, error) {
	if p.check(typ) {
		return p.advance(), nil
	}
	return token.Token{}, p.errorAt(p.current(), msg)
}

func (p *parser) errorAt(tok token.Token, msg string) *parseError {
	return &parseError{tok: tok, msg: msg}
}

func (p *parser) report(err *parseError) {
	p.diags = append(p.diags, diagnostics.MakeDiag(diagnostics.EParse, err.tok.Line, where(err.tok), err.msg))
}

func where(tok token.Token) string {
	if tok.Type == token.EOF {
		return " at end"
	}
	return " at '" + tok.Lexeme + "'"
}

// synchronize discards tokens until a likely statement boundary: just past a
// semicolon, or right before a statement keyword.
func (p *parser) synchronize() {
	p.advance()
	for !p.atEnd() {
		if p.previous().Type == token.Semicolon {
			return
		}
		if token.IsStatementStart(p.current().Type) {
			return
		}
		p.advance()
	}
}

// --- Declarations and statements ---

func (p *parser) declaration() ast.Stmt {
	var (
		stmt ast.Stmt
		err  error
	)
	if p.match(token.Var) {
		stmt, err = p.varDeclaration()
	} else {
		stmt, err = p.statement()
	}
	if err != nil {
		if pe, ok := err.(*parseError); ok {
			p.report(pe)
		}
		p.synchronize()
		return nil
	}
	return stmt
}

func (p *parser) varDeclaration() (ast.Stmt, error) {
	name, err := p.consume(token.Identifier, "Expect variable name.")
	if err != nil {
		return nil, err
	}

	var init ast.Expr
	if p.match(token.Equal) {
		init, err = p.expression()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.consume(token.Semicolon, "Expect ';' after variable declaration."); err != nil {
		return nil, err
	}
	return &ast.Var{Name: name, Initializer: init}, nil
}

func (p *parser) statement() (ast.Stmt, error) {
	switch {
	case p.match(token.If):
		return p.ifStatement()
	case p.match(token.Print):
		return p.printStatement()
	case p.match(token.LeftBrace):
		stmts, err := p.block()
		if err != nil {
			return nil, err
		}
		return &ast.Block{Statements: stmts}, nil
	default:
		return p.expressionStatement()
	}
}

func (p *parser) ifStatement() (ast.Stmt, error) {
	if _, err := p.consume(token.LeftParen, "Expect '(' after 'if'."); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RightParen, "Expect ')' after if condition."); err != nil {
		return nil, err
	}

	then, err := p.statement()
	if err != nil {
		return nil, err
	}

	var els ast.Stmt
	if p.match(token.Else) {
		els, err = p.statement()
		if err != nil {
			return nil, err
		}
	}

	return &ast.If{Condition: cond, Then: then, Else: els}, nil
}

func (p *parser) printStatement() (ast.Stmt, error) {
	value, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.Semicolon, "Expect ';' after value."); err != nil {
		return nil, err
	}
	return &ast.Print{Expr: value}, nil
}

func (p *parser) expressionStatement() (ast.Stmt, error) {
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.Semicolon, "Expect ';' after expression."); err != nil {
		return nil, err
	}
	return &ast.Expression{Expr: expr}, nil
}

// block parses the declarations up to the closing brace. The opening brace
// has already been consumed.
func (p *parser) block() ([]ast.Stmt, error) {
	stmts := []ast.Stmt{}
	for !p.check(token.RightBrace) && !p.atEnd() {
		if stmt := p.declaration(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	if _, err := p.consume(token.RightBrace, "Expect '}' after block."); err != nil {
		return nil, err
	}
	return stmts, nil
}

// Package lexer implements the StarBird tokenizer.
package lexer

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/starbird-lang/starbird/pkg/diagnostics"
	"github.com/starbird-lang/starbird/pkg/token"
)

type scanner struct {
	source string
	start  int
	pos    int
	line   int
	tokens []token.Token
	diags  []diagnostics.Diagnostic
}

func newScanner(source string) *scanner {
	return &scanner{
		source: source,
		line:   1,
	}
}

func (s *scanner) atEnd() bool {
	return s.pos >= len(s.source)
}

func (s *scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.source[s.pos]
}

func (s *scanner) peekAt(offset int) byte {
	p := s.pos + offset
	if p >= len(s.source) {
		return 0
	}
	return s.source[p]
}

func (s *scanner) advance() byte {
	ch := s.source[s.pos]
	s.pos++
	return ch
}

// match consumes the next byte only if it equals expected.
func (s *scanner) match(expected byte) bool {
	if s.atEnd() || s.source[s.pos] != expected {
		return false
	}
	s.pos++
	return true
}

func (s *scanner) lexeme() string {
	return s.source[s.start:s.pos]
}

func (s *scanner) add(typ token.Type) {
	s.addLiteral(typ, nil)
}

func (s *scanner) addLiteral(typ token.Type, literal any) {
	s.tokens = append(s.tokens, token.Token{
		Type:    typ,
		Lexeme:  s.lexeme(),
		Literal: literal,
		Line:    s.line,
	})
}

func (s *scanner) lexError(line int, msg string) {
	s.diags = append(s.diags, diagnostics.MakeDiag(diagnostics.ELex, line, "", msg))
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isAlphaNumeric(ch byte) bool {
	return isAlpha(ch) || isDigit(ch)
}

func (s *scanner) scanString() {
	startLine := s.line
	for !s.atEnd() && s.peek() != '"' {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}

	if s.atEnd() {
		s.lexError(startLine, "Unterminated string.")
		return
	}

	s.advance() // closing "
	value := s.source[s.start+1 : s.pos-1]
	s.addLiteral(token.String, value)
}

func (s *scanner) scanNumber() {
	for isDigit(s.peek()) {
		s.advance()
	}

	// A fractional part needs at least one digit after the dot.
	if s.peek() == '.' && isDigit(s.peekAt(1)) {
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}

	value, err := strconv.ParseFloat(s.lexeme(), 64)
	if err != nil {
		s.lexError(s.line, fmt.Sprintf("Invalid number '%s'.", s.lexeme()))
		return
	}
	s.addLiteral(token.Number, value)
}

func (s *scanner) scanIdentOrKeyword() {
	for isAlphaNumeric(s.peek()) {
		s.advance()
	}
	s.add(token.Lookup(s.lexeme()))
}

func (s *scanner) scanToken() {
	ch := s.advance()

	switch ch {
	case '(':
		s.add(token.LeftParen)
	case ')':
		s.add(token.RightParen)
	case '{':
		s.add(token.LeftBrace)
	case '}':
		s.add(token.RightBrace)
	case ',':
		s.add(token.Comma)
	case '.':
		s.add(token.Dot)
	case '-':
		s.add(token.Minus)
	case '+':
		s.add(token.Plus)
	case ';':
		s.add(token.Semicolon)
	case '*':
		s.add(token.Star)

	case '!':
		if s.match('=') {
			s.add(token.BangEqual)
		} else {
			s.add(token.Bang)
		}
	case '=':
		if s.match('=') {
			s.add(token.EqualEqual)
		} else {
			s.add(token.Equal)
		}
	case '<':
		if s.match('=') {
			s.add(token.LessEqual)
		} else {
			s.add(token.Less)
		}
	case '>':
		if s.match('=') {
			s.add(token.GreaterEqual)
		} else {
			s.add(token.Greater)
		}

	case '/':
		if s.match('/') {
			// Comment runs to end of line; the newline itself is handled by the next scan.
			for !s.atEnd() && s.peek() != '\n' {
				s.advance()
			}
		} else {
			s.add(token.Slash)
		}

	case ' ', '\r', '\t':
	case '\n':
		s.line++

	case '"':
		s.scanString()

	default:
		switch {
		case isDigit(ch):
			s.scanNumber()
		case isAlpha(ch):
			s.scanIdentOrKeyword()
		case ch >= utf8.RuneSelf:
			s.unexpectedRune()
		default:
			s.lexError(s.line, fmt.Sprintf("Unexpected character '%s'.", printable(ch)))
		}
	}
}

// unexpectedRune reports a non-ASCII character once and skips all of its
// bytes. Invalid UTF-8 is reported a byte at a time.
func (s *scanner) unexpectedRune() {
	r, size := utf8.DecodeRuneInString(s.source[s.pos-1:])
	if r == utf8.RuneError && size <= 1 {
		s.lexError(s.line, fmt.Sprintf("Unexpected character '%s'.", printable(s.source[s.pos-1])))
		return
	}
	s.pos += size - 1
	s.lexError(s.line, fmt.Sprintf("Unexpected character '%c'.", r))
}

func printable(ch byte) string {
	if ch >= 0x20 && ch < 0x7f {
		return string(ch)
	}
	return fmt.Sprintf("\\x%02x", ch)
}

// Tokenize breaks source code into a slice of tokens terminated by a single
// EOF token. Lexical errors are returned as diagnostics; scanning continues
// past each fault so one call can report several of them.
func Tokenize(source string) ([]token.Token, []diagnostics.Diagnostic) {
	s := newScanner(source)
	for !s.atEnd() {
		s.start = s.pos
		s.scanToken()
	}
	s.tokens = append(s.tokens, token.New(token.EOF, "", s.line))
	return s.tokens, s.diags
}

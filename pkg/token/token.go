// Package token defines the StarBird token model shared by the lexer, parser and AST.
package token

import "fmt"

// Type identifies the kind of a lexer token.
type Type int

const (
	// Single-character punctuation
	LeftParen  Type = iota // (
	RightParen             // )
	LeftBrace              // {
	RightBrace             // }
	Comma                  // ,
	Dot                    // .
	Minus                  // -
	Plus                   // +
	Semicolon              // ;
	Slash                  // /
	Star                   // *

	// One or two character operators
	Bang         // !
	BangEqual    // !=
	Equal        // =
	EqualEqual   // ==
	Greater      // >
	GreaterEqual // >=
	Less         // <
	LessEqual    // <=

	// Literals
	Identifier
	String
	Number

	// Keywords
	And
	Class
	Else
	False
	Fun
	For
	If
	Null
	Or
	Print
	Return
	Super
	This
	True
	Var
	While

	EOF
)

var names = [...]string{
	LeftParen:    "LEFT_PAREN",
	RightParen:   "RIGHT_PAREN",
	LeftBrace:    "LEFT_BRACE",
	RightBrace:   "RIGHT_BRACE",
	Comma:        "COMMA",
	Dot:          "DOT",
	Minus:        "MINUS",
	Plus:         "PLUS",
	Semicolon:    "SEMICOLON",
	Slash:        "SLASH",
	Star:         "STAR",
	Bang:         "BANG",
	BangEqual:    "BANG_EQUAL",
	Equal:        "EQUAL",
	EqualEqual:   "EQUAL_EQUAL",
	Greater:      "GREATER",
	GreaterEqual: "GREATER_EQUAL",
	Less:         "LESS",
	LessEqual:    "LESS_EQUAL",
	Identifier:   "IDENTIFIER",
	String:       "STRING",
	Number:       "NUMBER",
	And:          "AND",
	Class:        "CLASS",
	Else:         "ELSE",
	False:        "FALSE",
	Fun:          "FUN",
	For:          "FOR",
	If:           "IF",
	Null:         "NULL",
	Or:           "OR",
	Print:        "PRINT",
	Return:       "RETURN",
	Super:        "SUPER",
	This:         "THIS",
	True:         "TRUE",
	Var:          "VAR",
	While:        "WHILE",
	EOF:          "EOF",
}

func (t Type) String() string {
	if t >= 0 && int(t) < len(names) {
		return names[t]
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

var keywords = map[string]Type{
	"and":    And,
	"class":  Class,
	"else":   Else,
	"false":  False,
	"for":    For,
	"fun":    Fun,
	"if":     If,
	"null":   Null,
	"or":     Or,
	"print":  Print,
	"return": Return,
	"super":  Super,
	"this":   This,
	"true":   True,
	"var":    Var,
	"while":  While,
}

// Lookup returns the keyword type for ident, or Identifier when ident is not reserved.
func Lookup(ident string) Type {
	if t, ok := keywords[ident]; ok {
		return t
	}
	return Identifier
}

// IsStatementStart reports whether t begins a statement for the purpose of
// parser error recovery.
func IsStatementStart(t Type) bool {
	switch t {
	case Class, Fun, Var, For, If, While, Print, Return:
		return true
	}
	return false
}

// Token is a single lexeme produced by the lexer. Tokens are never mutated
// after they are created.
type Token struct {
	Type    Type
	Lexeme  string
	Literal any // float64 for Number, string for String, nil otherwise
	Line    int
}

// New creates a token without a literal value.
func New(typ Type, lexeme string, line int) Token {
	return Token{Type: typ, Lexeme: lexeme, Line: line}
}

func (t Token) String() string {
	switch lit := t.Literal.(type) {
	case nil:
		return fmt.Sprintf("%s %s", t.Type, t.Lexeme)
	case string:
		return fmt.Sprintf("%s %s %s", t.Type, t.Lexeme, lit)
	default:
		return fmt.Sprintf("%s %s %v", t.Type, t.Lexeme, lit)
	}
}

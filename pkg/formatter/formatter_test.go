package formatter_test

import (
	"testing"

	"github.com/starbird-lang/starbird/pkg/ast"
	"github.com/starbird-lang/starbird/pkg/formatter"
	"github.com/starbird-lang/starbird/pkg/parser"
	"github.com/starbird-lang/starbird/pkg/token"
)

func format(t *testing.T, src string) string {
	t.Helper()
	stmts, diags := parser.ParseSource(src)
	if len(diags) > 0 {
		t.Fatalf("parse errors in %q: %v", src, diags)
	}
	return formatter.Format(stmts)
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"empty", "", ""},
		{"print", `print   1+2*3 ;`, "print 1 + 2 * 3;\n"},
		{"number literals", `print 3.0; print 2.50;`, "print 3;\nprint 2.5;\n"},
		{"strings", `print "a"+"b";`, "print \"a\" + \"b\";\n"},
		{"var", `var a;var b=null;`, "var a;\nvar b = null;\n"},
		{"grouping kept", `print (1 + 2) * 3;`, "print (1 + 2) * 3;\n"},
		{"logical", `print a or b and !c;`, "print a or b and !c;\n"},
		{"assignment", `a = b = 1;`, "a = b = 1;\n"},
		{"unary", `print - -x;`, "print --x;\n"},
		{"empty block", `{}`, "{}\n"},
		{
			"nested blocks",
			`{ var a = 1; { print a; } }`,
			"{\n  var a = 1;\n  {\n    print a;\n  }\n}\n",
		},
		{
			"if with blocks",
			`if (a) { print 1; } else { print 2; }`,
			"if (a) {\n  print 1;\n} else {\n  print 2;\n}\n",
		},
		{
			"if without blocks",
			`if (a) print 1; else print 2;`,
			"if (a)\n  print 1;\nelse\n  print 2;\n",
		},
		{
			"else if chain",
			`if (a) { print 1; } else if (b) { print 2; } else { print 3; }`,
			"if (a) {\n  print 1;\n} else if (b) {\n  print 2;\n} else {\n  print 3;\n}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := format(t, tt.src); got != tt.want {
				t.Errorf("got:\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestFormatIdempotent(t *testing.T) {
	srcs := []string{
		"var greeting = \"hi\";\n{\n  var greeting = \"inner\";\n  print greeting;\n}\nprint greeting;\n",
		"if (x == 1) {\n  print \"one\";\n} else if (x == 2)\n  print \"two\";\nelse\n  print \"many\";\n",
		"print -(1 + 2) * (3 - 4) / 5;\n",
	}
	for _, src := range srcs {
		once := format(t, src)
		twice := format(t, once)
		if once != twice {
			t.Errorf("not idempotent:\nfirst:\n%s\nsecond:\n%s", once, twice)
		}
	}
}

func TestFormatAddsParensForBuiltTrees(t *testing.T) {
	plus := token.New(token.Plus, "+", 1)
	minus := token.New(token.Minus, "-", 1)
	star := token.New(token.Star, "*", 1)
	num := func(n float64) ast.Expr { return &ast.Literal{Value: n} }

	// (1 + 2) * 3 without a Grouping node
	left := &ast.Binary{Left: &ast.Binary{Left: num(1), Operator: plus, Right: num(2)}, Operator: star, Right: num(3)}
	// 1 - (2 - 3) without a Grouping node
	right := &ast.Binary{Left: num(1), Operator: minus, Right: &ast.Binary{Left: num(2), Operator: minus, Right: num(3)}}
	// -(1 + 2)
	neg := &ast.Unary{Operator: minus, Operand: &ast.Binary{Left: num(1), Operator: plus, Right: num(2)}}

	got := formatter.Format([]ast.Stmt{
		&ast.Print{Expr: left},
		&ast.Print{Expr: right},
		&ast.Print{Expr: neg},
	})
	want := "print (1 + 2) * 3;\nprint 1 - (2 - 3);\nprint -(1 + 2);\n"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatKeepsElseWithOuterIf(t *testing.T) {
	a := &ast.Variable{Name: token.New(token.Identifier, "a", 1)}
	b := &ast.Variable{Name: token.New(token.Identifier, "b", 1)}
	one := &ast.Print{Expr: &ast.Literal{Value: 1.0}}
	two := &ast.Print{Expr: &ast.Literal{Value: 2.0}}

	// if (a) { if (b) print 1; } else print 2;  built without the block
	outer := &ast.If{
		Condition: a,
		Then:      &ast.If{Condition: b, Then: one},
		Else:      two,
	}
	got := formatter.Format([]ast.Stmt{outer})
	want := "if (a) {\n  if (b)\n    print 1;\n} else\n  print 2;\n"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}

	stmts, diags := parser.ParseSource(got)
	if len(diags) > 0 {
		t.Fatalf("formatted output does not parse: %v", diags)
	}
	if dump := ast.SprintProgram(stmts); dump != "(if a (block (if b (print 1))) (print 2))" {
		t.Errorf("else moved on re-parse: %s", dump)
	}

	// An inner if that already has an else needs no braces.
	full := &ast.If{
		Condition: a,
		Then:      &ast.If{Condition: b, Then: one, Else: two},
		Else:      two,
	}
	want = "if (a)\n  if (b)\n    print 1;\n  else\n    print 2;\nelse\n  print 2;\n"
	if got := formatter.Format([]ast.Stmt{full}); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatNegativeLiteralOperand(t *testing.T) {
	minus := token.New(token.Minus, "-", 1)
	neg := &ast.Unary{Operator: minus, Operand: &ast.Literal{Value: -1.0}}
	got := formatter.Format([]ast.Stmt{&ast.Print{Expr: neg}})
	if got != "print -(-1);\n" {
		t.Errorf("got %q", got)
	}
}

func TestHasComments(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"print 1;", false},
		{"// header\nprint 1;", true},
		{"print 1; // trailing", true},
		{`print "http://example.com";`, false},
		{"print \"multi\nline // still string\";", false},
		{"print 4 / 2;", false},
	}
	for _, tt := range tests {
		if got := formatter.HasComments(tt.src); got != tt.want {
			t.Errorf("HasComments(%q) = %v, want %v", tt.src, got, tt.want)
		}
	}
}

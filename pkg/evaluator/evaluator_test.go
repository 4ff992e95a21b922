package evaluator_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/starbird-lang/starbird/pkg/diagnostics"
	"github.com/starbird-lang/starbird/pkg/evaluator"
	"github.com/starbird-lang/starbird/pkg/parser"
)

// --- helpers ---

// run parses and executes source with a fresh interpreter, returning what was
// printed and the runtime error, if any. Parse errors fail the test.
func run(t *testing.T, src string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	in := evaluator.New(evaluator.WithOutput(&out))
	err := runIn(t, in, src)
	return out.String(), err
}

func runIn(t *testing.T, in *evaluator.Interpreter, src string) error {
	t.Helper()
	stmts, diags := parser.ParseSource(src)
	if len(diags) > 0 {
		t.Fatalf("parse errors: %s", diagnostics.FormatDiagnostics(diags, true))
	}
	return in.Interpret(stmts)
}

// mustRun is like run but also fails on runtime errors.
func mustRun(t *testing.T, src string) string {
	t.Helper()
	out, err := run(t, src)
	if err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}
	return out
}

// expectOutput asserts the printed lines.
func expectOutput(t *testing.T, src string, lines ...string) {
	t.Helper()
	got := mustRun(t, src)
	want := ""
	if len(lines) > 0 {
		want = strings.Join(lines, "\n") + "\n"
	}
	if got != want {
		t.Errorf("output mismatch\n got: %q\nwant: %q", got, want)
	}
}

// expectRuntimeError asserts a runtime error with the given code and message.
func expectRuntimeError(t *testing.T, src, code, message string) *evaluator.RuntimeError {
	t.Helper()
	_, err := run(t, src)
	if err == nil {
		t.Fatalf("expected runtime error for %q", src)
	}
	var rerr *evaluator.RuntimeError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *RuntimeError, got %T: %v", err, err)
	}
	if rerr.Code != code {
		t.Errorf("code: got %s, want %s", rerr.Code, code)
	}
	if rerr.Message != message {
		t.Errorf("message: got %q, want %q", rerr.Message, message)
	}
	return rerr
}

// --- print and literals ---

func TestPrintLiterals(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`print 3.0;`, "3"},
		{`print 2.5;`, "2.5"},
		{`print 0.1 + 0.2;`, "0.30000000000000004"},
		{`print 1000000;`, "1000000"},
		{`print "hi";`, "hi"},
		{`print "";`, ""},
		{`print true;`, "true"},
		{`print false;`, "false"},
		{`print null;`, "null"},
		{`print -0.5;`, "-0.5"},
		{`print 1 / 0;`, "+Inf"},
		{`print -1 / 0;`, "-Inf"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			expectOutput(t, tt.src, tt.want)
		})
	}
}

// --- arithmetic and comparison ---

func TestArithmetic(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`print 1 + 2 * 3;`, "7"},
		{`print (1 + 2) * 3;`, "9"},
		{`print 10 - 4 - 3;`, "3"},
		{`print 8 / 4 / 2;`, "1"},
		{`print 7 / 2;`, "3.5"},
		{`print -(3);`, "-3"},
		{`print --3;`, "3"},
		{`print "a" + "b";`, "ab"},
		{`print "a" + "b" + "c";`, "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			expectOutput(t, tt.src, tt.want)
		})
	}
}

func TestComparison(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`print 1 < 2;`, "true"},
		{`print 2 < 1;`, "false"},
		{`print 2 <= 2;`, "true"},
		{`print 3 > 2;`, "true"},
		{`print 2 >= 3;`, "false"},
		{`print 1 == 1;`, "true"},
		{`print 1 != 1;`, "false"},
		{`print "a" == "a";`, "true"},
		{`print "a" == "b";`, "false"},
		{`print null == null;`, "true"},
		{`print null == false;`, "false"},
		{`print 0 == false;`, "false"},
		{`print "1" == 1;`, "false"},
		{`print true != "true";`, "true"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			expectOutput(t, tt.src, tt.want)
		})
	}
}

// --- truthiness and logic ---

func TestNotUsesTruthiness(t *testing.T) {
	expectOutput(t, `print !null; print !false; print !0; print !""; print !"x";`,
		"true", "true", "false", "false", "false")
}

func TestLogicalReturnsOperand(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`print null or "default";`, "default"},
		{`print "first" or "second";`, "first"},
		{`print false and "x";`, "false"},
		{`print 1 and 2;`, "2"},
		{`print null and 1;`, "null"},
		{`print 0 or 1;`, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			expectOutput(t, tt.src, tt.want)
		})
	}
}

func TestLogicalShortCircuits(t *testing.T) {
	// The right operand would fail if it were evaluated.
	expectOutput(t, `print true or undefinedName;`, "true")
	expectOutput(t, `print false and undefinedName;`, "false")
	expectOutput(t, `var a = 1; false and (a = 2); print a;`, "1")
	expectOutput(t, `var a = 1; true or (a = 2); print a;`, "1")
	expectOutput(t, `var a = 1; true and (a = 2); print a;`, "2")
}

// --- variables and scope ---

func TestVariables(t *testing.T) {
	expectOutput(t, `var a = 1; print a;`, "1")
	expectOutput(t, `var a; print a;`, "null")
	expectOutput(t, `var a = 1; var a = 2; print a;`, "2")
	expectOutput(t, `var a = 1; a = a + 1; print a;`, "2")
}

func TestAssignmentIsExpression(t *testing.T) {
	expectOutput(t, `var a; var b; a = b = 3; print a; print b;`, "3", "3")
	expectOutput(t, `var a; print a = "x";`, "x")
}

func TestBlockShadowing(t *testing.T) {
	src := `
var a = "global";
{
  var a = "block";
  print a;
}
print a;
`
	expectOutput(t, src, "block", "global")
}

func TestBlockAssignsOuter(t *testing.T) {
	src := `
var a = 1;
{
  a = 2;
  { a = a + 1; }
}
print a;
`
	expectOutput(t, src, "3")
}

func TestBlockLocalsDoNotLeak(t *testing.T) {
	rerr := expectRuntimeError(t, "{ var inner = 1; }\nprint inner;",
		diagnostics.EUndefined, "Undefined variable 'inner'.")
	if rerr.Token.Line != 2 {
		t.Errorf("line: got %d, want 2", rerr.Token.Line)
	}
}

func TestInitializerSeesOuterBinding(t *testing.T) {
	expectOutput(t, `var a = 1; { var a = a + 1; print a; } print a;`, "2", "1")
}

// --- control flow ---

func TestIf(t *testing.T) {
	expectOutput(t, `if (true) print "then"; else print "else";`, "then")
	expectOutput(t, `if (false) print "then"; else print "else";`, "else")
	expectOutput(t, `if (null) print "then";`)
	expectOutput(t, `if (0) print "zero is truthy";`, "zero is truthy")
	expectOutput(t, `if (false) print 1; else if (true) print 2; else print 3;`, "2")
}

func TestIfBranchAssignsEnclosingScope(t *testing.T) {
	expectOutput(t, `var a = 1; if (a == 1) a = 2; else a = 3; print a;`, "2")
}

// --- runtime errors ---

func TestTypeErrors(t *testing.T) {
	tests := []struct {
		src     string
		message string
		lexeme  string
	}{
		{`print 1 + "b";`, "Operands must be two numbers or two strings.", "+"},
		{`print "a" + 1;`, "Operands must be two numbers or two strings.", "+"},
		{`print null + null;`, "Operands must be two numbers or two strings.", "+"},
		{`print 1 - "b";`, "Operands must be numbers.", "-"},
		{`print "a" * 2;`, "Operands must be numbers.", "*"},
		{`print true / 1;`, "Operands must be numbers.", "/"},
		{`print "a" < "b";`, "Operands must be numbers.", "<"},
		{`print 1 >= null;`, "Operands must be numbers.", ">="},
		{`print -"a";`, "Operand must be a number.", "-"},
		{`print -null;`, "Operand must be a number.", "-"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			rerr := expectRuntimeError(t, tt.src, diagnostics.EType, tt.message)
			if rerr.Token.Lexeme != tt.lexeme {
				t.Errorf("token: got %q, want %q", rerr.Token.Lexeme, tt.lexeme)
			}
		})
	}
}

func TestFailedPrintEmitsNothing(t *testing.T) {
	out, err := run(t, `print 1 + "b";`)
	if err == nil {
		t.Fatal("expected runtime error")
	}
	if out != "" {
		t.Errorf("expected no output, got %q", out)
	}
}

func TestUndefinedVariable(t *testing.T) {
	expectRuntimeError(t, `print y;`, diagnostics.EUndefined, "Undefined variable 'y'.")
	expectRuntimeError(t, `y = 1;`, diagnostics.EUndefined, "Undefined variable 'y'.")
}

func TestUndefinedAssignDoesNotDefine(t *testing.T) {
	var out bytes.Buffer
	in := evaluator.New(evaluator.WithOutput(&out))
	if err := runIn(t, in, `y = 1;`); err == nil {
		t.Fatal("expected runtime error")
	}
	if _, ok := in.Globals().Get("y"); ok {
		t.Error("failed assignment must not define the variable")
	}
}

func TestRuntimeErrorAbortsRemainingStatements(t *testing.T) {
	out, err := run(t, "print 1;\nprint -\"x\";\nprint 3;")
	if err == nil {
		t.Fatal("expected runtime error")
	}
	if out != "1\n" {
		t.Errorf("expected only output before the error, got %q", out)
	}
	var rerr *evaluator.RuntimeError
	if errors.As(err, &rerr) {
		d := rerr.Diagnostic()
		if d.Line != 2 || d.Code != diagnostics.EType {
			t.Errorf("unexpected diagnostic: %+v", d)
		}
	}
}

func TestRuntimeDiagnosticWhere(t *testing.T) {
	tests := []struct {
		source string
		code   string
		where  string
	}{
		{`print 1 - "x";`, diagnostics.EType, " at '-'"},
		{`print -"x";`, diagnostics.EType, " at '-'"},
		{`print "a" >= 1;`, diagnostics.EType, " at '>='"},
		{`print true + 1;`, diagnostics.EType, " at '+'"},
		{`print missing;`, diagnostics.EUndefined, ""},
	}
	for _, tt := range tests {
		_, err := run(t, tt.source)
		var rerr *evaluator.RuntimeError
		if !errors.As(err, &rerr) {
			t.Fatalf("%s: expected RuntimeError, got %v", tt.source, err)
		}
		d := rerr.Diagnostic()
		if d.Code != tt.code || d.Where != tt.where {
			t.Errorf("%s: got code %s where %q, want %s %q", tt.source, d.Code, d.Where, tt.code, tt.where)
		}
	}
}

func TestScopeRestoredAfterError(t *testing.T) {
	var out bytes.Buffer
	in := evaluator.New(evaluator.WithOutput(&out))
	if err := runIn(t, in, `var a = "outer"; { var a = "inner"; print -a; }`); err == nil {
		t.Fatal("expected runtime error")
	}
	// A later run on the same interpreter sees the global scope again.
	if err := runIn(t, in, `print a;`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := out.String(); got != "outer\n" {
		t.Errorf("got %q", got)
	}
}

// --- persistent globals ---

func TestGlobalsPersistAcrossCalls(t *testing.T) {
	var out bytes.Buffer
	in := evaluator.New(evaluator.WithOutput(&out))
	for _, line := range []string{`var count = 1;`, `count = count + 1;`, `print count;`} {
		if err := runIn(t, in, line); err != nil {
			t.Fatalf("%s: %v", line, err)
		}
	}
	if out.String() != "2\n" {
		t.Errorf("got %q", out.String())
	}
}

func TestPackageInterpret(t *testing.T) {
	env := evaluator.NewEnv(nil)
	env.Define("preset", evaluator.NewNumber(41))

	stmts, diags := parser.ParseSource(`preset = preset + 1; print preset;`)
	if len(diags) > 0 {
		t.Fatalf("parse errors: %v", diags)
	}
	var out bytes.Buffer
	if err := evaluator.Interpret(stmts, env, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "42\n" {
		t.Errorf("got %q", out.String())
	}
	v, _ := env.Get("preset")
	if !evaluator.Equal(v, evaluator.NewNumber(42)) {
		t.Errorf("env not updated: %v", v)
	}
}

// --- trace ---

func TestTraceEvents(t *testing.T) {
	var events []evaluator.TraceEvent
	var out bytes.Buffer
	in := evaluator.New(
		evaluator.WithOutput(&out),
		evaluator.WithRunID("run-1"),
		evaluator.WithTrace(func(ev evaluator.TraceEvent) { events = append(events, ev) }),
	)
	if err := runIn(t, in, "var x = 1;\n{ print x; }"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var kinds []string
	for _, ev := range events {
		if ev.RunID != "run-1" {
			t.Errorf("event %s: run id %q", ev.Event, ev.RunID)
		}
		if ev.Timestamp == "" {
			t.Errorf("event %s: missing timestamp", ev.Event)
		}
		kinds = append(kinds, string(ev.Event))
	}
	want := []string{
		"run_start",
		"stmt_start", "stmt_end",
		"stmt_start", "block_enter",
		"stmt_start", "print", "stmt_end",
		"block_exit", "stmt_end",
		"run_end",
	}
	if strings.Join(kinds, ",") != strings.Join(want, ",") {
		t.Errorf("events:\n got %v\nwant %v", kinds, want)
	}

	for _, ev := range events {
		if ev.Event == evaluator.TracePrint && (ev.Data["value"] != "1" || ev.Data["json"] != "1") {
			t.Errorf("print event data: %v", ev.Data)
		}
	}
}

func TestTraceRuntimeError(t *testing.T) {
	var last []evaluator.TraceEvent
	in := evaluator.New(
		evaluator.WithOutput(&bytes.Buffer{}),
		evaluator.WithTrace(func(ev evaluator.TraceEvent) { last = append(last, ev) }),
	)
	if err := runIn(t, in, "print missing;"); err == nil {
		t.Fatal("expected runtime error")
	}
	if len(last) < 2 {
		t.Fatalf("too few events: %v", last)
	}
	errEv := last[len(last)-2]
	if errEv.Event != evaluator.TraceRuntimeError {
		t.Fatalf("expected runtime_error before run_end, got %s", errEv.Event)
	}
	if errEv.Data["code"] != diagnostics.EUndefined || errEv.Line != 1 {
		t.Errorf("unexpected runtime_error event: %+v", errEv)
	}
	if last[len(last)-1].Event != evaluator.TraceRunEnd {
		t.Errorf("expected run_end last, got %s", last[len(last)-1].Event)
	}
}

func TestTracePrintCarriesJSON(t *testing.T) {
	var prints []evaluator.TraceEvent
	in := evaluator.New(
		evaluator.WithOutput(&bytes.Buffer{}),
		evaluator.WithTrace(func(ev evaluator.TraceEvent) {
			if ev.Event == evaluator.TracePrint {
				prints = append(prints, ev)
			}
		}),
	)
	if err := runIn(t, in, `print "1"; print 1; print null; print 1 / 0;`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []struct{ value, json string }{
		{"1", `"1"`},
		{"1", "1"},
		{"null", "null"},
		{"+Inf", `"+Inf"`},
	}
	if len(prints) != len(want) {
		t.Fatalf("got %d print events, want %d", len(prints), len(want))
	}
	for i, w := range want {
		if prints[i].Data["value"] != w.value || prints[i].Data["json"] != w.json {
			t.Errorf("print %d: got %v, want value %q json %q", i, prints[i].Data, w.value, w.json)
		}
	}
}

// Package runtime provides the top-level StarBird runtime orchestrator.
package runtime

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/starbird-lang/starbird/pkg/ast"
	"github.com/starbird-lang/starbird/pkg/diagnostics"
	"github.com/starbird-lang/starbird/pkg/evaluator"
	"github.com/starbird-lang/starbird/pkg/formatter"
	"github.com/starbird-lang/starbird/pkg/lexer"
	"github.com/starbird-lang/starbird/pkg/parser"
	"github.com/starbird-lang/starbird/pkg/token"
)

// Exit codes, following sysexits.h.
const (
	ExitOK       = 0
	ExitCompile  = 65 // EX_DATAERR
	ExitRuntime  = 70 // EX_SOFTWARE
	ExitIO       = 74 // EX_IOERR
	ExitUsage    = 64 // EX_USAGE
	ExitInternal = 1
)

// Result holds the outcome of a successful run.
type Result struct {
	Statements int
}

// Runtime wires the StarBird pipeline together. It owns one interpreter, so
// globals defined by one Run are visible to the next.
type Runtime struct {
	out    io.Writer
	runID  string
	trace  func(event evaluator.TraceEvent)
	interp *evaluator.Interpreter
}

// Option is a functional option for configuring the Runtime.
type Option func(*Runtime)

// WithOutput sets where print statements write. The default is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(rt *Runtime) {
		rt.out = w
	}
}

// WithRunID sets the run ID for trace events.
func WithRunID(id string) Option {
	return func(rt *Runtime) {
		rt.runID = id
	}
}

// WithTrace sets the trace callback.
func WithTrace(fn func(event evaluator.TraceEvent)) Option {
	return func(rt *Runtime) {
		rt.trace = fn
	}
}

// New creates a new Runtime with the given options.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		out:   os.Stdout,
		runID: "cli",
	}
	for _, opt := range opts {
		opt(rt)
	}
	rt.interp = evaluator.New(
		evaluator.WithOutput(rt.out),
		evaluator.WithTrace(rt.trace),
		evaluator.WithRunID(rt.runID),
	)
	return rt
}

// Run lexes, parses and executes a program. Compile-time diagnostics are
// returned as a *DiagnosticError and nothing runs; a runtime error is
// returned as *evaluator.RuntimeError after the statements before it ran.
func (rt *Runtime) Run(source string) (*Result, error) {
	stmts, diags := parser.ParseSource(source)
	if len(diags) > 0 {
		return nil, &DiagnosticError{Diagnostics: diags}
	}
	if err := rt.interp.Interpret(stmts); err != nil {
		return nil, err
	}
	return &Result{Statements: len(stmts)}, nil
}

// Check lexes and parses a program without executing it.
func (rt *Runtime) Check(source string) diagnostics.List {
	_, diags := parser.ParseSource(source)
	return diags
}

// Format parses and formats a program.
func (rt *Runtime) Format(source string) (string, error) {
	stmts, diags := parser.ParseSource(source)
	if len(diags) > 0 {
		return "", &DiagnosticError{Diagnostics: diags}
	}
	return formatter.Format(stmts), nil
}

// Tokens returns the token stream of source, one token per line.
// Lexical errors are returned alongside the tokens that were recovered.
func (rt *Runtime) Tokens(source string) (string, diagnostics.List) {
	tokens, diags := lexer.Tokenize(source)
	return formatTokens(tokens), diags
}

func formatTokens(tokens []token.Token) string {
	var b strings.Builder
	for _, tok := range tokens {
		fmt.Fprintf(&b, "%d %s\n", tok.Line, tok)
	}
	return b.String()
}

// Tree parses source and returns its AST dump.
func (rt *Runtime) Tree(source string) (string, error) {
	stmts, diags := parser.ParseSource(source)
	if len(diags) > 0 {
		return "", &DiagnosticError{Diagnostics: diags}
	}
	if len(stmts) == 0 {
		return "", nil
	}
	return ast.SprintProgram(stmts) + "\n", nil
}

// Globals returns the persistent global scope.
func (rt *Runtime) Globals() *evaluator.Env {
	return rt.interp.Globals()
}

// Diagnostics converts any error produced by the runtime into diagnostics.
func Diagnostics(err error) diagnostics.List {
	if err == nil {
		return nil
	}
	var derr *DiagnosticError
	if errors.As(err, &derr) {
		return derr.Diagnostics
	}
	var rerr *evaluator.RuntimeError
	if errors.As(err, &rerr) {
		return diagnostics.List{rerr.Diagnostic()}
	}
	return diagnostics.List{diagnostics.MakeDiag(diagnostics.EIO, 0, "", err.Error())}
}

// ExitCode maps an error returned by the runtime to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var derr *DiagnosticError
	if errors.As(err, &derr) {
		if diagnostics.List(derr.Diagnostics).HasCompileErrors() {
			return ExitCompile
		}
		return ExitInternal
	}
	var rerr *evaluator.RuntimeError
	if errors.As(err, &rerr) {
		return ExitRuntime
	}
	return ExitIO
}

// DiagnosticError wraps diagnostics as an error.
type DiagnosticError struct {
	Diagnostics []diagnostics.Diagnostic
}

func (e *DiagnosticError) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
	return strings.Join(msgs, "; ")
}

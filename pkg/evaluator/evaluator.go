package evaluator

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/starbird-lang/starbird/pkg/ast"
	"github.com/starbird-lang/starbird/pkg/diagnostics"
	"github.com/starbird-lang/starbird/pkg/token"
)

// TraceEventType identifies the type of a trace event.
type TraceEventType string

const (
	TraceRunStart     TraceEventType = "run_start"
	TraceRunEnd       TraceEventType = "run_end"
	TraceStmtStart    TraceEventType = "stmt_start"
	TraceStmtEnd      TraceEventType = "stmt_end"
	TraceBlockEnter   TraceEventType = "block_enter"
	TraceBlockExit    TraceEventType = "block_exit"
	TracePrint        TraceEventType = "print"
	TraceRuntimeError TraceEventType = "runtime_error"
)

// TraceEvent represents a single trace event emitted during execution.
type TraceEvent struct {
	Timestamp string            `json:"ts"`
	RunID     string            `json:"runId"`
	Event     TraceEventType    `json:"event"`
	Line      int               `json:"line,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
}

// RuntimeError is raised by a type mismatch on an operator or a reference to
// an undefined variable. Token is the operator or name at fault.
type RuntimeError struct {
	Token   token.Token
	Code    string
	Message string
}

func (e *RuntimeError) Error() string {
	return e.Message
}

// Diagnostic converts the error for the diagnostic channel. Type errors name
// the operator they were raised on.
func (e *RuntimeError) Diagnostic() diagnostics.Diagnostic {
	where := ""
	if e.Code == diagnostics.EType {
		where = " at '" + e.Token.Lexeme + "'"
	}
	return diagnostics.MakeDiag(e.Code, e.Token.Line, where, e.Message)
}

func typeError(tok token.Token, msg string) *RuntimeError {
	return &RuntimeError{Token: tok, Code: diagnostics.EType, Message: msg}
}

func undefined(name token.Token) *RuntimeError {
	return &RuntimeError{
		Token:   name,
		Code:    diagnostics.EUndefined,
		Message: fmt.Sprintf("Undefined variable '%s'.", name.Lexeme),
	}
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithOutput sets the sink for print statements. The default is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(in *Interpreter) { in.out = w }
}

// WithGlobals makes the interpreter run against a caller-owned global scope.
func WithGlobals(env *Env) Option {
	return func(in *Interpreter) { in.globals = env }
}

// WithTrace installs a callback that receives every trace event.
func WithTrace(fn func(TraceEvent)) Option {
	return func(in *Interpreter) { in.trace = fn }
}

// WithRunID sets the run id stamped on trace events.
func WithRunID(id string) Option {
	return func(in *Interpreter) { in.runID = id }
}

// Interpreter executes programs. Its global scope lives as long as the
// interpreter, so successive Interpret calls share variables.
type Interpreter struct {
	out     io.Writer
	globals *Env
	env     *Env // current scope
	trace   func(TraceEvent)
	runID   string
}

// New creates an interpreter with a fresh global scope unless WithGlobals
// supplies one.
func New(opts ...Option) *Interpreter {
	in := &Interpreter{out: os.Stdout}
	for _, opt := range opts {
		opt(in)
	}
	if in.globals == nil {
		in.globals = NewEnv(nil)
	}
	in.env = in.globals
	return in
}

// Globals returns the global scope.
func (in *Interpreter) Globals() *Env {
	return in.globals
}

// Interpret executes stmts in order against the global scope. The first
// runtime error stops execution; the statements after it do not run.
func (in *Interpreter) Interpret(stmts []ast.Stmt) error {
	in.env = in.globals
	in.emit(TraceRunStart, 0, nil)
	defer in.emit(TraceRunEnd, 0, nil)

	for _, stmt := range stmts {
		if err := in.execute(stmt); err != nil {
			var rerr *RuntimeError
			if errors.As(err, &rerr) {
				in.emit(TraceRuntimeError, rerr.Token.Line, map[string]string{
					"code":    rerr.Code,
					"message": rerr.Message,
				})
			}
			return err
		}
	}
	return nil
}

// Interpret runs stmts once against env, printing to out.
func Interpret(stmts []ast.Stmt, env *Env, out io.Writer) error {
	return New(WithGlobals(env), WithOutput(out)).Interpret(stmts)
}

func (in *Interpreter) emit(event TraceEventType, line int, data map[string]string) {
	if in.trace == nil {
		return
	}
	in.trace(TraceEvent{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		RunID:     in.runID,
		Event:     event,
		Line:      line,
		Data:      data,
	})
}

// --- statements ---

func (in *Interpreter) execute(stmt ast.Stmt) error {
	line := ast.Line(stmt)
	in.emit(TraceStmtStart, line, map[string]string{"kind": stmt.Kind()})

	var err error
	switch s := stmt.(type) {
	case *ast.Expression:
		_, err = in.evaluate(s.Expr)

	case *ast.Print:
		var val Value
		val, err = in.evaluate(s.Expr)
		if err == nil {
			text := Stringify(val)
			if _, werr := fmt.Fprintln(in.out, text); werr != nil {
				return fmt.Errorf("print: %w", werr)
			}
			in.emit(TracePrint, line, map[string]string{"value": text, "json": ValueToJSONString(val)})
		}

	case *ast.Var:
		val := Null
		if s.Initializer != nil {
			val, err = in.evaluate(s.Initializer)
		}
		if err == nil {
			in.env.Define(s.Name.Lexeme, val)
		}

	case *ast.Block:
		in.emit(TraceBlockEnter, line, nil)
		err = in.executeBlock(s.Statements, NewEnv(in.env))
		in.emit(TraceBlockExit, line, nil)

	case *ast.If:
		var cond Value
		cond, err = in.evaluate(s.Condition)
		if err == nil {
			if Truthy(cond) {
				err = in.execute(s.Then)
			} else if s.Else != nil {
				err = in.execute(s.Else)
			}
		}

	default:
		return fmt.Errorf("unsupported statement type: %T", stmt)
	}

	if err != nil {
		return err
	}
	in.emit(TraceStmtEnd, line, nil)
	return nil
}

// executeBlock runs stmts with env as the current scope and restores the
// previous scope on every exit path.
func (in *Interpreter) executeBlock(stmts []ast.Stmt, env *Env) error {
	prev := in.env
	in.env = env
	defer func() { in.env = prev }()

	for _, stmt := range stmts {
		if err := in.execute(stmt); err != nil {
			return err
		}
	}
	return nil
}

// --- expressions ---

func (in *Interpreter) evaluate(expr ast.Expr) (Value, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		return FromLiteral(e.Value), nil

	case *ast.Grouping:
		return in.evaluate(e.Inner)

	case *ast.Variable:
		if val, ok := in.env.Get(e.Name.Lexeme); ok {
			return val, nil
		}
		return nil, undefined(e.Name)

	case *ast.Assign:
		val, err := in.evaluate(e.Value)
		if err != nil {
			return nil, err
		}
		if !in.env.Assign(e.Name.Lexeme, val) {
			return nil, undefined(e.Name)
		}
		return val, nil

	case *ast.Unary:
		return in.evalUnary(e)

	case *ast.Binary:
		return in.evalBinary(e)

	case *ast.Logical:
		left, err := in.evaluate(e.Left)
		if err != nil {
			return nil, err
		}
		if e.Operator.Type == token.Or {
			if Truthy(left) {
				return left, nil
			}
		} else if !Truthy(left) {
			return left, nil
		}
		return in.evaluate(e.Right)
	}

	return nil, fmt.Errorf("unsupported expression type: %T", expr)
}

func (in *Interpreter) evalUnary(e *ast.Unary) (Value, error) {
	operand, err := in.evaluate(e.Operand)
	if err != nil {
		return nil, err
	}

	switch e.Operator.Type {
	case token.Bang:
		return NewBool(!Truthy(operand)), nil
	case token.Minus:
		n, ok := operand.(NumberValue)
		if !ok {
			return nil, typeError(e.Operator, "Operand must be a number.")
		}
		return NewNumber(-n.Value), nil
	}
	return nil, typeError(e.Operator, fmt.Sprintf("Unknown unary operator '%s'.", e.Operator.Lexeme))
}

func (in *Interpreter) evalBinary(e *ast.Binary) (Value, error) {
	left, err := in.evaluate(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := in.evaluate(e.Right)
	if err != nil {
		return nil, err
	}

	op := e.Operator
	switch op.Type {
	case token.EqualEqual:
		return NewBool(Equal(left, right)), nil
	case token.BangEqual:
		return NewBool(!Equal(left, right)), nil

	case token.Plus:
		if l, ok := left.(NumberValue); ok {
			if r, ok := right.(NumberValue); ok {
				return NewNumber(l.Value + r.Value), nil
			}
		}
		if l, ok := left.(StringValue); ok {
			if r, ok := right.(StringValue); ok {
				return NewString(l.Value + r.Value), nil
			}
		}
		return nil, typeError(op, "Operands must be two numbers or two strings.")
	}

	l, lok := left.(NumberValue)
	r, rok := right.(NumberValue)
	if !lok || !rok {
		return nil, typeError(op, "Operands must be numbers.")
	}

	switch op.Type {
	case token.Minus:
		return NewNumber(l.Value - r.Value), nil
	case token.Star:
		return NewNumber(l.Value * r.Value), nil
	case token.Slash:
		return NewNumber(l.Value / r.Value), nil
	case token.Greater:
		return NewBool(l.Value > r.Value), nil
	case token.GreaterEqual:
		return NewBool(l.Value >= r.Value), nil
	case token.Less:
		return NewBool(l.Value < r.Value), nil
	case token.LessEqual:
		return NewBool(l.Value <= r.Value), nil
	}
	return nil, typeError(op, fmt.Sprintf("Unknown binary operator '%s'.", op.Lexeme))
}

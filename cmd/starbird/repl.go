package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/starbird-lang/starbird/pkg/config"
	"github.com/starbird-lang/starbird/pkg/diagnostics"
	"github.com/starbird-lang/starbird/pkg/evaluator"
	"github.com/starbird-lang/starbird/pkg/help"
	"github.com/starbird-lang/starbird/pkg/lexer"
	"github.com/starbird-lang/starbird/pkg/runtime"
	"github.com/starbird-lang/starbird/pkg/token"
)

const banner = "StarBird REPL. Type :help for commands, :quit to exit."

func cmdRepl(args []string) int {
	cfg := loadConfig()
	pretty := cfg.Pretty
	for _, arg := range args {
		if arg == "--pretty" {
			pretty = true
		}
	}

	fmt.Fprintln(stdout, banner)

	histPath := config.ExpandHome(cfg.History)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	var opts []runtime.Option
	opts = append(opts, runtime.WithOutput(stdout), runtime.WithRunID(newRunID()))
	if cfg.Trace != "" {
		tw, err := openTrace(cfg.Trace)
		if err != nil {
			reportIO(fmt.Sprintf("cannot open trace file: %s", cfg.Trace), pretty)
		} else {
			defer tw.Close()
			opts = append(opts, runtime.WithTrace(tw.Write))
		}
	}

	s := &session{rt: runtime.New(opts...), pretty: pretty, out: stdout, errOut: stderr}
	for {
		src, ok := readByBraceProbe(ln, cfg.Prompt, cfg.Continuation)
		if !ok {
			fmt.Fprintln(stdout)
			return runtime.ExitOK
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		if s.handle(src) {
			return runtime.ExitOK
		}
	}
}

// session is the state of one REPL run: a runtime whose globals persist
// across lines.
type session struct {
	rt     *runtime.Runtime
	pretty bool
	out    io.Writer
	errOut io.Writer
}

// handle evaluates one complete input. It reports true when the user asked
// to quit.
func (s *session) handle(src string) bool {
	trimmed := strings.TrimSpace(src)
	if strings.HasPrefix(trimmed, ":") {
		return s.command(trimmed)
	}

	// Compile errors skip the input; runtime errors leave the globals as
	// they were at the point of failure.
	if _, err := s.rt.Run(src); err != nil {
		fmt.Fprintln(s.errOut, diagnostics.FormatDiagnostics(runtime.Diagnostics(err), s.pretty))
	}
	return false
}

func (s *session) command(line string) bool {
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case ":quit", ":q", ":exit":
		return true
	case ":env":
		globals := s.rt.Globals()
		if len(fields) > 1 && fields[1] == "--json" {
			b, err := evaluator.EnvToJSON(globals)
			if err != nil {
				fmt.Fprintln(s.errOut, err)
				return false
			}
			fmt.Fprintln(s.out, string(b))
			return false
		}
		for _, name := range globals.Names() {
			v, _ := globals.Get(name)
			fmt.Fprintf(s.out, "%s = %s (%s)\n", name, displayValue(v), evaluator.TypeName(v))
		}
	case ":help":
		if len(fields) < 2 {
			fmt.Fprint(s.out, help.Topics["repl"])
			return false
		}
		_, content, err := help.MatchTopic(fields[1])
		if err != nil {
			fmt.Fprintln(s.errOut, err)
			return false
		}
		fmt.Fprint(s.out, content)
	default:
		fmt.Fprintln(s.errOut, "unknown command. Type :help for commands, :quit to exit.")
	}
	return false
}

// displayValue quotes strings so that "null" and null read differently.
func displayValue(v evaluator.Value) string {
	if sv, ok := v.(evaluator.StringValue); ok {
		return `"` + sv.Value + `"`
	}
	return evaluator.Stringify(v)
}

func readByBraceProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			// Ctrl-C drops the pending input.
			b.Reset()
			continue
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || !incomplete(src) {
			return src, true
		}
	}
}

// incomplete reports whether src ends inside a block, a parenthesised
// expression or a string literal, so the REPL should keep reading.
func incomplete(src string) bool {
	tokens, diags := lexer.Tokenize(src)
	for _, d := range diags {
		if d.Message == "Unterminated string." {
			return true
		}
	}

	braces, parens := 0, 0
	for _, tok := range tokens {
		switch tok.Type {
		case token.LeftBrace:
			braces++
		case token.RightBrace:
			braces--
		case token.LeftParen:
			parens++
		case token.RightParen:
			parens--
		}
	}
	return braces > 0 || parens > 0
}

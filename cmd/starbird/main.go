// Command starbird is the StarBird CLI: an interactive REPL plus file-based
// run, check, tokens, ast, fmt and trace subcommands.
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/starbird-lang/starbird/pkg/config"
	"github.com/starbird-lang/starbird/pkg/diagnostics"
	"github.com/starbird-lang/starbird/pkg/evaluator"
	"github.com/starbird-lang/starbird/pkg/formatter"
	"github.com/starbird-lang/starbird/pkg/help"
	"github.com/starbird-lang/starbird/pkg/runtime"
)

// Swapped out by tests.
var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func main() {
	os.Exit(dispatch(os.Args[1:]))
}

func dispatch(args []string) int {
	if len(args) == 0 {
		return cmdRepl(nil)
	}

	cmd := args[0]
	switch cmd {
	case "repl":
		return cmdRepl(args[1:])
	case "run":
		return cmdRun(args[1:])
	case "check":
		return cmdCheck(args[1:])
	case "tokens":
		return cmdTokens(args[1:])
	case "ast":
		return cmdAST(args[1:])
	case "fmt":
		return cmdFmt(args[1:])
	case "trace":
		return cmdTrace(args[1:])
	case "help", "--help", "-h":
		return cmdHelp(args[1:])
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", cmd)
		fmt.Fprintln(stderr, "commands: repl, run, check, tokens, ast, fmt, trace, help")
		return runtime.ExitUsage
	}
}

// loadConfig reads the config for the working directory. A broken config
// file is reported and the defaults are used.
func loadConfig() *config.Config {
	cwd, _ := os.Getwd()
	cfg, _, err := config.Load(cwd)
	if err != nil {
		diag := diagnostics.MakeDiag(diagnostics.EConfig, 0, "", err.Error())
		fmt.Fprintln(stderr, diagnostics.FormatDiagnostic(diag, cfg.Pretty))
	}
	return cfg
}

func cmdRun(args []string) int {
	cfg := loadConfig()
	var file string
	pretty := cfg.Pretty
	tracePath := cfg.Trace

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--pretty":
			pretty = true
		case "--trace":
			if i+1 < len(args) {
				i++
				tracePath = args[i]
			}
		default:
			if args[i] == "-" || !strings.HasPrefix(args[i], "-") {
				file = args[i]
			}
		}
	}

	if file == "" {
		fmt.Fprintln(stderr, "usage: starbird run <file|-> [--pretty] [--trace <path>]")
		return runtime.ExitUsage
	}

	source, exitCode := readSource(file, pretty)
	if exitCode != 0 {
		return exitCode
	}

	opts := []runtime.Option{runtime.WithOutput(stdout), runtime.WithRunID(newRunID())}
	if tracePath != "" {
		tw, err := openTrace(tracePath)
		if err != nil {
			reportIO(fmt.Sprintf("cannot open trace file: %s", tracePath), pretty)
			return runtime.ExitIO
		}
		defer tw.Close()
		opts = append(opts, runtime.WithTrace(tw.Write))
	}
	rt := runtime.New(opts...)

	if _, err := rt.Run(source); err != nil {
		fmt.Fprintln(stderr, diagnostics.FormatDiagnostics(runtime.Diagnostics(err), pretty))
		return runtime.ExitCode(err)
	}
	return runtime.ExitOK
}

func cmdCheck(args []string) int {
	file, pretty := fileAndPretty(args)
	if file == "" {
		fmt.Fprintln(stderr, "usage: starbird check <file|-> [--pretty]")
		return runtime.ExitUsage
	}

	source, exitCode := readSource(file, pretty)
	if exitCode != 0 {
		return exitCode
	}

	diags := runtime.New().Check(source)
	if len(diags) > 0 {
		fmt.Fprintln(stderr, diagnostics.FormatDiagnostics(diags, pretty))
		return runtime.ExitCompile
	}

	if pretty {
		fmt.Fprintln(stdout, "No errors found.")
	} else {
		fmt.Fprintln(stdout, "[]")
	}
	return runtime.ExitOK
}

func cmdTokens(args []string) int {
	file, pretty := fileAndPretty(args)
	if file == "" {
		fmt.Fprintln(stderr, "usage: starbird tokens <file|-> [--pretty]")
		return runtime.ExitUsage
	}

	source, exitCode := readSource(file, pretty)
	if exitCode != 0 {
		return exitCode
	}

	dump, diags := runtime.New().Tokens(source)
	fmt.Fprint(stdout, dump)
	if len(diags) > 0 {
		fmt.Fprintln(stderr, diagnostics.FormatDiagnostics(diags, pretty))
		return runtime.ExitCompile
	}
	return runtime.ExitOK
}

func cmdAST(args []string) int {
	file, pretty := fileAndPretty(args)
	if file == "" {
		fmt.Fprintln(stderr, "usage: starbird ast <file|-> [--pretty]")
		return runtime.ExitUsage
	}

	source, exitCode := readSource(file, pretty)
	if exitCode != 0 {
		return exitCode
	}

	tree, err := runtime.New().Tree(source)
	if err != nil {
		fmt.Fprintln(stderr, diagnostics.FormatDiagnostics(runtime.Diagnostics(err), pretty))
		return runtime.ExitCode(err)
	}
	fmt.Fprint(stdout, tree)
	return runtime.ExitOK
}

func cmdFmt(args []string) int {
	var file string
	write := false

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--write":
			write = true
		default:
			if !strings.HasPrefix(args[i], "-") {
				file = args[i]
			}
		}
	}

	if file == "" {
		fmt.Fprintln(stderr, "usage: starbird fmt <file> [--write]")
		return runtime.ExitUsage
	}

	source, exitCode := readSource(file, false)
	if exitCode != 0 {
		return exitCode
	}

	formatted, err := runtime.New().Format(source)
	if err != nil {
		fmt.Fprintln(stderr, diagnostics.FormatDiagnostics(runtime.Diagnostics(err), false))
		return runtime.ExitCode(err)
	}

	if formatter.HasComments(source) {
		fmt.Fprintln(stderr, "warning: comments are not preserved by the formatter")
	}

	if write {
		if err := os.WriteFile(file, []byte(formatted), 0644); err != nil {
			reportIO(fmt.Sprintf("cannot write file: %s", file), false)
			return runtime.ExitIO
		}
		return runtime.ExitOK
	}
	fmt.Fprint(stdout, formatted)
	return runtime.ExitOK
}

func cmdTrace(args []string) int {
	var file string
	textOutput := false

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--json":
			textOutput = false
		case "--text":
			textOutput = true
		default:
			if !strings.HasPrefix(args[i], "-") {
				file = args[i]
			}
		}
	}

	if file == "" {
		fmt.Fprintln(stderr, "usage: starbird trace <file.jsonl> [--json|--text]")
		return runtime.ExitUsage
	}

	f, err := os.Open(file)
	if err != nil {
		reportIO(fmt.Sprintf("cannot read file: %s", file), false)
		return runtime.ExitIO
	}
	defer f.Close()

	summary := computeTraceSummary(f)
	if textOutput {
		printTraceSummaryText(stdout, summary)
		return runtime.ExitOK
	}
	b, _ := json.Marshal(summary)
	fmt.Fprintln(stdout, string(b))
	return runtime.ExitOK
}

func cmdHelp(args []string) int {
	topic := ""
	for _, arg := range args {
		if !strings.HasPrefix(arg, "-") {
			topic = arg
		}
	}

	if topic == "" {
		fmt.Fprint(stdout, help.QUICKREF)
		return runtime.ExitOK
	}

	_, content, err := help.MatchTopic(topic)
	if err != nil {
		fmt.Fprintf(stderr, "%s\nAvailable topics: %s\n", err, strings.Join(help.TopicList, ", "))
		return runtime.ExitUsage
	}
	fmt.Fprint(stdout, content)
	return runtime.ExitOK
}

func fileAndPretty(args []string) (string, bool) {
	file := ""
	pretty := loadConfig().Pretty
	for _, arg := range args {
		switch {
		case arg == "--pretty":
			pretty = true
		case arg == "-" || !strings.HasPrefix(arg, "-"):
			file = arg
		}
	}
	return file, pretty
}

// readSource reads a program from a file, or from stdin when file is "-".
func readSource(file string, pretty bool) (string, int) {
	if file == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			reportIO(fmt.Sprintf("cannot read stdin: %s", err), pretty)
			return "", runtime.ExitIO
		}
		return string(data), 0
	}

	source, err := os.ReadFile(file)
	if err != nil {
		reportIO(fmt.Sprintf("cannot read file: %s", file), pretty)
		return "", runtime.ExitIO
	}
	return string(source), 0
}

func reportIO(msg string, pretty bool) {
	diag := diagnostics.MakeDiag(diagnostics.EIO, 0, "", msg)
	fmt.Fprintln(stderr, diagnostics.FormatDiagnostics([]diagnostics.Diagnostic{diag}, pretty))
}

func newRunID() string {
	return fmt.Sprintf("run-%d", time.Now().UnixNano())
}

// --- trace files ---

// traceWriter appends trace events to a JSONL file.
type traceWriter struct {
	f   *os.File
	buf *bufio.Writer
	enc *json.Encoder
}

func openTrace(path string) (*traceWriter, error) {
	f, err := os.Create(config.ExpandHome(path))
	if err != nil {
		return nil, err
	}
	buf := bufio.NewWriter(f)
	return &traceWriter{f: f, buf: buf, enc: json.NewEncoder(buf)}, nil
}

func (w *traceWriter) Write(ev evaluator.TraceEvent) {
	_ = w.enc.Encode(ev)
}

func (w *traceWriter) Close() error {
	return errors.Join(w.buf.Flush(), w.f.Close())
}

// TraceSummary aggregates a JSONL trace file.
type TraceSummary struct {
	RunID         string         `json:"runId"`
	TotalEvents   int            `json:"totalEvents"`
	Statements    int            `json:"statements"`
	Prints        int            `json:"prints"`
	MaxBlockDepth int            `json:"maxBlockDepth"`
	RuntimeErrors int            `json:"runtimeErrors"`
	ErrorsByCode  map[string]int `json:"errorsByCode"`
	StartTime     string         `json:"startTime,omitempty"`
	EndTime       string         `json:"endTime,omitempty"`
	DurationMs    float64        `json:"durationMs"`
}

func computeTraceSummary(r io.Reader) *TraceSummary {
	summary := &TraceSummary{
		ErrorsByCode: make(map[string]int),
	}
	depth := 0

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var event evaluator.TraceEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			continue // skip invalid lines
		}

		summary.TotalEvents++
		if summary.RunID == "" {
			summary.RunID = event.RunID
		}

		switch event.Event {
		case evaluator.TraceRunStart:
			if summary.StartTime == "" {
				summary.StartTime = event.Timestamp
			}
		case evaluator.TraceRunEnd:
			summary.EndTime = event.Timestamp
		case evaluator.TraceStmtStart:
			summary.Statements++
		case evaluator.TracePrint:
			summary.Prints++
		case evaluator.TraceBlockEnter:
			depth++
			if depth > summary.MaxBlockDepth {
				summary.MaxBlockDepth = depth
			}
		case evaluator.TraceBlockExit:
			depth--
		case evaluator.TraceRuntimeError:
			summary.RuntimeErrors++
			summary.ErrorsByCode[event.Data["code"]]++
		}
	}

	if summary.StartTime != "" && summary.EndTime != "" {
		start, err1 := time.Parse(time.RFC3339Nano, summary.StartTime)
		end, err2 := time.Parse(time.RFC3339Nano, summary.EndTime)
		if err1 == nil && err2 == nil {
			summary.DurationMs = float64(end.Sub(start).Microseconds()) / 1000
		}
	}

	return summary
}

func printTraceSummaryText(w io.Writer, s *TraceSummary) {
	fmt.Fprintf(w, "Run: %s\n", s.RunID)
	fmt.Fprintf(w, "Events: %d\n", s.TotalEvents)
	fmt.Fprintf(w, "Statements: %d\n", s.Statements)
	fmt.Fprintf(w, "Prints: %d\n", s.Prints)
	fmt.Fprintf(w, "Max block depth: %d\n", s.MaxBlockDepth)
	fmt.Fprintf(w, "Runtime errors: %d\n", s.RuntimeErrors)
	codes := make([]string, 0, len(s.ErrorsByCode))
	for code := range s.ErrorsByCode {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		fmt.Fprintf(w, "  %s: %d\n", code, s.ErrorsByCode[code])
	}
	if s.DurationMs > 0 {
		fmt.Fprintf(w, "Duration: %.3fms\n", s.DurationMs)
	}
}

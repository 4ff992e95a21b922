// Package help holds the text shown by `starbird help` and the REPL :help command.
package help

import (
	"fmt"
	"sort"
	"strings"
)

// QUICKREF is the overview printed by `starbird help` with no topic.
const QUICKREF = `StarBird v0.1 quick reference

  starbird                       start the REPL
  starbird run <file|->          run a program (exit 65 compile error, 70 runtime error, 74 I/O)
  starbird check <file>          lex and parse only
  starbird tokens <file>         dump the token stream
  starbird ast <file>            dump the syntax tree
  starbird fmt <file> [--write]  print canonical source
  starbird trace <file.jsonl>    summarise a trace file
  starbird help [topic]          show this text or a topic

Flags for run: --pretty (human-readable diagnostics), --trace <path> (JSONL trace).

Topics: syntax, types, flow, diagnostics, repl, examples
`

// Topics maps a topic name to its help text.
var Topics = map[string]string{
	"syntax": `Syntax

  program     := declaration* EOF
  declaration := "var" IDENT ("=" expression)? ";" | statement
  statement   := "print" expression ";"
               | "if" "(" expression ")" statement ("else" statement)?
               | "{" declaration* "}"
               | expression ";"

  Operators, loosest first: = (right-assoc), or, and, == !=, > >= < <=, + -, * /, unary ! -
  Comments start with // and run to the end of the line.
  Reserved for future use: class fun for return super this while
`,
	"types": `Types

  null        the single null value
  true false  booleans
  1 2.5       numbers (64-bit floating point, printed without a trailing .0)
  "text"      strings, may span lines, no escape sequences

  Only null and false are falsy; 0 and "" are truthy.
  == and != never fail: values of different types are simply unequal.
  + adds two numbers or concatenates two strings; other arithmetic needs numbers.
`,
	"flow": `Control flow

  if (cond) stmt else stmt   the else binds to the nearest if
  { ... }                    a block opens a new scope; var inside it shadows outer names
  a or b, a and b            short-circuit and return one of the operands

  Assigning to a name that was never declared is a runtime error.
`,
	"diagnostics": `Diagnostics

  E_LEX        unexpected character or unterminated string
  E_PARSE      malformed statement or expression
  E_TYPE       operator applied to the wrong kind of value
  E_UNDEFINED  read or assignment of an undeclared variable
  E_IO         unreadable input file
  E_CONFIG     malformed .starbird.yaml

  Diagnostics print as JSON unless --pretty or "pretty: true" in the config.
  Lexical and parse errors are all reported and nothing runs.
  The first runtime error stops the program.
`,
	"repl": `REPL

  Each line runs against the same globals. A line with an open { or string
  keeps reading with the continuation prompt.

  :env          list global variables
  :env --json   the same, as JSON
  :help [topic] show help
  :quit         leave (Ctrl-D works too)
`,
	"examples": `Examples

  var greeting = "hello";
  {
    var greeting = "shadowed";
    print greeting;        // shadowed
  }
  print greeting + "!";    // hello!

  var n = null;
  print n or "default";    // default
  if (n == null) print "n is null";
`,
}

// TopicList is the display order of Topics.
var TopicList = []string{"syntax", "types", "flow", "diagnostics", "repl", "examples"}

// MatchTopic resolves an exact topic name or an unambiguous prefix.
func MatchTopic(query string) (string, string, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if content, ok := Topics[query]; ok {
		return query, content, nil
	}

	var matches []string
	for _, name := range TopicList {
		if query != "" && strings.HasPrefix(name, query) {
			matches = append(matches, name)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], Topics[matches[0]], nil
	case 0:
		return "", "", fmt.Errorf("unknown help topic %q", query)
	}
	sort.Strings(matches)
	return "", "", fmt.Errorf("ambiguous help topic %q: %s", query, strings.Join(matches, ", "))
}

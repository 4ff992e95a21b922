// Command genast generates the StarBird AST node boilerplate from a textual
// grammar description.
//
// Input format, one node per line below an "Expr" or "Stmt" header:
//
//	Binary : Expr Left, token.Token Operator, Expr Right
//
// Blank lines and lines starting with '#' are ignored.
package main

import (
	"bufio"
	"bytes"
	"flag"
	"fmt"
	"go/format"
	"io"
	"os"
	"strings"
)

type field struct {
	Name string
	Type string
}

type node struct {
	Name   string
	Base   string
	Fields []field
}

func main() {
	in := flag.String("in", "nodes.txt", "grammar description file")
	out := flag.String("out", "nodes_gen.go", "output Go file")
	pkg := flag.String("pkg", "ast", "package name of the generated file")
	flag.Parse()

	f, err := os.Open(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "genast: %s\n", err)
		os.Exit(1)
	}
	defer f.Close()

	nodes, err := parseGrammar(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "genast: %s: %s\n", *in, err)
		os.Exit(1)
	}

	src, err := generate(*pkg, *in, nodes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "genast: %s\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*out, src, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "genast: %s\n", err)
		os.Exit(1)
	}
}

func parseGrammar(r io.Reader) ([]node, error) {
	var nodes []node
	base := ""
	lineNo := 0

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		name, fieldList, ok := strings.Cut(line, ":")
		if !ok {
			if line != "Expr" && line != "Stmt" {
				return nil, fmt.Errorf("line %d: unknown base %q", lineNo, line)
			}
			base = line
			continue
		}
		if base == "" {
			return nil, fmt.Errorf("line %d: node %q before any Expr/Stmt header", lineNo, strings.TrimSpace(name))
		}

		n := node{Name: strings.TrimSpace(name), Base: base}
		for _, part := range strings.Split(fieldList, ",") {
			parts := strings.Fields(part)
			if len(parts) != 2 {
				return nil, fmt.Errorf("line %d: malformed field %q", lineNo, strings.TrimSpace(part))
			}
			n.Fields = append(n.Fields, field{Type: parts[0], Name: parts[1]})
		}
		nodes = append(nodes, n)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return nodes, nil
}

func generate(pkg, source string, nodes []node) ([]byte, error) {
	var b bytes.Buffer

	fmt.Fprintf(&b, "// Code generated by genast from %s; DO NOT EDIT.\n\n", source)
	fmt.Fprintf(&b, "package %s\n\n", pkg)

	if usesToken(nodes) {
		b.WriteString("import \"github.com/starbird-lang/starbird/pkg/token\"\n\n")
	}

	for _, n := range nodes {
		kind, marker := "an expression", "exprNode"
		if n.Base == "Stmt" {
			kind, marker = "a statement", "stmtNode"
		}

		fmt.Fprintf(&b, "// %s is %s node.\n", n.Name, kind)
		fmt.Fprintf(&b, "type %s struct {\n", n.Name)
		for _, f := range n.Fields {
			fmt.Fprintf(&b, "\t%s %s\n", f.Name, f.Type)
		}
		b.WriteString("}\n\n")
		fmt.Fprintf(&b, "func (n *%s) Kind() string { return %q }\n", n.Name, n.Name)
		fmt.Fprintf(&b, "func (n *%s) %s() {}\n\n", n.Name, marker)
	}

	return format.Source(b.Bytes())
}

func usesToken(nodes []node) bool {
	for _, n := range nodes {
		for _, f := range n.Fields {
			if strings.Contains(f.Type, "token.") {
				return true
			}
		}
	}
	return false
}

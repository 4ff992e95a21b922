// Package testutil provides shared test helpers for StarBird Go tests.
package testutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ScenariosDir is the path of the conformance scenarios relative to the module root.
const ScenariosDir = "testdata/scenarios"

// Scenario is one conformance case loaded from a YAML file.
type Scenario struct {
	Name   string   `yaml:"name"`
	Cmd    []string `yaml:"cmd"`
	Source string   `yaml:"source"`
	// Lines are fed one by one to a single runtime, the way the REPL does.
	Lines  []string       `yaml:"lines"`
	Tags   []string       `yaml:"tags"`
	Expect ExpectedResult `yaml:"expect"`
}

// ExpectedResult describes the expected outcome of running a scenario.
type ExpectedResult struct {
	ExitCode         int      `yaml:"exitCode"`
	Stdout           *string  `yaml:"stdout"`
	StdoutContains   string   `yaml:"stdoutContains"`
	Stderr           *string  `yaml:"stderr"`
	StderrContains   string   `yaml:"stderrContains"`
	StderrJSONSubset []any    `yaml:"stderrJsonSubset"`
	Globals          []string `yaml:"globals"`
}

// Command returns the subcommand of the scenario, "run" when unset.
func (s *Scenario) Command() string {
	if len(s.Cmd) == 0 {
		return "run"
	}
	return s.Cmd[0]
}

// HasFlag reports whether flag appears in the scenario command.
func (s *Scenario) HasFlag(flag string) bool {
	for _, arg := range s.Cmd {
		if arg == flag {
			return true
		}
	}
	return false
}

// LoadScenario loads a scenario from a YAML file. Unknown keys are rejected
// so that typos in expectations do not silently pass.
func LoadScenario(path string) (*Scenario, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var s Scenario
	if err := decoder.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("scenario %s is empty", path)
		}
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if s.Source != "" && len(s.Lines) > 0 {
		return nil, fmt.Errorf("scenario %s: source and lines are mutually exclusive", path)
	}
	return &s, nil
}

// ListScenarios returns all scenario files under root, sorted.
func ListScenarios(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ext := filepath.Ext(e.Name()); ext == ".yaml" || ext == ".yml" {
			files = append(files, filepath.Join(root, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// JSONCompatible converts a value decoded from YAML into the shape
// encoding/json would produce (numbers become float64), so it can be
// compared with unmarshalled JSON.
func JSONCompatible(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// IsSubset reports whether expected is a subset of actual (for JSON comparison).
func IsSubset(expected, actual any) bool {
	switch e := expected.(type) {
	case map[string]any:
		a, ok := actual.(map[string]any)
		if !ok {
			return false
		}
		for k, ev := range e {
			av, exists := a[k]
			if !exists {
				return false
			}
			if !IsSubset(ev, av) {
				return false
			}
		}
		return true

	case []any:
		a, ok := actual.([]any)
		if !ok {
			return false
		}
		if len(e) > len(a) {
			return false
		}
		for i, ev := range e {
			if !IsSubset(ev, a[i]) {
				return false
			}
		}
		return true

	case float64:
		af, ok := actual.(float64)
		return ok && e == af

	case string:
		as, ok := actual.(string)
		return ok && e == as

	case bool:
		ab, ok := actual.(bool)
		return ok && e == ab

	case nil:
		return actual == nil

	default:
		return fmt.Sprintf("%v", expected) == fmt.Sprintf("%v", actual)
	}
}

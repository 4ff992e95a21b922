// Package config loads StarBird settings from YAML files.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// ProjectFile is looked up in the working directory.
	ProjectFile = ".starbird.yaml"
	// UserFile is looked up relative to the home directory.
	UserFile = ".starbird/config.yaml"
)

// Config holds the user-tunable settings of the CLI and REPL.
type Config struct {
	Pretty       bool   `yaml:"pretty"`
	Prompt       string `yaml:"prompt"`
	Continuation string `yaml:"continuation"`
	History      string `yaml:"history"`
	Trace        string `yaml:"trace"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Prompt:       "> ",
		Continuation: ". ",
		History:      "~/.starbird_history",
	}
}

// Error reports a config file that exists but cannot be used.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Load resolves settings for a project directory.
// Precedence: project (.starbird.yaml) → user (~/.starbird/config.yaml) → defaults.
// The returned path names the file that was used, or is empty for defaults.
// A file that exists but is malformed stops the lookup with an *Error.
func Load(projectDir string) (*Config, string, error) {
	candidates := []string{filepath.Join(projectDir, ProjectFile)}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, UserFile))
	}

	for _, path := range candidates {
		cfg, err := LoadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Default(), path, err
		}
		return cfg, path, nil
	}
	return Default(), "", nil
}

// LoadFile reads one config file. Keys missing from the file keep their
// default values; unknown keys are rejected.
func LoadFile(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, &Error{Path: path, Err: err}
	}
	defer file.Close()

	cfg := Default()
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, &Error{Path: path, Err: err}
	}

	cfg.History = ExpandHome(cfg.History)
	cfg.Trace = ExpandHome(cfg.Trace)
	return cfg, nil
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

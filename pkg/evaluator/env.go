package evaluator

import "sort"

// Env is one lexical scope. Lookups and assignments walk outward through the
// enclosing chain; definitions always land in the receiver.
type Env struct {
	values    map[string]Value
	enclosing *Env
}

// NewEnv creates a scope nested in enclosing. Pass nil for the global scope.
func NewEnv(enclosing *Env) *Env {
	return &Env{
		values:    make(map[string]Value),
		enclosing: enclosing,
	}
}

// Enclosing returns the parent scope, or nil for the global scope.
func (e *Env) Enclosing() *Env {
	return e.enclosing
}

// Define binds name in this scope. Redefinition overwrites.
func (e *Env) Define(name string, val Value) {
	e.values[name] = val
}

// Get looks up name in this scope and then each enclosing scope.
func (e *Env) Get(name string) (Value, bool) {
	for env := e; env != nil; env = env.enclosing {
		if val, ok := env.values[name]; ok {
			return val, true
		}
	}
	return nil, false
}

// Assign updates the nearest scope that already defines name. It reports
// false, changing nothing, when no scope does.
func (e *Env) Assign(name string, val Value) bool {
	for env := e; env != nil; env = env.enclosing {
		if _, ok := env.values[name]; ok {
			env.values[name] = val
			return true
		}
	}
	return false
}

// Names returns the names bound directly in this scope, sorted.
func (e *Env) Names() []string {
	names := make([]string, 0, len(e.values))
	for name := range e.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

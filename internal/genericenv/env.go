// Package genericenv implements the substitution map from generic parameter
// names to concrete types. An Env is persistent: Bind and Without return a
// fork and never modify the receiver, so sibling branches of a recursive walk
// cannot observe each other's bindings.
package genericenv

import (
	"sort"

	"github.com/tsgonest/tszod/internal/typeast"
)

// Env maps generic parameter names to bound types. The zero value is empty.
type Env struct {
	bindings map[string]typeast.Type
}

// Empty returns an environment with no bindings.
func Empty() Env { return Env{} }

// Lookup returns the type bound to name.
func (e Env) Lookup(name string) (typeast.Type, bool) {
	t, ok := e.bindings[name]
	return t, ok
}

// Len returns the number of bindings.
func (e Env) Len() int { return len(e.bindings) }

// Bind returns a fork of e with name bound to t, shadowing any previous
// binding of name.
func (e Env) Bind(name string, t typeast.Type) Env {
	next := e.fork(1)
	next[name] = t
	return Env{bindings: next}
}

// Without returns a fork of e with name unbound.
func (e Env) Without(name string) Env {
	if _, ok := e.bindings[name]; !ok {
		return e
	}
	next := e.fork(0)
	delete(next, name)
	return Env{bindings: next}
}

// Names returns the bound parameter names in sorted order.
func (e Env) Names() []string {
	names := make([]string, 0, len(e.bindings))
	for n := range e.bindings {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Resolve substitutes every bound argument-less reference in t.
func (e Env) Resolve(t typeast.Type) typeast.Type {
	if len(e.bindings) == 0 {
		return t
	}
	return typeast.Substitute(t, e.Lookup)
}

func (e Env) fork(extra int) map[string]typeast.Type {
	next := make(map[string]typeast.Type, len(e.bindings)+extra)
	for k, v := range e.bindings {
		next[k] = v
	}
	return next
}

package parser

import "strings"

// ModuleScopeKey is the canonical key for the root (module-level) scope.
const ModuleScopeKey = "<module>"

type ScopeKind int

const (
	ScopeModule ScopeKind = iota
	ScopeClass
	ScopeFunction
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeClass:
		return "class"
	case ScopeFunction:
		return "function"
	default:
		return "module"
	}
}

// Scope is one lexical nesting level. Immutable once created.
type Scope struct {
	Kind ScopeKind
	Name string
}

// ScopePath is the ordered nesting from the module root down to the
// current point of a traversal. Push and Pop return fresh slices so a
// binding can hold a frozen snapshot while the walk continues.
type ScopePath []Scope

func (p ScopePath) Push(s Scope) ScopePath {
	next := make(ScopePath, len(p)+1)
	copy(next, p)
	next[len(p)] = s
	return next
}

func (p ScopePath) Pop() ScopePath {
	if len(p) == 0 {
		return p
	}
	return p[:len(p)-1]
}

// Key returns the stable textual identity of the path: the dot-joined
// scope names, with the empty root path normalized to ModuleScopeKey.
// Two different nestings never share a key.
func (p ScopePath) Key() string {
	if len(p) == 0 {
		return ModuleScopeKey
	}
	names := make([]string, len(p))
	for i, s := range p {
		names[i] = s.Name
	}
	return strings.Join(names, ".")
}

// Qualify joins the path with a local name to form a qualified name.
// At module level the qualified name is the local name itself.
func (p ScopePath) Qualify(name string) string {
	if len(p) == 0 {
		return name
	}
	return p.Key() + "." + name
}

// NearestClass walks the path outward and returns the qualified name of
// the innermost enclosing class scope, if any.
func (p ScopePath) NearestClass() (string, bool) {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i].Kind == ScopeClass {
			return ScopePath(p[:i]).Qualify(p[i].Name), true
		}
	}
	return "", false
}

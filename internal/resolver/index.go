package resolver

import (
	"sort"

	"callsight/internal/parser"
)

type indexKey struct {
	scope string
	name  string
}

// PositionIndex groups bindings by (scope key, name), sorted ascending
// by line. It is built once and queried, never mutated: the variable
// resolution pass rebuilds it from scratch rather than patching entries.
type PositionIndex struct {
	groups map[indexKey][]parser.NameBinding
	size   int
}

// BuildIndex is a pure bindings -> index function. It is called twice
// per file: once over the raw bindings (provisional) and once after
// variable targets are resolved (final).
func BuildIndex(bindings []parser.NameBinding) *PositionIndex {
	groups := make(map[indexKey][]parser.NameBinding)
	for _, b := range bindings {
		key := indexKey{scope: b.Path.Key(), name: b.Name}
		groups[key] = append(groups[key], b)
	}
	for key, group := range groups {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Line < group[j].Line
		})
		groups[key] = group
	}
	return &PositionIndex{groups: groups, size: len(bindings)}
}

// Len reports how many bindings the index holds. A rebuild that loses a
// binding is a broken invariant, checked by the engine.
func (ix *PositionIndex) Len() int {
	return ix.size
}

// Resolve returns the binding for name that is in effect at the given
// line, searching scope prefixes from the innermost outward. The first
// scope with any binding at or before the line wins; the search never
// continues outward past it, so an inner binding shadows an outer one
// regardless of their relative line numbers. The comparison is
// inclusive: a right-hand side evaluated on the binding's own line sees
// bindings already in effect.
func (ix *PositionIndex) Resolve(name string, line int, path parser.ScopePath) (parser.NameBinding, bool) {
	for depth := len(path); depth >= 0; depth-- {
		prefix := path[:depth]
		group, ok := ix.groups[indexKey{scope: prefix.Key(), name: name}]
		if !ok {
			continue
		}
		// Rightmost entry with Line <= line.
		n := sort.Search(len(group), func(i int) bool {
			return group[i].Line > line
		})
		if n > 0 {
			return group[n-1], true
		}
	}
	return parser.NameBinding{}, false
}

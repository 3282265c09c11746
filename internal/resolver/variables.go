package resolver

import (
	"callsight/internal/parser"
)

// resolveVariableTargets is the second pass: for each variable binding
// whose assignment right-hand side named a bare identifier, look that
// identifier up in the provisional index at the assignment's own line.
// Only a Class result fills in TargetClass; a Function, an Import, or
// another variable leaves the binding as it was. Variable chains are
// deliberately not followed transitively, so "b = a" never inherits the
// class a points at.
//
// The input slice is not mutated; a resolved target produces a new
// binding value in the returned copy.
func resolveVariableTargets(bindings []parser.NameBinding, pending []parser.PendingVariableTarget, provisional *PositionIndex) []parser.NameBinding {
	out := make([]parser.NameBinding, len(bindings))
	copy(out, bindings)

	for _, pt := range pending {
		if pt.BindingIndex < 0 || pt.BindingIndex >= len(out) {
			continue
		}
		b := out[pt.BindingIndex]
		if b.Kind != parser.KindVariable {
			continue
		}
		target, ok := provisional.Resolve(pt.Target, b.Line, b.Path)
		if !ok || target.Kind != parser.KindClass {
			continue
		}
		out[pt.BindingIndex] = b.WithTargetClass(target.QualifiedName)
	}
	return out
}

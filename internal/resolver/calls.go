package resolver

import (
	"callsight/internal/parser"
)

// Reason is the closed set of unresolved outcomes. The call resolver is
// conservative by construction: when in doubt it reports one of these
// rather than guessing, and it never returns an error for a well-formed
// call.
type Reason string

const (
	ReasonUnknownBinding       Reason = "unknown-binding"
	ReasonDynamicOrCrossModule Reason = "dynamic-or-cross-module"
	ReasonDynamicExpression    Reason = "dynamic-expression"
)

// Resolution is the per-call outcome: either a qualified target or an
// explicit unresolved reason.
type Resolution struct {
	Call   parser.CallSite
	Target string
	Reason Reason
}

func (r Resolution) Resolved() bool {
	return r.Reason == ""
}

func resolved(call parser.CallSite, target string) Resolution {
	return Resolution{Call: call, Target: target}
}

func unresolved(call parser.CallSite, reason Reason) Resolution {
	return Resolution{Call: call, Reason: reason}
}

// CallResolver resolves call sites against a finalized index and the
// set of known class qualified names (for constructor mapping). It is a
// pure function of its inputs: resolving the same call twice yields the
// same outcome.
type CallResolver struct {
	index   *PositionIndex
	classes map[string]bool
}

func NewCallResolver(index *PositionIndex, classes map[string]bool) *CallResolver {
	return &CallResolver{index: index, classes: classes}
}

func (r *CallResolver) ResolveCall(call parser.CallSite) Resolution {
	if call.Dynamic || len(call.Parts) == 0 {
		return unresolved(call, ReasonDynamicExpression)
	}

	if len(call.Parts) == 1 {
		return r.resolveBare(call)
	}

	// self.attr(...) inside a method: the target is the enclosing
	// class. self is not a tracked binding, so no index query. Deeper
	// chains on self reach attributes of unknown shape. Outside a
	// class, self is just a name and takes the ordinary chain path.
	if call.Parts[0] == "self" {
		if class, ok := call.Path.NearestClass(); ok {
			if len(call.Parts) == 2 {
				return resolved(call, class+"."+call.Parts[1])
			}
			return unresolved(call, ReasonDynamicExpression)
		}
	}

	return r.resolveChain(call)
}

// f(...): classes map to their constructor, functions to themselves.
// Imports and variables are dynamic or cross-module by policy.
func (r *CallResolver) resolveBare(call parser.CallSite) Resolution {
	b, ok := r.index.Resolve(call.Parts[0], call.Line, call.Path)
	if !ok {
		return unresolved(call, ReasonUnknownBinding)
	}
	switch b.Kind {
	case parser.KindClass:
		return resolved(call, b.QualifiedName+".__init__")
	case parser.KindFunction:
		return resolved(call, b.QualifiedName)
	case parser.KindImport, parser.KindVariable:
		return unresolved(call, ReasonDynamicOrCrossModule)
	}
	return unresolved(call, ReasonUnknownBinding)
}

// name.attr(...) and longer chains a.b.c(...): the base must resolve to
// a class, or to a variable with a known target class; every
// intermediate attribute must itself name a known class. The final
// attribute is a constructor call when it names a nested class,
// otherwise a regular method reference on the class.
func (r *CallResolver) resolveChain(call parser.CallSite) Resolution {
	b, ok := r.index.Resolve(call.Parts[0], call.Line, call.Path)
	if !ok {
		return unresolved(call, ReasonUnknownBinding)
	}

	// classBase tracks whether the resolved prefix is known to be a
	// class (as opposed to an instance held by a variable): only then
	// can the final attribute be a nested-class instantiation.
	var current string
	var classBase bool
	switch {
	case b.Kind == parser.KindVariable && b.TargetClass != "":
		current = b.TargetClass
	case b.Kind == parser.KindClass:
		current = b.QualifiedName
		classBase = true
	default:
		// Imports, functions, and variables of unknown class.
		return unresolved(call, ReasonDynamicOrCrossModule)
	}

	// Intermediate segments must name nested classes; anything else is
	// an attribute of unknown shape.
	for _, part := range call.Parts[1 : len(call.Parts)-1] {
		candidate := current + "." + part
		if !r.classes[candidate] {
			return unresolved(call, ReasonDynamicOrCrossModule)
		}
		current = candidate
		classBase = true
	}

	attr := call.Parts[len(call.Parts)-1]
	candidate := current + "." + attr
	if classBase && r.classes[candidate] {
		// Nested-class instantiation.
		return resolved(call, candidate+".__init__")
	}
	return resolved(call, candidate)
}

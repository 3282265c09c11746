package resolver

import (
	"testing"

	"callsight/internal/parser"
)

func moduleBinding(name string, line int, kind parser.BindingKind, qualified string) parser.NameBinding {
	return parser.NameBinding{
		Name:          name,
		Line:          line,
		Kind:          kind,
		QualifiedName: qualified,
		Path:          parser.ScopePath{},
	}
}

func TestResolveShadowingWindow(t *testing.T) {
	// x bound at lines 2 and 8 in the same scope: any reference in
	// [2, 8) sees the first binding, any reference at >= 8 the second.
	first := moduleBinding("x", 2, parser.KindVariable, "")
	second := moduleBinding("x", 8, parser.KindVariable, "")
	second.TargetClass = "Widget"
	ix := BuildIndex([]parser.NameBinding{first, second})

	tests := []struct {
		line   int
		found  bool
		target string
	}{
		{1, false, ""},
		{2, true, ""},
		{5, true, ""},
		{7, true, ""},
		{8, true, "Widget"},
		{100, true, "Widget"},
	}

	for _, tt := range tests {
		got, ok := ix.Resolve("x", tt.line, parser.ScopePath{})
		if ok != tt.found {
			t.Errorf("line %d: found = %v, expected %v", tt.line, ok, tt.found)
			continue
		}
		if ok && got.TargetClass != tt.target {
			t.Errorf("line %d: TargetClass = %q, expected %q", tt.line, got.TargetClass, tt.target)
		}
	}
}

func TestResolveScopeFallthrough(t *testing.T) {
	inner := parser.ScopePath{}.Push(parser.Scope{Kind: parser.ScopeFunction, Name: "f"})
	sibling := parser.ScopePath{}.Push(parser.Scope{Kind: parser.ScopeFunction, Name: "g"})

	outerBinding := moduleBinding("helper", 1, parser.KindFunction, "helper")
	siblingBinding := parser.NameBinding{
		Name: "helper", Line: 3, Kind: parser.KindVariable, Path: sibling,
	}
	ix := BuildIndex([]parser.NameBinding{outerBinding, siblingBinding})

	// A name unbound in f falls through to the module scope, never to a
	// same-named binding in the sibling scope g.
	got, ok := ix.Resolve("helper", 10, inner)
	if !ok {
		t.Fatal("expected fallthrough hit")
	}
	if got.Kind != parser.KindFunction || got.QualifiedName != "helper" {
		t.Errorf("resolved %+v, expected the module-scope function", got)
	}
}

func TestInnerBindingWinsRegardlessOfLine(t *testing.T) {
	inner := parser.ScopePath{}.Push(parser.Scope{Kind: parser.ScopeFunction, Name: "f"})

	outer := moduleBinding("x", 1, parser.KindClass, "x")
	local := parser.NameBinding{Name: "x", Line: 5, Kind: parser.KindVariable, Path: inner}
	ix := BuildIndex([]parser.NameBinding{outer, local})

	// Once the inner binding exists at or before the reference line, it
	// wins even though the outer one has a lower line number.
	got, ok := ix.Resolve("x", 6, inner)
	if !ok || got.Kind != parser.KindVariable {
		t.Errorf("resolved %+v, expected the inner variable binding", got)
	}

	// Before line 5 the inner binding does not exist yet; the outer
	// class is visible.
	got, ok = ix.Resolve("x", 3, inner)
	if !ok || got.Kind != parser.KindClass {
		t.Errorf("resolved %+v, expected the outer class binding", got)
	}
}

func TestResolveInclusiveAtBindingLine(t *testing.T) {
	// calc = Calculator() on line 4: the right-hand side reference to
	// Calculator at line 4 must see bindings with line <= 4.
	class := moduleBinding("Calculator", 1, parser.KindClass, "Calculator")
	ix := BuildIndex([]parser.NameBinding{class})

	if _, ok := ix.Resolve("Calculator", 1, parser.ScopePath{}); !ok {
		t.Error("reference at the binding's own line must resolve")
	}
}

func TestResolveUnknownName(t *testing.T) {
	ix := BuildIndex(nil)
	if _, ok := ix.Resolve("ghost", 10, parser.ScopePath{}); ok {
		t.Error("expected no hit for an unbound name")
	}
}

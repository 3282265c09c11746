package parser

import (
	"time"
)

type File struct {
	Path           string
	Language       string
	Module         string // Local module name derived from the file path
	Bindings       []NameBinding
	PendingTargets []PendingVariableTarget
	Calls          []CallSite
	Signatures     []FunctionSignature
	ParsedAt       time.Time
}

type BindingKind int

const (
	KindImport BindingKind = iota
	KindFunction
	KindClass
	KindVariable
)

func (k BindingKind) String() string {
	switch k {
	case KindImport:
		return "import"
	case KindFunction:
		return "function"
	case KindClass:
		return "class"
	case KindVariable:
		return "variable"
	}
	return "unknown"
}

// NameBinding records a single name-introducing event. Bindings are
// immutable values: resolving a variable target produces a new binding
// that replaces the old one in the backing slice, never an in-place edit.
type NameBinding struct {
	Name          string
	Line          int
	Kind          BindingKind
	QualifiedName string // empty when the target cannot be determined
	Path          ScopePath
	SourceModule  string // imports only; empty for bare "import x"
	TargetClass   string // variables only; empty until resolved
}

// WithTargetClass returns a copy of the binding with TargetClass set.
func (b NameBinding) WithTargetClass(class string) NameBinding {
	b.TargetClass = class
	return b
}

// PendingVariableTarget pairs a Variable binding (by index into
// File.Bindings) with the raw identifier on the right-hand side of its
// assignment. Consumed by the variable target resolution pass.
type PendingVariableTarget struct {
	BindingIndex int
	Target       string
}

// CallSite is a call expression normalized to the shape the resolver
// understands: a chain of identifiers rooted at a bare name, or a
// dynamic expression it will not attempt to resolve.
type CallSite struct {
	Parts   []string // callee as dotted identifier chain, nil when Dynamic
	Dynamic bool     // callee rooted at a call result, subscript, lambda, ...
	Text    string   // raw callee text, for reporting
	Line    int
	Path    ScopePath
}

// FunctionSignature carries what the annotation scorer needs: which
// parameters carry type annotations and whether the return type does.
type FunctionSignature struct {
	QualifiedName   string
	Line            int
	Params          []Param
	ReturnAnnotated bool
	IsMethod        bool
}

type Param struct {
	Name      string
	Annotated bool
}

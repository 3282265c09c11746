package resolver

import (
	"fmt"

	"callsight/internal/parser"
)

// FileResolution is everything the engine produces for one file: the
// outcome for every call site plus the finalized qualified-name sets
// downstream stages use to match calls back to definitions. Nothing in
// it persists across files.
type FileResolution struct {
	File      *parser.File
	Calls     []Resolution
	Classes   map[string]bool
	Functions map[string]bool
}

// ResolveFile runs the engine end to end for one parsed file:
// raw bindings -> provisional index -> variable target resolution ->
// final index rebuild -> per-call resolution. The rebuild is always a
// full replace; losing a binding across it indicates a broken invariant
// and fails loudly rather than degrading silently.
func ResolveFile(file *parser.File) *FileResolution {
	provisional := BuildIndex(file.Bindings)
	bindings := resolveVariableTargets(file.Bindings, file.PendingTargets, provisional)

	final := BuildIndex(bindings)
	if final.Len() != len(file.Bindings) {
		panic(fmt.Sprintf("resolver: index rebuild lost bindings: %d != %d", final.Len(), len(file.Bindings)))
	}

	classes := make(map[string]bool)
	functions := make(map[string]bool)
	for _, b := range bindings {
		switch b.Kind {
		case parser.KindClass:
			classes[b.QualifiedName] = true
		case parser.KindFunction:
			functions[b.QualifiedName] = true
		}
	}

	calls := make([]Resolution, 0, len(file.Calls))
	cr := NewCallResolver(final, classes)
	for _, call := range file.Calls {
		calls = append(calls, cr.ResolveCall(call))
	}

	return &FileResolution{
		File:      file,
		Calls:     calls,
		Classes:   classes,
		Functions: functions,
	}
}

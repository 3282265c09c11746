package parser

import (
	"path/filepath"
	"strings"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// PythonExtractor walks a Python syntax tree once and collects every
// name-introducing construct into position-tagged bindings, plus the
// call sites and function signatures downstream stages consume. The
// scope path is carried by value, so every nested visit pops for free
// on return and bindings keep frozen snapshots.
type PythonExtractor struct{}

func (e *PythonExtractor) Extract(root *sitter.Node, source []byte, filePath string) (*File, error) {
	file := &File{
		Path:     filePath,
		Language: "python",
		Module:   strings.TrimSuffix(filepath.Base(filePath), ".py"),
		ParsedAt: time.Now(),
	}

	e.walk(root, source, file, ScopePath{})

	return file, nil
}

func (e *PythonExtractor) walk(node *sitter.Node, source []byte, file *File, path ScopePath) {
	switch node.Kind() {
	case "import_statement":
		e.extractImport(node, source, file, path)
		return
	case "import_from_statement":
		e.extractFromImport(node, source, file, path)
		return
	case "function_definition":
		e.extractFunction(node, source, file, path)
		return
	case "class_definition":
		e.extractClass(node, source, file, path)
		return
	case "assignment":
		e.extractAssignment(node, source, file, path)
		// Fall through to recursion: the right-hand side may contain
		// calls that are themselves call sites.
	case "call":
		e.extractCall(node, source, file, path)
		// Fall through: arguments may contain nested calls.
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		e.walk(node.Child(i), source, file, path)
	}
}

// import x / import x.y / import x as y
func (e *PythonExtractor) extractImport(node *sitter.Node, source []byte, file *File, path ScopePath) {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)

		switch child.Kind() {
		case "dotted_name", "identifier":
			// "import x.y" binds the local name "x"; the module the
			// name came from is not separately derivable.
			module := text(child, source)
			local := module
			if dot := strings.Index(module, "."); dot >= 0 {
				local = module[:dot]
			}
			file.Bindings = append(file.Bindings, NameBinding{
				Name: local,
				Line: line(node),
				Kind: KindImport,
				Path: path,
			})
		case "aliased_import":
			name := child.ChildByFieldName("name")
			alias := child.ChildByFieldName("alias")
			if name == nil || alias == nil {
				continue
			}
			file.Bindings = append(file.Bindings, NameBinding{
				Name:         text(alias, source),
				Line:         line(node),
				Kind:         KindImport,
				Path:         path,
				SourceModule: text(name, source),
			})
		}
	}
}

// from m import a, b as c / from . import x
func (e *PythonExtractor) extractFromImport(node *sitter.Node, source []byte, file *File, path ScopePath) {
	module := ""
	if mod := node.ChildByFieldName("module_name"); mod != nil {
		module = strings.TrimLeft(text(mod, source), ".")
	}

	afterImport := false
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() == "import" {
			afterImport = true
			continue
		}
		if !afterImport {
			continue
		}

		switch child.Kind() {
		case "dotted_name", "identifier":
			file.Bindings = append(file.Bindings, NameBinding{
				Name:         text(child, source),
				Line:         line(node),
				Kind:         KindImport,
				Path:         path,
				SourceModule: module,
			})
		case "aliased_import":
			alias := child.ChildByFieldName("alias")
			if alias == nil {
				continue
			}
			file.Bindings = append(file.Bindings, NameBinding{
				Name:         text(alias, source),
				Line:         line(node),
				Kind:         KindImport,
				Path:         path,
				SourceModule: module,
			})
		}
		// wildcard_import introduces names we cannot enumerate; skip.
	}
}

// def f(...) / async def f(...): one Function binding in the enclosing
// scope, then the body is walked with the function pushed. Parameters
// and decorators evaluate in the enclosing scope, so they are walked
// with the outer path.
func (e *PythonExtractor) extractFunction(node *sitter.Node, source []byte, file *File, path ScopePath) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := text(nameNode, source)

	file.Bindings = append(file.Bindings, NameBinding{
		Name:          name,
		Line:          line(node),
		Kind:          KindFunction,
		QualifiedName: path.Qualify(name),
		Path:          path,
	})

	file.Signatures = append(file.Signatures, e.signature(node, source, path, name))

	if params := node.ChildByFieldName("parameters"); params != nil {
		e.walk(params, source, file, path)
	}

	inner := path.Push(Scope{Kind: ScopeFunction, Name: name})
	if body := node.ChildByFieldName("body"); body != nil {
		e.walk(body, source, file, inner)
	}
}

func (e *PythonExtractor) signature(node *sitter.Node, source []byte, path ScopePath, name string) FunctionSignature {
	sig := FunctionSignature{
		QualifiedName:   path.Qualify(name),
		Line:            line(node),
		ReturnAnnotated: node.ChildByFieldName("return_type") != nil,
		IsMethod:        len(path) > 0 && path[len(path)-1].Kind == ScopeClass,
	}

	params := node.ChildByFieldName("parameters")
	if params == nil {
		return sig
	}

	for i := uint(0); i < params.ChildCount(); i++ {
		child := params.Child(i)
		switch child.Kind() {
		case "identifier":
			sig.Params = append(sig.Params, Param{Name: text(child, source)})
		case "typed_parameter":
			sig.Params = append(sig.Params, Param{Name: firstIdentifier(child, source), Annotated: true})
		case "default_parameter":
			sig.Params = append(sig.Params, Param{Name: text(child.ChildByFieldName("name"), source)})
		case "typed_default_parameter":
			sig.Params = append(sig.Params, Param{Name: text(child.ChildByFieldName("name"), source), Annotated: true})
		case "list_splat_pattern", "dictionary_splat_pattern":
			sig.Params = append(sig.Params, Param{Name: firstIdentifier(child, source)})
		}
	}
	return sig
}

// class C: one Class binding, then the body with the class pushed.
// Nested classes accumulate scope segments (Outer.Inner). A class body
// with no explicit __init__ gets a synthetic constructor binding so the
// call resolver's constructor mapping is total over known classes.
func (e *PythonExtractor) extractClass(node *sitter.Node, source []byte, file *File, path ScopePath) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := text(nameNode, source)
	qualified := path.Qualify(name)

	file.Bindings = append(file.Bindings, NameBinding{
		Name:          name,
		Line:          line(node),
		Kind:          KindClass,
		QualifiedName: qualified,
		Path:          path,
	})

	if supers := node.ChildByFieldName("superclasses"); supers != nil {
		e.walk(supers, source, file, path)
	}

	inner := path.Push(Scope{Kind: ScopeClass, Name: name})
	body := node.ChildByFieldName("body")
	if body != nil {
		e.walk(body, source, file, inner)
	}

	if !hasExplicitInit(body, source) {
		file.Bindings = append(file.Bindings, NameBinding{
			Name:          "__init__",
			Line:          line(node),
			Kind:          KindFunction,
			QualifiedName: qualified + ".__init__",
			Path:          inner,
		})
	}
}

func hasExplicitInit(body *sitter.Node, source []byte) bool {
	if body == nil {
		return false
	}
	for i := uint(0); i < body.ChildCount(); i++ {
		child := body.Child(i)
		if child.Kind() == "decorated_definition" {
			if def := child.ChildByFieldName("definition"); def != nil {
				child = def
			}
		}
		if child.Kind() != "function_definition" {
			continue
		}
		if name := child.ChildByFieldName("name"); name != nil && text(name, source) == "__init__" {
			return true
		}
	}
	return false
}

// x = <expr>: a Variable binding for shadowing correctness. When the
// right-hand side is a bare identifier or a call on one, the identifier
// is recorded as a pending target for the second resolution pass. Any
// other shape still binds the name but will never resolve to a class.
func (e *PythonExtractor) extractAssignment(node *sitter.Node, source []byte, file *File, path ScopePath) {
	left := node.ChildByFieldName("left")
	right := node.ChildByFieldName("right")
	if left == nil || right == nil || left.Kind() != "identifier" {
		return
	}

	file.Bindings = append(file.Bindings, NameBinding{
		Name: text(left, source),
		Line: line(node),
		Kind: KindVariable,
		Path: path,
	})

	target := ""
	switch right.Kind() {
	case "identifier":
		target = text(right, source)
	case "call":
		if fn := right.ChildByFieldName("function"); fn != nil && fn.Kind() == "identifier" {
			target = text(fn, source)
		}
	}
	if target != "" {
		file.PendingTargets = append(file.PendingTargets, PendingVariableTarget{
			BindingIndex: len(file.Bindings) - 1,
			Target:       target,
		})
	}
}

func (e *PythonExtractor) extractCall(node *sitter.Node, source []byte, file *File, path ScopePath) {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return
	}

	parts, ok := flattenCallee(fn, source)
	file.Calls = append(file.Calls, CallSite{
		Parts:   parts,
		Dynamic: !ok,
		Text:    text(fn, source),
		Line:    line(node),
		Path:    path,
	})
}

// flattenCallee reduces a callee expression to its identifier chain.
// Anything not rooted at a bare identifier (call results, subscripts,
// literals, lambdas) is dynamic and stays unresolved by policy.
func flattenCallee(node *sitter.Node, source []byte) ([]string, bool) {
	switch node.Kind() {
	case "identifier":
		return []string{text(node, source)}, true
	case "attribute":
		obj := node.ChildByFieldName("object")
		attr := node.ChildByFieldName("attribute")
		if obj == nil || attr == nil {
			return nil, false
		}
		base, ok := flattenCallee(obj, source)
		if !ok {
			return nil, false
		}
		return append(base, text(attr, source)), true
	default:
		return nil, false
	}
}

func firstIdentifier(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	if node.Kind() == "identifier" {
		return text(node, source)
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if name := firstIdentifier(node.Child(i), source); name != "" {
			return name
		}
	}
	return ""
}

func text(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

func line(node *sitter.Node) int {
	return int(node.StartPosition().Row) + 1
}

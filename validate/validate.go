package validate

import (
	"strings"

	"github.com/rokoss21/facet-compiler/ast"
	"github.com/rokoss21/facet-compiler/engine"
	"github.com/rokoss21/facet-compiler/lens"
)

// Validate runs the static phases from spec.md §4.3 against a resolved
// Document (no Import nodes should remain, but phase 1 checks
// defensively in case Validate is run standalone) in order, per spec.md
// §7 rule 2: errors are collected per phase but short-circuit on the
// first failure within a component, so the caller sees one precise
// diagnostic per phase rather than a cascade. The first phase to report
// anything stops the whole pass; its errors are truncated to their first
// entry. Pass a nil registry to skip phase 5 (lens existence) when
// validating ahead of registry construction.
func Validate(doc *ast.Document, registry lens.SignatureProvider) []*Error {
	if errs := checkImportShape(doc); len(errs) > 0 {
		return errs[:1]
	}

	varTypes, typeErrs := collectVarTypes(doc)
	if len(typeErrs) > 0 {
		return typeErrs[:1]
	}

	vars, order := collectVars(doc)
	if errs := checkVariableValidation(vars, order, varTypes); len(errs) > 0 {
		return errs[:1]
	}
	if errs := checkInputDirectives(doc); len(errs) > 0 {
		return errs[:1]
	}

	if errs := checkVariableResolution(doc, vars, varTypes); len(errs) > 0 {
		return errs[:1]
	}
	if errs := checkCycles(vars, order); len(errs) > 0 {
		return errs[:1]
	}

	if registry != nil {
		if errs := checkLensExistence(doc, registry); len(errs) > 0 {
			return errs[:1]
		}
	}

	if errs := checkInterfaceShape(doc); len(errs) > 0 {
		return errs[:1]
	}

	return nil
}

// --- Phase 1: import shape -------------------------------------------------

func checkImportShape(doc *ast.Document) []*Error {
	var errs []*Error
	for _, top := range doc.Blocks {
		imp, ok := top.(*ast.Import)
		if !ok {
			continue
		}
		if strings.TrimSpace(imp.Path) == "" {
			errs = append(errs, errImportNotFound(imp.Path))
		}
	}
	return errs
}

// --- Phase 2: type declarations ---------------------------------------------

// collectVarTypes gathers every @var_types entry (merged across imports
// by the resolver into at most one block) and lowers each declared
// TypeNode, surfacing F402 for any that fails to lower.
func collectVarTypes(doc *ast.Document) (map[string]ast.VarTypeDecl, []*Error) {
	decls := make(map[string]ast.VarTypeDecl)
	var errs []*Error
	for _, top := range doc.Blocks {
		blk, ok := top.(*ast.Block)
		if !ok || blk.Kind != ast.BlockVarTypes {
			continue
		}
		for _, item := range blk.Body {
			td, ok := item.(*ast.TypeDecl)
			if !ok {
				continue
			}
			if _, err := lowerTypeNode(td.Decl.Type); err != nil {
				errs = append(errs, err.(*Error))
				continue
			}
			decls[td.Key] = td.Decl
		}
	}
	return decls, errs
}

// --- Phase 3: variable validation -------------------------------------------

// collectVars extracts the single (post-merge) @vars block's entries, in
// declaration order.
func collectVars(doc *ast.Document) (map[string]ast.Value, []string) {
	vars := make(map[string]ast.Value)
	var order []string
	for _, top := range doc.Blocks {
		blk, ok := top.(*ast.Block)
		if !ok || blk.Kind != ast.BlockVars {
			continue
		}
		for _, item := range blk.Body {
			kv, ok := item.(*ast.KeyValue)
			if !ok {
				continue
			}
			if _, exists := vars[kv.Key]; !exists {
				order = append(order, kv.Key)
			}
			vars[kv.Key] = kv.Value
		}
	}
	return vars, order
}

// checkVariableValidation checks each @vars entry against its declared
// type (if any): the inferred type of the literal must be assignable to
// the declared type (F451), and any declared constraint must hold
// against the literal (F452). Variables, pipelines, and directives infer
// as Any and are exempt — their real value is only known at R-DAG
// evaluation time.
func checkVariableValidation(vars map[string]ast.Value, order []string, varTypes map[string]ast.VarTypeDecl) []*Error {
	var errs []*Error
	for _, name := range order {
		decl, ok := varTypes[name]
		if !ok {
			continue
		}
		declared, err := lowerTypeNode(decl.Type)
		if err != nil {
			continue // already reported by collectVarTypes
		}
		inferred := InferType(vars[name])
		if _, isAny := inferred.(ast.AnyType); !isAny && !declared.Accepts(inferred) {
			errs = append(errs, errTypeMismatch(name, declared.String(), inferred.String()))
			continue
		}
		if cerr := CheckConstraints(name, decl.Constraints, vars[name]); cerr != nil {
			errs = append(errs, cerr)
		}
	}
	return errs
}

// checkInputDirectives requires every @input(...) directive appearing
// anywhere in the document to carry a type= argument (F453).
func checkInputDirectives(doc *ast.Document) []*Error {
	var errs []*Error
	for _, v := range contentValues(doc) {
		walkValue(v, func(inner ast.Value) {
			d, ok := inner.(*ast.Directive)
			if !ok || d.Name != "input" {
				return
			}
			if _, hasType := d.Args["type"]; !hasType {
				errs = append(errs, errInputValidationFailed(d.Name))
			}
		})
	}
	return errs
}

// --- Phase 4: variable resolution -------------------------------------------

// checkVariableResolution requires every Variable reference reachable
// from a block body to resolve to a name declared in @vars or
// @var_types (F401). $-paths are checked at their root segment, since
// dotted access into a resolved Map/Struct value is a render/engine-time
// concern, not a static-declaration one.
func checkVariableResolution(doc *ast.Document, vars map[string]ast.Value, varTypes map[string]ast.VarTypeDecl) []*Error {
	known := make(map[string]bool, len(vars)+len(varTypes))
	for name := range vars {
		known[name] = true
	}
	for name := range varTypes {
		known[name] = true
	}

	var errs []*Error
	seen := make(map[string]bool)
	for _, v := range contentValues(doc) {
		walkValue(v, func(inner ast.Value) {
			vr, ok := inner.(*ast.Variable)
			if !ok {
				return
			}
			root := rootName(vr.Name)
			if known[root] || seen[vr.Name] {
				return
			}
			seen[vr.Name] = true
			errs = append(errs, errVariableNotFound(vr.Name))
		})
	}
	return errs
}

func rootName(name string) string {
	for i, r := range name {
		if r == '.' {
			return name[:i]
		}
	}
	return name
}

// checkCycles reuses the engine's own graph construction and cycle
// detection (rather than a second hand-maintained implementation) as a
// pre-check over @vars, reporting any cycle as F505. This mirrors
// exactly what Evaluate would hit at run time, just surfaced earlier.
//
// F404 (forward reference) is deliberately never raised here: the R-DAG
// evaluates @vars in dependency-topological order, not declaration
// order, so within @vars a reference to a name declared later in the
// source text is valid and order genuinely does not matter. The code is
// reserved for a future syntax extension (e.g. single-pass streaming
// evaluation) where it would.
func checkCycles(vars map[string]ast.Value, order []string) []*Error {
	g := engine.BuildGraph(vars, order)
	_, cycle, ok := engine.DetectCycle(g)
	if ok {
		return nil
	}
	return []*Error{errCyclicDependency(strings.Join(cycle, " -> "))}
}

// --- Phase 5: lens existence -------------------------------------------------

func checkLensExistence(doc *ast.Document, registry lens.SignatureProvider) []*Error {
	var errs []*Error
	seen := make(map[string]bool)
	for _, v := range contentValues(doc) {
		walkLensCalls(v, func(lc *ast.LensCall) {
			if registry.HasLens(lc.Name) || seen[lc.Name] {
				return
			}
			seen[lc.Name] = true
			errs = append(errs, errUnknownLens(lc.Name))
		})
	}
	return errs
}

// --- Phase 6: interface/body shape checks -----------------------------------

// checkInterfaceShape requires unique function names within an
// @interface block, unique parameter names within each function, and
// that every parameter/return TypeNode lowers cleanly.
func checkInterfaceShape(doc *ast.Document) []*Error {
	var errs []*Error
	for _, top := range doc.Blocks {
		iface, ok := top.(*ast.Interface)
		if !ok {
			continue
		}
		fnNames := make(map[string]bool)
		for _, fn := range iface.Functions {
			if fnNames[fn.Name] {
				errs = append(errs, errTypeInferenceFailed(iface.Name+"."+fn.Name, "duplicate function name in interface"))
			}
			fnNames[fn.Name] = true

			paramNames := make(map[string]bool)
			for _, p := range fn.Params {
				if paramNames[p.Name] {
					errs = append(errs, errTypeInferenceFailed(fn.Name+"."+p.Name, "duplicate parameter name"))
				}
				paramNames[p.Name] = true
				if _, err := lowerTypeNode(p.Type); err != nil {
					errs = append(errs, err.(*Error))
				}
			}
			if fn.ReturnType != nil {
				if _, err := lowerTypeNode(fn.ReturnType); err != nil {
					errs = append(errs, err.(*Error))
				}
			}
		}
	}
	return errs
}

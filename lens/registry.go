package lens

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rokoss21/facet-compiler/ast"
)

// Registry is the process-wide lookup of lenses by name. It is safe for
// concurrent reads once construction has finished; Register is not
// expected to race with Execute in normal use (registries are built once
// at startup), but is still guarded to make that assumption cheap to
// revisit.
type Registry struct {
	mu     sync.RWMutex
	lenses map[string]Lens
}

// NewRegistry returns an empty registry with no lenses installed.
func NewRegistry() *Registry {
	return &Registry{lenses: make(map[string]Lens)}
}

// NewDefaultRegistry returns a registry pre-populated with every built-in
// Pure lens from spec.md §6.1. Bounded lenses are not installed by
// default since they require credentials and a network client; callers
// that want them Register each lens BoundedLenses returns.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, l := range builtinStringLenses() {
		_ = r.Register(l)
	}
	for _, l := range builtinListLenses(r) {
		_ = r.Register(l)
	}
	for _, l := range builtinMapLenses() {
		_ = r.Register(l)
	}
	for _, l := range builtinUtilLenses() {
		_ = r.Register(l)
	}
	return r
}

// Register installs a lens under its own signature name. Re-registering
// the same name replaces the previous lens, matching the teacher's
// "last writer wins" convention used elsewhere for attribute collisions,
// rather than erroring, since test suites commonly install stub lenses
// over built-ins via mocks.
func (r *Registry) Register(l Lens) error {
	sig := l.Signature()
	if sig.Name == "" {
		return fmt.Errorf("lens signature has no name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lenses[sig.Name] = l
	return nil
}

// Clone returns a shallow copy whose lens map is independent of the
// receiver's: registering a lens on the clone (e.g. a test-scoped mock)
// never affects the original registry, while both still share the
// underlying Lens values they already held. This is what lets a test
// run install lens mocks without disturbing the registry every other
// test and the live pipeline share.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := NewRegistry()
	for name, l := range r.lenses {
		clone.lenses[name] = l
	}
	return clone
}

// Get returns the lens registered under name, if any.
func (r *Registry) Get(name string) (Lens, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.lenses[name]
	return l, ok
}

// HasLens implements SignatureProvider.
func (r *Registry) HasLens(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// LensSignature implements SignatureProvider.
func (r *Registry) LensSignature(name string) (Signature, bool) {
	l, ok := r.Get(name)
	if !ok {
		return Signature{}, false
	}
	return l.Signature(), true
}

// Names returns every registered lens name in sorted order, for
// diagnostics and test assertions.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.lenses))
	for n := range r.lenses {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Execute looks up name and invokes it, validating the call shape
// against its signature first. This is the single call path used by
// both the pipeline evaluator (engine package) and the map/filter
// built-ins that dispatch to another lens by name.
func (r *Registry) Execute(lctx *Context, name string, input ast.Value, args []ast.Value, kwargs map[string]ast.Value) (ast.Value, error) {
	l, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown lens %q", name)
	}
	sig := l.Signature()
	if err := CheckCall(sig, input, args, kwargs); err != nil {
		return nil, fmt.Errorf("lens %q: %w", name, err)
	}
	return l.Execute(input, args, kwargs, lctx)
}

// CheckCall validates an invocation's input and its positional/keyword
// arguments against a signature's declared shape, per spec.md §3's
// invariant ("every LensCall name is known to the registry and its
// arguments type-check against its signature") and §4.4's call
// validation rules: the lens's declared Input type must accept input's
// type, every required non-variadic parameter must be satisfiable by
// either a positional slot or a keyword of the same name, each supplied
// argument's type must be accepted by its parameter's declared Type (and,
// for enum-constrained parameters, its value must be one of EnumValues),
// and excess positional arguments are only allowed when the signature is
// variadic.
func CheckCall(sig Signature, input ast.Value, args []ast.Value, kwargs map[string]ast.Value) error {
	if sig.Input != nil && input != nil {
		if inT := ast.TypeOf(input); !sig.Input.Accepts(inT) {
			return fmt.Errorf("input type %s not accepted by declared input type %s", inT.String(), sig.Input.String())
		}
	}

	consumed := 0
	for i, p := range sig.Params {
		kwVal, byKw := kwargs[p.Name]
		byPos := i < len(args)
		if !byKw && !byPos {
			if p.Required {
				return fmt.Errorf("missing required parameter %q", p.Name)
			}
			continue
		}
		if byPos {
			consumed++
		}
		val := kwVal
		if !byKw {
			val = args[i]
		}
		if err := checkParamValue(p, val); err != nil {
			return err
		}
	}
	if consumed < len(args) && !sig.Variadic {
		return fmt.Errorf("too many positional arguments: got %d, signature accepts %d", len(args), len(sig.Params))
	}
	for k, v := range kwargs {
		p, found := findParam(sig.Params, k)
		if !found {
			if sig.VariadicKwargs {
				continue
			}
			return fmt.Errorf("unknown keyword argument %q", k)
		}
		if err := checkParamValue(p, v); err != nil {
			return err
		}
	}
	return nil
}

func findParam(params []ParamSig, name string) (ParamSig, bool) {
	for _, p := range params {
		if p.Name == name {
			return p, true
		}
	}
	return ParamSig{}, false
}

// checkParamValue type-checks a single argument value against its
// parameter's declared Type, then, for enum-constrained parameters (e.g.
// hash's algorithm), checks its value against EnumValues.
func checkParamValue(p ParamSig, val ast.Value) error {
	if val == nil {
		return nil
	}
	if p.Type != nil {
		if valT := ast.TypeOf(val); !p.Type.Accepts(valT) {
			return fmt.Errorf("parameter %q: type %s not accepted by declared type %s", p.Name, valT.String(), p.Type.String())
		}
	}
	if len(p.EnumValues) == 0 {
		return nil
	}
	s, ok := val.(*ast.String)
	if !ok {
		return fmt.Errorf("parameter %q: expected one of %v, got %T", p.Name, p.EnumValues, val)
	}
	for _, allowed := range p.EnumValues {
		if s.Val == allowed {
			return nil
		}
	}
	return fmt.Errorf("parameter %q: %q is not one of %v", p.Name, s.Val, p.EnumValues)
}

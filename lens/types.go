// Package lens implements the pluggable lens registry, the built-in lens
// library (spec.md §6.1), and the Bounded network-backed lenses. A lens
// is a named value-transforming function with a signature and trust
// level, consumed both by pipelines and by the Token Box Model allocator
// as compression strategies.
package lens

import (
	"context"

	"github.com/rokoss21/facet-compiler/ast"
)

// Trust classifies how a lens may behave. Pure lenses are deterministic
// and side-effect free; the R-DAG caches only their results. Bounded
// lenses may contact a known external service. Volatile is neither pure
// nor deterministic.
type Trust int

const (
	Pure Trust = iota
	Bounded
	Volatile
)

func (t Trust) String() string {
	switch t {
	case Pure:
		return "pure"
	case Bounded:
		return "bounded"
	case Volatile:
		return "volatile"
	default:
		return "unknown"
	}
}

// ParamSig is one named, typed, optionally-required lens parameter.
// EnumValues, when non-empty, additionally restricts a string-typed
// argument to one of the listed values (e.g. hash's algorithm).
type ParamSig struct {
	Name       string
	Type       ast.Type
	Required   bool
	EnumValues []string
}

// Signature fully describes a lens's call shape and trust level.
// VariadicKwargs marks a lens (template is the only built-in) that
// accepts arbitrary keyword arguments rather than a fixed Params set.
type Signature struct {
	Name           string
	Input          ast.Type
	Params         []ParamSig
	Variadic       bool
	VariadicType   ast.Type
	VariadicKwargs bool
	Output         ast.Type
	TrustLevel     Trust
	Deterministic  bool
}

// Context is threaded through every lens execution. It exposes a
// read-only snapshot of the variable table so lenses can be aware of
// their evaluation context without observing state beyond their trust
// level, plus the ambient Go context.Context for cancellation/timeouts
// on Bounded network calls.
type Context struct {
	Go        context.Context
	Variables map[string]ast.Value
	Registry  *Registry
}

// Lens is the two-method contract every built-in and third-party lens
// implements.
type Lens interface {
	Execute(input ast.Value, args []ast.Value, kwargs map[string]ast.Value, lctx *Context) (ast.Value, error)
	Signature() Signature
}

// SignatureProvider lets the validator consume lens signatures without
// coupling to the concrete Registry, so alternate providers (code
// generation, IDE tooling) can be substituted.
type SignatureProvider interface {
	HasLens(name string) bool
	LensSignature(name string) (Signature, bool)
}

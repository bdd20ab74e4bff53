package lens

import "github.com/rokoss21/facet-compiler/ast"

// execFunc is the shape every built-in lens implements; funcLens adapts
// a plain function to the Lens interface so built-ins can be declared as
// flat tables instead of one named type apiece.
type execFunc func(input ast.Value, args []ast.Value, kwargs map[string]ast.Value, lctx *Context) (ast.Value, error)

type funcLens struct {
	sig Signature
	fn  execFunc
}

func (f *funcLens) Signature() Signature { return f.sig }

func (f *funcLens) Execute(input ast.Value, args []ast.Value, kwargs map[string]ast.Value, lctx *Context) (ast.Value, error) {
	return f.fn(input, args, kwargs, lctx)
}

// Shorthand Type values used throughout the built-in lens declarations
// below, mirroring spec.md §6.1's signatures.
var (
	stringT = ast.Primitive{Kind: ast.PrimString}
	numberT = ast.Primitive{Kind: ast.PrimNumber}
	anyT    = ast.AnyType{}
	listT   = ast.ListType{Elem: ast.AnyType{}}
	mapT    = ast.MapType{Elem: ast.AnyType{}}
)

func newLens(name string, trust Trust, input ast.Type, params []ParamSig, output ast.Type, fn execFunc) Lens {
	return &funcLens{
		sig: Signature{
			Name:          name,
			Input:         input,
			Params:        params,
			Output:        output,
			TrustLevel:    trust,
			Deterministic: trust == Pure,
		},
		fn: fn,
	}
}

// newVariadicKwargsLens declares a lens that accepts arbitrary keyword
// arguments rather than a fixed Params set (template's `**kwargs`).
func newVariadicKwargsLens(name string, trust Trust, input ast.Type, output ast.Type, fn execFunc) Lens {
	return &funcLens{
		sig: Signature{
			Name:           name,
			Input:          input,
			Output:         output,
			TrustLevel:     trust,
			Deterministic:  trust == Pure,
			VariadicKwargs: true,
		},
		fn: fn,
	}
}

// param declares a named, typed parameter.
func param(name string, typ ast.Type, required bool) ParamSig {
	return ParamSig{Name: name, Type: typ, Required: required}
}

// enumParam declares a string parameter additionally restricted to one
// of values, e.g. hash's algorithm ∈ {md5, sha256, sha512}.
func enumParam(name string, values []string, required bool) ParamSig {
	return ParamSig{Name: name, Type: stringT, Required: required, EnumValues: values}
}

// NewSimpleLens builds a Pure, no-argument lens from a plain unary
// function. It exists for tests and small in-process registrations
// (mocked lenses in the test runner) that don't need the full
// args/kwargs/Context shape; its Input/Output are Any since a mock
// stands in for whatever lens it replaces.
func NewSimpleLens(name string, fn func(ast.Value) (ast.Value, error)) Lens {
	return newLens(name, Pure, anyT, nil, anyT, func(in ast.Value, _ []ast.Value, _ map[string]ast.Value, _ *Context) (ast.Value, error) {
		return fn(in)
	})
}

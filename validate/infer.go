package validate

import "github.com/rokoss21/facet-compiler/ast"

// InferType computes the static type of a value literal. It delegates to
// ast.TypeOf, the same inference lens.CheckCall uses for lens call-shape
// checking, so a @vars literal's declared type and a lens parameter's
// declared type are judged against one identical notion of "the type of
// this value." Variables, pipelines, and directives resolve only at
// R-DAG evaluation time, so they infer as Any here and are exempted from
// compile-time type/constraint checks.
func InferType(v ast.Value) ast.Type {
	return ast.TypeOf(v)
}

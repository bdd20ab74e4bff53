package validate_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rokoss21/facet-compiler/ast"
	"github.com/rokoss21/facet-compiler/lens"
	"github.com/rokoss21/facet-compiler/validate"
)

func f(v float64) *float64 { return &v }

func hasCode(errs []*validate.Error, code string) bool {
	for _, e := range errs {
		if e.Code == code {
			return true
		}
	}
	return false
}

func varTypesBlock(decls map[string]ast.VarTypeDecl) *ast.Block {
	b := &ast.Block{Kind: ast.BlockVarTypes, Name: "var_types"}
	for key, decl := range decls {
		b.Body = append(b.Body, &ast.TypeDecl{Key: key, Decl: decl})
	}
	return b
}

func varsBlock(kv map[string]ast.Value) *ast.Block {
	b := &ast.Block{Kind: ast.BlockVars, Name: "vars"}
	for key, v := range kv {
		b.Body = append(b.Body, &ast.KeyValue{Key: key, Value: v})
	}
	return b
}

func TestTypeMismatchOnDeclaredVar(t *testing.T) {
	doc := &ast.Document{Blocks: []ast.TopLevel{
		varTypesBlock(map[string]ast.VarTypeDecl{
			"age": {Type: ast.PrimitiveTypeNode{Name: "int"}},
		}),
		varsBlock(map[string]ast.Value{
			"age": &ast.String{Val: "not a number"},
		}),
	}}
	errs := validate.Validate(doc, nil)
	require.True(t, hasCode(errs, "F451"))
}

func TestConstraintViolationOnDeclaredVar(t *testing.T) {
	doc := &ast.Document{Blocks: []ast.TopLevel{
		varTypesBlock(map[string]ast.VarTypeDecl{
			"age": {Type: ast.PrimitiveTypeNode{Name: "int"}, Constraints: ast.Constraints{Min: f(0), Max: f(150)}},
		}),
		varsBlock(map[string]ast.Value{
			"age": &ast.Scalar{Kind: ast.ScalarInt, IntVal: -5},
		}),
	}}
	errs := validate.Validate(doc, nil)
	require.True(t, hasCode(errs, "F452"))
}

func TestValidVarPassesCleanly(t *testing.T) {
	doc := &ast.Document{Blocks: []ast.TopLevel{
		varTypesBlock(map[string]ast.VarTypeDecl{
			"age": {Type: ast.PrimitiveTypeNode{Name: "int"}, Constraints: ast.Constraints{Min: f(0), Max: f(150)}},
		}),
		varsBlock(map[string]ast.Value{
			"age": &ast.Scalar{Kind: ast.ScalarInt, IntVal: 30},
		}),
	}}
	errs := validate.Validate(doc, nil)
	require.Empty(t, errs)
}

func TestInputDirectiveMissingTypeArgument(t *testing.T) {
	doc := &ast.Document{Blocks: []ast.TopLevel{
		varsBlock(map[string]ast.Value{
			"name": &ast.Directive{Name: "input"},
		}),
	}}
	errs := validate.Validate(doc, nil)
	require.True(t, hasCode(errs, "F453"))
}

func TestInputDirectiveWithTypeArgumentPasses(t *testing.T) {
	d := &ast.Directive{Name: "input"}
	d.SetArg("type", &ast.String{Val: "string"})
	doc := &ast.Document{Blocks: []ast.TopLevel{
		varsBlock(map[string]ast.Value{"name": d}),
	}}
	errs := validate.Validate(doc, nil)
	require.False(t, hasCode(errs, "F453"))
}

func TestVariableNotFoundInContentBlock(t *testing.T) {
	doc := &ast.Document{Blocks: []ast.TopLevel{
		&ast.Block{Kind: ast.BlockSystem, Name: "system", Body: []ast.BodyItem{
			&ast.KeyValue{Key: "persona", Value: &ast.Variable{Name: "undeclared"}},
		}},
	}}
	errs := validate.Validate(doc, nil)
	require.True(t, hasCode(errs, "F401"))
}

func TestVariableResolvesAgainstVars(t *testing.T) {
	doc := &ast.Document{Blocks: []ast.TopLevel{
		varsBlock(map[string]ast.Value{"name": &ast.String{Val: "ok"}}),
		&ast.Block{Kind: ast.BlockSystem, Name: "system", Body: []ast.BodyItem{
			&ast.KeyValue{Key: "persona", Value: &ast.Variable{Name: "name"}},
		}},
	}}
	errs := validate.Validate(doc, nil)
	require.False(t, hasCode(errs, "F401"))
}

func TestCyclicDependencyDetected(t *testing.T) {
	doc := &ast.Document{Blocks: []ast.TopLevel{
		varsBlock(map[string]ast.Value{
			"a": &ast.Variable{Name: "b"},
			"b": &ast.Variable{Name: "a"},
		}),
	}}
	errs := validate.Validate(doc, nil)
	require.True(t, hasCode(errs, "F505"))
}

func TestUnknownLensDetected(t *testing.T) {
	pipeline := &ast.Pipeline{
		Initial: &ast.String{Val: "hi"},
		Lenses:  []*ast.LensCall{{Name: "not_a_real_lens"}},
	}
	doc := &ast.Document{Blocks: []ast.TopLevel{
		&ast.Block{Kind: ast.BlockSystem, Name: "system", Body: []ast.BodyItem{
			&ast.KeyValue{Key: "greeting", Value: pipeline},
		}},
	}}
	errs := validate.Validate(doc, lens.NewDefaultRegistry())
	require.True(t, hasCode(errs, "F802"))
}

func TestKnownLensPassesExistenceCheck(t *testing.T) {
	pipeline := &ast.Pipeline{
		Initial: &ast.String{Val: "hi"},
		Lenses:  []*ast.LensCall{{Name: "uppercase"}},
	}
	doc := &ast.Document{Blocks: []ast.TopLevel{
		&ast.Block{Kind: ast.BlockSystem, Name: "system", Body: []ast.BodyItem{
			&ast.KeyValue{Key: "greeting", Value: pipeline},
		}},
	}}
	errs := validate.Validate(doc, lens.NewDefaultRegistry())
	require.False(t, hasCode(errs, "F802"))
}

func TestInterfaceDuplicateParameterName(t *testing.T) {
	iface := &ast.Interface{
		Name: "API",
		Functions: []ast.FunctionSignature{{
			Name: "do",
			Params: []ast.Parameter{
				{Name: "x", Type: ast.PrimitiveTypeNode{Name: "string"}},
				{Name: "x", Type: ast.PrimitiveTypeNode{Name: "int"}},
			},
			ReturnType: ast.PrimitiveTypeNode{Name: "string"},
		}},
	}
	doc := &ast.Document{Blocks: []ast.TopLevel{iface}}
	errs := validate.Validate(doc, nil)
	require.True(t, hasCode(errs, "F402"))
}

func TestInterfaceUnknownPrimitiveNameReported(t *testing.T) {
	iface := &ast.Interface{
		Name: "API",
		Functions: []ast.FunctionSignature{{
			Name:       "do",
			ReturnType: ast.PrimitiveTypeNode{Name: "strnig"},
		}},
	}
	doc := &ast.Document{Blocks: []ast.TopLevel{iface}}
	errs := validate.Validate(doc, nil)
	require.True(t, hasCode(errs, "F402"))
}

func TestImportShapeRejectsEmptyPath(t *testing.T) {
	doc := &ast.Document{Blocks: []ast.TopLevel{&ast.Import{Path: ""}}}
	errs := validate.Validate(doc, nil)
	require.True(t, hasCode(errs, "F601"))
}

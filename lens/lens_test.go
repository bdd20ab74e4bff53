package lens_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rokoss21/facet-compiler/ast"
	"github.com/rokoss21/facet-compiler/lens"
)

func exec(t *testing.T, reg *lens.Registry, name string, in ast.Value, args []ast.Value, kwargs map[string]ast.Value) ast.Value {
	t.Helper()
	out, err := reg.Execute(&lens.Context{Registry: reg}, name, in, args, kwargs)
	require.NoError(t, err)
	return out
}

func TestUppercaseLowercaseTrim(t *testing.T) {
	reg := lens.NewDefaultRegistry()
	require.Equal(t, "HELLO", exec(t, reg, "uppercase", &ast.String{Val: "hello"}, nil, nil).(*ast.String).Val)
	require.Equal(t, "hello", exec(t, reg, "lowercase", &ast.String{Val: "HELLO"}, nil, nil).(*ast.String).Val)
	require.Equal(t, "hi", exec(t, reg, "trim", &ast.String{Val: "  hi  "}, nil, nil).(*ast.String).Val)
}

func TestSplitJoinRoundTrip(t *testing.T) {
	reg := lens.NewDefaultRegistry()
	split := exec(t, reg, "split", &ast.String{Val: "a,b,c"}, nil, map[string]ast.Value{"separator": &ast.String{Val: ","}})
	joined := exec(t, reg, "join", split, nil, map[string]ast.Value{"separator": &ast.String{Val: "-"}})
	require.Equal(t, "a-b-c", joined.(*ast.String).Val)
}

func TestMapDispatchesToAnotherLens(t *testing.T) {
	reg := lens.NewDefaultRegistry()
	in := &ast.List{Items: []ast.Value{&ast.String{Val: "a"}, &ast.String{Val: "b"}}}
	out := exec(t, reg, "map", in, nil, map[string]ast.Value{"op": &ast.String{Val: "uppercase"}})
	list := out.(*ast.List)
	require.Equal(t, "A", list.Items[0].(*ast.String).Val)
	require.Equal(t, "B", list.Items[1].(*ast.String).Val)
}

func TestFilterKeepsOnlyMatching(t *testing.T) {
	reg := lens.NewDefaultRegistry()
	_ = reg.Register(lens.NewSimpleLens("is_empty", func(in ast.Value) (ast.Value, error) {
		s := in.(*ast.String).Val
		return &ast.Scalar{Kind: ast.ScalarBool, BoolVal: s == ""}, nil
	}))
	in := &ast.List{Items: []ast.Value{&ast.String{Val: ""}, &ast.String{Val: "x"}}}
	out := exec(t, reg, "filter", in, nil, map[string]ast.Value{"cond": &ast.String{Val: "is_empty"}})
	require.Len(t, out.(*ast.List).Items, 1)
}

func TestLengthAcrossTypes(t *testing.T) {
	reg := lens.NewDefaultRegistry()
	require.Equal(t, int64(3), exec(t, reg, "length", &ast.String{Val: "abc"}, nil, nil).(*ast.Scalar).IntVal)
	require.Equal(t, int64(2), exec(t, reg, "length", &ast.List{Items: []ast.Value{&ast.String{}, &ast.String{}}}, nil, nil).(*ast.Scalar).IntVal)
}

func TestJSONRoundTrip(t *testing.T) {
	reg := lens.NewDefaultRegistry()
	m := ast.NewMap(ast.Span{})
	m.Set("a", &ast.Scalar{Kind: ast.ScalarInt, IntVal: 1})
	encoded := exec(t, reg, "json", m, nil, nil)
	decoded := exec(t, reg, "json_parse", encoded, nil, nil)
	dm := decoded.(*ast.Map)
	require.Equal(t, int64(1), dm.Entries["a"].(*ast.Scalar).IntVal)
}

func TestCheckCallRejectsMissingRequired(t *testing.T) {
	sig := lens.Signature{Name: "replace", Params: []lens.ParamSig{
		{Name: "pattern", Required: true},
		{Name: "replacement", Required: true},
	}}
	err := lens.CheckCall(sig, nil, nil, nil)
	require.Error(t, err)
}

func TestCheckCallAcceptsKeywordForRequiredParam(t *testing.T) {
	sig := lens.Signature{Name: "replace", Params: []lens.ParamSig{
		{Name: "pattern", Required: true},
		{Name: "replacement", Required: true},
	}}
	err := lens.CheckCall(sig, nil, nil, map[string]ast.Value{
		"pattern": &ast.String{Val: "a"}, "replacement": &ast.String{Val: "b"},
	})
	require.NoError(t, err)
}

func TestCheckCallRejectsWrongInputType(t *testing.T) {
	sig := lens.Signature{Name: "uppercase", Input: ast.Primitive{Kind: ast.PrimString}}
	err := lens.CheckCall(sig, &ast.List{}, nil, nil)
	require.Error(t, err)
}

func TestCheckCallRejectsWrongParamType(t *testing.T) {
	sig := lens.Signature{Name: "substring", Input: ast.Primitive{Kind: ast.PrimString}, Params: []lens.ParamSig{
		{Name: "start", Type: ast.Primitive{Kind: ast.PrimNumber}, Required: true},
	}}
	err := lens.CheckCall(sig, &ast.String{Val: "hi"}, []ast.Value{&ast.String{Val: "not a number"}}, nil)
	require.Error(t, err)
}

func TestCheckCallRejectsValueOutsideEnum(t *testing.T) {
	sig := lens.Signature{Name: "hash", Input: ast.Primitive{Kind: ast.PrimString}, Params: []lens.ParamSig{
		{Name: "algorithm", Type: ast.Primitive{Kind: ast.PrimString}, EnumValues: []string{"md5", "sha256", "sha512"}},
	}}
	err := lens.CheckCall(sig, &ast.String{Val: "hi"}, nil, map[string]ast.Value{"algorithm": &ast.String{Val: "sha1"}})
	require.Error(t, err)
}

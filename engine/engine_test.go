package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rokoss21/facet-compiler/ast"
	"github.com/rokoss21/facet-compiler/engine"
	"github.com/rokoss21/facet-compiler/lens"
)

func TestEvaluateSimpleChain(t *testing.T) {
	vars := map[string]ast.Value{
		"name":    &ast.String{Val: "  ada  "},
		"greeting": &ast.Pipeline{
			Initial: &ast.Variable{Name: "name"},
			Lenses: []*ast.LensCall{
				{Name: "trim"},
				{Name: "uppercase"},
			},
		},
	}
	order := []string{"name", "greeting"}

	res, err := engine.Evaluate(context.Background(), vars, order, engine.Options{Registry: lens.NewDefaultRegistry()})
	require.NoError(t, err)
	require.Equal(t, "ADA", res.Variables["greeting"].(*ast.String).Val)
}

func TestEvaluateDetectsCycle(t *testing.T) {
	vars := map[string]ast.Value{
		"a": &ast.Variable{Name: "b"},
		"b": &ast.Variable{Name: "a"},
	}
	order := []string{"a", "b"}

	_, err := engine.Evaluate(context.Background(), vars, order, engine.Options{Registry: lens.NewDefaultRegistry()})
	require.Error(t, err)
	var eerr *engine.Error
	require.ErrorAs(t, err, &eerr)
	require.Equal(t, "F505", eerr.Code)
}

func TestEvaluateMissingVariableRaisesF401(t *testing.T) {
	vars := map[string]ast.Value{
		"a": &ast.Variable{Name: "missing"},
	}
	order := []string{"a"}

	_, err := engine.Evaluate(context.Background(), vars, order, engine.Options{Registry: lens.NewDefaultRegistry()})
	require.Error(t, err)
	var eerr *engine.Error
	require.ErrorAs(t, err, &eerr)
	require.Equal(t, "F401", eerr.Code)
}

func TestEvaluateUnknownLensRaisesF802(t *testing.T) {
	vars := map[string]ast.Value{
		"a": &ast.Pipeline{
			Initial: &ast.String{Val: "x"},
			Lenses:  []*ast.LensCall{{Name: "does_not_exist"}},
		},
	}
	order := []string{"a"}

	_, err := engine.Evaluate(context.Background(), vars, order, engine.Options{Registry: lens.NewDefaultRegistry()})
	require.Error(t, err)
	var eerr *engine.Error
	require.ErrorAs(t, err, &eerr)
	require.Equal(t, "F802", eerr.Code)
}

func TestEvaluateGasExhaustion(t *testing.T) {
	vars := map[string]ast.Value{
		"a": &ast.String{Val: "x"},
		"b": &ast.String{Val: "y"},
	}
	order := []string{"a", "b"}

	_, err := engine.Evaluate(context.Background(), vars, order, engine.Options{Registry: lens.NewDefaultRegistry(), GasLimit: 1})
	require.Error(t, err)
	var eerr *engine.Error
	require.ErrorAs(t, err, &eerr)
	require.Equal(t, "F902", eerr.Code)
}

func TestDependencyOnVariableDotPath(t *testing.T) {
	m := ast.NewMap(ast.Span{})
	m.Set("city", &ast.String{Val: "Paris"})
	vars := map[string]ast.Value{
		"user":     m,
		"greeting": &ast.Variable{Name: "user.city"},
	}
	order := []string{"user", "greeting"}

	res, err := engine.Evaluate(context.Background(), vars, order, engine.Options{Registry: lens.NewDefaultRegistry()})
	require.NoError(t, err)
	require.Equal(t, "Paris", res.Variables["greeting"].(*ast.String).Val)
}

package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rokoss21/facet-compiler/ast"
	"github.com/rokoss21/facet-compiler/parser"
)

func TestParseBasicSubstitution(t *testing.T) {
	src := "@vars\n  name: \"Alice\"\n  greeting: $name |> uppercase()\n@user\n  content: \"Hi\"\n"
	doc, err := parser.Parse(src)
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 2)

	vars, ok := doc.Blocks[0].(*ast.Block)
	require.True(t, ok)
	require.Equal(t, ast.BlockVars, vars.Kind)
	require.Len(t, vars.Body, 2)

	kv0 := vars.Body[0].(*ast.KeyValue)
	require.Equal(t, "name", kv0.Key)
	str, ok := kv0.Value.(*ast.String)
	require.True(t, ok)
	require.Equal(t, "Alice", str.Val)

	kv1 := vars.Body[1].(*ast.KeyValue)
	require.Equal(t, "greeting", kv1.Key)
	pipeline, ok := kv1.Value.(*ast.Pipeline)
	require.True(t, ok)
	require.IsType(t, &ast.Variable{}, pipeline.Initial)
	require.Len(t, pipeline.Lenses, 1)
	require.Equal(t, "uppercase", pipeline.Lenses[0].Name)

	user := doc.Blocks[1].(*ast.Block)
	require.Equal(t, ast.BlockUser, user.Kind)
}

func TestParseRejectsTabs(t *testing.T) {
	src := "@vars\n\tname: \"Alice\"\n"
	_, err := parser.Parse(src)
	require.Error(t, err)
	var perr *parser.Error
	require.ErrorAs(t, err, &perr)
	require.Equal(t, "F002", perr.Code)
}

func TestParseRejectsOddIndentation(t *testing.T) {
	src := "@vars\n   name: \"Alice\"\n"
	_, err := parser.Parse(src)
	require.Error(t, err)
	var perr *parser.Error
	require.ErrorAs(t, err, &perr)
	require.Equal(t, "F001", perr.Code)
}

func TestParseUnclosedStringIsUnclosedDelimiter(t *testing.T) {
	src := "@vars\n  name: \"Alice\n"
	_, err := parser.Parse(src)
	require.Error(t, err)
	var perr *parser.Error
	require.ErrorAs(t, err, &perr)
	require.Equal(t, "F003", perr.Code)
}

func TestParseListAndMapLiterals(t *testing.T) {
	src := "@vars\n  items: [1, 2, 3]\n  config: {a: 1, b: \"two\"}\n"
	doc, err := parser.Parse(src)
	require.NoError(t, err)
	block := doc.Blocks[0].(*ast.Block)

	items := block.Body[0].(*ast.KeyValue).Value.(*ast.List)
	require.Len(t, items.Items, 3)

	config := block.Body[1].(*ast.KeyValue).Value.(*ast.Map)
	require.Equal(t, []string{"a", "b"}, config.Keys)
}

func TestParseImport(t *testing.T) {
	src := "@import \"shared/persona.facet\"\n"
	doc, err := parser.Parse(src)
	require.NoError(t, err)
	imp, ok := doc.Blocks[0].(*ast.Import)
	require.True(t, ok)
	require.Equal(t, "shared/persona.facet", imp.Path)
}

func TestParseInterface(t *testing.T) {
	src := "@interface(name=\"WeatherAPI\")\n  get_current(city: string) -> string\n"
	doc, err := parser.Parse(src)
	require.NoError(t, err)
	iface := doc.Blocks[0].(*ast.Interface)
	require.Equal(t, "WeatherAPI", iface.Name)
	require.Len(t, iface.Functions, 1)
	require.Equal(t, "get_current", iface.Functions[0].Name)
	require.Len(t, iface.Functions[0].Params, 1)
	require.Equal(t, "city", iface.Functions[0].Params[0].Name)
}

func TestParseTestBlockWithMockAndAssert(t *testing.T) {
	src := "" +
		"@test(name=\"weather test\")\n" +
		"  mock:\n" +
		"    WeatherAPI.get_current: {temp: 25, condition: \"Sunny\"}\n" +
		"  assert:\n" +
		"    output contains \"Sunny\"\n"
	doc, err := parser.Parse(src)
	require.NoError(t, err)
	test := doc.Blocks[0].(*ast.Test)
	require.Equal(t, "weather test", test.Name)
	require.Len(t, test.Mocks, 1)
	require.Equal(t, "WeatherAPI.get_current", test.Mocks[0].Target)
	require.Len(t, test.Assertions, 1)
	contains, ok := test.Assertions[0].Kind.(ast.AssertContains)
	require.True(t, ok)
	require.Equal(t, "output", contains.Target)
	require.Equal(t, "Sunny", contains.Text)
}

func TestParseCycleInputStillParsesSyntactically(t *testing.T) {
	// Cycle detection is the R-DAG engine's job, not the parser's: the
	// parser only enforces syntax.
	src := "@vars\n  a: $b\n  b: $a\n"
	doc, err := parser.Parse(src)
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 1)
}

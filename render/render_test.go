package render_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rokoss21/facet-compiler/ast"
	"github.com/rokoss21/facet-compiler/boxmodel"
	"github.com/rokoss21/facet-compiler/render"
)

func TestFromAllocationBucketsByRole(t *testing.T) {
	alloc := &boxmodel.AllocationResult{
		Budget:    100,
		TotalSize: 10,
		Sections: []boxmodel.AllocatedSection{
			{Section: boxmodel.Section{ID: "system"}, FinalSize: 5, Content: &ast.String{Val: "be helpful"}},
			{Section: boxmodel.Section{ID: "user"}, FinalSize: 5, Content: &ast.String{Val: "hello"}},
			{Section: boxmodel.Section{ID: "dropped"}, FinalSize: 0, Content: &ast.String{Val: "gone"}},
		},
	}
	p, err := render.FromAllocation("doc", alloc, time.Unix(0, 0))
	require.NoError(t, err)
	require.Len(t, p.System, 1)
	require.Equal(t, "be helpful", p.System[0].Text)
	require.Len(t, p.User, 1)
	require.Equal(t, "2.0", p.Metadata.Version)
}

func TestFromAllocationRejectsUnevaluatedVariable(t *testing.T) {
	alloc := &boxmodel.AllocationResult{
		Sections: []boxmodel.AllocatedSection{
			{Section: boxmodel.Section{ID: "user"}, FinalSize: 5, Content: &ast.Variable{Name: "oops"}},
		},
	}
	_, err := render.FromAllocation("doc", alloc, time.Unix(0, 0))
	require.Error(t, err)
}

func TestFromInterfaceProjectsFunctions(t *testing.T) {
	iface := &ast.Interface{
		Name: "WeatherAPI",
		Functions: []ast.FunctionSignature{
			{Name: "get_current", Params: []ast.Parameter{{Name: "city", Type: ast.PrimitiveTypeNode{Name: "string"}}}, ReturnType: ast.PrimitiveTypeNode{Name: "string"}},
		},
	}
	defs := render.FromInterface(iface)
	require.Len(t, defs, 1)
	require.Equal(t, "WeatherAPI.get_current", defs[0].Name)
	props := defs[0].InputSchema["properties"].(map[string]interface{})
	cityType := props["city"].(map[string]interface{})["type"]
	require.Equal(t, "string", cityType)
}

func TestToolDialectProjections(t *testing.T) {
	defs := []render.ToolDefinition{{Name: "t", Description: "d", InputSchema: map[string]interface{}{"type": "object"}}}
	oai := render.ToOpenAIDialect(defs)
	require.Equal(t, "function", oai[0].Type)
	anthropic := render.ToAnthropicDialect(defs)
	require.Equal(t, "t", anthropic[0].Name)
}

func TestToolExecutorRejectsDoubleRegistration(t *testing.T) {
	ex := render.NewToolExecutor()
	def := render.ToolDefinition{Name: "t"}
	require.NoError(t, ex.Register(def))
	require.Error(t, ex.Register(def))
}

func TestToolExecutorRequiresHandler(t *testing.T) {
	ex := render.NewToolExecutor()
	require.NoError(t, ex.Register(render.ToolDefinition{Name: "t"}))
	res := ex.Invoke("t", nil)
	require.NotEmpty(t, res.Error)
	require.NotEmpty(t, res.InvocationID)
}

func TestToolExecutorInvokesBoundHandler(t *testing.T) {
	ex := render.NewToolExecutor()
	require.NoError(t, ex.Register(render.ToolDefinition{Name: "t"}))
	require.NoError(t, ex.Bind("t", func(args map[string]interface{}) (interface{}, error) {
		return "ok", nil
	}))
	res := ex.Invoke("t", nil)
	require.Empty(t, res.Error)
	require.Equal(t, "ok", res.Result)
}

func TestDocNameUsesLastMetaBlock(t *testing.T) {
	first := &ast.Block{Kind: ast.BlockMeta, Name: "meta"}
	first.SetAttribute("name", &ast.String{Val: "first"})
	second := &ast.Block{Kind: ast.BlockMeta, Name: "meta"}
	second.SetAttribute("name", &ast.String{Val: "second"})
	doc := &ast.Document{Blocks: []ast.TopLevel{first, second}}
	require.Equal(t, "second", render.DocName(doc))
}

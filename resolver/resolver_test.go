package resolver_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rokoss21/facet-compiler/ast"
	"github.com/rokoss21/facet-compiler/parser"
	"github.com/rokoss21/facet-compiler/resolver"
	"github.com/rokoss21/facet-compiler/telemetry"
)

func newTestResolver(t *testing.T, baseDir string) *resolver.Resolver {
	t.Helper()
	cfg := resolver.Config{AllowedRoots: []string{"."}, BaseDir: baseDir, ReadTimeout: resolver.DefaultConfig().ReadTimeout}
	return resolver.New(cfg, telemetry.NewNoopBundle())
}

func TestResolveNoImportsIsIdentity(t *testing.T) {
	doc, err := parser.Parse("@user\n  content: \"hi\"\n")
	require.NoError(t, err)

	r := newTestResolver(t, t.TempDir())
	out, err := r.Resolve(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, out.Blocks, 1)
}

func TestResolveAbsolutePathRejected(t *testing.T) {
	doc, err := parser.Parse("@import \"/etc/passwd\"\n")
	require.NoError(t, err)

	r := newTestResolver(t, t.TempDir())
	_, err = r.Resolve(context.Background(), doc)
	require.Error(t, err)
	var rerr *resolver.Error
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, "F606", rerr.Code)
}

func TestResolveParentTraversalRejected(t *testing.T) {
	doc, err := parser.Parse("@import \"../../etc/passwd\"\n")
	require.NoError(t, err)

	r := newTestResolver(t, t.TempDir())
	_, err = r.Resolve(context.Background(), doc)
	require.Error(t, err)
	var rerr *resolver.Error
	require.ErrorAs(t, err, &rerr)
	require.Contains(t, []string{"F604", "F605", "F606"}, rerr.Code)
}

func TestResolveExpandsImportedBlocks(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shared.facet"), []byte("@system\n  persona: \"helpful\"\n"), 0o644))

	doc, err := parser.Parse("@import \"shared.facet\"\n@user\n  content: \"hi\"\n")
	require.NoError(t, err)

	r := newTestResolver(t, dir)
	out, err := r.Resolve(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, out.Blocks, 2)
	sys := out.Blocks[0].(*ast.Block)
	require.Equal(t, ast.BlockSystem, sys.Kind)
}

func TestResolveDetectsCycle(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.facet"), []byte("@import \"b.facet\"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.facet"), []byte("@import \"a.facet\"\n"), 0o644))

	doc, err := parser.Parse("@import \"a.facet\"\n")
	require.NoError(t, err)

	r := newTestResolver(t, dir)
	_, err = r.Resolve(context.Background(), doc)
	require.Error(t, err)
	var rerr *resolver.Error
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, "F602", rerr.Code)
}

func TestMergeBlocksCombinesSystemAttributesAndBody(t *testing.T) {
	first := &ast.Block{Kind: ast.BlockSystem, Name: "system"}
	first.SetAttribute("tone", &ast.String{Val: "formal"})
	first.Body = append(first.Body, &ast.KeyValue{Key: "persona", Value: &ast.String{Val: "a"}})
	first.Body = append(first.Body, &ast.ListItem{Value: &ast.String{Val: "rule1"}})

	second := &ast.Block{Kind: ast.BlockSystem, Name: "system"}
	second.SetAttribute("tone", &ast.String{Val: "casual"})
	second.Body = append(second.Body, &ast.KeyValue{Key: "persona", Value: &ast.String{Val: "b"}})
	second.Body = append(second.Body, &ast.ListItem{Value: &ast.String{Val: "rule2"}})

	merged := resolver.MergeBlocks([]ast.TopLevel{first, second})
	require.Len(t, merged, 1)
	sys := merged[0].(*ast.Block)

	require.Equal(t, "casual", sys.Attributes["tone"].(*ast.String).Val)
	require.Len(t, sys.Body, 3) // persona replaced in place + 2 appended list items

	kv := sys.Body[0].(*ast.KeyValue)
	require.Equal(t, "persona", kv.Key)
	require.Equal(t, "b", kv.Value.(*ast.String).Val)
}

func TestMergeBlocksCombinesVarTypesAcrossImports(t *testing.T) {
	first := &ast.Block{Kind: ast.BlockVarTypes, Name: "var_types"}
	first.Body = append(first.Body, &ast.TypeDecl{Key: "age", Decl: ast.VarTypeDecl{Type: ast.PrimitiveTypeNode{Name: "int"}}})

	second := &ast.Block{Kind: ast.BlockVarTypes, Name: "var_types"}
	second.Body = append(second.Body, &ast.TypeDecl{Key: "age", Decl: ast.VarTypeDecl{Type: ast.PrimitiveTypeNode{Name: "float"}}})
	second.Body = append(second.Body, &ast.TypeDecl{Key: "name", Decl: ast.VarTypeDecl{Type: ast.PrimitiveTypeNode{Name: "string"}}})

	merged := resolver.MergeBlocks([]ast.TopLevel{first, second})
	require.Len(t, merged, 1)
	vt := merged[0].(*ast.Block)
	require.Equal(t, ast.BlockVarTypes, vt.Kind)
	require.Len(t, vt.Body, 2) // age replaced in place by the later import, name appended

	age := vt.Body[0].(*ast.TypeDecl)
	require.Equal(t, "age", age.Key)
	require.Equal(t, "float", age.Decl.Type.(ast.PrimitiveTypeNode).Name)
}

package engine

import "github.com/rokoss21/facet-compiler/ast"

// VarsTable extracts the single (post-merge) @vars block's entries into
// an ordered name/value table, the engine's evaluation input. It returns
// empty results, not an error, when no @vars block is present — a
// document with no variables at all is valid.
func VarsTable(doc *ast.Document) (map[string]ast.Value, []string) {
	vars := make(map[string]ast.Value)
	var order []string
	for _, top := range doc.Blocks {
		blk, ok := top.(*ast.Block)
		if !ok || blk.Kind != ast.BlockVars {
			continue
		}
		for _, item := range blk.Body {
			kv, ok := item.(*ast.KeyValue)
			if !ok {
				continue
			}
			if _, exists := vars[kv.Key]; !exists {
				order = append(order, kv.Key)
			}
			vars[kv.Key] = kv.Value
		}
	}
	return vars, order
}

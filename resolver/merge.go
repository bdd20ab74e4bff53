package resolver

import "github.com/rokoss21/facet-compiler/ast"

// MergeBlocks applies the Smart Merge rule to same-role repeated blocks:
// System, User, Vars, and VarTypes blocks are each combined into one of
// their kind, with attributes overwritten on key collision (last writer
// wins), key-valued body entries (KeyValue, TypeDecl) replaced in place
// by key (preserving position), and list items always appended. Merged
// blocks surface first, in fixed system -> user -> vars -> var_types
// order, followed by every other block in its original relative order.
// It is exported standalone (not only wired into Resolve) so callers
// that only need merge semantics, such as a future formatter, can invoke
// it directly.
func MergeBlocks(blocks []ast.TopLevel) []ast.TopLevel {
	var systemBlocks, userBlocks, varsBlocks, varTypesBlocks []*ast.Block
	var others []ast.TopLevel

	for _, b := range blocks {
		if blk, ok := b.(*ast.Block); ok {
			switch blk.Kind {
			case ast.BlockSystem:
				systemBlocks = append(systemBlocks, blk)
				continue
			case ast.BlockUser:
				userBlocks = append(userBlocks, blk)
				continue
			case ast.BlockVars:
				varsBlocks = append(varsBlocks, blk)
				continue
			case ast.BlockVarTypes:
				varTypesBlocks = append(varTypesBlocks, blk)
				continue
			}
		}
		others = append(others, b)
	}

	var out []ast.TopLevel
	if merged := mergeGroup(ast.BlockSystem, "system", systemBlocks); merged != nil {
		out = append(out, merged)
	}
	if merged := mergeGroup(ast.BlockUser, "user", userBlocks); merged != nil {
		out = append(out, merged)
	}
	if merged := mergeGroup(ast.BlockVars, "vars", varsBlocks); merged != nil {
		out = append(out, merged)
	}
	if merged := mergeGroup(ast.BlockVarTypes, "var_types", varTypesBlocks); merged != nil {
		out = append(out, merged)
	}
	out = append(out, others...)
	return out
}

func mergeGroup(kind ast.BlockKind, name string, blocks []*ast.Block) *ast.Block {
	if len(blocks) == 0 {
		return nil
	}
	if len(blocks) == 1 {
		return blocks[0]
	}

	merged := &ast.Block{Kind: kind, Name: name, Span_: blocks[0].Span_}
	bodyIndex := make(map[string]int)

	for _, b := range blocks {
		for _, key := range b.AttrOrder {
			merged.SetAttribute(key, b.Attributes[key])
		}
		for _, item := range b.Body {
			switch it := item.(type) {
			case *ast.KeyValue:
				if idx, exists := bodyIndex[it.Key]; exists {
					merged.Body[idx] = it
				} else {
					bodyIndex[it.Key] = len(merged.Body)
					merged.Body = append(merged.Body, it)
				}
			case *ast.TypeDecl:
				if idx, exists := bodyIndex[it.Key]; exists {
					merged.Body[idx] = it
				} else {
					bodyIndex[it.Key] = len(merged.Body)
					merged.Body = append(merged.Body, it)
				}
			case *ast.ListItem:
				merged.Body = append(merged.Body, it)
			}
		}
	}
	return merged
}

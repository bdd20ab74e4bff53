package render

import (
	"time"

	"github.com/rokoss21/facet-compiler/ast"
	"github.com/rokoss21/facet-compiler/boxmodel"
)

// Render builds the full canonical payload: the allocation-derived
// content blocks plus every @interface's projected tool definitions.
func Render(docName string, alloc *boxmodel.AllocationResult, interfaces []*ast.Interface, createdAt time.Time) (*Payload, error) {
	p, err := FromAllocation(docName, alloc, createdAt)
	if err != nil {
		return nil, err
	}
	for _, iface := range interfaces {
		p.Tools = append(p.Tools, FromInterface(iface)...)
	}
	return p, nil
}

// DocName extracts the document name from the last @meta block's `name`
// attribute. The original implementation this was distilled from took
// the first @meta block; when multiple @meta blocks are present (the
// Smart Merge rule never merges @meta, unlike System/User/Vars) the
// last one encountered wins here, matching the document's written
// "later declarations override" intuition applied consistently.
func DocName(doc *ast.Document) string {
	name := ""
	for _, top := range doc.Blocks {
		blk, ok := top.(*ast.Block)
		if !ok || blk.Kind != ast.BlockMeta || blk.Name != "meta" {
			continue
		}
		if v, ok := blk.Attributes["name"]; ok {
			if s, ok := v.(*ast.String); ok {
				name = s.Val
			}
		}
	}
	return name
}

package validate

import "github.com/rokoss21/facet-compiler/ast"

// walkValue recursively visits every Value node reachable from v,
// including lens-call arguments/keyword-arguments and directive
// arguments, calling visit on each node in pre-order.
func walkValue(v ast.Value, visit func(ast.Value)) {
	if v == nil {
		return
	}
	visit(v)
	switch vv := v.(type) {
	case *ast.List:
		for _, item := range vv.Items {
			walkValue(item, visit)
		}
	case *ast.Map:
		for _, k := range vv.Keys {
			walkValue(vv.Entries[k], visit)
		}
	case *ast.Pipeline:
		walkValue(vv.Initial, visit)
		for _, lc := range vv.Lenses {
			for _, a := range lc.Args {
				walkValue(a, visit)
			}
			for _, k := range lc.KwargOrder {
				walkValue(lc.Kwargs[k], visit)
			}
		}
	case *ast.Directive:
		for _, k := range vv.ArgOrder {
			walkValue(vv.Args[k], visit)
		}
	}
}

// walkLensCalls visits every LensCall reachable from v (Pipeline chains
// only; a LensCall never itself appears as a Value).
func walkLensCalls(v ast.Value, visit func(*ast.LensCall)) {
	walkValue(v, func(inner ast.Value) {
		p, ok := inner.(*ast.Pipeline)
		if !ok {
			return
		}
		for _, lc := range p.Lenses {
			visit(lc)
		}
	})
}

// contentValues returns every body-item Value across all blocks except
// @var_types (@meta and other generic blocks included) that can carry
// Variable references, Pipelines, or Directives: the surface the
// resolution, lens-existence, and @input checks all walk. @interface and
// @test nodes are not walked.
func contentValues(doc *ast.Document) []ast.Value {
	var out []ast.Value
	for _, top := range doc.Blocks {
		blk, ok := top.(*ast.Block)
		if !ok || blk.Kind == ast.BlockVarTypes {
			continue
		}
		for _, item := range blk.Body {
			switch it := item.(type) {
			case *ast.KeyValue:
				out = append(out, it.Value)
			case *ast.ListItem:
				out = append(out, it.Value)
			}
		}
	}
	return out
}

package engine

import "github.com/rokoss21/facet-compiler/ast"

// Graph is the dependency graph over a @vars table's entries: for each
// declared name, the set of other names it transitively references
// through Variable, Pipeline, List, and Map. It is exported so the
// validate package's pre-check can reuse the exact same construction
// and cycle-detection logic the engine runs before real evaluation,
// rather than keeping a second implementation in sync by hand.
type Graph struct {
	Order []string            // declaration order, for deterministic traversal
	Deps  map[string][]string // name -> direct dependency names (deduped, first-seen order)
}

// BuildGraph walks a @vars entry table and extracts one dependency list
// per name. Unknown dependency names (not declared in vars) are kept in
// the list as-is; the engine treats them as VariableNotFound only when
// it actually tries to evaluate them.
func BuildGraph(vars map[string]ast.Value, order []string) *Graph {
	g := &Graph{Order: append([]string(nil), order...), Deps: make(map[string][]string)}
	for _, name := range order {
		g.Deps[name] = collectDeps(vars[name])
	}
	return g
}

func collectDeps(v ast.Value) []string {
	seen := make(map[string]bool)
	var out []string
	var walk func(ast.Value)
	walk = func(v ast.Value) {
		switch vv := v.(type) {
		case nil:
			return
		case *ast.Variable:
			root := rootName(vv.Name)
			if !seen[root] {
				seen[root] = true
				out = append(out, root)
			}
		case *ast.Pipeline:
			walk(vv.Initial)
			for _, lc := range vv.Lenses {
				for _, a := range lc.Args {
					walk(a)
				}
				for _, k := range lc.KwargOrder {
					walk(lc.Kwargs[k])
				}
			}
		case *ast.List:
			for _, item := range vv.Items {
				walk(item)
			}
		case *ast.Map:
			for _, k := range vv.Keys {
				walk(vv.Entries[k])
			}
		case *ast.Directive:
			// External leaf: directives such as @input(...) surface
			// values from outside the document, not from other
			// variables, so they never contribute a dependency edge.
			return
		default:
			return
		}
	}
	walk(v)
	return out
}

// rootName takes the leading segment of a dotted variable reference
// ($a.b.c -> "a"), since dependency edges are tracked at the
// declared-name level, not the accessed-path level.
func rootName(name string) string {
	for i, r := range name {
		if r == '.' {
			return name[:i]
		}
	}
	return name
}

// DetectCycle runs a DFS looking for a back-edge, then cross-checks with
// a Kahn-style topological sort, per spec.md §4.5. On success it returns
// the topological order. On failure it returns the cycle path from the
// first re-entered node to itself.
func DetectCycle(g *Graph) (order []string, cycle []string, ok bool) {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(g.Order))
	var path []string
	var topo []string
	var cyc []string

	var visit func(name string) bool
	visit = func(name string) bool {
		switch color[name] {
		case black:
			return true
		case gray:
			start := 0
			for i, n := range path {
				if n == name {
					start = i
					break
				}
			}
			cyc = append(append([]string(nil), path[start:]...), name)
			return false
		}
		color[name] = gray
		path = append(path, name)
		for _, dep := range g.Deps[name] {
			if _, declared := g.Deps[dep]; !declared {
				continue // external / undeclared reference, not part of the graph
			}
			if !visit(dep) {
				return false
			}
		}
		path = path[:len(path)-1]
		color[name] = black
		topo = append(topo, name)
		return true
	}

	for _, name := range g.Order {
		if color[name] == white {
			if !visit(name) {
				return nil, cyc, false
			}
		}
	}

	if !kahnConfirms(g, topo) {
		return nil, []string{"kahn cross-check disagreed with DFS order"}, false
	}
	return topo, nil, true
}

// kahnConfirms re-derives a topological order with Kahn's algorithm and
// checks it admits a full ordering (no remaining in-degree), guarding
// against a DFS implementation bug silently accepting a cycle.
func kahnConfirms(g *Graph, dfsOrder []string) bool {
	indeg := make(map[string]int, len(g.Order))
	for _, name := range g.Order {
		indeg[name] = 0
	}
	for _, name := range g.Order {
		for _, dep := range g.Deps[name] {
			if _, declared := g.Deps[dep]; declared {
				indeg[name]++
			}
		}
	}
	var queue []string
	for _, name := range g.Order {
		if indeg[name] == 0 {
			queue = append(queue, name)
		}
	}
	visited := 0
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		visited++
		for _, name := range g.Order {
			for _, dep := range g.Deps[name] {
				if dep == n {
					indeg[name]--
					if indeg[name] == 0 {
						queue = append(queue, name)
					}
				}
			}
		}
	}
	return visited == len(g.Order)
}

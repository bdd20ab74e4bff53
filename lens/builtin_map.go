package lens

import "github.com/rokoss21/facet-compiler/ast"

// builtinMapLenses implements spec.md §6.1's map accessors: keys, values.
func builtinMapLenses() []Lens {
	return []Lens{
		newLens("keys", Pure, mapT, nil, ast.ListType{Elem: stringT}, func(in ast.Value, _ []ast.Value, _ map[string]ast.Value, _ *Context) (ast.Value, error) {
			m, err := asMap(in)
			if err != nil {
				return nil, err
			}
			out := make([]ast.Value, len(m.Keys))
			for i, k := range m.Keys {
				out[i] = strVal(k)
			}
			return listVal(out), nil
		}),
		newLens("values", Pure, mapT, nil, listT, func(in ast.Value, _ []ast.Value, _ map[string]ast.Value, _ *Context) (ast.Value, error) {
			m, err := asMap(in)
			if err != nil {
				return nil, err
			}
			out := make([]ast.Value, len(m.Keys))
			for i, k := range m.Keys {
				out[i] = m.Entries[k]
			}
			return listVal(out), nil
		}),
	}
}

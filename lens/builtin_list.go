package lens

import (
	"sort"

	"github.com/rokoss21/facet-compiler/ast"
)

// builtinListLenses implements spec.md §6.1's list transformation group.
// map and filter dispatch to another registered lens by name, since the
// language has no closures; they take the registry they're being
// installed into so that dispatch resolves lenses registered after them
// (built at call time, not construction time).
func builtinListLenses(reg *Registry) []Lens {
	return []Lens{
		newLens("map", Pure, listT, []ParamSig{param("op", stringT, true)}, listT, func(in ast.Value, args []ast.Value, kwargs map[string]ast.Value, lctx *Context) (ast.Value, error) {
			items, err := asList(in)
			if err != nil {
				return nil, err
			}
			opV, _ := namedArg(args, kwargs, "op", 0)
			op, err := asString(opV)
			if err != nil {
				return nil, err
			}
			out := make([]ast.Value, len(items))
			for i, it := range items {
				out[i], err = reg.Execute(lctx, op, it, nil, nil)
				if err != nil {
					return nil, err
				}
			}
			return listVal(out), nil
		}),
		newLens("filter", Pure, listT, []ParamSig{param("cond", stringT, true)}, listT, func(in ast.Value, args []ast.Value, kwargs map[string]ast.Value, lctx *Context) (ast.Value, error) {
			items, err := asList(in)
			if err != nil {
				return nil, err
			}
			condV, _ := namedArg(args, kwargs, "cond", 0)
			cond, err := asString(condV)
			if err != nil {
				return nil, err
			}
			var out []ast.Value
			for _, it := range items {
				res, err := reg.Execute(lctx, cond, it, nil, nil)
				if err != nil {
					return nil, err
				}
				keep, err := asBool(res)
				if err != nil {
					return nil, err
				}
				if keep {
					out = append(out, it)
				}
			}
			return listVal(out), nil
		}),
		newLens("sort_by", Pure, listT, []ParamSig{param("key", stringT, false), enumParam("order", []string{"asc", "desc"}, false)}, listT, func(in ast.Value, args []ast.Value, kwargs map[string]ast.Value, lctx *Context) (ast.Value, error) {
			items, err := asList(in)
			if err != nil {
				return nil, err
			}
			out := append([]ast.Value(nil), items...)
			order := "asc"
			if v, ok := namedArg(args, kwargs, "order", 1); ok {
				order, err = asString(v)
				if err != nil {
					return nil, err
				}
			}
			var keyLens string
			hasKey := false
			if v, ok := namedArg(args, kwargs, "key", 0); ok {
				keyLens, err = asString(v)
				if err != nil {
					return nil, err
				}
				hasKey = true
			}
			sortErr := error(nil)
			sort.SliceStable(out, func(i, j int) bool {
				a, b := out[i], out[j]
				if hasKey {
					a, err = reg.Execute(lctx, keyLens, a, nil, nil)
					if err != nil {
						sortErr = err
					}
					b, err = reg.Execute(lctx, keyLens, b, nil, nil)
					if err != nil {
						sortErr = err
					}
				}
				less, err := lessValue(a, b)
				if err != nil {
					sortErr = err
				}
				if order == "desc" {
					return !less
				}
				return less
			})
			if sortErr != nil {
				return nil, sortErr
			}
			return listVal(out), nil
		}),
		newLens("ensure_list", Pure, anyT, nil, listT, func(in ast.Value, _ []ast.Value, _ map[string]ast.Value, _ *Context) (ast.Value, error) {
			if _, ok := in.(*ast.List); ok {
				return in, nil
			}
			return listVal([]ast.Value{in}), nil
		}),
		newLens("first", Pure, listT, nil, anyT, func(in ast.Value, _ []ast.Value, _ map[string]ast.Value, _ *Context) (ast.Value, error) {
			items, err := asList(in)
			if err != nil {
				return nil, err
			}
			if len(items) == 0 {
				return nullVal(), nil
			}
			return items[0], nil
		}),
		newLens("last", Pure, listT, nil, anyT, func(in ast.Value, _ []ast.Value, _ map[string]ast.Value, _ *Context) (ast.Value, error) {
			items, err := asList(in)
			if err != nil {
				return nil, err
			}
			if len(items) == 0 {
				return nullVal(), nil
			}
			return items[len(items)-1], nil
		}),
		newLens("nth", Pure, listT, []ParamSig{param("index", numberT, true)}, anyT, func(in ast.Value, args []ast.Value, kwargs map[string]ast.Value, _ *Context) (ast.Value, error) {
			items, err := asList(in)
			if err != nil {
				return nil, err
			}
			idxV, _ := namedArg(args, kwargs, "index", 0)
			idx, err := asInt(idxV)
			if err != nil {
				return nil, err
			}
			if idx < 0 || idx >= len(items) {
				return nullVal(), nil
			}
			return items[idx], nil
		}),
		newLens("slice", Pure, listT, []ParamSig{param("start", numberT, true), param("end", numberT, false)}, listT, func(in ast.Value, args []ast.Value, kwargs map[string]ast.Value, _ *Context) (ast.Value, error) {
			items, err := asList(in)
			if err != nil {
				return nil, err
			}
			startV, _ := namedArg(args, kwargs, "start", 0)
			start, err := asInt(startV)
			if err != nil {
				return nil, err
			}
			end := len(items)
			if v, ok := namedArg(args, kwargs, "end", 1); ok {
				end, err = asInt(v)
				if err != nil {
					return nil, err
				}
			}
			start = clamp(start, 0, len(items))
			end = clamp(end, 0, len(items))
			if start > end {
				start, end = end, start
			}
			return listVal(append([]ast.Value(nil), items[start:end]...)), nil
		}),
		newLens("length", Pure, ast.NewUnion([]ast.Type{listT, mapT, stringT}), nil, numberT, func(in ast.Value, _ []ast.Value, _ map[string]ast.Value, _ *Context) (ast.Value, error) {
			switch vv := in.(type) {
			case *ast.List:
				return intVal(len(vv.Items)), nil
			case *ast.String:
				return intVal(len([]rune(vv.Val))), nil
			case *ast.Map:
				return intVal(len(vv.Keys)), nil
			default:
				return nil, errNotSized(in)
			}
		}),
		newLens("unique", Pure, listT, nil, listT, func(in ast.Value, _ []ast.Value, _ map[string]ast.Value, _ *Context) (ast.Value, error) {
			items, err := asList(in)
			if err != nil {
				return nil, err
			}
			seen := make(map[string]bool)
			var out []ast.Value
			for _, it := range items {
				key := valueKey(it)
				if seen[key] {
					continue
				}
				seen[key] = true
				out = append(out, it)
			}
			return listVal(out), nil
		}),
	}
}

func errNotSized(v ast.Value) error {
	return &lengthError{v}
}

type lengthError struct{ v ast.Value }

func (e *lengthError) Error() string { return "length: value has no defined size" }

// lessValue provides a total order over the scalar/string values the
// sort_by lens is expected to compare; lists and maps compare by their
// canonical string form as a stable, if arbitrary, fallback.
func lessValue(a, b ast.Value) (bool, error) {
	af, aerr := asFloat(a)
	bf, berr := asFloat(b)
	if aerr == nil && berr == nil {
		return af < bf, nil
	}
	as, aerr := asString(a)
	bs, berr := asString(b)
	if aerr == nil && berr == nil {
		return as < bs, nil
	}
	return valueKey(a) < valueKey(b), nil
}

func valueKey(v ast.Value) string {
	switch vv := v.(type) {
	case *ast.String:
		return "s:" + vv.Val
	case *ast.Scalar:
		return "c:" + scalarToString(vv)
	case *ast.List:
		k := "l:"
		for _, it := range vv.Items {
			k += valueKey(it) + ","
		}
		return k
	case *ast.Map:
		k := "m:"
		for _, key := range vv.Keys {
			k += key + "=" + valueKey(vv.Entries[key]) + ","
		}
		return k
	default:
		return "?"
	}
}

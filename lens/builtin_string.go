package lens

import (
	"strings"

	"github.com/rokoss21/facet-compiler/ast"
)

// builtinStringLenses implements spec.md §6.1's string transformation
// group: trim, lowercase, uppercase, capitalize, reverse, split, join,
// replace, indent, substring. All are Pure; join returns an error when a
// list item is neither a string nor a scalar.
func builtinStringLenses() []Lens {
	return []Lens{
		newLens("trim", Pure, stringT, nil, stringT, func(in ast.Value, _ []ast.Value, _ map[string]ast.Value, _ *Context) (ast.Value, error) {
			s, err := asString(in)
			if err != nil {
				return nil, err
			}
			return strVal(strings.TrimSpace(s)), nil
		}),
		newLens("lowercase", Pure, stringT, nil, stringT, func(in ast.Value, _ []ast.Value, _ map[string]ast.Value, _ *Context) (ast.Value, error) {
			s, err := asString(in)
			if err != nil {
				return nil, err
			}
			return strVal(strings.ToLower(s)), nil
		}),
		newLens("uppercase", Pure, stringT, nil, stringT, func(in ast.Value, _ []ast.Value, _ map[string]ast.Value, _ *Context) (ast.Value, error) {
			s, err := asString(in)
			if err != nil {
				return nil, err
			}
			return strVal(strings.ToUpper(s)), nil
		}),
		newLens("capitalize", Pure, stringT, nil, stringT, func(in ast.Value, _ []ast.Value, _ map[string]ast.Value, _ *Context) (ast.Value, error) {
			s, err := asString(in)
			if err != nil {
				return nil, err
			}
			if s == "" {
				return strVal(s), nil
			}
			r := []rune(s)
			return strVal(strings.ToUpper(string(r[0])) + string(r[1:])), nil
		}),
		newLens("reverse", Pure, stringT, nil, stringT, func(in ast.Value, _ []ast.Value, _ map[string]ast.Value, _ *Context) (ast.Value, error) {
			s, err := asString(in)
			if err != nil {
				return nil, err
			}
			r := []rune(s)
			for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
				r[i], r[j] = r[j], r[i]
			}
			return strVal(string(r)), nil
		}),
		newLens("split", Pure, stringT, []ParamSig{param("separator", stringT, false)}, listT, func(in ast.Value, args []ast.Value, kwargs map[string]ast.Value, _ *Context) (ast.Value, error) {
			s, err := asString(in)
			if err != nil {
				return nil, err
			}
			sep := " "
			if v, ok := namedArg(args, kwargs, "separator", 0); ok {
				sep, err = asString(v)
				if err != nil {
					return nil, err
				}
			}
			parts := strings.Split(s, sep)
			items := make([]ast.Value, len(parts))
			for i, p := range parts {
				items[i] = strVal(p)
			}
			return listVal(items), nil
		}),
		newLens("join", Pure, listT, []ParamSig{param("separator", stringT, false)}, stringT, func(in ast.Value, args []ast.Value, kwargs map[string]ast.Value, _ *Context) (ast.Value, error) {
			items, err := asList(in)
			if err != nil {
				return nil, err
			}
			sep := ""
			if v, ok := namedArg(args, kwargs, "separator", 0); ok {
				sep, err = asString(v)
				if err != nil {
					return nil, err
				}
			}
			parts := make([]string, len(items))
			for i, it := range items {
				parts[i], err = asString(it)
				if err != nil {
					return nil, err
				}
			}
			return strVal(strings.Join(parts, sep)), nil
		}),
		newLens("replace", Pure, stringT, []ParamSig{param("pattern", stringT, true), param("replacement", stringT, true)}, stringT, func(in ast.Value, args []ast.Value, kwargs map[string]ast.Value, _ *Context) (ast.Value, error) {
			s, err := asString(in)
			if err != nil {
				return nil, err
			}
			patV, _ := namedArg(args, kwargs, "pattern", 0)
			repV, _ := namedArg(args, kwargs, "replacement", 1)
			pat, err := asString(patV)
			if err != nil {
				return nil, err
			}
			rep, err := asString(repV)
			if err != nil {
				return nil, err
			}
			return strVal(strings.ReplaceAll(s, pat, rep)), nil
		}),
		newLens("indent", Pure, stringT, []ParamSig{param("level", numberT, false)}, stringT, func(in ast.Value, args []ast.Value, kwargs map[string]ast.Value, _ *Context) (ast.Value, error) {
			s, err := asString(in)
			if err != nil {
				return nil, err
			}
			level := 2
			if v, ok := namedArg(args, kwargs, "level", 0); ok {
				level, err = asInt(v)
				if err != nil {
					return nil, err
				}
			}
			prefix := strings.Repeat(" ", level)
			lines := strings.Split(s, "\n")
			for i, l := range lines {
				if l == "" {
					continue
				}
				lines[i] = prefix + l
			}
			return strVal(strings.Join(lines, "\n")), nil
		}),
		newLens("substring", Pure, stringT, []ParamSig{param("start", numberT, true), param("end", numberT, false)}, stringT, func(in ast.Value, args []ast.Value, kwargs map[string]ast.Value, _ *Context) (ast.Value, error) {
			s, err := asString(in)
			if err != nil {
				return nil, err
			}
			r := []rune(s)
			startV, _ := namedArg(args, kwargs, "start", 0)
			start, err := asInt(startV)
			if err != nil {
				return nil, err
			}
			end := len(r)
			if v, ok := namedArg(args, kwargs, "end", 1); ok {
				end, err = asInt(v)
				if err != nil {
					return nil, err
				}
			}
			start = clamp(start, 0, len(r))
			end = clamp(end, 0, len(r))
			if start > end {
				start, end = end, start
			}
			return strVal(string(r[start:end])), nil
		}),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

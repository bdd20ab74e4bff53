package lens

import (
	"fmt"
	"strconv"

	"github.com/rokoss21/facet-compiler/ast"
)

// asString coerces a Value to its Go string form, the way nearly every
// built-in string lens needs its input. Non-string scalars are rendered
// textually rather than rejected, since authors routinely pipe numeric
// or boolean values into string lenses.
func asString(v ast.Value) (string, error) {
	switch vv := v.(type) {
	case *ast.String:
		return vv.Val, nil
	case *ast.Scalar:
		return scalarToString(vv), nil
	default:
		return "", fmt.Errorf("expected a string-coercible value, got %T", v)
	}
}

func scalarToString(s *ast.Scalar) string {
	switch s.Kind {
	case ast.ScalarInt:
		return strconv.FormatInt(s.IntVal, 10)
	case ast.ScalarFloat:
		return strconv.FormatFloat(s.FltVal, 'g', -1, 64)
	case ast.ScalarBool:
		if s.BoolVal {
			return "true"
		}
		return "false"
	default:
		return "null"
	}
}

func asList(v ast.Value) ([]ast.Value, error) {
	lst, ok := v.(*ast.List)
	if !ok {
		return nil, fmt.Errorf("expected a list, got %T", v)
	}
	return lst.Items, nil
}

func asMap(v ast.Value) (*ast.Map, error) {
	m, ok := v.(*ast.Map)
	if !ok {
		return nil, fmt.Errorf("expected a map, got %T", v)
	}
	return m, nil
}

func asFloat(v ast.Value) (float64, error) {
	s, ok := v.(*ast.Scalar)
	if !ok {
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
	switch s.Kind {
	case ast.ScalarInt:
		return float64(s.IntVal), nil
	case ast.ScalarFloat:
		return s.FltVal, nil
	default:
		return 0, fmt.Errorf("expected a number, got scalar kind %v", s.Kind)
	}
}

func asInt(v ast.Value) (int, error) {
	f, err := asFloat(v)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

func asBool(v ast.Value) (bool, error) {
	s, ok := v.(*ast.Scalar)
	if !ok || s.Kind != ast.ScalarBool {
		return false, fmt.Errorf("expected a boolean, got %T", v)
	}
	return s.BoolVal, nil
}

func strVal(s string) *ast.String   { return &ast.String{Val: s} }
func intVal(i int) *ast.Scalar      { return &ast.Scalar{Kind: ast.ScalarInt, IntVal: int64(i)} }
func floatVal(f float64) *ast.Scalar { return &ast.Scalar{Kind: ast.ScalarFloat, FltVal: f} }
func boolVal(b bool) *ast.Scalar    { return &ast.Scalar{Kind: ast.ScalarBool, BoolVal: b} }
func nullVal() *ast.Scalar          { return &ast.Scalar{Kind: ast.ScalarNull} }
func listVal(items []ast.Value) *ast.List {
	if items == nil {
		items = []ast.Value{}
	}
	return &ast.List{Items: items}
}

// namedArg looks up a keyword argument by name, falling back to a
// positional argument by index when the caller used positional style.
func namedArg(args []ast.Value, kwargs map[string]ast.Value, name string, pos int) (ast.Value, bool) {
	if v, ok := kwargs[name]; ok {
		return v, true
	}
	if pos >= 0 && pos < len(args) {
		return args[pos], true
	}
	return nil, false
}
